package workouts

import "time"

// Session is one gym visit. Logs hang off it, so the session's member is
// the owner of everything recorded within it.
type Session struct {
	ID            int       `json:"id"`
	MemberID      int       `json:"memberId"`
	SessionDate   time.Time `json:"sessionDate"`
	TotalDuration *int      `json:"totalDuration,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
}

type SessionUpdateParams struct {
	SessionDate   *time.Time `json:"sessionDate"`
	TotalDuration *int       `json:"totalDuration"`
	Notes         *string    `json:"notes"`
}
