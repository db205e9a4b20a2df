package measurements

import "time"

// Measurement is a body measurement snapshot for a member. Every value is
// optional: members record whatever was measured that day.
type Measurement struct {
	ID          int       `json:"id"`
	MemberID    int       `json:"memberId"`
	MeasureDate time.Time `json:"measureDate"`
	Weight      *float64  `json:"weight,omitempty"`
	Chest       *float64  `json:"chest,omitempty"`
	Arms        *float64  `json:"arms,omitempty"`
	Waist       *float64  `json:"waist,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
}

type UpdateParams struct {
	MeasureDate *time.Time `json:"measureDate"`
	Weight      *float64   `json:"weight"`
	Chest       *float64   `json:"chest"`
	Arms        *float64   `json:"arms"`
	Waist       *float64   `json:"waist"`
	Notes       *string    `json:"notes"`
}
