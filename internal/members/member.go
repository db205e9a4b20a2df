package members

import (
	"time"

	"github.com/fitstack/gymtracker/internal/auth"
)

// Member is a person tracked by the system. Credentials are optional: a
// member without username/password cannot authenticate but can still own
// sessions and measurements (e.g. created by an admin before credentials
// are issued).
type Member struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Age        int       `json:"age"`
	Gender     string    `json:"gender"`
	JoinedDate time.Time `json:"joinedDate"`
	Phone      *string   `json:"phone,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Username   *string   `json:"username,omitempty"`
	Password   *string   `json:"-"`
	Role       auth.Role `json:"role"`
}

func (m Member) Caller() auth.Caller {
	caller := auth.Caller{
		ID:         m.ID,
		Name:       m.Name,
		Age:        m.Age,
		Gender:     m.Gender,
		JoinedDate: m.JoinedDate,
		Role:       m.Role,
	}
	if m.Phone != nil {
		caller.Phone = *m.Phone
	}
	if m.Email != nil {
		caller.Email = *m.Email
	}
	if m.Username != nil {
		caller.Username = *m.Username
	}
	return caller
}

// UpdateParams carries a partial update: only non-nil fields are written,
// everything else is left untouched.
type UpdateParams struct {
	Name       *string    `json:"name"`
	Age        *int       `json:"age"`
	Gender     *string    `json:"gender"`
	JoinedDate *time.Time `json:"joinedDate"`
	Phone      *string    `json:"phone"`
	Email      *string    `json:"email"`
	Username   *string    `json:"username"`
	Password   *string    `json:"password"`
	Role       *auth.Role `json:"role"`
}
