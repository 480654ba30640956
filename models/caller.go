package models

// Caller roles, соответствуют claims из JWT.
const (
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
	RoleViewer    = "viewer"
)

// Caller identifies who is performing an operation. A zero Caller is an
// anonymous viewer, which is sufficient to subscribe to published
// tournaments.
type Caller struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
}

func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

func (c Caller) Anonymous() bool { return c.UserID == 0 }
