package licenses

import "time"

// Status values a license moves through. EXPIRED is normally derived from
// expires_at by the access resolver; the column exists so admins can force it.
const (
	StatusActive    = "ACTIVE"
	StatusSuspended = "SUSPENDED"
	StatusExpired   = "EXPIRED"
)

type License struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	PlanID    int       `json:"plan_id"`
	StartsAt  time.Time `json:"starts_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Status    string    `json:"status"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	PlanCode  string    `json:"plan_code,omitempty"`
	PlanName  string    `json:"plan_name,omitempty"`
	UserEmail string    `json:"user_email,omitempty"`
}
