package maintenance

import "time"

type Plan struct {
	ID             int        `json:"id"`
	EquipmentID    int        `json:"equipment_id"`
	NextDate       time.Time  `json:"next_date"`
	DaysBefore     int        `json:"days_before"`
	NotifyEmail    bool       `json:"notify_email"`
	NotifyMessage  bool       `json:"notify_message"`
	LastNotifiedAt *time.Time `json:"last_notified_at,omitempty"`
}

// pendingPlan is a plan joined with everything the reminder dispatcher needs.
type pendingPlan struct {
	Plan
	UserID         int
	TechnicianName string
	ClientID       int
	ClientName     string
	ClientEmail    string
	ClientPhone    string
	EquipmentLabel string
}

// DueWithin reports whether the plan's next date falls inside the reminder
// window [today, today+daysBefore], comparing date-only values.
func (p *Plan) DueWithin(today time.Time) bool {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	nd := day(p.NextDate)
	start := day(today)
	end := start.AddDate(0, 0, p.DaysBefore)
	return !nd.Before(start) && !nd.After(end)
}
