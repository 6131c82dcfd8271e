package usage

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Event is an immutable billable-action record, attributed to the license
// that was active when the action happened.
type Event struct {
	ID        int             `json:"id"`
	LicenseID int             `json:"license_id"`
	Type      string          `json:"type"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UserEmail string          `json:"user_email,omitempty"`
	PlanCode  string          `json:"plan_code,omitempty"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Record appends a usage event. Callers record only after the guarded action
// succeeded; events are never updated or deleted.
func (r *Repository) Record(licenseID int, eventType string, meta map[string]interface{}) error {
	var metaJSON interface{}
	if len(meta) > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		metaJSON = string(b)
	}
	_, err := r.db.Exec(`INSERT INTO usage_events (license_id, type, meta) VALUES (?,?,?)`,
		licenseID, eventType, metaJSON)
	return err
}

// Recent returns the latest events with user/plan context (admin screen).
func (r *Repository) Recent(limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.Query(`SELECT e.id, e.license_id, e.type, e.meta, e.created_at, u.email, p.code
		FROM usage_events e
		JOIN licenses l ON e.license_id = l.id
		JOIN users u ON l.user_id = u.id
		JOIN plans p ON l.plan_id = p.id
		ORDER BY e.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Event{}
	for rows.Next() {
		var e Event
		var meta sql.NullString
		if err := rows.Scan(&e.ID, &e.LicenseID, &e.Type, &meta, &e.CreatedAt, &e.UserEmail, &e.PlanCode); err != nil {
			return nil, err
		}
		if meta.Valid {
			e.Meta = json.RawMessage(meta.String)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountThisMonthByType aggregates this month's events per type (admin stats).
func (r *Repository) CountThisMonthByType(now time.Time) (map[string]int, error) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)
	rows, err := r.db.Query(`SELECT type, COUNT(1) FROM usage_events WHERE created_at >= ? AND created_at < ? GROUP BY type`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}
