package licenses

import (
	"database/sql"
	"fmt"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CurrentForUser returns the user's most recent license row with plan info,
// regardless of status, or nil when none exists. Same ordering the access
// resolver uses.
func (r *Repository) CurrentForUser(userID int) (*License, error) {
	row := r.db.QueryRow(`SELECT l.id, l.user_id, l.plan_id, l.starts_at, l.expires_at, l.status, l.active, l.created_at, p.code, p.name
		FROM licenses l JOIN plans p ON l.plan_id = p.id
		WHERE l.user_id = ?
		ORDER BY l.starts_at DESC, l.created_at DESC LIMIT 1`, userID)
	var l License
	if err := row.Scan(&l.ID, &l.UserID, &l.PlanID, &l.StartsAt, &l.ExpiresAt, &l.Status, &l.Active, &l.CreatedAt, &l.PlanCode, &l.PlanName); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// ListForUser returns all license rows of a user, newest first. Upgrades
// supersede rather than delete, so this is the user's plan history.
func (r *Repository) ListForUser(userID int) ([]License, error) {
	return r.list(`WHERE l.user_id = ?`, userID)
}

// ListAll returns every license with user and plan context (admin screen).
func (r *Repository) ListAll() ([]License, error) {
	return r.list(``)
}

func (r *Repository) list(where string, args ...interface{}) ([]License, error) {
	query := `SELECT l.id, l.user_id, l.plan_id, l.starts_at, l.expires_at, l.status, l.active, l.created_at, p.code, p.name, u.email
		FROM licenses l
		JOIN plans p ON l.plan_id = p.id
		JOIN users u ON l.user_id = u.id ` + where + `
		ORDER BY l.starts_at DESC, l.created_at DESC`
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []License{}
	for rows.Next() {
		var l License
		if err := rows.Scan(&l.ID, &l.UserID, &l.PlanID, &l.StartsAt, &l.ExpiresAt, &l.Status, &l.Active, &l.CreatedAt, &l.PlanCode, &l.PlanName, &l.UserEmail); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// SetStatus updates the lifecycle status (admin suspend/reactivate).
func (r *Repository) SetStatus(id int, status string) error {
	if status != StatusActive && status != StatusSuspended && status != StatusExpired {
		return fmt.Errorf("invalid license status %q", status)
	}
	_, err := r.db.Exec(`UPDATE licenses SET status=?, active=? WHERE id=?`, status, status == StatusActive, id)
	return err
}

// SupersedeTx deactivates the user's current licenses and creates a fresh
// ACTIVE one for the plan, inside the caller's transaction.
func (r *Repository) SupersedeTx(tx *sql.Tx, userID, planID int, startsAt, expiresAt time.Time) (int, error) {
	if _, err := tx.Exec(`UPDATE licenses SET active=0 WHERE user_id=? AND active=1`, userID); err != nil {
		return 0, err
	}
	res, err := tx.Exec(`INSERT INTO licenses (user_id, plan_id, starts_at, expires_at, status, active) VALUES (?,?,?,?,'ACTIVE',1)`,
		userID, planID, startsAt, expiresAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}
