package payments

import (
	"database/sql"
	"time"
)

type Payment struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	PlanCode  string    `json:"plan_code"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// priceFor returns the mock checkout price in ARS. The gateway is simulated,
// so prices live here rather than in the plans table.
func priceFor(planCode string) (float64, bool) {
	switch planCode {
	case "FREE":
		return 0, true
	case "PRO":
		return 9000, true
	case "PRO_PLUS":
		return 15000, true
	}
	return 0, false
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) insertTx(tx *sql.Tx, userID int, planCode string, amount float64) (int, error) {
	res, err := tx.Exec(
		`INSERT INTO payments (user_id, plan_code, amount, currency, status, provider) VALUES (?, ?, ?, 'ARS', 'paid', 'mock')`,
		userID, planCode, amount,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

func (r *Repository) ListByUser(userID int) ([]Payment, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, plan_code, amount, currency, status, provider, created_at
		 FROM payments WHERE user_id = ? ORDER BY created_at DESC LIMIT 100`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Payment{}
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.PlanCode, &p.Amount, &p.Currency, &p.Status, &p.Provider, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
