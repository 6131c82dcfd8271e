package clients

import (
	"database/sql"
	"time"
)

type Client struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListByUser(userID int) ([]Client, error) {
	rows, err := r.db.Query(`SELECT id, user_id, name, IFNULL(email,''), IFNULL(phone,''), IFNULL(address,''), created_at
		FROM clients WHERE user_id = ? ORDER BY id DESC LIMIT 200`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Client{}
	for rows.Next() {
		var cl Client
		if err := rows.Scan(&cl.ID, &cl.UserID, &cl.Name, &cl.Email, &cl.Phone, &cl.Address, &cl.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cl)
	}
	return out, rows.Err()
}

// GetOwned returns the client only when it belongs to the user.
func (r *Repository) GetOwned(id, userID int) (*Client, error) {
	row := r.db.QueryRow(`SELECT id, user_id, name, IFNULL(email,''), IFNULL(phone,''), IFNULL(address,''), created_at
		FROM clients WHERE id = ? AND user_id = ? LIMIT 1`, id, userID)
	var cl Client
	if err := row.Scan(&cl.ID, &cl.UserID, &cl.Name, &cl.Email, &cl.Phone, &cl.Address, &cl.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &cl, nil
}

func (r *Repository) Create(cl *Client) error {
	res, err := r.db.Exec(`INSERT INTO clients (user_id, name, email, phone, address) VALUES (?,?,?,?,?)`,
		cl.UserID, cl.Name, nullable(cl.Email), nullable(cl.Phone), nullable(cl.Address))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cl.ID = int(id)
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
