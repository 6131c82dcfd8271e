package equipments

import (
	"database/sql"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const equipmentColumns = `id, user_id, client_id, public_id, type, IFNULL(custom_type,''), IFNULL(brand,''), IFNULL(model,''), IFNULL(serial,''), created_at`

func scanEquipment(scan func(dest ...interface{}) error) (*Equipment, error) {
	var e Equipment
	err := scan(&e.ID, &e.UserID, &e.ClientID, &e.PublicID, &e.Type, &e.CustomType, &e.Brand, &e.Model, &e.Serial, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) ListByUser(userID int) ([]Equipment, error) {
	rows, err := r.db.Query(`SELECT `+equipmentColumns+` FROM equipments WHERE user_id = ? ORDER BY id DESC LIMIT 300`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *Repository) GetOwned(id, userID int) (*Equipment, error) {
	row := r.db.QueryRow(`SELECT `+equipmentColumns+` FROM equipments WHERE id = ? AND user_id = ? LIMIT 1`, id, userID)
	e, err := scanEquipment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// GetByPublicID backs the unauthenticated QR page.
func (r *Repository) GetByPublicID(publicID string) (*Equipment, error) {
	row := r.db.QueryRow(`SELECT `+equipmentColumns+` FROM equipments WHERE public_id = ? LIMIT 1`, publicID)
	e, err := scanEquipment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *Repository) Create(e *Equipment) error {
	res, err := r.db.Exec(`INSERT INTO equipments (user_id, client_id, public_id, type, custom_type, brand, model, serial) VALUES (?,?,?,?,?,?,?,?)`,
		e.UserID, e.ClientID, e.PublicID, e.Type, nullable(e.CustomType), nullable(e.Brand), nullable(e.Model), nullable(e.Serial))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = int(id)
	return nil
}

// OwnerName returns the technician's name for the public page header.
func (r *Repository) OwnerName(userID int) (string, error) {
	var name string
	err := r.db.QueryRow(`SELECT name FROM users WHERE id = ? LIMIT 1`, userID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return name, err
}

// RecentWorkOrders lists the last work orders of an equipment for the public
// history section.
func (r *Repository) RecentWorkOrders(equipmentID, limit int) ([]map[string]interface{}, error) {
	rows, err := r.db.Query(`SELECT id, status, service_type, created_at FROM work_orders
		WHERE equipment_id = ? ORDER BY created_at DESC LIMIT ?`, equipmentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []map[string]interface{}{}
	for rows.Next() {
		var id int
		var status, serviceType string
		var createdAt sql.NullTime
		if err := rows.Scan(&id, &status, &serviceType, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"id":           id,
			"status":       status,
			"service_type": serviceType,
			"created_at":   createdAt.Time,
		})
	}
	return out, rows.Err()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
