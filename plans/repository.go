package plans

import (
	"database/sql"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const planColumns = `id, code, name, max_work_orders_per_month, max_equipments, ai_enabled, pdf_enabled, qr_enabled`

func (r *Repository) GetPlans() ([]Plan, error) {
	rows, err := r.db.Query(`SELECT ` + planColumns + ` FROM plans ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	plans := []Plan{}
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.MaxWorkOrdersPerMonth, &p.MaxEquipments, &p.AiEnabled, &p.PdfEnabled, &p.QrEnabled); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// GetPlanByCode returns a plan by its code, or nil when missing.
func (r *Repository) GetPlanByCode(code string) (*Plan, error) {
	row := r.db.QueryRow(`SELECT `+planColumns+` FROM plans WHERE code=? LIMIT 1`, code)
	var p Plan
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.MaxWorkOrdersPerMonth, &p.MaxEquipments, &p.AiEnabled, &p.PdfEnabled, &p.QrEnabled); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// UpdatePlan changes the editable columns. Plan codes are never changed or
// deleted; they are reference data the resolver keys on.
func (r *Repository) UpdatePlan(id int, p *Plan) error {
	_, err := r.db.Exec(`UPDATE plans SET name=?, max_work_orders_per_month=?, max_equipments=?, ai_enabled=?, pdf_enabled=?, qr_enabled=? WHERE id=?`,
		p.Name, p.MaxWorkOrdersPerMonth, p.MaxEquipments, p.AiEnabled, p.PdfEnabled, p.QrEnabled, id)
	return err
}
