package workorders

import (
	"database/sql"
	"encoding/json"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(wo *WorkOrder) error {
	symptoms, err := json.Marshal(wo.Symptoms)
	if err != nil {
		return err
	}
	res, err := r.db.Exec(`INSERT INTO work_orders (user_id, client_id, equipment_id, status, service_type, service_address, symptoms, notes)
		VALUES (?,?,?,?,?,?,?,?)`,
		wo.UserID, wo.ClientID, wo.EquipmentID, StatusDraft, wo.ServiceType, nullable(wo.ServiceAddress), string(symptoms), nullable(wo.Notes))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	wo.ID = int(id)
	wo.Status = StatusDraft
	return nil
}

func (r *Repository) ListByUser(userID int) ([]WorkOrder, error) {
	rows, err := r.db.Query(`SELECT w.id, w.user_id, w.client_id, w.equipment_id, w.status, w.service_type,
		IFNULL(w.service_address,''), IFNULL(w.notes,''), w.created_at, w.updated_at, c.name
		FROM work_orders w JOIN clients c ON w.client_id = c.id
		WHERE w.user_id = ? ORDER BY w.created_at DESC LIMIT 200`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []WorkOrder{}
	for rows.Next() {
		var wo WorkOrder
		if err := rows.Scan(&wo.ID, &wo.UserID, &wo.ClientID, &wo.EquipmentID, &wo.Status, &wo.ServiceType,
			&wo.ServiceAddress, &wo.Notes, &wo.CreatedAt, &wo.UpdatedAt, &wo.ClientName); err != nil {
			return nil, err
		}
		out = append(out, wo)
	}
	return out, rows.Err()
}

// GetOwned loads a work order with its nested records, only for its owner.
func (r *Repository) GetOwned(id, userID int) (*WorkOrder, error) {
	row := r.db.QueryRow(`SELECT w.id, w.user_id, w.client_id, w.equipment_id, w.status, w.service_type,
		IFNULL(w.service_address,''), IFNULL(w.symptoms,'[]'), IFNULL(w.notes,''), w.created_at, w.updated_at,
		c.name, e.type, IFNULL(e.custom_type,''), IFNULL(e.brand,''), IFNULL(e.model,'')
		FROM work_orders w
		JOIN clients c ON w.client_id = c.id
		JOIN equipments e ON w.equipment_id = e.id
		WHERE w.id = ? AND w.user_id = ? LIMIT 1`, id, userID)
	var wo WorkOrder
	var symptomsJSON, eqType, eqCustom, eqBrand, eqModel string
	if err := row.Scan(&wo.ID, &wo.UserID, &wo.ClientID, &wo.EquipmentID, &wo.Status, &wo.ServiceType,
		&wo.ServiceAddress, &symptomsJSON, &wo.Notes, &wo.CreatedAt, &wo.UpdatedAt,
		&wo.ClientName, &eqType, &eqCustom, &eqBrand, &eqModel); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	_ = json.Unmarshal([]byte(symptomsJSON), &wo.Symptoms)
	wo.EquipmentLabel = equipmentLabel(eqType, eqCustom, eqBrand, eqModel)

	m, err := r.getMeasurements(wo.ID)
	if err != nil {
		return nil, err
	}
	wo.Measurements = m

	photos, err := r.listPhotos(wo.ID)
	if err != nil {
		return nil, err
	}
	wo.Photos = photos

	report, err := r.GetPdfReport(wo.ID)
	if err != nil {
		return nil, err
	}
	wo.PdfReport = report

	diag, err := r.getDiagnosis(wo.ID)
	if err != nil {
		return nil, err
	}
	wo.Diagnosis = diag
	return &wo, nil
}

func equipmentLabel(typ, custom, brand, model string) string {
	label := typ
	if typ == "OTRO" && custom != "" {
		label = custom
	}
	if brand != "" {
		label += " • " + brand
	}
	if model != "" {
		label += " " + model
	}
	return label
}

func (r *Repository) SetStatus(id int, status string) error {
	_, err := r.db.Exec(`UPDATE work_orders SET status=? WHERE id=?`, status, id)
	return err
}

func (r *Repository) getMeasurements(workOrderID int) (*Measurements, error) {
	row := r.db.QueryRow(`SELECT temp_in, temp_out, pressure_high, pressure_low, voltage, current_amps, IFNULL(notes,'')
		FROM measurements WHERE work_order_id = ? LIMIT 1`, workOrderID)
	var m Measurements
	if err := row.Scan(&m.TempIn, &m.TempOut, &m.PressureHigh, &m.PressureLow, &m.Voltage, &m.CurrentAmps, &m.Notes); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repository) UpsertMeasurements(workOrderID int, m *Measurements) error {
	_, err := r.db.Exec(`INSERT INTO measurements (work_order_id, temp_in, temp_out, pressure_high, pressure_low, voltage, current_amps, notes)
		VALUES (?,?,?,?,?,?,?,?)
		ON DUPLICATE KEY UPDATE temp_in=VALUES(temp_in), temp_out=VALUES(temp_out), pressure_high=VALUES(pressure_high),
		pressure_low=VALUES(pressure_low), voltage=VALUES(voltage), current_amps=VALUES(current_amps), notes=VALUES(notes)`,
		workOrderID, m.TempIn, m.TempOut, m.PressureHigh, m.PressureLow, m.Voltage, m.CurrentAmps, nullable(m.Notes))
	return err
}

func (r *Repository) listPhotos(workOrderID int) ([]Photo, error) {
	rows, err := r.db.Query(`SELECT id, url, created_at FROM evidence_photos WHERE work_order_id = ? ORDER BY id`, workOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Photo{}
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.URL, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) AddPhoto(workOrderID int, url string) error {
	_, err := r.db.Exec(`INSERT INTO evidence_photos (work_order_id, url) VALUES (?,?)`, workOrderID, url)
	return err
}

func (r *Repository) GetPdfReport(workOrderID int) (*PdfReport, error) {
	row := r.db.QueryRow(`SELECT id, file_url, created_at FROM pdf_reports WHERE work_order_id = ? LIMIT 1`, workOrderID)
	var p PdfReport
	if err := row.Scan(&p.ID, &p.FileURL, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) UpsertPdfReport(workOrderID int, fileURL string) error {
	_, err := r.db.Exec(`INSERT INTO pdf_reports (work_order_id, file_url) VALUES (?,?)
		ON DUPLICATE KEY UPDATE file_url=VALUES(file_url)`, workOrderID, fileURL)
	return err
}

func (r *Repository) getDiagnosis(workOrderID int) (*Diagnosis, error) {
	row := r.db.QueryRow(`SELECT IFNULL(ai_client_summary,''), IFNULL(ai_recommendations,''), IFNULL(ai_alerts,'')
		FROM diagnoses WHERE work_order_id = ? LIMIT 1`, workOrderID)
	var d Diagnosis
	if err := row.Scan(&d.ClientSummary, &d.Recommendations, &d.Alerts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *Repository) UpsertDiagnosis(workOrderID int, d *Diagnosis) error {
	_, err := r.db.Exec(`INSERT INTO diagnoses (work_order_id, ai_client_summary, ai_recommendations, ai_alerts)
		VALUES (?,?,?,?)
		ON DUPLICATE KEY UPDATE ai_client_summary=VALUES(ai_client_summary),
		ai_recommendations=VALUES(ai_recommendations), ai_alerts=VALUES(ai_alerts)`,
		workOrderID, d.ClientSummary, d.Recommendations, d.Alerts)
	return err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
