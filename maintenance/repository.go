package maintenance

import (
	"database/sql"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ClientEmailForEquipment returns the email of the equipment's client, empty
// when the client has none.
func (r *Repository) ClientEmailForEquipment(equipmentID int) (string, error) {
	var email string
	err := r.db.QueryRow(`
		SELECT IFNULL(c.email, '')
		FROM equipments e
		JOIN clients c ON c.id = e.client_id
		WHERE e.id = ?`, equipmentID).Scan(&email)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return email, err
}

func (r *Repository) GetByEquipment(equipmentID int) (*Plan, error) {
	row := r.db.QueryRow(`SELECT id, equipment_id, next_date, days_before, notify_email, notify_message, last_notified_at
		FROM maintenance_plans WHERE equipment_id = ? LIMIT 1`, equipmentID)
	var p Plan
	var last sql.NullTime
	if err := row.Scan(&p.ID, &p.EquipmentID, &p.NextDate, &p.DaysBefore, &p.NotifyEmail, &p.NotifyMessage, &last); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if last.Valid {
		p.LastNotifiedAt = &last.Time
	}
	return &p, nil
}

// Upsert also clears last_notified_at so an edited plan notifies again.
func (r *Repository) Upsert(p *Plan) error {
	_, err := r.db.Exec(`INSERT INTO maintenance_plans (equipment_id, next_date, days_before, notify_email, notify_message, last_notified_at)
		VALUES (?,?,?,?,?,NULL)
		ON DUPLICATE KEY UPDATE next_date=VALUES(next_date), days_before=VALUES(days_before),
		notify_email=VALUES(notify_email), notify_message=VALUES(notify_message), last_notified_at=NULL`,
		p.EquipmentID, p.NextDate, p.DaysBefore, p.NotifyEmail, p.NotifyMessage)
	return err
}

// Pending returns un-notified plans with notification enabled, joined with
// the technician, client and equipment the dispatcher needs.
func (r *Repository) Pending(limit int) ([]pendingPlan, error) {
	rows, err := r.db.Query(`SELECT mp.id, mp.equipment_id, mp.next_date, mp.days_before, mp.notify_email, mp.notify_message,
		e.user_id, u.name, c.id, c.name, IFNULL(c.email,''), IFNULL(c.phone,''),
		e.type, IFNULL(e.custom_type,''), IFNULL(e.brand,''), IFNULL(e.model,'')
		FROM maintenance_plans mp
		JOIN equipments e ON mp.equipment_id = e.id
		JOIN users u ON e.user_id = u.id
		JOIN clients c ON e.client_id = c.id
		WHERE mp.last_notified_at IS NULL AND (mp.notify_email = 1 OR mp.notify_message = 1)
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []pendingPlan{}
	for rows.Next() {
		var p pendingPlan
		var eqType, eqCustom, eqBrand, eqModel string
		if err := rows.Scan(&p.ID, &p.EquipmentID, &p.NextDate, &p.DaysBefore, &p.NotifyEmail, &p.NotifyMessage,
			&p.UserID, &p.TechnicianName, &p.ClientID, &p.ClientName, &p.ClientEmail, &p.ClientPhone,
			&eqType, &eqCustom, &eqBrand, &eqModel); err != nil {
			return nil, err
		}
		label := eqType
		if eqType == "OTRO" && eqCustom != "" {
			label = eqCustom
		}
		if eqBrand != "" {
			label += " • " + eqBrand
		}
		if eqModel != "" {
			label += " " + eqModel
		}
		p.EquipmentLabel = label
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) MarkNotified(id int, at time.Time) error {
	_, err := r.db.Exec(`UPDATE maintenance_plans SET last_notified_at = ? WHERE id = ?`, at, id)
	return err
}

// LogNotification appends to the notification audit trail.
func (r *Repository) LogNotification(userID int, clientID, equipmentID int, channel, to, content, status, errMsg string) error {
	var clientVal interface{}
	if clientID != 0 {
		clientVal = clientID
	}
	var errVal interface{}
	if errMsg != "" {
		errVal = errMsg
	}
	_, err := r.db.Exec(`INSERT INTO notification_logs (user_id, client_id, equipment_id, channel, to_addr, content, status, error)
		VALUES (?,?,?,?,?,?,?,?)`, userID, clientVal, equipmentID, channel, to, content, status, errVal)
	return err
}
