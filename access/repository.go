package access

import (
	"database/sql"
	"time"
)

// SQLStore implements Store on MySQL.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) GetUserCreatedAt(userID int) (time.Time, error) {
	row := s.db.QueryRow(`SELECT created_at FROM users WHERE id=? LIMIT 1`, userID)
	var createdAt time.Time
	if err := row.Scan(&createdAt); err != nil {
		if err == sql.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return createdAt, nil
}

func (s *SQLStore) CurrentLicense(userID int) (*License, error) {
	row := s.db.QueryRow(`SELECT l.id, l.status, l.starts_at, l.expires_at,
		p.id, p.code, p.name, p.max_work_orders_per_month
		FROM licenses l JOIN plans p ON l.plan_id = p.id
		WHERE l.user_id = ?
		ORDER BY l.starts_at DESC, l.created_at DESC
		LIMIT 1`, userID)
	var lic License
	var status string
	var code string
	if err := row.Scan(&lic.ID, &status, &lic.StartsAt, &lic.ExpiresAt,
		&lic.Plan.ID, &code, &lic.Plan.Name, &lic.Plan.MaxWorkOrdersPerMonth); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	lic.Status = LicenseStatus(status)
	lic.Plan.Code = PlanCode(code)
	return &lic, nil
}

func (s *SQLStore) CountUsageEvents(licenseID int, typ EventType, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM usage_events
		WHERE license_id = ? AND type = ? AND created_at >= ? AND created_at < ?`,
		licenseID, string(typ), from, to).Scan(&count)
	return count, err
}

func (s *SQLStore) CountClients(userID int) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM clients WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}

func (s *SQLStore) CountEquipments(userID int) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM equipments WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}
