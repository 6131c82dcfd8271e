package migrations

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	Status       string    `db:"status"`
	Currency     string    `db:"currency"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

var db *sql.DB

// Init sets the DB connection for migrations and queries
func Init(database *sql.DB) {
	db = database
}

// Migrate creates required tables if they do not exist
func Migrate() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(191) NOT NULL UNIQUE,
			password_hash VARCHAR(191) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'TECHNICIAN',
			status VARCHAR(50) NOT NULL DEFAULT 'ACTIVE',
			currency VARCHAR(10) NOT NULL DEFAULT 'ARS',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS plans (
			id INT AUTO_INCREMENT PRIMARY KEY,
			code VARCHAR(20) NOT NULL UNIQUE,
			name VARCHAR(100) NOT NULL,
			max_work_orders_per_month INT NOT NULL DEFAULT 0,
			max_equipments INT NOT NULL DEFAULT 0,
			ai_enabled TINYINT(1) NOT NULL DEFAULT 0,
			pdf_enabled TINYINT(1) NOT NULL DEFAULT 0,
			qr_enabled TINYINT(1) NOT NULL DEFAULT 0
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS licenses (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			plan_id INT NOT NULL,
			starts_at DATETIME NOT NULL,
			expires_at DATETIME NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
			active TINYINT(1) NOT NULL DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (plan_id) REFERENCES plans(id),
			INDEX idx_licenses_user (user_id, starts_at, created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS usage_events (
			id INT AUTO_INCREMENT PRIMARY KEY,
			license_id INT NOT NULL,
			type VARCHAR(40) NOT NULL,
			meta JSON NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (license_id) REFERENCES licenses(id) ON DELETE CASCADE,
			INDEX idx_usage_license_type_date (license_id, type, created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS clients (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			name VARCHAR(120) NOT NULL,
			email VARCHAR(191) NULL,
			phone VARCHAR(50) NULL,
			address VARCHAR(255) NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			INDEX idx_clients_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS equipments (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			client_id INT NOT NULL,
			public_id VARCHAR(60) NOT NULL UNIQUE,
			type VARCHAR(30) NOT NULL,
			custom_type VARCHAR(100) NULL,
			brand VARCHAR(100) NULL,
			model VARCHAR(100) NULL,
			serial VARCHAR(100) NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE,
			INDEX idx_equipments_user (user_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS work_orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			client_id INT NOT NULL,
			equipment_id INT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'DRAFT',
			service_type VARCHAR(20) NOT NULL DEFAULT 'FALLA',
			service_address VARCHAR(255) NULL,
			symptoms JSON NULL,
			notes TEXT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (client_id) REFERENCES clients(id),
			FOREIGN KEY (equipment_id) REFERENCES equipments(id),
			INDEX idx_workorders_user (user_id, created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS measurements (
			id INT AUTO_INCREMENT PRIMARY KEY,
			work_order_id INT NOT NULL UNIQUE,
			temp_in DECIMAL(6,2) NULL,
			temp_out DECIMAL(6,2) NULL,
			pressure_high DECIMAL(8,2) NULL,
			pressure_low DECIMAL(8,2) NULL,
			voltage DECIMAL(8,2) NULL,
			current_amps DECIMAL(8,2) NULL,
			notes TEXT NULL,
			FOREIGN KEY (work_order_id) REFERENCES work_orders(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS evidence_photos (
			id INT AUTO_INCREMENT PRIMARY KEY,
			work_order_id INT NOT NULL,
			url VARCHAR(500) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (work_order_id) REFERENCES work_orders(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS pdf_reports (
			id INT AUTO_INCREMENT PRIMARY KEY,
			work_order_id INT NOT NULL UNIQUE,
			file_url VARCHAR(500) NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (work_order_id) REFERENCES work_orders(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS diagnoses (
			id INT AUTO_INCREMENT PRIMARY KEY,
			work_order_id INT NOT NULL UNIQUE,
			ai_client_summary TEXT NULL,
			ai_recommendations TEXT NULL,
			ai_alerts TEXT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (work_order_id) REFERENCES work_orders(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS maintenance_plans (
			id INT AUTO_INCREMENT PRIMARY KEY,
			equipment_id INT NOT NULL UNIQUE,
			next_date DATE NOT NULL,
			days_before INT NOT NULL DEFAULT 7,
			notify_email TINYINT(1) NOT NULL DEFAULT 0,
			notify_message TINYINT(1) NOT NULL DEFAULT 0,
			last_notified_at DATETIME NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (equipment_id) REFERENCES equipments(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS notification_logs (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			client_id INT NULL,
			equipment_id INT NOT NULL,
			channel VARCHAR(20) NOT NULL,
			to_addr VARCHAR(191) NOT NULL DEFAULT '',
			content TEXT NULL,
			status VARCHAR(20) NOT NULL,
			error VARCHAR(191) NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS payments (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL,
			plan_code VARCHAR(20) NOT NULL,
			amount DECIMAL(12,2) NOT NULL,
			currency VARCHAR(10) NOT NULL,
			status VARCHAR(20) NOT NULL,
			provider VARCHAR(20) NOT NULL DEFAULT 'mock',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SeedDefaultPlans inserts the three plan tiers if the table is empty.
// Only max_work_orders_per_month is consulted by the access resolver; the
// other columns mirror the admin plan-edit screen.
func SeedDefaultPlans() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM plans").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	seeds := []struct {
		code, name                string
		maxWorkOrders, maxEquips  int
		ai, pdf, qr               bool
	}{
		{"FREE", "Free", 15, 30, false, false, true},
		{"PRO", "Pro", 200, 500, true, true, true},
		{"PRO_PLUS", "Pro+", 2000, 5000, true, true, true},
	}
	for _, s := range seeds {
		_, err := db.Exec(`INSERT INTO plans (code, name, max_work_orders_per_month, max_equipments, ai_enabled, pdf_enabled, qr_enabled)
			VALUES (?,?,?,?,?,?,?)`, s.code, s.name, s.maxWorkOrders, s.maxEquips, s.ai, s.pdf, s.qr)
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedSuperAdmin inserts the default admin with a one-year PRO license.
func SeedSuperAdmin() error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	adminEmail := "admin@friopro.local"
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", adminEmail).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	res, err := db.Exec(`INSERT INTO users (name, email, password_hash, role, currency) VALUES (?,?,?,?,?)`,
		"Super Admin", adminEmail, string(hash), "SUPER_ADMIN", "USD")
	if err != nil {
		return err
	}
	adminID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	var planID int
	if err := db.QueryRow("SELECT id FROM plans WHERE code = 'PRO' LIMIT 1").Scan(&planID); err != nil {
		return err
	}
	now := time.Now()
	_, err = db.Exec(`INSERT INTO licenses (user_id, plan_id, starts_at, expires_at, status, active) VALUES (?,?,?,?,'ACTIVE',1)`,
		adminID, planID, now, now.AddDate(1, 0, 0))
	return err
}

func scanUser(row *sql.Row) *User {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.Currency, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil
	}
	return &u
}

// GetUserByEmail retrieves a user from DB by email
func GetUserByEmail(email string) *User {
	if db == nil {
		return nil
	}
	row := db.QueryRow("SELECT id, name, email, password_hash, role, status, currency, created_at, updated_at FROM users WHERE email = ? LIMIT 1", email)
	return scanUser(row)
}

// GetUserByID retrieves a user by its ID
func GetUserByID(id int) *User {
	if db == nil {
		return nil
	}
	row := db.QueryRow("SELECT id, name, email, password_hash, role, status, currency, created_at, updated_at FROM users WHERE id = ? LIMIT 1", id)
	return scanUser(row)
}

// EnsureFreeLicenseForUser creates a long-lived FREE license for the user if
// they have none. The trial window, not the expiry date, is what limits FREE.
func EnsureFreeLicenseForUser(userID int) error {
	if db == nil {
		return fmt.Errorf("db is not initialized")
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM licenses WHERE user_id = ?", userID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	var planID int
	if err := db.QueryRow("SELECT id FROM plans WHERE code = 'FREE' LIMIT 1").Scan(&planID); err != nil {
		return err
	}
	now := time.Now()
	_, err := db.Exec(`INSERT INTO licenses (user_id, plan_id, starts_at, expires_at, status, active) VALUES (?,?,?,?,'ACTIVE',1)`,
		userID, planID, now, now.AddDate(50, 0, 0))
	return err
}

// EmailExists checks if a user with the given email exists
func EmailExists(email string) (bool, error) {
	if db == nil {
		return false, fmt.Errorf("db is not initialized")
	}
	var count int
	if err := db.QueryRow("SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateUser inserts a new user record and returns its id
func CreateUser(name, email, passwordHash, role string) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("db is not initialized")
	}
	res, err := db.Exec(
		"INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)",
		name, email, passwordHash, role,
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
