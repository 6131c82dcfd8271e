package email

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"time"
)

func appName() string {
	if v := os.Getenv("APP_NAME"); v != "" {
		return v
	}
	return "FríoPro"
}

func send(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	if host == "" || port == "" || user == "" || pass == "" || from == "" {
		return fmt.Errorf("SMTP environment variables missing")
	}
	addr := fmt.Sprintf("%s:%s", host, port)
	auth := smtp.PlainAuth("", user, pass, host)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", from, to, subject, body))
	return smtp.SendMail(addr, auth, from, []string{to}, msg)
}

func SendWelcome(to string) error {
	subject := fmt.Sprintf("Bienvenido a %s", appName())
	body := fmt.Sprintf("Gracias por registrarte. Tenés 30 días de prueba con todas las funciones básicas.\n\n— %s", appName())
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] welcome sent to %s", to)
	return nil
}

// MaintenanceReminderBody builds the reminder text; exported so the cron
// dispatcher can log the exact content it sent.
func MaintenanceReminderBody(clientName, technicianName, equipmentLabel string, date time.Time) (subject, body string) {
	app := appName()
	subject = fmt.Sprintf("Recordatorio de mantenimiento – %s", equipmentLabel)
	body = fmt.Sprintf(`Hola %s,

Este es un recordatorio automático de %s, a pedido de su técnico %s.
Se sugiere realizar el mantenimiento del equipo %s alrededor del %s.
Para coordinar, comuníquese con su técnico.

— %s`, clientName, app, technicianName, equipmentLabel, date.Format("02/01/2006"), app)
	return subject, body
}

func SendMaintenanceReminder(to, clientName, technicianName, equipmentLabel string, date time.Time) error {
	subject, body := MaintenanceReminderBody(clientName, technicianName, equipmentLabel, date)
	if err := send(to, subject, body); err != nil {
		return err
	}
	log.Printf("[EMAIL] maintenance reminder sent to %s", to)
	return nil
}
