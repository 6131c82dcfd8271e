package maintenance

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"friopro-backend/access"
	"friopro-backend/email"
	"friopro-backend/equipments"
	"friopro-backend/login"

	"github.com/gin-gonic/gin"
)

type store interface {
	GetByEquipment(equipmentID int) (*Plan, error)
	Upsert(p *Plan) error
	ClientEmailForEquipment(equipmentID int) (string, error)
	Pending(limit int) ([]pendingPlan, error)
	MarkNotified(id int, at time.Time) error
	LogNotification(userID int, clientID, equipmentID int, channel, to, content, status, errMsg string) error
}

type entitlements interface {
	Resolve(userID int) (access.AccessState, error)
	CanManageMaintenance(userID int) (*access.AccessState, error)
}

type Handler struct {
	repo      store
	equips    *equipments.Repository
	access    entitlements
	sendEmail func(to, clientName, technicianName, equipmentLabel string, date time.Time) error
}

func NewHandler(repo *Repository, equipRepo *equipments.Repository, accessSvc *access.Service) *Handler {
	return &Handler{repo: repo, equips: equipRepo, access: accessSvc, sendEmail: email.SendMaintenanceReminder}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/equipments/:id/maintenance", h.get)
	r.PUT("/equipments/:id/maintenance", h.upsert)
	r.POST("/cron/maintenance-reminders", h.runReminders)
}

func (h *Handler) ownedEquipment(c *gin.Context) (userID, equipmentID int, ok bool) {
	user, okUser := login.CurrentUser(c)
	if !okUser {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return 0, 0, false
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return 0, 0, false
	}
	e, err := h.equips.GetOwned(id, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return 0, 0, false
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Equipo no encontrado"})
		return 0, 0, false
	}
	return user.ID, e.ID, true
}

func (h *Handler) get(c *gin.Context) {
	_, equipmentID, ok := h.ownedEquipment(c)
	if !ok {
		return
	}
	plan, err := h.repo.GetByEquipment(equipmentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": plan})
}

type upsertBody struct {
	NextDate      string `json:"next_date"` // yyyy-mm-dd
	DaysBefore    int    `json:"days_before"`
	NotifyEmail   bool   `json:"notify_email"`
	NotifyMessage bool   `json:"notify_message"`
}

func (h *Handler) upsert(c *gin.Context) {
	userID, equipmentID, ok := h.ownedEquipment(c)
	if !ok {
		return
	}

	if _, err := h.access.CanManageMaintenance(userID); err != nil {
		if access.WriteDenied(c, err) {
			log.Printf("[maintenance][deny] user_id=%d err=%v", userID, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var body upsertBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datos inválidos"})
		return
	}
	nextDate, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(body.NextDate), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fecha inválida"})
		return
	}
	daysBefore := body.DaysBefore
	if daysBefore < 1 {
		daysBefore = 7
	}
	if daysBefore > 60 {
		daysBefore = 60
	}
	if body.NotifyEmail {
		clientEmail, err := h.repo.ClientEmailForEquipment(equipmentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if clientEmail == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "CLIENT_EMAIL_MISSING"})
			return
		}
	}

	plan := Plan{
		EquipmentID:   equipmentID,
		NextDate:      nextDate,
		DaysBefore:    daysBefore,
		NotifyEmail:   body.NotifyEmail,
		NotifyMessage: body.NotifyMessage,
	}
	if err := h.repo.Upsert(&plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[maintenance][saved] user_id=%d equipment_id=%d next_date=%s", userID, equipmentID, body.NextDate)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// normalizeSecret tolerates values pasted with surrounding quotes in the env
// file or the scheduler config.
func normalizeSecret(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return s
}

// runReminders is hit by an external scheduler. Guarded by a shared secret,
// not a session.
func (h *Handler) runReminders(c *gin.Context) {
	secret := normalizeSecret(c.GetHeader("x-cron-secret"))
	expected := normalizeSecret(os.Getenv("CRON_SECRET"))
	// The default secret only works outside release mode; a deployment
	// without CRON_SECRET must not accept a well-known value.
	if expected == "" && gin.Mode() != gin.ReleaseMode {
		expected = "change-me"
	}
	if expected == "" || secret != expected {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED"})
		return
	}

	now := time.Now()
	pending, err := h.repo.Pending(500)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	processed := 0
	for _, p := range pending {
		if !p.DueWithin(now) {
			continue
		}

		// The technician must still be entitled: reminders are a PRO_PLUS
		// feature and lapse with the plan.
		state, err := h.access.Resolve(p.UserID)
		if err != nil {
			log.Printf("[maintenance][cron_error] user_id=%d err=%v", p.UserID, err)
			continue
		}
		if state.Mode != access.ModeFull || state.PlanCode != access.PlanProPlus {
			continue
		}

		allDelivered := true
		if p.NotifyEmail {
			if !h.notifyByEmail(&p) {
				allDelivered = false
			}
		}
		if p.NotifyMessage {
			h.notifyByMessage(&p)
		}
		if allDelivered {
			if err := h.repo.MarkNotified(p.ID, now); err != nil {
				log.Printf("[maintenance][cron_error] plan_id=%d err=%v", p.ID, err)
			}
			processed++
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "processed": processed})
}

// notifyByEmail returns false only on a send failure, so the plan is retried
// on the next run. A missing address is logged and counts as delivered.
func (h *Handler) notifyByEmail(p *pendingPlan) bool {
	if p.ClientEmail == "" {
		_ = h.repo.LogNotification(p.UserID, p.ClientID, p.EquipmentID, "EMAIL", "", "", "SKIPPED", "CLIENT_EMAIL_MISSING")
		return true
	}
	_, body := email.MaintenanceReminderBody(p.ClientName, p.TechnicianName, p.EquipmentLabel, p.NextDate)
	if err := h.sendEmail(p.ClientEmail, p.ClientName, p.TechnicianName, p.EquipmentLabel, p.NextDate); err != nil {
		log.Printf("[maintenance][email_failed] plan_id=%d to=%s err=%v", p.ID, p.ClientEmail, err)
		_ = h.repo.LogNotification(p.UserID, p.ClientID, p.EquipmentID, "EMAIL", p.ClientEmail, body, "FAILED", err.Error())
		return false
	}
	_ = h.repo.LogNotification(p.UserID, p.ClientID, p.EquipmentID, "EMAIL", p.ClientEmail, body, "SENT", "")
	return true
}

// notifyByMessage uses the mock provider: the message is logged, not sent.
func (h *Handler) notifyByMessage(p *pendingPlan) {
	if p.ClientPhone == "" {
		_ = h.repo.LogNotification(p.UserID, p.ClientID, p.EquipmentID, "MESSAGE", "", "", "SKIPPED", "CLIENT_PHONE_MISSING")
		return
	}
	_, body := email.MaintenanceReminderBody(p.ClientName, p.TechnicianName, p.EquipmentLabel, p.NextDate)
	log.Printf("[maintenance][message_mock] plan_id=%d to=%s", p.ID, p.ClientPhone)
	_ = h.repo.LogNotification(p.UserID, p.ClientID, p.EquipmentID, "MESSAGE", p.ClientPhone, body, "SENT", "")
}
