package payments

import (
	"log"
	"net/http"
	"strings"
	"time"

	"friopro-backend/licenses"
	"friopro-backend/login"
	"friopro-backend/plans"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo     *Repository
	plans    *plans.Repository
	licenses *licenses.Repository
}

func NewHandler(repo *Repository, planRepo *plans.Repository, licenseRepo *licenses.Repository) *Handler {
	return &Handler{repo: repo, plans: planRepo, licenses: licenseRepo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/checkout", h.checkout)
	r.GET("/payments", h.list)
}

type checkoutBody struct {
	PlanCode string `json:"plan_code"`
}

// checkout simulates a paid gateway: records the payment as settled and
// supersedes the user's current license with a one-month license on the
// chosen plan, all in one transaction.
func (h *Handler) checkout(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}
	var body checkoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datos inválidos"})
		return
	}
	code := strings.ToUpper(strings.TrimSpace(body.PlanCode))
	amount, known := priceFor(code)
	if !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PLAN_UNKNOWN"})
		return
	}
	plan, err := h.plans.GetPlanByCode(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if plan == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "PLAN_UNKNOWN"})
		return
	}

	current, err := h.licenses.CurrentForUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if current != nil && current.PlanCode == code && current.Status == licenses.StatusActive {
		c.JSON(http.StatusConflict, gin.H{"error": "ALREADY_ON_PLAN"})
		return
	}

	now := time.Now()
	tx, err := h.repo.db.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	paymentID, err := h.repo.insertTx(tx, user.ID, code, amount)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	licenseID, err := h.licenses.SupersedeTx(tx, user.ID, plan.ID, now, now.AddDate(0, 1, 0))
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Printf("[payments][checkout] user_id=%d plan=%s payment_id=%d license_id=%d", user.ID, code, paymentID, licenseID)
	c.JSON(http.StatusOK, gin.H{
		"payment_id": paymentID,
		"license_id": licenseID,
		"plan_code":  code,
		"amount":     amount,
		"currency":   "ARS",
		"status":     "paid",
	})
}

func (h *Handler) list(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}
	items, err := h.repo.ListByUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
