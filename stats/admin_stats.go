package stats

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"friopro-backend/login"
	"friopro-backend/usage"

	"github.com/gin-gonic/gin"
)

// AdminStatsResponse is the payload for the admin dashboard.
type AdminStatsResponse struct {
	Users      UserStats      `json:"users"`
	Licenses   LicenseStats   `json:"licenses"`
	Activity   ActivityStats  `json:"activity"`
	Financial  FinancialStats `json:"financial"`
	UsageMonth map[string]int `json:"usage_this_month"`
}

type UserStats struct {
	Total        int `json:"total"`
	NewThisMonth int `json:"new_this_month"`
}

type LicenseStats struct {
	Active    int            `json:"active"`
	Suspended int            `json:"suspended"`
	Expired   int            `json:"expired"`
	ByPlan    map[string]int `json:"by_plan"`
}

type ActivityStats struct {
	TotalWorkOrders     int `json:"total_work_orders"`
	WorkOrdersThisMonth int `json:"work_orders_this_month"`
	TotalClients        int `json:"total_clients"`
	TotalEquipments     int `json:"total_equipments"`
}

type FinancialStats struct {
	TotalRevenue   float64 `json:"total_revenue"`
	MonthlyRevenue float64 `json:"monthly_revenue"`
	Payments       int     `json:"payments"`
}

type Handler struct {
	db    *sql.DB
	usage *usage.Repository
}

func NewHandler(db *sql.DB, usageRepo *usage.Repository) *Handler {
	return &Handler{db: db, usage: usageRepo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/admin/stats", h.getAdminStats)
}

func (h *Handler) getAdminStats(c *gin.Context) {
	if _, ok := login.CurrentAdmin(c); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Acceso denegado: se requiere rol SUPER_ADMIN"})
		return
	}

	log.Printf("[stats][admin] fetching dashboard statistics")

	usageMonth, err := h.usage.CountThisMonthByType(time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response := AdminStatsResponse{
		Users:      h.userStats(),
		Licenses:   h.licenseStats(),
		Activity:   h.activityStats(),
		Financial:  h.financialStats(),
		UsageMonth: usageMonth,
	}
	c.JSON(http.StatusOK, gin.H{"data": response})
}

func (h *Handler) userStats() UserStats {
	s := UserStats{}
	h.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&s.Total)
	h.db.QueryRow(`
		SELECT COUNT(*)
		FROM users
		WHERE created_at >= DATE_FORMAT(NOW(), '%Y-%m-01')
	`).Scan(&s.NewThisMonth)
	return s
}

func (h *Handler) licenseStats() LicenseStats {
	s := LicenseStats{ByPlan: map[string]int{}}
	h.db.QueryRow("SELECT COUNT(*) FROM licenses WHERE active = 1 AND status = 'ACTIVE' AND expires_at > NOW()").Scan(&s.Active)
	h.db.QueryRow("SELECT COUNT(*) FROM licenses WHERE active = 1 AND status = 'SUSPENDED'").Scan(&s.Suspended)
	h.db.QueryRow("SELECT COUNT(*) FROM licenses WHERE active = 1 AND (status = 'EXPIRED' OR expires_at <= NOW())").Scan(&s.Expired)

	rows, err := h.db.Query(`
		SELECT p.code, COUNT(*)
		FROM licenses l
		JOIN plans p ON p.id = l.plan_id
		WHERE l.active = 1
		GROUP BY p.code
	`)
	if err != nil {
		log.Printf("[stats][error] licenses by plan: %v", err)
		return s
	}
	defer rows.Close()
	for rows.Next() {
		var code string
		var n int
		if err := rows.Scan(&code, &n); err != nil {
			continue
		}
		s.ByPlan[code] = n
	}
	return s
}

func (h *Handler) activityStats() ActivityStats {
	s := ActivityStats{}
	h.db.QueryRow("SELECT COUNT(*) FROM work_orders").Scan(&s.TotalWorkOrders)
	h.db.QueryRow(`
		SELECT COUNT(*)
		FROM work_orders
		WHERE created_at >= DATE_FORMAT(NOW(), '%Y-%m-01')
	`).Scan(&s.WorkOrdersThisMonth)
	h.db.QueryRow("SELECT COUNT(*) FROM clients").Scan(&s.TotalClients)
	h.db.QueryRow("SELECT COUNT(*) FROM equipments").Scan(&s.TotalEquipments)
	return s
}

func (h *Handler) financialStats() FinancialStats {
	s := FinancialStats{}
	h.db.QueryRow("SELECT IFNULL(SUM(amount), 0) FROM payments WHERE status = 'paid'").Scan(&s.TotalRevenue)
	h.db.QueryRow(`
		SELECT IFNULL(SUM(amount), 0)
		FROM payments
		WHERE status = 'paid'
		  AND created_at >= DATE_FORMAT(NOW(), '%Y-%m-01')
	`).Scan(&s.MonthlyRevenue)
	h.db.QueryRow("SELECT COUNT(*) FROM payments").Scan(&s.Payments)
	return s
}
