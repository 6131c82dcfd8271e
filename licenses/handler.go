package licenses

import (
	"log"
	"net/http"
	"strconv"

	"friopro-backend/login"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/licenses", h.myLicenses)
	r.GET("/admin/licenses", h.listAll)
	r.PUT("/admin/licenses/:id/status", h.setStatus)
}

func (h *Handler) myLicenses(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}
	list, err := h.repo.ListForUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) listAll(c *gin.Context) {
	if _, ok := login.CurrentAdmin(c); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "solo admin"})
		return
	}
	list, err := h.repo.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// setStatus handles admin suspend/reactivate. Body: { "status": "SUSPENDED" }
func (h *Handler) setStatus(c *gin.Context) {
	admin, ok := login.CurrentAdmin(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "solo admin"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datos inválidos"})
		return
	}
	if err := h.repo.SetStatus(id, body.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[licenses][status] admin_id=%d license_id=%d status=%s", admin.ID, id, body.Status)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
