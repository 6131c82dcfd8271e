package usage

import (
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
	r.GET("/admin/usage", h.recent)
}

func (h *Handler) recent(c *gin.Context) {
	if _, ok := login.CurrentAdmin(c); !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "solo admin"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.repo.Recent(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": events})
}
