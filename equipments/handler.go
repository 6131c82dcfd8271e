package equipments

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"friopro-backend/access"
	"friopro-backend/login"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

type Handler struct {
	repo   *Repository
	access *access.Service
}

func NewHandler(repo *Repository, accessSvc *access.Service) *Handler {
	return &Handler{repo: repo, access: accessSvc}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/equipments", h.list)
	r.GET("/equipments/:id", h.get)
	r.POST("/equipments", h.create)
	r.GET("/equipments/:id/qr", h.qr)
	// Página pública del QR pegado en el equipo; sin sesión.
	r.GET("/equipo/:publicId", h.publicProfile)
}

func (h *Handler) list(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}
	list, err := h.repo.ListByUser(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *Handler) get(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}
	e, err := h.repo.GetOwned(id, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Equipo no encontrado"})
		return
	}
	c.JSON(http.StatusOK, e)
}

type createEquipmentBody struct {
	ClientID   int    `json:"client_id"`
	Type       string `json:"type"`
	CustomType string `json:"custom_type"`
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	Serial     string `json:"serial"`
}

func (h *Handler) create(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}

	if _, err := h.access.CanCreateEquipment(user.ID); err != nil {
		if access.WriteDenied(c, err) {
			log.Printf("[equipments][deny] user_id=%d err=%v", user.ID, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var body createEquipmentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datos inválidos"})
		return
	}
	body.Type = strings.TrimSpace(body.Type)
	body.CustomType = strings.TrimSpace(body.CustomType)
	if body.ClientID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id requerido"})
		return
	}
	if !IsValidType(body.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo de equipo inválido"})
		return
	}
	if body.Type == "OTRO" && body.CustomType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Indicá el tipo de equipo"})
		return
	}

	e := Equipment{
		UserID:     user.ID,
		ClientID:   body.ClientID,
		PublicID:   fmt.Sprintf("eq-%d-%s", user.ID, uuid.NewString()[:8]),
		Type:       body.Type,
		CustomType: body.CustomType,
		Brand:      strings.TrimSpace(body.Brand),
		Model:      strings.TrimSpace(body.Model),
		Serial:     strings.TrimSpace(body.Serial),
	}
	if err := h.repo.Create(&e); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[equipments][created] user_id=%d equipment_id=%d public_id=%s", user.ID, e.ID, e.PublicID)
	c.JSON(http.StatusCreated, e)
}

// qr returns the PNG label to stick on the physical equipment. Requires the
// plan's qr_enabled feature.
func (h *Handler) qr(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}
	state, err := h.access.Resolve(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if state.Mode != access.ModeFull || !state.Features.QrEnabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "READ_ONLY", "state": state})
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return
	}
	e, err := h.repo.GetOwned(id, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Equipo no encontrado"})
		return
	}

	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	png, err := qrcode.Encode(fmt.Sprintf("%s/equipo/%s", base, e.PublicID), qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) publicProfile(c *gin.Context) {
	e, err := h.repo.GetByPublicID(c.Param("publicId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Este QR no corresponde a ningún equipo"})
		return
	}
	ownerName, err := h.repo.OwnerName(e.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	history, err := h.repo.RecentWorkOrders(e.ID, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"equipment": gin.H{
			"public_id": e.PublicID,
			"type":      e.Type,
			"label":     TypeLabel(e.Type, e.CustomType),
			"brand":     e.Brand,
			"model":     e.Model,
		},
		"technician":  ownerName,
		"work_orders": history,
	})
}
