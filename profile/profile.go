package profile

import (
	"database/sql"
	"log"
	"net/http"
	"strings"

	"friopro-backend/licenses"
	"friopro-backend/login"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

var validCurrencies = map[string]bool{
	"ARS": true,
	"USD": true,
	"CLP": true,
	"UYU": true,
	"PYG": true,
	"BOB": true,
	"PEN": true,
	"COP": true,
	"MXN": true,
}

type Handler struct {
	db       *sql.DB
	licenses *licenses.Repository
}

func NewHandler(db *sql.DB, licenseRepo *licenses.Repository) *Handler {
	return &Handler{db: db, licenses: licenseRepo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/profile", h.get)
	r.PUT("/profile", h.update)
	r.PUT("/profile/password", h.changePassword)
}

// get returns the technician's profile with the current license attached, so
// the app settings screen needs a single roundtrip.
func (h *Handler) get(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}
	resp := gin.H{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"role":     user.Role,
		"currency": user.Currency,
	}
	license, err := h.licenses.CurrentForUser(user.ID)
	if err != nil {
		log.Printf("[profile][error] user_id=%d license: %v", user.ID, err)
	}
	if license != nil {
		resp["license"] = license
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateBody struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

func (h *Handler) update(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}
	var body updateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datos inválidos"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if len(name) < 2 || len(name) > 80 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nombre inválido"})
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(body.Currency))
	if currency == "" {
		currency = user.Currency
	}
	if !validCurrencies[currency] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Moneda inválida"})
		return
	}
	if _, err := h.db.Exec("UPDATE users SET name = ?, currency = ? WHERE id = ?", name, currency, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[profile][updated] user_id=%d currency=%s", user.ID, currency)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type passwordBody struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) changePassword(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}
	var body passwordBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datos inválidos"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.CurrentPassword)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Contraseña actual incorrecta"})
		return
	}
	if len(body.NewPassword) < 6 || len(body.NewPassword) > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La contraseña debe tener al menos 6 caracteres"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.db.Exec("UPDATE users SET password_hash = ? WHERE id = ?", string(hash), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[profile][password_changed] user_id=%d", user.ID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
