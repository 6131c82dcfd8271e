package clients

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"friopro-backend/access"
	"friopro-backend/login"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo   *Repository
	access *access.Service
}

func NewHandler(repo *Repository, accessSvc *access.Service) *Handler {
	return &Handler{repo: repo, access: accessSvc}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/clients", h.list)
	r.GET("/clients/:id", h.get)
	r.POST("/clients", h.create)
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
	cl, err := h.repo.GetOwned(id, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cliente no encontrado"})
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *Handler) create(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}

	if _, err := h.access.CanCreateClient(user.ID); err != nil {
		if access.WriteDenied(c, err) {
			log.Printf("[clients][deny] user_id=%d err=%v", user.ID, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var cl Client
	if err := c.ShouldBindJSON(&cl); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datos inválidos"})
		return
	}
	cl.Name = strings.TrimSpace(cl.Name)
	if cl.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nombre requerido"})
		return
	}
	cl.UserID = user.ID
	if err := h.repo.Create(&cl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[clients][created] user_id=%d client_id=%d", user.ID, cl.ID)
	c.JSON(http.StatusCreated, cl)
}
