package access

import (
	"errors"
	"log"
	"net/http"

	"friopro-backend/login"

	"github.com/gin-gonic/gin"
)

// WriteDenied renders a guard failure as 403 with the deny code and the
// resolved state. Returns false when err is not an entitlement denial, so
// callers can treat it as an infrastructure error instead.
func WriteDenied(c *gin.Context, err error) bool {
	var d *Denied
	if !errors.As(err, &d) {
		return false
	}
	c.JSON(http.StatusForbidden, gin.H{"error": string(d.Code), "state": d.State})
	return true
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/access", h.getAccess)
}

// getAccess returns the resolved entitlement state for the token's user.
// Drives the app's plan page and the trial-expired modal.
func (h *Handler) getAccess(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}
	state, err := h.svc.Resolve(user.ID)
	if err != nil {
		log.Printf("[access][error] user_id=%d err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}
