package workorders

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"friopro-backend/access"
	"friopro-backend/login"
	"friopro-backend/migrations"
	"friopro-backend/usage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	repo    *Repository
	access  *access.Service
	usage   *usage.Repository
	ai      AIClient
	reports *ReportGenerator
}

func NewHandler(repo *Repository, accessSvc *access.Service, usageRepo *usage.Repository, ai AIClient) *Handler {
	return &Handler{repo: repo, access: accessSvc, usage: usageRepo, ai: ai, reports: NewReportGenerator()}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/symptom-chips", h.symptomChips)
	r.GET("/workorders", h.list)
	r.GET("/workorders/:id", h.get)
	r.POST("/workorders", h.create)
	r.PUT("/workorders/:id/measurements", h.saveMeasurements)
	r.POST("/workorders/:id/photos", h.addPhoto)
	r.PUT("/workorders/:id/status", h.setStatus)
	r.POST("/workorders/:id/pdf", h.generatePdf)
	r.POST("/workorders/:id/ai", h.callAi)
}

// symptomChips feeds the quick-pick options of the new-order wizard.
func (h *Handler) symptomChips(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": SymptomChips})
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
	_, wo, ok := h.owned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, wo)
}

// owned resolves the authenticated user and their work order, writing the
// error response when either is missing.
func (h *Handler) owned(c *gin.Context) (*migrations.User, *WorkOrder, bool) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return nil, nil, false
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return nil, nil, false
	}
	wo, err := h.repo.GetOwned(id, user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	if wo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "OT no encontrada"})
		return nil, nil, false
	}
	return user, wo, true
}

type createBody struct {
	ClientID       int      `json:"client_id"`
	EquipmentID    int      `json:"equipment_id"`
	ServiceType    string   `json:"service_type"`
	ServiceAddress string   `json:"service_address"`
	Symptoms       []string `json:"symptoms"`
	SymptomOther   string   `json:"symptom_other"`
	Notes          string   `json:"notes"`
}

func (h *Handler) create(c *gin.Context) {
	user, ok := login.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión inválida"})
		return
	}

	state, err := h.access.CanCreateWorkOrder(user.ID)
	if err != nil {
		if access.WriteDenied(c, err) {
			log.Printf("[workorders][deny] user_id=%d err=%v", user.ID, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var body createBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datos inválidos"})
		return
	}
	if body.ServiceType == "" {
		body.ServiceType = "FALLA"
	}
	if !IsValidServiceType(body.ServiceType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo de servicio inválido"})
		return
	}
	if body.ClientID == 0 || body.EquipmentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id y equipment_id requeridos"})
		return
	}

	wo := WorkOrder{
		UserID:         user.ID,
		ClientID:       body.ClientID,
		EquipmentID:    body.EquipmentID,
		ServiceType:    body.ServiceType,
		ServiceAddress: strings.TrimSpace(body.ServiceAddress),
		Symptoms:       NormalizeSymptoms(body.Symptoms, body.SymptomOther),
		Notes:          strings.TrimSpace(body.Notes),
	}
	if err := h.repo.Create(&wo); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Attribute the usage to the license the guard resolved; this is what the
	// next resolution counts against the monthly quota.
	if err := h.usage.Record(state.LicenseID, string(access.EventWorkOrderCreated), map[string]interface{}{"work_order_id": wo.ID}); err != nil {
		log.Printf("[workorders][usage_error] user_id=%d work_order_id=%d err=%v", user.ID, wo.ID, err)
	}
	log.Printf("[workorders][created] user_id=%d work_order_id=%d license_id=%d", user.ID, wo.ID, state.LicenseID)
	c.JSON(http.StatusCreated, wo)
}

func (h *Handler) saveMeasurements(c *gin.Context) {
	_, wo, ok := h.owned(c)
	if !ok {
		return
	}
	if wo.Status == StatusCompleted || wo.Status == StatusCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "La OT está cerrada y no se puede editar"})
		return
	}
	var m Measurements
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datos inválidos"})
		return
	}
	if err := h.repo.UpsertMeasurements(wo.ID, &m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) addPhoto(c *gin.Context) {
	_, wo, ok := h.owned(c)
	if !ok {
		return
	}
	if wo.Status == StatusCompleted || wo.Status == StatusCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "La OT está cerrada y no se puede editar"})
		return
	}
	var body struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url requerida"})
		return
	}
	if err := h.repo.AddPhoto(wo.ID, strings.TrimSpace(body.URL)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

// setStatus applies the closing rules: COMPLETED needs measurements, at
// least two evidence photos, and a PDF report (generated here if missing).
func (h *Handler) setStatus(c *gin.Context) {
	user, wo, ok := h.owned(c)
	if !ok {
		return
	}
	var body struct {
		Next string `json:"next"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "datos inválidos"})
		return
	}
	next := body.Next
	if next != StatusInProgress && next != StatusCancelled && next != StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Estado inválido"})
		return
	}

	if next == StatusCompleted {
		if wo.Measurements == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "No podés cerrar sin mediciones"})
			return
		}
		if len(wo.Photos) < 2 {
			c.JSON(http.StatusConflict, gin.H{"error": "No podés cerrar sin mínimo 2 fotos"})
			return
		}
		if wo.PdfReport == nil {
			if _, err := h.doGeneratePdf(c, user.ID, wo); err != nil {
				return // response already written
			}
		}
	}

	if err := h.repo.SetStatus(wo.ID, next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[workorders][status] user_id=%d work_order_id=%d status=%s", user.ID, wo.ID, next)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) generatePdf(c *gin.Context) {
	user, wo, ok := h.owned(c)
	if !ok {
		return
	}
	fileURL, err := h.doGeneratePdf(c, user.ID, wo)
	if err != nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "file_url": fileURL})
}

// doGeneratePdf runs the guard, renders and stores the report, and records
// the PDF_GENERATED event only on first generation (regenerations are free,
// as upserting the same report does not add billable value).
func (h *Handler) doGeneratePdf(c *gin.Context, userID int, wo *WorkOrder) (string, error) {
	state, err := h.access.CanGeneratePdf(userID)
	if err != nil {
		if access.WriteDenied(c, err) {
			log.Printf("[workorders][pdf_deny] user_id=%d work_order_id=%d err=%v", userID, wo.ID, err)
			return "", err
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", err
	}

	technician := ""
	if u := migrations.GetUserByID(userID); u != nil {
		technician = u.Name
	}
	data, err := h.reports.Generate(wo, technician)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", err
	}

	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	reportsDir := filepath.Join(dir, "reports")
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", err
	}
	name := fmt.Sprintf("ord-%04d-%s.pdf", wo.ID, uuid.NewString()[:8])
	if err := os.WriteFile(filepath.Join(reportsDir, name), data, 0o644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", err
	}

	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	fileURL := fmt.Sprintf("%s/uploads/reports/%s", base, name)

	firstGeneration := wo.PdfReport == nil
	if err := h.repo.UpsertPdfReport(wo.ID, fileURL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", err
	}
	if firstGeneration {
		if err := h.usage.Record(state.LicenseID, string(access.EventPdfGenerated), map[string]interface{}{"work_order_id": wo.ID}); err != nil {
			log.Printf("[workorders][usage_error] user_id=%d work_order_id=%d err=%v", userID, wo.ID, err)
		}
	}
	log.Printf("[workorders][pdf_ok] user_id=%d work_order_id=%d first=%v", userID, wo.ID, firstGeneration)
	return fileURL, nil
}

func (h *Handler) callAi(c *gin.Context) {
	user, wo, ok := h.owned(c)
	if !ok {
		return
	}
	state, err := h.access.CanCallAi(user.ID)
	if err != nil {
		if access.WriteDenied(c, err) {
			log.Printf("[workorders][ai_deny] user_id=%d work_order_id=%d err=%v", user.ID, wo.ID, err)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	diag, err := h.ai.Diagnose(c.Request.Context(), wo)
	if err != nil {
		log.Printf("[workorders][ai_error] user_id=%d work_order_id=%d err=%v", user.ID, wo.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "No se pudo generar el diagnóstico"})
		return
	}
	if err := h.repo.UpsertDiagnosis(wo.ID, diag); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := h.usage.Record(state.LicenseID, string(access.EventAiCall), map[string]interface{}{"work_order_id": wo.ID}); err != nil {
		log.Printf("[workorders][usage_error] user_id=%d work_order_id=%d err=%v", user.ID, wo.ID, err)
	}
	log.Printf("[workorders][ai_ok] user_id=%d work_order_id=%d license_id=%d", user.ID, wo.ID, state.LicenseID)
	c.JSON(http.StatusOK, diag)
}
