package workorders

import (
	"strings"
	"time"
)

const (
	StatusDraft      = "DRAFT"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"
)

func IsValidServiceType(t string) bool {
	return t == "FALLA" || t == "MANTENIMIENTO" || t == "INSTALACION"
}

// SymptomChips are the quick-pick options in the new-order wizard.
var SymptomChips = []string{
	"No enfría",
	"No prende",
	"Ruido",
	"Pérdida de gas",
	"Congela",
	"Gotea",
	"Olor",
	"Corta/Arranca",
}

type WorkOrder struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	ClientID       int       `json:"client_id"`
	EquipmentID    int       `json:"equipment_id"`
	Status         string    `json:"status"`
	ServiceType    string    `json:"service_type"`
	ServiceAddress string    `json:"service_address,omitempty"`
	Symptoms       []string  `json:"symptoms,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Measurements *Measurements `json:"measurements,omitempty"`
	Photos       []Photo       `json:"photos,omitempty"`
	PdfReport    *PdfReport    `json:"pdf_report,omitempty"`
	Diagnosis    *Diagnosis    `json:"diagnosis,omitempty"`

	ClientName     string `json:"client_name,omitempty"`
	EquipmentLabel string `json:"equipment_label,omitempty"`
}

type Measurements struct {
	TempIn       *float64 `json:"temp_in,omitempty"`
	TempOut      *float64 `json:"temp_out,omitempty"`
	PressureHigh *float64 `json:"pressure_high,omitempty"`
	PressureLow  *float64 `json:"pressure_low,omitempty"`
	Voltage      *float64 `json:"voltage,omitempty"`
	CurrentAmps  *float64 `json:"current_amps,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

type Photo struct {
	ID        int       `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type PdfReport struct {
	ID        int       `json:"id"`
	FileURL   string    `json:"file_url"`
	CreatedAt time.Time `json:"created_at"`
}

type Diagnosis struct {
	ClientSummary   string `json:"ai_client_summary,omitempty"`
	Recommendations string `json:"ai_recommendations,omitempty"`
	Alerts          string `json:"ai_alerts,omitempty"`
}

// NormalizeSymptoms dedupes and trims the selected chips plus the free-text
// "other" field, preserving first-seen order.
func NormalizeSymptoms(chips []string, other string) []string {
	seen := map[string]bool{}
	out := []string{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, s := range chips {
		add(s)
	}
	add(other)
	return out
}
