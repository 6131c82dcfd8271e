package workorders

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

var (
	colorPrimary   = [3]int{6, 95, 70}     // Emerald, the app's brand color
	colorTextDark  = [3]int{24, 24, 27}    // Near-black
	colorTextMuted = [3]int{113, 113, 122} // Muted gray
	colorSection   = [3]int{244, 244, 245} // Section background
)

// ReportGenerator renders the service report handed to the client.
type ReportGenerator struct{}

func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

func (g *ReportGenerator) Generate(wo *WorkOrder, technicianName string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Header band
	pdf.SetFillColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(18, 8)
	pdf.CellFormat(0, 8, "FríoPro", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(18)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Orden de trabajo ORD-%04d", wo.ID)), "", 1, "L", false, 0, "")
	pdf.SetY(34)

	g.sectionTitle(pdf, tr, "Servicio")
	g.row(pdf, tr, "Tipo", wo.ServiceType)
	g.row(pdf, tr, "Estado", wo.Status)
	g.row(pdf, tr, "Fecha", wo.CreatedAt.Format("02/01/2006"))
	g.row(pdf, tr, "Técnico", technicianName)

	g.sectionTitle(pdf, tr, "Cliente")
	g.row(pdf, tr, "Nombre", wo.ClientName)
	if wo.ServiceAddress != "" {
		g.row(pdf, tr, "Dirección", wo.ServiceAddress)
	}

	g.sectionTitle(pdf, tr, "Equipo")
	g.row(pdf, tr, "Equipo", wo.EquipmentLabel)

	if len(wo.Symptoms) > 0 {
		g.sectionTitle(pdf, tr, "Síntomas reportados")
		for _, s := range wo.Symptoms {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
			pdf.CellFormat(0, 6, tr("• "+s), "", 1, "L", false, 0, "")
		}
	}

	if wo.Measurements != nil {
		g.sectionTitle(pdf, tr, "Mediciones")
		m := wo.Measurements
		g.measurement(pdf, tr, "Temp. entrada", m.TempIn, "°C")
		g.measurement(pdf, tr, "Temp. salida", m.TempOut, "°C")
		g.measurement(pdf, tr, "Presión alta", m.PressureHigh, "psi")
		g.measurement(pdf, tr, "Presión baja", m.PressureLow, "psi")
		g.measurement(pdf, tr, "Tensión", m.Voltage, "V")
		g.measurement(pdf, tr, "Corriente", m.CurrentAmps, "A")
		if m.Notes != "" {
			g.row(pdf, tr, "Notas", m.Notes)
		}
	}

	if wo.Diagnosis != nil {
		g.sectionTitle(pdf, tr, "Diagnóstico")
		g.paragraph(pdf, tr, wo.Diagnosis.ClientSummary)
		if wo.Diagnosis.Recommendations != "" {
			g.row(pdf, tr, "Recomendaciones", wo.Diagnosis.Recommendations)
		}
		if wo.Diagnosis.Alerts != "" {
			g.row(pdf, tr, "Alertas", wo.Diagnosis.Alerts)
		}
	}

	if wo.Notes != "" {
		g.sectionTitle(pdf, tr, "Observaciones")
		g.paragraph(pdf, tr, wo.Notes)
	}

	// Footer
	pdf.SetY(-26)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Generado por FríoPro el %s", time.Now().Format("02/01/2006 15:04"))), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) sectionTitle(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.Ln(3)
	pdf.SetFillColor(colorSection[0], colorSection[1], colorSection[2])
	pdf.SetTextColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, tr(title), "", 1, "L", true, 0, "")
	pdf.Ln(1)
}

func (g *ReportGenerator) row(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(colorTextMuted[0], colorTextMuted[1], colorTextMuted[2])
	pdf.CellFormat(42, 6, tr(label), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.MultiCell(0, 6, tr(value), "", "L", false)
}

func (g *ReportGenerator) measurement(pdf *fpdf.Fpdf, tr func(string) string, label string, value *float64, unit string) {
	if value == nil {
		return
	}
	g.row(pdf, tr, label, fmt.Sprintf("%.1f %s", *value, unit))
}

func (g *ReportGenerator) paragraph(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	if text == "" {
		return
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(colorTextDark[0], colorTextDark[1], colorTextDark[2])
	pdf.MultiCell(0, 6, tr(text), "", "L", false)
	pdf.Ln(1)
}
