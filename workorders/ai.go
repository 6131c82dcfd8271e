package workorders

import (
	"context"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const defaultDiagnosisModel = "gpt-4o-mini"

// AIClient produces the diagnosis block of a work order.
type AIClient interface {
	Diagnose(ctx context.Context, wo *WorkOrder) (*Diagnosis, error)
}

// NewAIClient returns the OpenAI-backed client, or the stub when no API key
// is configured (local dev and CI run without one).
func NewAIClient() AIClient {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return &StubAIClient{}
	}
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = defaultDiagnosisModel
	}
	return &openAIClient{api: openai.NewClient(key), model: model}
}

type openAIClient struct {
	api   *openai.Client
	model string
}

func (c *openAIClient) Diagnose(ctx context.Context, wo *WorkOrder) (*Diagnosis, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: diagnosisSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildDiagnosisPrompt(wo)},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion")
	}
	return parseDiagnosis(resp.Choices[0].Message.Content), nil
}

const diagnosisSystemPrompt = `Sos un asistente para técnicos de refrigeración. ` +
	`Respondé SIEMPRE en tres secciones con estos encabezados exactos: ` +
	`RESUMEN:, RECOMENDACIONES:, ALERTAS:. Lenguaje claro para el cliente final, sin tecnicismos innecesarios.`

func buildDiagnosisPrompt(wo *WorkOrder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Equipo: %s\nTipo de servicio: %s\n", wo.EquipmentLabel, wo.ServiceType)
	if len(wo.Symptoms) > 0 {
		fmt.Fprintf(&b, "Síntomas: %s\n", strings.Join(wo.Symptoms, ", "))
	}
	if m := wo.Measurements; m != nil {
		b.WriteString("Mediciones:\n")
		writeMeasurement(&b, "temperatura de entrada", m.TempIn, "°C")
		writeMeasurement(&b, "temperatura de salida", m.TempOut, "°C")
		writeMeasurement(&b, "presión alta", m.PressureHigh, "psi")
		writeMeasurement(&b, "presión baja", m.PressureLow, "psi")
		writeMeasurement(&b, "tensión", m.Voltage, "V")
		writeMeasurement(&b, "corriente", m.CurrentAmps, "A")
	}
	if wo.Notes != "" {
		fmt.Fprintf(&b, "Notas del técnico: %s\n", wo.Notes)
	}
	return b.String()
}

func writeMeasurement(b *strings.Builder, label string, value *float64, unit string) {
	if value == nil {
		return
	}
	fmt.Fprintf(b, "- %s: %.1f %s\n", label, *value, unit)
}

// parseDiagnosis splits the completion into the three expected sections.
// Anything before the first marker lands in the summary.
func parseDiagnosis(text string) *Diagnosis {
	d := &Diagnosis{}
	rest := text
	if i := strings.Index(rest, "ALERTAS:"); i >= 0 {
		d.Alerts = strings.TrimSpace(rest[i+len("ALERTAS:"):])
		rest = rest[:i]
	}
	if i := strings.Index(rest, "RECOMENDACIONES:"); i >= 0 {
		d.Recommendations = strings.TrimSpace(rest[i+len("RECOMENDACIONES:"):])
		rest = rest[:i]
	}
	rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), "RESUMEN:"))
	d.ClientSummary = strings.TrimSpace(rest)
	return d
}

// StubAIClient mirrors the placeholder output used before the integration
// was wired; handy for tests and keyless environments.
type StubAIClient struct{}

func (s *StubAIClient) Diagnose(ctx context.Context, wo *WorkOrder) (*Diagnosis, error) {
	return &Diagnosis{
		ClientSummary:   "(stub) Resumen generado por IA",
		Recommendations: "(stub) Recomendaciones",
		Alerts:          "(stub) Alertas",
	}, nil
}
