package workorders

import (
	"bytes"
	"context"
	"reflect"
	"testing"
	"time"
)

func TestNormalizeSymptoms(t *testing.T) {
	cases := []struct {
		name  string
		chips []string
		other string
		want  []string
	}{
		{
			name:  "dedupe and trim",
			chips: []string{" No enfría ", "Ruido", "No enfría", ""},
			other: "  hace escarcha  ",
			want:  []string{"No enfría", "Ruido", "hace escarcha"},
		},
		{
			name:  "other duplicated with chip",
			chips: []string{"Gotea"},
			other: "Gotea",
			want:  []string{"Gotea"},
		},
		{
			name:  "all empty",
			chips: []string{"", "   "},
			other: "",
			want:  []string{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeSymptoms(tc.chips, tc.other)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseDiagnosis(t *testing.T) {
	text := `RESUMEN: El equipo presenta baja carga de gas refrigerante.

RECOMENDACIONES: Revisar fugas en las conexiones y recargar gas.

ALERTAS: El compresor trabaja forzado; no demorar la reparación.`

	d := parseDiagnosis(text)
	if d.ClientSummary != "El equipo presenta baja carga de gas refrigerante." {
		t.Fatalf("summary = %q", d.ClientSummary)
	}
	if d.Recommendations != "Revisar fugas en las conexiones y recargar gas." {
		t.Fatalf("recommendations = %q", d.Recommendations)
	}
	if d.Alerts != "El compresor trabaja forzado; no demorar la reparación." {
		t.Fatalf("alerts = %q", d.Alerts)
	}
}

func TestParseDiagnosisWithoutMarkers(t *testing.T) {
	d := parseDiagnosis("Texto libre sin secciones")
	if d.ClientSummary != "Texto libre sin secciones" {
		t.Fatalf("summary = %q", d.ClientSummary)
	}
	if d.Recommendations != "" || d.Alerts != "" {
		t.Fatalf("got %+v, want empty recommendations/alerts", d)
	}
}

func TestStubAIClient(t *testing.T) {
	d, err := (&StubAIClient{}).Diagnose(context.Background(), &WorkOrder{})
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if d.ClientSummary == "" || d.Recommendations == "" || d.Alerts == "" {
		t.Fatalf("stub diagnosis incomplete: %+v", d)
	}
}

func TestReportGeneratorProducesPdf(t *testing.T) {
	temp := 4.5
	wo := &WorkOrder{
		ID:             12,
		Status:         StatusInProgress,
		ServiceType:    "FALLA",
		ClientName:     "Panadería San Juan",
		EquipmentLabel: "HELADERA • Gafa M300",
		Symptoms:       []string{"No enfría", "Ruido"},
		Notes:          "Se detectó pérdida en la válvula.",
		CreatedAt:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Measurements:   &Measurements{TempIn: &temp},
		Diagnosis: &Diagnosis{
			ClientSummary:   "Pérdida de gas refrigerante.",
			Recommendations: "Recargar gas y sellar la válvula.",
		},
	}
	data, err := NewReportGenerator().Generate(wo, "Carlos Técnico")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF (%d bytes)", len(data))
	}
}
