package workorders

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNewAIClientDefaultsModel(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_MODEL", "")

	client := NewAIClient()
	c, ok := client.(*openAIClient)
	if !ok {
		t.Fatalf("expected openAIClient with an API key set, got %T", client)
	}
	if c.model != "gpt-4o-mini" {
		t.Errorf("default model = %q, want gpt-4o-mini", c.model)
	}

	t.Setenv("OPENAI_MODEL", "gpt-4o")
	c = NewAIClient().(*openAIClient)
	if c.model != "gpt-4o" {
		t.Errorf("model override = %q, want gpt-4o", c.model)
	}
}

func TestNewAIClientStubWithoutKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, ok := NewAIClient().(*StubAIClient); !ok {
		t.Fatal("expected stub client without an API key")
	}
}

func TestSymptomChipsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &Handler{}
	r.GET("/symptom-chips", h.symptomChips)

	req := httptest.NewRequest(http.MethodGet, "/symptom-chips", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != len(SymptomChips) {
		t.Fatalf("got %d chips, want %d", len(resp.Data), len(SymptomChips))
	}
	if resp.Data[0] != "No enfría" {
		t.Errorf("first chip = %q, want No enfría", resp.Data[0])
	}
}
