package maintenance

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"friopro-backend/access"

	"github.com/gin-gonic/gin"
)

func TestDueWithin(t *testing.T) {
	today := time.Date(2025, 3, 10, 15, 30, 0, 0, time.Local)

	cases := []struct {
		name       string
		nextDate   time.Time
		daysBefore int
		want       bool
	}{
		{"today", time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local), 7, true},
		{"last day of window", time.Date(2025, 3, 17, 0, 0, 0, 0, time.Local), 7, true},
		{"one past window", time.Date(2025, 3, 18, 0, 0, 0, 0, time.Local), 7, false},
		{"yesterday (overdue)", time.Date(2025, 3, 9, 0, 0, 0, 0, time.Local), 7, false},
		{"narrow window", time.Date(2025, 3, 11, 0, 0, 0, 0, time.Local), 1, true},
		{"narrow window miss", time.Date(2025, 3, 12, 0, 0, 0, 0, time.Local), 1, false},
	}
	for _, tc := range cases {
		p := Plan{NextDate: tc.nextDate, DaysBefore: tc.daysBefore}
		if got := p.DueWithin(today); got != tc.want {
			t.Errorf("%s: DueWithin=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDueWithinIgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2025, 3, 10, 23, 59, 0, 0, time.Local)
	p := Plan{NextDate: time.Date(2025, 3, 10, 1, 0, 0, 0, time.Local), DaysBefore: 3}
	if !p.DueWithin(today) {
		t.Fatal("a plan due today should be in the window regardless of the hour")
	}
}

type fakeStore struct {
	pending []pendingPlan
	marked  []int
	logged  []string
}

func (f *fakeStore) GetByEquipment(equipmentID int) (*Plan, error)           { return nil, nil }
func (f *fakeStore) Upsert(p *Plan) error                                    { return nil }
func (f *fakeStore) ClientEmailForEquipment(equipmentID int) (string, error) { return "", nil }
func (f *fakeStore) Pending(limit int) ([]pendingPlan, error)                { return f.pending, nil }

func (f *fakeStore) MarkNotified(id int, at time.Time) error {
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeStore) LogNotification(userID int, clientID, equipmentID int, channel, to, content, status, errMsg string) error {
	f.logged = append(f.logged, status)
	return nil
}

type fakeEntitlements struct {
	state access.AccessState
}

func (f *fakeEntitlements) Resolve(userID int) (access.AccessState, error) { return f.state, nil }
func (f *fakeEntitlements) CanManageMaintenance(userID int) (*access.AccessState, error) {
	return &f.state, nil
}

func duePlan(id int, clientEmail string) pendingPlan {
	return pendingPlan{
		Plan:           Plan{ID: id, EquipmentID: id, NextDate: time.Now(), DaysBefore: 7, NotifyEmail: true},
		UserID:         1,
		TechnicianName: "Tec",
		ClientID:       id,
		ClientName:     "Cliente",
		ClientEmail:    clientEmail,
		EquipmentLabel: "HELADERA • Marca",
	}
}

func reminderRequest(secret string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/cron/maintenance-reminders", nil)
	req.Header.Set("x-cron-secret", secret)
	return req
}

func TestRunRemindersCountsOnlyDelivered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("CRON_SECRET", "s3cret")

	store := &fakeStore{pending: []pendingPlan{duePlan(1, "ok@test.com"), duePlan(2, "falla@test.com")}}
	h := &Handler{
		repo:   store,
		access: &fakeEntitlements{state: access.AccessState{Mode: access.ModeFull, PlanCode: access.PlanProPlus}},
		sendEmail: func(to, clientName, technicianName, equipmentLabel string, date time.Time) error {
			if to == "falla@test.com" {
				return errors.New("smtp down")
			}
			return nil
		},
	}
	r := gin.New()
	r.POST("/cron/maintenance-reminders", h.runReminders)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, reminderRequest("s3cret"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Processed int `json:"processed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Processed != 1 {
		t.Errorf("processed = %d, want 1 (failed sends are retried, not counted)", resp.Processed)
	}
	if len(store.marked) != 1 || store.marked[0] != 1 {
		t.Errorf("marked = %v, want only plan 1", store.marked)
	}
}

func TestRunRemindersSkipsLapsedPlan(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("CRON_SECRET", "s3cret")

	store := &fakeStore{pending: []pendingPlan{duePlan(1, "ok@test.com")}}
	h := &Handler{
		repo:   store,
		access: &fakeEntitlements{state: access.AccessState{Mode: access.ModeFull, PlanCode: access.PlanPro}},
		sendEmail: func(to, clientName, technicianName, equipmentLabel string, date time.Time) error {
			t.Error("no email expected for a technician no longer on PRO_PLUS")
			return nil
		},
	}
	r := gin.New()
	r.POST("/cron/maintenance-reminders", h.runReminders)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, reminderRequest("s3cret"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(store.marked) != 0 {
		t.Errorf("marked = %v, want none", store.marked)
	}
}

func TestRunRemindersRejectsDefaultSecretInRelease(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	defer gin.SetMode(gin.TestMode)
	t.Setenv("CRON_SECRET", "")

	h := &Handler{repo: &fakeStore{}, access: &fakeEntitlements{}}
	r := gin.New()
	r.POST("/cron/maintenance-reminders", h.runReminders)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, reminderRequest("change-me"))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without CRON_SECRET in release mode, got %d", w.Code)
	}
}

func TestNormalizeSecret(t *testing.T) {
	for in, want := range map[string]string{
		"  abc ":   "abc",
		`"abc"`:    "abc",
		"'abc'":    "abc",
		"change-me": "change-me",
		"":          "",
	} {
		if got := normalizeSecret(in); got != want {
			t.Errorf("normalizeSecret(%q)=%q, want %q", in, got, want)
		}
	}
}
