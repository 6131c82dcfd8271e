package access

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

// fakeStore implementa Store para tests
type fakeStore struct {
	createdAt  time.Time
	license    *License
	licenseErr error
	countErr   error
	counts     map[EventType]int
	clients    int
	equipments int
}

func (f *fakeStore) GetUserCreatedAt(userID int) (time.Time, error) {
	return f.createdAt, nil
}

func (f *fakeStore) CurrentLicense(userID int) (*License, error) {
	return f.license, f.licenseErr
}

func (f *fakeStore) CountUsageEvents(licenseID int, typ EventType, from, to time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.counts[typ], nil
}

func (f *fakeStore) CountClients(userID int) (int, error)    { return f.clients, nil }
func (f *fakeStore) CountEquipments(userID int) (int, error) { return f.equipments, nil }

func newTestService(store *fakeStore, now time.Time) *Service {
	s := NewService(store)
	s.now = func() time.Time { return now }
	return s
}

func activeLicense(code PlanCode, maxWO int, now time.Time) *License {
	return &License{
		ID:        7,
		Status:    LicenseActive,
		StartsAt:  now.AddDate(0, 0, -1),
		ExpiresAt: now.AddDate(1, 0, 0),
		Plan:      Plan{ID: 1, Code: code, Name: string(code), MaxWorkOrdersPerMonth: maxWO},
	}
}

func TestResolveNoLicense(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := newTestService(&fakeStore{createdAt: now.AddDate(0, 0, -5)}, now)

	state, err := svc.Resolve(1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if state.Mode != ModeReadOnly || state.Reason != ReasonNoLicense {
		t.Fatalf("got mode=%s reason=%s, want READ_ONLY/NO_LICENSE", state.Mode, state.Reason)
	}
}

func TestResolveSuspendedWinsOverExpiry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lic := activeLicense(PlanPro, 200, now)
	lic.Status = LicenseSuspended
	// Suspensión gana aunque la fecha de expiración ya pasó
	lic.ExpiresAt = now.AddDate(0, -2, 0)
	svc := newTestService(&fakeStore{createdAt: now.AddDate(-1, 0, 0), license: lic}, now)

	state, err := svc.Resolve(1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if state.Reason != ReasonLicenseSuspended {
		t.Fatalf("got reason=%s, want LICENSE_SUSPENDED", state.Reason)
	}
}

func TestResolveExpiredByDateDespiteActiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lic := activeLicense(PlanPro, 200, now)
	lic.ExpiresAt = now.Add(-time.Minute)
	svc := newTestService(&fakeStore{createdAt: now.AddDate(-1, 0, 0), license: lic}, now)

	state, err := svc.Resolve(1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if state.Reason != ReasonLicenseExpired {
		t.Fatalf("got reason=%s, want LICENSE_EXPIRED", state.Reason)
	}
}

func TestResolveTrialBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)

	t.Run("day 31 expired", func(t *testing.T) {
		created := now.AddDate(0, 0, -31)
		lic := activeLicense(PlanFree, 15, now)
		svc := newTestService(&fakeStore{createdAt: created, license: lic}, now)

		state, err := svc.Resolve(1)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if state.Reason != ReasonTrialExpired {
			t.Fatalf("got reason=%s, want TRIAL_EXPIRED", state.Reason)
		}
		if state.Trial == nil || state.Trial.DaysRemaining != 0 {
			t.Fatalf("got trial=%+v, want days_remaining=0", state.Trial)
		}
		wantExpiry := created.Add(30 * 24 * time.Hour)
		if !state.Trial.ExpiresAt.Equal(wantExpiry) {
			t.Fatalf("got expires_at=%v, want %v", state.Trial.ExpiresAt, wantExpiry)
		}
	})

	t.Run("day 29 still valid", func(t *testing.T) {
		created := now.AddDate(0, 0, -29)
		lic := activeLicense(PlanFree, 15, now)
		svc := newTestService(&fakeStore{createdAt: created, license: lic, counts: map[EventType]int{}}, now)

		state, err := svc.Resolve(1)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if state.Mode != ModeFull {
			t.Fatalf("got mode=%s reason=%s, want FULL", state.Mode, state.Reason)
		}
		if state.Trial == nil || state.Trial.DaysRemaining != 1 {
			t.Fatalf("got trial=%+v, want days_remaining=1", state.Trial)
		}
	})

	t.Run("expiry instant itself still valid", func(t *testing.T) {
		created := now.Add(-30 * 24 * time.Hour)
		lic := activeLicense(PlanFree, 15, now)
		svc := newTestService(&fakeStore{createdAt: created, license: lic, counts: map[EventType]int{}}, now)

		state, err := svc.Resolve(1)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if state.Mode != ModeFull {
			t.Fatalf("got mode=%s reason=%s, want FULL at exact expiry", state.Mode, state.Reason)
		}
	})
}

func TestResolveWorkOrderLimit(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	lic := activeLicense(PlanPro, 200, now)

	t.Run("at limit blocked", func(t *testing.T) {
		store := &fakeStore{
			createdAt: now.AddDate(-1, 0, 0),
			license:   lic,
			counts:    map[EventType]int{EventWorkOrderCreated: 200},
		}
		state, err := newTestService(store, now).Resolve(1)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if state.Reason != ReasonWorkOrdersLimit {
			t.Fatalf("got reason=%s, want WORKORDERS_LIMIT_REACHED", state.Reason)
		}
		if state.Details != "200/200" {
			t.Fatalf("got details=%q, want 200/200", state.Details)
		}
	})

	t.Run("one below limit allowed", func(t *testing.T) {
		store := &fakeStore{
			createdAt: now.AddDate(-1, 0, 0),
			license:   lic,
			counts:    map[EventType]int{EventWorkOrderCreated: 199},
		}
		state, err := newTestService(store, now).Resolve(1)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if state.Mode != ModeFull {
			t.Fatalf("got mode=%s reason=%s, want FULL", state.Mode, state.Reason)
		}
		if state.Usage.WorkOrders != 199 {
			t.Fatalf("got workorders=%d, want 199", state.Usage.WorkOrders)
		}
	})
}

func TestResolveFreshFreeUser(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		createdAt: now,
		license:   activeLicense(PlanFree, 15, now),
		counts:    map[EventType]int{},
	}
	state, err := newTestService(store, now).Resolve(1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if state.Mode != ModeFull || state.PlanCode != PlanFree {
		t.Fatalf("got mode=%s plan=%s, want FULL/FREE", state.Mode, state.PlanCode)
	}
	if *state.Usage != (Usage{}) {
		t.Fatalf("got usage=%+v, want all zero", state.Usage)
	}
	if state.Trial == nil || state.Trial.DaysRemaining != 30 {
		t.Fatalf("got trial=%+v, want days_remaining=30", state.Trial)
	}
	if *state.Features != (Features{}) {
		t.Fatalf("got features=%+v, want all disabled on FREE", state.Features)
	}
	if state.Limits.MaxClients != 2 || state.Limits.MaxEquipments != 2 {
		t.Fatalf("got limits=%+v, want FREE ceilings of 2", state.Limits)
	}
}

func TestResolvePaidPlanCarriesNoTrial(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		createdAt: now.AddDate(0, 0, -5),
		license:   activeLicense(PlanProPlus, 2000, now),
		counts:    map[EventType]int{},
	}
	state, err := newTestService(store, now).Resolve(1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if state.Mode != ModeFull {
		t.Fatalf("got mode=%s, want FULL", state.Mode)
	}
	if state.Trial != nil {
		t.Fatalf("got trial=%+v, want none on PRO_PLUS", state.Trial)
	}
	if !state.Features.AiEnabled || state.Limits.MaxAiCallsPerMonth != 10 {
		t.Fatalf("got features=%+v limits=%+v, want PRO_PLUS ai", state.Features, state.Limits)
	}
}

func TestResolveIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		createdAt: now.AddDate(0, 0, -3),
		license:   activeLicense(PlanFree, 15, now),
		counts:    map[EventType]int{EventWorkOrderCreated: 4},
	}
	svc := newTestService(store, now)
	first, err := svc.Resolve(1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := svc.Resolve(1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolutions differ:\n%+v\n%+v", first, second)
	}
}

func TestResolveStoreErrorPropagates(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	boom := errors.New("mysql is down")
	svc := newTestService(&fakeStore{createdAt: now, licenseErr: boom}, now)

	if _, err := svc.Resolve(1); !errors.Is(err, boom) {
		t.Fatalf("got err=%v, want the store error unchanged", err)
	}

	store := &fakeStore{createdAt: now, license: activeLicense(PlanPro, 200, now), countErr: boom}
	if _, err := newTestService(store, now).Resolve(1); !errors.Is(err, boom) {
		t.Fatalf("got err=%v, want the count error unchanged", err)
	}
}

func denyCode(t *testing.T, err error) DenyCode {
	t.Helper()
	var d *Denied
	if !errors.As(err, &d) {
		t.Fatalf("got err=%v, want *Denied", err)
	}
	return d.Code
}

func TestCanGeneratePdf(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("free plan denied as read only", func(t *testing.T) {
		store := &fakeStore{createdAt: now, license: activeLicense(PlanFree, 15, now), counts: map[EventType]int{}}
		_, err := newTestService(store, now).CanGeneratePdf(1)
		if code := denyCode(t, err); code != DenyReadOnly {
			t.Fatalf("got code=%s, want READ_ONLY", code)
		}
	})

	t.Run("pro under limit", func(t *testing.T) {
		store := &fakeStore{
			createdAt: now.AddDate(-1, 0, 0),
			license:   activeLicense(PlanPro, 200, now),
			counts:    map[EventType]int{EventPdfGenerated: 19},
		}
		state, err := newTestService(store, now).CanGeneratePdf(1)
		if err != nil {
			t.Fatalf("CanGeneratePdf: %v", err)
		}
		if state.LicenseID != 7 {
			t.Fatalf("got license_id=%d, want 7", state.LicenseID)
		}
	})

	t.Run("pro at limit", func(t *testing.T) {
		store := &fakeStore{
			createdAt: now.AddDate(-1, 0, 0),
			license:   activeLicense(PlanPro, 200, now),
			counts:    map[EventType]int{EventPdfGenerated: 20},
		}
		_, err := newTestService(store, now).CanGeneratePdf(1)
		if code := denyCode(t, err); code != DenyPdfLimit {
			t.Fatalf("got code=%s, want PDF_LIMIT_REACHED", code)
		}
	})
}

func TestCanCallAi(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		createdAt: now.AddDate(-1, 0, 0),
		license:   activeLicense(PlanProPlus, 2000, now),
		counts:    map[EventType]int{EventAiCall: 9},
	}
	svc := newTestService(store, now)

	if _, err := svc.CanCallAi(1); err != nil {
		t.Fatalf("CanCallAi with 9 calls: %v", err)
	}

	// Décima llamada registrada: la siguiente verificación debe fallar
	store.counts[EventAiCall] = 10
	_, err := svc.CanCallAi(1)
	if code := denyCode(t, err); code != DenyAiLimit {
		t.Fatalf("got code=%s, want AI_LIMIT_REACHED", code)
	}

	// PRO never has AI regardless of counts
	store.license = activeLicense(PlanPro, 200, now)
	store.counts[EventAiCall] = 0
	_, err = svc.CanCallAi(1)
	if code := denyCode(t, err); code != DenyReadOnly {
		t.Fatalf("got code=%s, want READ_ONLY on PRO", code)
	}
}

func TestCanManageMaintenance(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		createdAt: now.AddDate(-1, 0, 0),
		license:   activeLicense(PlanPro, 200, now),
		counts:    map[EventType]int{},
	}
	svc := newTestService(store, now)

	_, err := svc.CanManageMaintenance(1)
	if code := denyCode(t, err); code != DenyReadOnly {
		t.Fatalf("got code=%s, want READ_ONLY on PRO", code)
	}

	store.license = activeLicense(PlanProPlus, 2000, now)
	if _, err := svc.CanManageMaintenance(1); err != nil {
		t.Fatalf("CanManageMaintenance on PRO_PLUS: %v", err)
	}
}

func TestCanCreateClientFreeCeiling(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		createdAt: now,
		license:   activeLicense(PlanFree, 15, now),
		counts:    map[EventType]int{},
		clients:   2,
	}
	svc := newTestService(store, now)

	_, err := svc.CanCreateClient(1)
	if code := denyCode(t, err); code != DenyClientLimit {
		t.Fatalf("got code=%s, want FREE_CLIENT_LIMIT", code)
	}

	// Mismo usuario en PRO: el contador deja de importar
	store.license = activeLicense(PlanPro, 200, now)
	store.clients = 500
	if _, err := svc.CanCreateClient(1); err != nil {
		t.Fatalf("CanCreateClient on PRO: %v", err)
	}
}

func TestCanCreateEquipmentFreeCeiling(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		createdAt:  now,
		license:    activeLicense(PlanFree, 15, now),
		counts:     map[EventType]int{},
		equipments: 1,
	}
	svc := newTestService(store, now)

	if _, err := svc.CanCreateEquipment(1); err != nil {
		t.Fatalf("CanCreateEquipment with 1 of 2: %v", err)
	}

	store.equipments = 2
	_, err := svc.CanCreateEquipment(1)
	if code := denyCode(t, err); code != DenyEquipmentLimit {
		t.Fatalf("got code=%s, want FREE_EQUIPMENT_LIMIT", code)
	}
}

func TestGuardDeniedCarriesState(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, 0, -40)
	store := &fakeStore{createdAt: created, license: activeLicense(PlanFree, 15, now)}
	_, err := newTestService(store, now).CanCreateWorkOrder(1)

	var d *Denied
	if !errors.As(err, &d) {
		t.Fatalf("got err=%v, want *Denied", err)
	}
	if d.Code != DenyReadOnly {
		t.Fatalf("got code=%s, want READ_ONLY", d.Code)
	}
	if d.State.Reason != ReasonTrialExpired {
		t.Fatalf("got reason=%s, want TRIAL_EXPIRED carried in state", d.State.Reason)
	}
	if got := d.Error(); got != "READ_ONLY" {
		t.Fatalf("got Error()=%q, want READ_ONLY", got)
	}
}

func TestMonthBounds(t *testing.T) {
	cases := []struct {
		now  time.Time
		from time.Time
		to   time.Time
	}{
		{
			now:  time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC),
			from: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			now:  time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
			from: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
			to:   time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%v", tc.now), func(t *testing.T) {
			from, to := monthBounds(tc.now)
			if !from.Equal(tc.from) || !to.Equal(tc.to) {
				t.Fatalf("got [%v, %v), want [%v, %v)", from, to, tc.from, tc.to)
			}
		})
	}
}
