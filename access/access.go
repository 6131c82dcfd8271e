package access

import (
	"fmt"
	"math"
	"time"
)

const freeTrialDays = 30

// unlimited is the sentinel used for ceilings paid plans don't enforce.
const unlimited = 999999

type PlanCode string

const (
	PlanFree    PlanCode = "FREE"
	PlanPro     PlanCode = "PRO"
	PlanProPlus PlanCode = "PRO_PLUS"
)

type LicenseStatus string

const (
	LicenseActive    LicenseStatus = "ACTIVE"
	LicenseSuspended LicenseStatus = "SUSPENDED"
	LicenseExpired   LicenseStatus = "EXPIRED"
)

type EventType string

const (
	EventWorkOrderCreated EventType = "WORKORDER_CREATED"
	EventPdfGenerated     EventType = "PDF_GENERATED"
	EventAiCall           EventType = "AI_CALL"
)

type Mode string

const (
	ModeFull     Mode = "FULL"
	ModeReadOnly Mode = "READ_ONLY"
)

type Reason string

const (
	ReasonNoLicense         Reason = "NO_LICENSE"
	ReasonLicenseSuspended  Reason = "LICENSE_SUSPENDED"
	ReasonLicenseExpired    Reason = "LICENSE_EXPIRED"
	ReasonWorkOrdersLimit   Reason = "WORKORDERS_LIMIT_REACHED"
	ReasonTrialExpired      Reason = "TRIAL_EXPIRED"
)

// License is the minimal projection the resolver needs; the licenses package
// owns the full row.
type License struct {
	ID        int
	Status    LicenseStatus
	StartsAt  time.Time
	ExpiresAt time.Time
	Plan      Plan
}

// Plan carries the admin-editable fields from the plan row. The fixed
// per-plan ceilings and feature flags live in code (see planCeilings).
type Plan struct {
	ID                    int
	Code                  PlanCode
	Name                  string
	MaxWorkOrdersPerMonth int
}

type Usage struct {
	WorkOrders int `json:"workorders"`
	Pdfs       int `json:"pdfs"`
	Ai         int `json:"ai"`
}

type Limits struct {
	MaxWorkOrdersPerMonth int `json:"max_work_orders_per_month"`
	MaxEquipments         int `json:"max_equipments"`
	MaxClients            int `json:"max_clients"`
	MaxPdfsPerMonth       int `json:"max_pdfs_per_month"`
	MaxAiCallsPerMonth    int `json:"max_ai_calls_per_month"`
}

type Features struct {
	AiEnabled  bool `json:"ai_enabled"`
	PdfEnabled bool `json:"pdf_enabled"`
	QrEnabled  bool `json:"qr_enabled"`
}

type Trial struct {
	DaysRemaining int       `json:"days_remaining"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// AccessState is the point-in-time entitlement verdict for a user. Mode FULL
// carries the license/plan/usage snapshot; READ_ONLY carries the reason.
type AccessState struct {
	Mode      Mode      `json:"mode"`
	LicenseID int       `json:"license_id,omitempty"`
	PlanCode  PlanCode  `json:"plan_code,omitempty"`
	PlanName  string    `json:"plan_name,omitempty"`
	Usage     *Usage    `json:"usage,omitempty"`
	Limits    *Limits   `json:"limits,omitempty"`
	Features  *Features `json:"features,omitempty"`
	Trial     *Trial    `json:"trial,omitempty"`
	Reason    Reason    `json:"reason,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// Store is the read-only data access the resolver depends on. Implemented by
// SQLStore in production and by fakes in tests.
type Store interface {
	// GetUserCreatedAt returns the zero time when the user does not exist.
	GetUserCreatedAt(userID int) (time.Time, error)
	// CurrentLicense returns the most recent license (starts_at DESC,
	// created_at DESC) with its plan, or nil when the user has none.
	CurrentLicense(userID int) (*License, error)
	CountUsageEvents(licenseID int, typ EventType, from, to time.Time) (int, error)
	CountClients(userID int) (int, error)
	CountEquipments(userID int) (int, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// planCeilings returns the fixed per-plan limits. MaxWorkOrdersPerMonth is
// left zero here: that one is admin-editable and read from the plan row.
func planCeilings(code PlanCode) Limits {
	switch code {
	case PlanFree:
		return Limits{
			MaxClients:         2,
			MaxEquipments:      2,
			MaxPdfsPerMonth:    0,
			MaxAiCallsPerMonth: 0,
		}
	case PlanPro:
		return Limits{
			MaxClients:         unlimited,
			MaxEquipments:      unlimited,
			MaxPdfsPerMonth:    20,
			MaxAiCallsPerMonth: 0,
		}
	default: // PRO_PLUS
		return Limits{
			MaxClients:         unlimited,
			MaxEquipments:      unlimited,
			MaxPdfsPerMonth:    50,
			MaxAiCallsPerMonth: 10,
		}
	}
}

func planFeatures(code PlanCode) Features {
	switch code {
	case PlanFree:
		return Features{AiEnabled: false, PdfEnabled: false, QrEnabled: false}
	case PlanPro:
		return Features{AiEnabled: false, PdfEnabled: true, QrEnabled: true}
	default: // PRO_PLUS
		return Features{AiEnabled: true, PdfEnabled: true, QrEnabled: true}
	}
}

type trialInfo struct {
	expiresAt     time.Time
	daysRemaining int
	expired       bool
}

func computeTrial(userCreatedAt, now time.Time) trialInfo {
	expiresAt := userCreatedAt.Add(freeTrialDays * 24 * time.Hour)
	days := int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
	if days < 0 {
		days = 0
	}
	// The expiry instant itself is still valid; only strictly after is expired.
	return trialInfo{expiresAt: expiresAt, daysRemaining: days, expired: now.After(expiresAt)}
}

// monthBounds returns the half-open calendar-month window [from, to)
// containing now, in server-local time.
func monthBounds(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}

// Resolve computes the current AccessState for a user. It never logs and has
// no side effects; store errors propagate unchanged.
func (s *Service) Resolve(userID int) (AccessState, error) {
	now := s.now()

	createdAt, err := s.store.GetUserCreatedAt(userID)
	if err != nil {
		return AccessState{}, err
	}

	lic, err := s.store.CurrentLicense(userID)
	if err != nil {
		return AccessState{}, err
	}
	if lic == nil {
		return AccessState{Mode: ModeReadOnly, Reason: ReasonNoLicense}, nil
	}

	if lic.Status == LicenseSuspended {
		return AccessState{Mode: ModeReadOnly, Reason: ReasonLicenseSuspended}, nil
	}

	// An ACTIVE-status license past its date is still expired; the date check
	// is a safety net against stale status flags.
	if lic.Status == LicenseExpired || lic.ExpiresAt.Before(now) {
		return AccessState{Mode: ModeReadOnly, Reason: ReasonLicenseExpired}, nil
	}

	var trial *trialInfo
	if !createdAt.IsZero() {
		t := computeTrial(createdAt, now)
		trial = &t
	}
	if lic.Plan.Code == PlanFree && trial != nil && trial.expired {
		return AccessState{
			Mode:     ModeReadOnly,
			Reason:   ReasonTrialExpired,
			PlanCode: PlanFree,
			Trial:    &Trial{DaysRemaining: trial.daysRemaining, ExpiresAt: trial.expiresAt},
		}, nil
	}

	from, to := monthBounds(now)
	workorders, err := s.store.CountUsageEvents(lic.ID, EventWorkOrderCreated, from, to)
	if err != nil {
		return AccessState{}, err
	}
	pdfs, err := s.store.CountUsageEvents(lic.ID, EventPdfGenerated, from, to)
	if err != nil {
		return AccessState{}, err
	}
	ai, err := s.store.CountUsageEvents(lic.ID, EventAiCall, from, to)
	if err != nil {
		return AccessState{}, err
	}

	if workorders >= lic.Plan.MaxWorkOrdersPerMonth {
		return AccessState{
			Mode:    ModeReadOnly,
			Reason:  ReasonWorkOrdersLimit,
			Details: fmt.Sprintf("%d/%d", workorders, lic.Plan.MaxWorkOrdersPerMonth),
		}, nil
	}

	ceilings := planCeilings(lic.Plan.Code)
	features := planFeatures(lic.Plan.Code)

	state := AccessState{
		Mode:      ModeFull,
		LicenseID: lic.ID,
		PlanCode:  lic.Plan.Code,
		PlanName:  lic.Plan.Name,
		Usage:     &Usage{WorkOrders: workorders, Pdfs: pdfs, Ai: ai},
		Limits: &Limits{
			MaxWorkOrdersPerMonth: lic.Plan.MaxWorkOrdersPerMonth,
			MaxEquipments:         ceilings.MaxEquipments,
			MaxClients:            ceilings.MaxClients,
			MaxPdfsPerMonth:       ceilings.MaxPdfsPerMonth,
			MaxAiCallsPerMonth:    ceilings.MaxAiCallsPerMonth,
		},
		Features: &features,
	}
	if lic.Plan.Code == PlanFree && trial != nil {
		state.Trial = &Trial{DaysRemaining: trial.daysRemaining, ExpiresAt: trial.expiresAt}
	}
	return state, nil
}
