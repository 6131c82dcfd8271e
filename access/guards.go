package access

// DenyCode identifies why a capability check refused the action. Callers
// branch on the code, not on the message.
type DenyCode string

const (
	DenyReadOnly       DenyCode = "READ_ONLY"
	DenyPdfLimit       DenyCode = "PDF_LIMIT_REACHED"
	DenyAiLimit        DenyCode = "AI_LIMIT_REACHED"
	DenyClientLimit    DenyCode = "FREE_CLIENT_LIMIT"
	DenyEquipmentLimit DenyCode = "FREE_EQUIPMENT_LIMIT"
)

// Denied is the typed failure returned by the Can* guards. It always carries
// the state that was resolved, so callers can surface trial info or the
// read-only reason without a second resolution.
type Denied struct {
	Code  DenyCode
	State AccessState
}

func (d *Denied) Error() string { return string(d.Code) }

// resolveFull runs the resolver and converts a READ_ONLY outcome into a
// Denied. Store errors pass through untouched.
func (s *Service) resolveFull(userID int) (*AccessState, error) {
	state, err := s.Resolve(userID)
	if err != nil {
		return nil, err
	}
	if state.Mode != ModeFull {
		return nil, &Denied{Code: DenyReadOnly, State: state}
	}
	return &state, nil
}

// CanCreateWorkOrder authorizes creating a work order. The monthly quota is
// already enforced inside Resolve itself.
func (s *Service) CanCreateWorkOrder(userID int) (*AccessState, error) {
	return s.resolveFull(userID)
}

func (s *Service) CanGeneratePdf(userID int) (*AccessState, error) {
	state, err := s.resolveFull(userID)
	if err != nil {
		return nil, err
	}
	if !state.Features.PdfEnabled {
		return nil, &Denied{Code: DenyReadOnly, State: *state}
	}
	if state.Usage.Pdfs >= state.Limits.MaxPdfsPerMonth {
		return nil, &Denied{Code: DenyPdfLimit, State: *state}
	}
	return state, nil
}

func (s *Service) CanCallAi(userID int) (*AccessState, error) {
	state, err := s.resolveFull(userID)
	if err != nil {
		return nil, err
	}
	if !state.Features.AiEnabled {
		return nil, &Denied{Code: DenyReadOnly, State: *state}
	}
	if state.Usage.Ai >= state.Limits.MaxAiCallsPerMonth {
		return nil, &Denied{Code: DenyAiLimit, State: *state}
	}
	return state, nil
}

// CanManageMaintenance is PRO_PLUS only.
func (s *Service) CanManageMaintenance(userID int) (*AccessState, error) {
	state, err := s.resolveFull(userID)
	if err != nil {
		return nil, err
	}
	if state.PlanCode != PlanProPlus {
		return nil, &Denied{Code: DenyReadOnly, State: *state}
	}
	return state, nil
}

// CanCreateClient enforces the FREE-plan client ceiling against the live
// count; paid plans skip the count entirely.
func (s *Service) CanCreateClient(userID int) (*AccessState, error) {
	state, err := s.resolveFull(userID)
	if err != nil {
		return nil, err
	}
	if state.PlanCode == PlanFree {
		count, err := s.store.CountClients(userID)
		if err != nil {
			return nil, err
		}
		if count >= state.Limits.MaxClients {
			return nil, &Denied{Code: DenyClientLimit, State: *state}
		}
	}
	return state, nil
}

func (s *Service) CanCreateEquipment(userID int) (*AccessState, error) {
	state, err := s.resolveFull(userID)
	if err != nil {
		return nil, err
	}
	if state.PlanCode == PlanFree {
		count, err := s.store.CountEquipments(userID)
		if err != nil {
			return nil, err
		}
		if count >= state.Limits.MaxEquipments {
			return nil, &Denied{Code: DenyEquipmentLimit, State: *state}
		}
	}
	return state, nil
}
