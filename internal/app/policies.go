package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/go-cmp/cmp"

	"myaccount/internal/domain"
)

// Error keys of the policy sub-form, in the order they render.
var policyErrorKeys = []string{
	"minimumAge", "timeFields", "paymentAmount", "depositType",
	"balanceDays", "percentage", "leadTime",
}

// PolicyService runs the Policies tab: a component-local working copy of the
// policy/deposit/validation-setting slices, independent of the shared form.
// Validation runs on explicit save only, not per keystroke.
type PolicyService struct {
	supplier domain.SupplierClient
	notify   domain.Notifier

	mu       sync.Mutex
	state    domain.PolicyFormState
	snapshot domain.PolicyFormState
	original domain.BackendProfile
	loaded   bool
	errs     map[string]string
}

func NewPolicyService(supplier domain.SupplierClient, notify domain.Notifier) *PolicyService {
	return &PolicyService{supplier: supplier, notify: notify}
}

// Load derives the working copy from a backend record. Unlike the shared
// form, the policy state is re-derived on every load: its lifecycle is
// discard-and-rederive after each successful save.
func (s *PolicyService) Load(b domain.BackendProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.original = b
	s.snapshot = derivePolicyState(b)
	s.state = s.snapshot
	s.loaded = true
	s.errs = nil
}

func (s *PolicyService) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// State returns the working copy.
func (s *PolicyService) State() domain.PolicyFormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Errors returns the messages from the last save attempt, keyed by field.
func (s *PolicyService) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

// Apply mutates the working copy in place.
func (s *PolicyService) Apply(mutate func(*domain.PolicyFormState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&s.state)
}

// Set replaces the working copy wholesale (the HTTP façade submits the whole
// sub-form).
func (s *PolicyService) Set(st domain.PolicyFormState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// HasChanges gates the save button: deep equality against the last-derived
// snapshot.
func (s *PolicyService) HasChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded && !cmp.Equal(s.state, s.snapshot)
}

// Save validates the working copy and, when clean, submits the policy patch.
// The patch owns only deposits, policies and the validation settings; the
// setting identifiers are looked up in the original list, never regenerated.
func (s *PolicyService) Save(ctx context.Context) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return domain.ErrNotLoaded
	}
	errs := validatePolicyState(s.state)
	s.errs = errs
	if len(errs) > 0 {
		s.mu.Unlock()
		return policyValidationError(errs)
	}
	patch := buildPolicyPatch(s.state, s.original)
	s.mu.Unlock()

	if err := s.supplier.UpdateAccount(ctx, patch); err != nil {
		s.notify.Error("Failed to update policies!")
		return fmt.Errorf("update policies: %w", err)
	}

	s.mu.Lock()
	s.original = patch.ApplyTo(s.original)
	s.snapshot = derivePolicyState(s.original)
	s.state = s.snapshot
	s.errs = nil
	s.mu.Unlock()
	s.notify.Success("Policies updated successfully!")
	return nil
}

// Reset restores the snapshot and clears errors; no re-fetch.
func (s *PolicyService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return
	}
	s.state = s.snapshot
	s.errs = nil
}

// derivePolicyState maps the backend slices into the tab's working shape.
// Zero numeric values render as "" (unset).
func derivePolicyState(b domain.BackendProfile) domain.PolicyFormState {
	st := domain.PolicyFormState{
		StartTime:   b.Policies.Arrival,
		EndTime:     b.Policies.Departure,
		LeadTime:    intField(b.Policies.LeadTime),
		MinimumAge:  intField(b.Policies.MinCheckInAge),
		PaymentType: domain.PaymentFull,
		DepositType: domain.DepositFlat,
	}
	if b.Deposits.Type == domain.DepositTypeSplit {
		st.PaymentType = domain.PaymentSplit
	}
	if sp := b.Deposits.SplitPayment; sp != nil {
		st.BalanceDays = intField(sp.SecondPaymentDays)
		if sp.DepositType == domain.SplitDepositPercentage {
			st.DepositType = domain.DepositPercentage
			st.Percentage = numField(sp.Value)
		} else {
			st.FlatFee = numField(sp.Value)
		}
	}
	for _, vs := range b.ValidationSettingsList {
		switch vs.Name {
		case domain.SettingAtLeastOneFee:
			st.PressToggleFee = vs.Validate
		case domain.SettingAtLeastOneTax:
			st.PressToggleTax = vs.Validate
		}
	}
	return st
}

// validatePolicyState returns one message per failing rule; messages are the
// exact strings the account screen renders.
func validatePolicyState(st domain.PolicyFormState) map[string]string {
	errs := map[string]string{}

	if st.MinimumAge != "" {
		if age, err := strconv.ParseFloat(st.MinimumAge, 64); err != nil || age < 18 {
			errs["minimumAge"] = "Please enter a valid minimum age (18 or higher)"
		}
	}
	if st.LeadTime != "" {
		if lt, err := strconv.ParseFloat(st.LeadTime, 64); err != nil || lt < 1 {
			errs["leadTime"] = "Time cannot be under one hour"
		}
	}

	if st.BalanceDays == "" && st.PaymentType == domain.PaymentSplit {
		errs["balanceDays"] = "Please enter days"
	} else if st.BalanceDays != "" {
		if days, err := strconv.ParseFloat(st.BalanceDays, 64); err != nil || days < 0 {
			errs["balanceDays"] = "days cant be lower than 0"
		}
	}

	if st.StartTime == "" || st.EndTime == "" {
		errs["timeFields"] = "Please set both check-in and check-out times"
	}

	if st.PaymentType == domain.PaymentSplit {
		if st.Percentage == "" && st.FlatFee == "" {
			errs["depositType"] = "Please set Percentage or Flat Fee"
		}
		if st.DepositType == domain.DepositPercentage {
			pct, err := strconv.ParseFloat(st.Percentage, 64)
			if st.Percentage == "" || err != nil || pct <= 0 || pct > 100 {
				errs["percentage"] = "Please enter a valid percentage (1-100)"
			}
		} else if st.DepositType == domain.DepositFlat {
			fee, err := strconv.ParseFloat(st.FlatFee, 64)
			if st.FlatFee == "" || err != nil || fee <= 0 {
				errs["paymentAmount"] = "Please enter a valid flat fee amount"
			}
		}
	}

	return errs
}

// buildPolicyPatch reconstructs the backend-shaped slices this tab owns.
// Immutable account fields are copied from the original record; toggled-off
// validation settings are omitted, toggled-on ones keep their original IDs.
func buildPolicyPatch(st domain.PolicyFormState, original domain.BackendProfile) domain.AccountPatch {
	canProcess := original.CanProcessPayment

	deposits := domain.Deposits{Type: domain.DepositTypeFull}
	if st.PaymentType == domain.PaymentSplit {
		deposits.Type = domain.DepositTypeSplit
		depositType := domain.SplitDepositPercentage
		value := parseNum(st.Percentage)
		if st.DepositType == domain.DepositFlat {
			depositType = domain.SplitDepositFlat
			value = parseNum(st.FlatFee)
		}
		deposits.SplitPayment = &domain.SplitPayment{
			DepositType:       depositType,
			SecondPaymentDays: int(parseNum(st.BalanceDays)),
			Value:             value,
		}
	}

	age := int(parseNum(st.MinimumAge))
	if age == 0 {
		age = 18
	}
	policies := domain.Policies{
		Arrival:       st.StartTime,
		Departure:     st.EndTime,
		MinCheckInAge: age,
		LeadTime:      int(parseNum(st.LeadTime)),
	}

	settings := []domain.ValidationSetting{}
	if st.PressToggleFee {
		settings = append(settings, domain.ValidationSetting{
			ID:       findSettingID(original.ValidationSettingsList, domain.SettingAtLeastOneFee),
			Name:     domain.SettingAtLeastOneFee,
			Validate: true,
		})
	}
	if st.PressToggleTax {
		settings = append(settings, domain.ValidationSetting{
			ID:       findSettingID(original.ValidationSettingsList, domain.SettingAtLeastOneTax),
			Name:     domain.SettingAtLeastOneTax,
			Validate: true,
		})
	}

	return domain.AccountPatch{
		CanProcessPayment:       &canProcess,
		PartyID:                 original.PartyID,
		PMBelongsToSupplierAPI:  original.PMBelongsToSupplierAPI,
		PMSBelongsToSupplierAPI: original.PMSBelongsToSupplierAPI,
		Deposits:                &deposits,
		Policies:                &policies,
		ValidationSettingsList:  &settings,
	}
}

func findSettingID(list []domain.ValidationSetting, name string) int64 {
	for _, vs := range list {
		if vs.Name == name {
			return vs.ID
		}
	}
	return 0
}

func policyValidationError(errs map[string]string) *domain.ValidationError {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]domain.FieldError, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, domain.FieldError{Path: k, Message: errs[k]})
	}
	return &domain.ValidationError{Fields: fields}
}

func intField(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func numField(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseNum(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
