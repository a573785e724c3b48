package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog/log"

	"myaccount/internal/domain"
)

// FormPhase is the lifecycle of the shared profile form. The phase machine
// replaces the original one-shot "has loaded" flag: the rule that a background
// refetch must not clobber in-progress edits is a transition guard
// (Load is only legal from Uninitialized).
type FormPhase int

const (
	PhaseUninitialized FormPhase = iota
	PhaseLoaded
	PhaseDirty
	PhaseSaving
)

func (p FormPhase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoaded:
		return "loaded"
	case PhaseDirty:
		return "dirty"
	case PhaseSaving:
		return "saving"
	}
	return "unknown"
}

// FormService owns the live FormProfile, its snapshot (the last loaded or
// saved state, baseline of the dirty flag) and the validation results. All
// remote failures are recoverable: edits survive a failed submit and the user
// retries.
type FormService struct {
	supplier domain.SupplierClient
	tr       Transformer
	schema   *SchemaValidator
	notify   domain.Notifier

	mu         sync.Mutex
	phase      FormPhase
	current    domain.FormProfile
	snapshot   domain.FormProfile
	original   domain.BackendProfile // backend record the next patch is built against
	generation uint64                // bumped by Load and Reset; stale submits don't commit
	fieldErrs  []domain.FieldError
}

func NewFormService(supplier domain.SupplierClient, tr Transformer, schema *SchemaValidator, notify domain.Notifier) *FormService {
	return &FormService{supplier: supplier, tr: tr, schema: schema, notify: notify}
}

// Load populates the form from a fetched backend record. It runs at most once
// per session: once the form left Uninitialized, later fetch completions are
// discarded so unsaved edits survive background refetches. Reports whether the
// record was taken.
func (s *FormService) Load(b domain.BackendProfile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseUninitialized {
		log.Debug().Msg("form already loaded, discarding refetched profile")
		return false
	}
	form := s.tr.ToForm(b)
	s.current = form
	s.snapshot = form
	s.original = b
	s.generation++
	s.phase = PhaseLoaded
	s.revalidate()
	return true
}

// Phase returns the current lifecycle phase.
func (s *FormService) Phase() FormPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Dirty reports whether any field differs from the snapshot.
func (s *FormService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhaseDirty || (s.phase == PhaseSaving && !cmp.Equal(s.current, s.snapshot))
}

// Valid reports whether the last validation pass found no failures.
func (s *FormService) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fieldErrs) == 0
}

// Errors returns the current field failures.
func (s *FormService) Errors() []domain.FieldError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.FieldError, len(s.fieldErrs))
	copy(out, s.fieldErrs)
	return out
}

// Profile returns a copy of the live form state.
func (s *FormService) Profile() domain.FormProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyForm(s.current)
}

// SetField updates one leaf by its json path ("basicInfo.name", ...) and
// re-validates. Toggling addressInfo.useMainAddressAsBilling to true copies
// the main address into the billing fields; toggling it to false materializes
// an empty billing address for the user to fill in.
func (s *FormService) SetField(path string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseUninitialized {
		return domain.ErrNotLoaded
	}
	if err := applyField(&s.current, path, value); err != nil {
		return err
	}
	if path == "addressInfo.useMainAddressAsBilling" {
		s.deriveBilling()
	}
	if s.phase != PhaseSaving {
		if cmp.Equal(s.current, s.snapshot) {
			s.phase = PhaseLoaded
		} else {
			s.phase = PhaseDirty
		}
	}
	s.revalidate()
	return nil
}

// Submit validates and, when acceptable, pushes the patch to the supplier as
// one atomic update. On success the live state becomes the new snapshot; on
// remote failure edits stay intact and the error is retryable. A submit that
// completes after an intervening Reset does not overwrite the newer snapshot.
func (s *FormService) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.phase == PhaseUninitialized {
		s.mu.Unlock()
		return domain.ErrNotLoaded
	}
	s.revalidate()
	if len(s.fieldErrs) > 0 {
		verr := &domain.ValidationError{Fields: append([]domain.FieldError(nil), s.fieldErrs...)}
		s.mu.Unlock()
		s.notify.Error("Please fix the errors in the form before submitting.")
		return verr
	}
	if cmp.Equal(s.current, s.snapshot) {
		s.mu.Unlock()
		return domain.ErrNoChanges
	}

	submitted := copyForm(s.current)
	patch := s.tr.ToBackend(submitted, s.original)
	gen := s.generation
	s.phase = PhaseSaving
	s.mu.Unlock()

	err := s.supplier.UpdateAccount(ctx, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.phase == PhaseSaving {
			s.phase = PhaseDirty
		}
		s.notify.Error("Failed to save profile. Please try again.")
		return fmt.Errorf("update account: %w", err)
	}
	if s.generation != gen {
		// Reset (or a fresh load) happened mid-flight. The remote write stuck,
		// but locally the newer snapshot wins; discard this completion.
		log.Info().Msg("discarding stale submit completion after reset")
		s.notify.Success("Profile saved successfully")
		return nil
	}
	s.snapshot = submitted
	s.original = patch.ApplyTo(s.original)
	if cmp.Equal(s.current, s.snapshot) {
		s.phase = PhaseLoaded
	} else {
		s.phase = PhaseDirty // user kept typing while the save was in flight
	}
	s.revalidate()
	s.notify.Success("Profile saved successfully")
	return nil
}

// Reset restores the snapshot, discarding in-progress edits. It does not
// re-fetch and is idempotent.
func (s *FormService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseUninitialized {
		return
	}
	s.current = copyForm(s.snapshot)
	s.generation++
	s.phase = PhaseLoaded
	s.revalidate()
}

// revalidate refreshes fieldErrs from the schema. Callers hold s.mu.
func (s *FormService) revalidate() {
	if verr := s.schema.Validate(s.current); verr != nil {
		s.fieldErrs = verr.Fields
	} else {
		s.fieldErrs = nil
	}
}

// deriveBilling applies the billing-address coupling after the toggle
// changed. Callers hold s.mu.
func (s *FormService) deriveBilling() {
	if s.current.AddressInfo.UseMainAddressAsBilling {
		s.current.BillingAddress = &domain.BillingAddress{
			Country: s.current.AddressInfo.Country,
			City:    s.current.AddressInfo.City,
			Address: s.current.AddressInfo.Address,
			Zipcode: s.current.AddressInfo.Zipcode,
		}
		return
	}
	if s.current.BillingAddress == nil {
		s.current.BillingAddress = &domain.BillingAddress{}
	}
}

// copyForm deep-copies the pointer/slice members so snapshots never alias the
// live state.
func copyForm(f domain.FormProfile) domain.FormProfile {
	out := f
	if f.BillingAddress != nil {
		b := *f.BillingAddress
		out.BillingAddress = &b
	}
	if f.PaymentInfo.AcceptCreditCards != nil {
		a := *f.PaymentInfo.AcceptCreditCards
		out.PaymentInfo.AcceptCreditCards = &a
	}
	if f.PaymentInfo.AcceptedCardTypes != nil {
		out.PaymentInfo.AcceptedCardTypes = append([]domain.CardType(nil), f.PaymentInfo.AcceptedCardTypes...)
	}
	return out
}

// applyField writes one leaf value. Unknown paths are an error so typos in
// callers fail loudly instead of silently dropping input.
func applyField(f *domain.FormProfile, path string, value any) error {
	str := func() (string, error) {
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("field %s expects a string, got %T", path, value)
		}
		return s, nil
	}
	boolean := func() (bool, error) {
		b, ok := value.(bool)
		if !ok {
			return false, fmt.Errorf("field %s expects a bool, got %T", path, value)
		}
		return b, nil
	}

	switch path {
	case "basicInfo.name":
		v, err := str()
		f.BasicInfo.Name = v
		return err
	case "basicInfo.email":
		v, err := str()
		f.BasicInfo.Email = v
		return err
	case "basicInfo.phone":
		v, err := str()
		f.BasicInfo.Phone = v
		return err
	case "basicInfo.website":
		v, err := str()
		f.BasicInfo.Website = v
		return err
	case "basicInfo.company":
		v, err := str()
		f.BasicInfo.Company = v
		return err
	case "basicInfo.otherBussiness":
		v, err := str()
		f.BasicInfo.OtherBussiness = v
		return err
	case "addressInfo.country":
		v, err := str()
		f.AddressInfo.Country = v
		return err
	case "addressInfo.state":
		v, err := str()
		f.AddressInfo.State = v
		return err
	case "addressInfo.city":
		v, err := str()
		f.AddressInfo.City = v
		return err
	case "addressInfo.zipcode":
		v, err := str()
		f.AddressInfo.Zipcode = v
		return err
	case "addressInfo.address":
		v, err := str()
		f.AddressInfo.Address = v
		return err
	case "addressInfo.useMainAddressAsBilling":
		v, err := boolean()
		if err != nil {
			return err
		}
		f.AddressInfo.UseMainAddressAsBilling = v
		return nil
	case "accountInfo.currency":
		v, err := str()
		f.AccountInfo.Currency = v
		return err
	case "accountInfo.language":
		v, err := str()
		f.AccountInfo.Language = v
		return err
	case "billingAddress.country", "billingAddress.city", "billingAddress.address", "billingAddress.zipcode":
		v, err := str()
		if err != nil {
			return err
		}
		if f.BillingAddress == nil {
			f.BillingAddress = &domain.BillingAddress{}
		}
		switch path {
		case "billingAddress.country":
			f.BillingAddress.Country = v
		case "billingAddress.city":
			f.BillingAddress.City = v
		case "billingAddress.address":
			f.BillingAddress.Address = v
		case "billingAddress.zipcode":
			f.BillingAddress.Zipcode = v
		}
		return nil
	case "propertyManagment.pmsName":
		v, err := str()
		f.PropertyManagment.PMSName = v
		return err
	case "propertyManagment.pmsAccountId":
		v, err := str()
		f.PropertyManagment.PMSAccountID = v
		return err
	case "propertyManagment.tokeyKey":
		v, err := str()
		f.PropertyManagment.TokeyKey = v
		return err
	case "propertyManagment.tokenSecret":
		v, err := str()
		f.PropertyManagment.TokenSecret = v
		return err
	case "propertyManagment.bookWebAddress":
		v, err := str()
		f.PropertyManagment.BookWebAddress = v
		return err
	case "paymentInfo.acceptCreditCards":
		if value == nil {
			f.PaymentInfo.AcceptCreditCards = nil
			return nil
		}
		v, err := boolean()
		if err != nil {
			return err
		}
		f.PaymentInfo.AcceptCreditCards = &v
		return nil
	case "paymentInfo.acceptedCardTypes":
		switch v := value.(type) {
		case []domain.CardType:
			f.PaymentInfo.AcceptedCardTypes = append([]domain.CardType(nil), v...)
		case []string:
			out := make([]domain.CardType, 0, len(v))
			for _, s := range v {
				out = append(out, domain.CardType(s))
			}
			f.PaymentInfo.AcceptedCardTypes = out
		case []any:
			out := make([]domain.CardType, 0, len(v))
			for _, it := range v {
				s, ok := it.(string)
				if !ok {
					return fmt.Errorf("field %s expects strings, got %T", path, it)
				}
				out = append(out, domain.CardType(s))
			}
			f.PaymentInfo.AcceptedCardTypes = out
		default:
			return fmt.Errorf("field %s expects a card list, got %T", path, value)
		}
		return nil
	}
	return fmt.Errorf("unknown field path %q", path)
}
