package app

import (
	"context"
	"errors"
	"testing"

	"myaccount/internal/domain"
)

func newPolicyFixture() (*PolicyService, *fakeSupplier, *fakeNotifier) {
	sup := newFakeSupplier()
	n := &fakeNotifier{}
	svc := NewPolicyService(sup, n)
	svc.Load(validBackendProfile())
	return svc, sup, n
}

func TestPolicyDerivation(t *testing.T) {
	svc, _, _ := newPolicyFixture()
	st := svc.State()

	if st.StartTime != "15:00:00" || st.EndTime != "11:00:00" {
		t.Fatalf("times: %q %q", st.StartTime, st.EndTime)
	}
	if st.MinimumAge != "21" || st.LeadTime != "2" {
		t.Fatalf("age/lead: %q %q", st.MinimumAge, st.LeadTime)
	}
	if st.PaymentType != domain.PaymentFull {
		t.Fatalf("paymentType: %q", st.PaymentType)
	}
	if !st.PressToggleFee || st.PressToggleTax {
		t.Fatalf("toggles: fee=%v tax=%v", st.PressToggleFee, st.PressToggleTax)
	}
}

func TestPolicySplitDerivation(t *testing.T) {
	b := validBackendProfile()
	b.Deposits = domain.Deposits{
		Type: domain.DepositTypeSplit,
		SplitPayment: &domain.SplitPayment{
			DepositType:       domain.SplitDepositPercentage,
			Value:             30,
			SecondPaymentDays: 14,
		},
	}
	svc := NewPolicyService(newFakeSupplier(), &fakeNotifier{})
	svc.Load(b)

	st := svc.State()
	if st.PaymentType != domain.PaymentSplit || st.DepositType != domain.DepositPercentage {
		t.Fatalf("split state: %+v", st)
	}
	if st.Percentage != "30" || st.BalanceDays != "14" {
		t.Fatalf("split values: %q %q", st.Percentage, st.BalanceDays)
	}
}

func TestMinimumAgeRule(t *testing.T) {
	svc, sup, _ := newPolicyFixture()
	svc.Apply(func(st *domain.PolicyFormState) { st.MinimumAge = "17" })

	err := svc.Save(context.Background())
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err: %v", err)
	}
	if got := svc.Errors()["minimumAge"]; got != "Please enter a valid minimum age (18 or higher)" {
		t.Fatalf("message: %q", got)
	}
	if _, ok := sup.lastPatch(); ok {
		t.Fatal("invalid policy state reached the supplier")
	}

	// empty age is allowed and defaults to 18 in the patch
	svc.Apply(func(st *domain.PolicyFormState) { st.MinimumAge = "" })
	if err := svc.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	patch, _ := sup.lastPatch()
	if patch.Policies.MinCheckInAge != 18 {
		t.Fatalf("default age: %d", patch.Policies.MinCheckInAge)
	}
}

func TestPercentageRule(t *testing.T) {
	svc, _, _ := newPolicyFixture()
	svc.Apply(func(st *domain.PolicyFormState) {
		st.PaymentType = domain.PaymentSplit
		st.DepositType = domain.DepositPercentage
		st.Percentage = "150"
		st.BalanceDays = "7"
	})

	if err := svc.Save(context.Background()); err == nil {
		t.Fatal("percentage 150 accepted")
	}
	if got := svc.Errors()["percentage"]; got != "Please enter a valid percentage (1-100)" {
		t.Fatalf("message: %q", got)
	}

	svc.Apply(func(st *domain.PolicyFormState) { st.Percentage = "50" })
	if err := svc.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestBalanceDaysRules(t *testing.T) {
	svc, _, _ := newPolicyFixture()
	svc.Apply(func(st *domain.PolicyFormState) {
		st.PaymentType = domain.PaymentSplit
		st.DepositType = domain.DepositFlat
		st.FlatFee = "100"
		st.BalanceDays = ""
	})

	if err := svc.Save(context.Background()); err == nil {
		t.Fatal("missing balance days accepted for split payment")
	}
	if got := svc.Errors()["balanceDays"]; got != "Please enter days" {
		t.Fatalf("message: %q", got)
	}

	svc.Apply(func(st *domain.PolicyFormState) { st.BalanceDays = "-1" })
	if err := svc.Save(context.Background()); err == nil {
		t.Fatal("negative balance days accepted")
	}
	if got := svc.Errors()["balanceDays"]; got != "days cant be lower than 0" {
		t.Fatalf("message: %q", got)
	}
}

func TestTimeFieldsRule(t *testing.T) {
	svc, _, _ := newPolicyFixture()
	svc.Apply(func(st *domain.PolicyFormState) { st.EndTime = "" })

	if err := svc.Save(context.Background()); err == nil {
		t.Fatal("missing check-out time accepted")
	}
	if got := svc.Errors()["timeFields"]; got != "Please set both check-in and check-out times" {
		t.Fatalf("message: %q", got)
	}
}

func TestPolicyPatchOwnership(t *testing.T) {
	svc, sup, n := newPolicyFixture()
	svc.Apply(func(st *domain.PolicyFormState) {
		st.MinimumAge = "25"
		st.PressToggleTax = true
	})

	if err := svc.Save(context.Background()); err != nil {
		t.Fatal(err)
	}
	patch, ok := sup.lastPatch()
	if !ok {
		t.Fatal("no patch sent")
	}
	// the policy patch never carries the profile-form sections
	if patch.Profile != nil || patch.Contacts != nil || patch.CreditCards != nil {
		t.Fatalf("patch leaks profile-form sections: %+v", patch)
	}
	if patch.Policies.MinCheckInAge != 25 {
		t.Fatalf("age: %d", patch.Policies.MinCheckInAge)
	}
	// toggled-on settings keep their backend identifiers
	settings := *patch.ValidationSettingsList
	if len(settings) != 2 {
		t.Fatalf("settings: %+v", settings)
	}
	ids := map[string]int64{}
	for _, vs := range settings {
		ids[vs.Name] = vs.ID
		if !vs.Validate {
			t.Fatalf("setting %q not validated", vs.Name)
		}
	}
	if ids[domain.SettingAtLeastOneFee] != 11 || ids[domain.SettingAtLeastOneTax] != 12 {
		t.Fatalf("setting ids regenerated: %+v", ids)
	}
	if len(n.successes) == 0 || n.successes[0] != "Policies updated successfully!" {
		t.Fatalf("notifications: %+v", n.successes)
	}

	// after the save the snapshot re-derives; nothing left to change
	if svc.HasChanges() {
		t.Fatal("changes remain after save")
	}
}

func TestPolicySaveFailure(t *testing.T) {
	svc, sup, n := newPolicyFixture()
	sup.updateErr = errors.New("boom")
	svc.Apply(func(st *domain.PolicyFormState) { st.MinimumAge = "30" })

	if err := svc.Save(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	if len(n.errors) == 0 || n.errors[0] != "Failed to update policies!" {
		t.Fatalf("notifications: %+v", n.errors)
	}
	// working copy survives for a retry
	if got := svc.State().MinimumAge; got != "30" {
		t.Fatalf("edit lost: %q", got)
	}
}

func TestPolicyHasChangesAndReset(t *testing.T) {
	svc, _, _ := newPolicyFixture()
	if svc.HasChanges() {
		t.Fatal("changes right after load")
	}
	svc.Apply(func(st *domain.PolicyFormState) { st.LeadTime = "5" })
	if !svc.HasChanges() {
		t.Fatal("edit not detected")
	}
	svc.Reset()
	if svc.HasChanges() {
		t.Fatal("changes remain after reset")
	}
	if got := svc.State().LeadTime; got != "2" {
		t.Fatalf("reset state: %q", got)
	}
}
