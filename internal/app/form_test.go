package app

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"myaccount/internal/domain"
)

func newFormFixture() (*FormService, *fakeSupplier, *fakeNotifier) {
	sup := newFakeSupplier()
	sup.profile = validBackendProfile()
	n := &fakeNotifier{}
	svc := NewFormService(sup, NewTransformer(""), NewSchemaValidator(), n)
	return svc, sup, n
}

func TestLoadRunsOnce(t *testing.T) {
	svc, _, _ := newFormFixture()

	if !svc.Load(validBackendProfile()) {
		t.Fatal("first load rejected")
	}
	if err := svc.SetField("basicInfo.name", "Edited Lodge"); err != nil {
		t.Fatal(err)
	}

	// a refetch completing later must not clobber the edit
	refetched := validBackendProfile()
	refetched.Profile.Name = "Stale Name"
	if svc.Load(refetched) {
		t.Fatal("second load accepted")
	}
	if got := svc.Profile().BasicInfo.Name; got != "Edited Lodge" {
		t.Fatalf("edit lost: %q", got)
	}
}

func TestSetFieldBeforeLoad(t *testing.T) {
	svc, _, _ := newFormFixture()
	if err := svc.SetField("basicInfo.name", "x"); !errors.Is(err, domain.ErrNotLoaded) {
		t.Fatalf("err: %v", err)
	}
}

func TestDirtyTracking(t *testing.T) {
	svc, _, _ := newFormFixture()
	svc.Load(validBackendProfile())

	if svc.Dirty() {
		t.Fatal("dirty right after load")
	}
	if err := svc.SetField("addressInfo.city", "Carlsbad"); err != nil {
		t.Fatal(err)
	}
	if !svc.Dirty() {
		t.Fatal("not dirty after edit")
	}
	// editing back to the snapshot value clears the flag
	if err := svc.SetField("addressInfo.city", "San Diego"); err != nil {
		t.Fatal(err)
	}
	if svc.Dirty() {
		t.Fatal("dirty after reverting the edit")
	}
}

func TestBillingToggle(t *testing.T) {
	svc, _, _ := newFormFixture()
	svc.Load(validBackendProfile())

	if err := svc.SetField("addressInfo.useMainAddressAsBilling", false); err != nil {
		t.Fatal(err)
	}
	p := svc.Profile()
	if p.BillingAddress == nil {
		t.Fatal("billing address not materialized")
	}
	// empty billing block fails the cross-field rule until filled in
	if svc.Valid() {
		t.Fatal("empty billing address accepted")
	}
	found := false
	for _, fe := range svc.Errors() {
		if fe.Path == "billingAddress" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected billingAddress failure, got %+v", svc.Errors())
	}

	// toggling back on copies the main address
	if err := svc.SetField("addressInfo.useMainAddressAsBilling", true); err != nil {
		t.Fatal(err)
	}
	p = svc.Profile()
	if p.BillingAddress == nil || p.BillingAddress.City != "San Diego" {
		t.Fatalf("billing not derived from main address: %+v", p.BillingAddress)
	}
	if !svc.Valid() {
		t.Fatalf("unexpected failures: %+v", svc.Errors())
	}
}

func TestSubmitBlocksOnValidation(t *testing.T) {
	svc, sup, n := newFormFixture()
	svc.Load(validBackendProfile())
	if err := svc.SetField("basicInfo.name", ""); err != nil {
		t.Fatal(err)
	}

	err := svc.Submit(context.Background())
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err: %v", err)
	}
	if _, ok := sup.lastPatch(); ok {
		t.Fatal("invalid form reached the supplier")
	}
	if len(n.errors) == 0 || n.errors[0] != "Please fix the errors in the form before submitting." {
		t.Fatalf("notifications: %+v", n.errors)
	}
}

func TestSubmitNoChanges(t *testing.T) {
	svc, sup, _ := newFormFixture()
	svc.Load(validBackendProfile())

	if err := svc.Submit(context.Background()); !errors.Is(err, domain.ErrNoChanges) {
		t.Fatalf("err: %v", err)
	}
	if _, ok := sup.lastPatch(); ok {
		t.Fatal("no-op submit reached the supplier")
	}
}

func TestSubmitSuccess(t *testing.T) {
	svc, sup, n := newFormFixture()
	svc.Load(validBackendProfile())
	if err := svc.SetField("basicInfo.name", "Sunrise Lodge"); err != nil {
		t.Fatal(err)
	}

	if err := svc.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
	patch, ok := sup.lastPatch()
	if !ok || patch.Profile == nil || patch.Profile.Name != "Sunrise Lodge" {
		t.Fatalf("patch: %+v", patch.Profile)
	}
	if svc.Dirty() {
		t.Fatal("dirty after successful save")
	}
	if svc.Phase() != PhaseLoaded {
		t.Fatalf("phase: %v", svc.Phase())
	}
	if len(n.successes) == 0 || n.successes[0] != "Profile saved successfully" {
		t.Fatalf("notifications: %+v", n.successes)
	}

	// the saved state is the new reset baseline
	if err := svc.SetField("basicInfo.name", "Scratch"); err != nil {
		t.Fatal(err)
	}
	svc.Reset()
	if got := svc.Profile().BasicInfo.Name; got != "Sunrise Lodge" {
		t.Fatalf("reset baseline: %q", got)
	}
}

func TestSubmitFailureKeepsEdits(t *testing.T) {
	svc, sup, n := newFormFixture()
	svc.Load(validBackendProfile())
	sup.updateErr = errors.New("boom")

	if err := svc.SetField("basicInfo.name", "Sunrise Lodge"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Submit(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	if got := svc.Profile().BasicInfo.Name; got != "Sunrise Lodge" {
		t.Fatalf("edit lost on failed save: %q", got)
	}
	if !svc.Dirty() {
		t.Fatal("form no longer dirty after failed save")
	}
	if len(n.errors) == 0 || n.errors[0] != "Failed to save profile. Please try again." {
		t.Fatalf("notifications: %+v", n.errors)
	}

	// the retry goes through once the supplier recovers
	sup.updateErr = nil
	if err := svc.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestResetIdempotent(t *testing.T) {
	svc, _, _ := newFormFixture()
	svc.Load(validBackendProfile())
	if err := svc.SetField("basicInfo.name", "Scratch"); err != nil {
		t.Fatal(err)
	}

	svc.Reset()
	first := svc.Profile()
	svc.Reset()
	second := svc.Profile()
	if first.BasicInfo.Name != second.BasicInfo.Name || second.BasicInfo.Name != "Sunset Lodge" {
		t.Fatalf("reset not idempotent: %q / %q", first.BasicInfo.Name, second.BasicInfo.Name)
	}
	if svc.Dirty() {
		t.Fatal("dirty after reset")
	}
}

// A reset racing an in-flight submit wins locally: the stale completion must
// not overwrite the newer snapshot.
func TestResetDuringSubmit(t *testing.T) {
	svc, sup, _ := newFormFixture()
	svc.Load(validBackendProfile())
	sup.barrier = make(chan struct{})

	if err := svc.SetField("basicInfo.name", "Sunrise Lodge"); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- svc.Submit(context.Background()) }()

	// wait until the submit is parked inside the supplier call
	for svc.Phase() != PhaseSaving {
		runtime.Gosched()
	}
	svc.Reset()
	close(sup.barrier)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if got := svc.Profile().BasicInfo.Name; got != "Sunset Lodge" {
		t.Fatalf("stale submit overwrote the reset: %q", got)
	}
}
