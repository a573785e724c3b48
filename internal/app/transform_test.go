package app

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"myaccount/internal/domain"
)

func TestToFormBasics(t *testing.T) {
	tr := NewTransformer("")
	f := tr.ToForm(validBackendProfile())

	if f.BasicInfo.Name != "Sunset Lodge" {
		t.Fatalf("name: %q", f.BasicInfo.Name)
	}
	// company and otherBussiness swap relative to the backend naming
	if f.BasicInfo.Company != "Sunset Lodge Inc" {
		t.Fatalf("company: %q", f.BasicInfo.Company)
	}
	if f.BasicInfo.OtherBussiness != "Sunset Holdings LLC" {
		t.Fatalf("otherBussiness: %q", f.BasicInfo.OtherBussiness)
	}
	if f.AddressInfo.Country != "US" || f.AddressInfo.State != "CA" {
		t.Fatalf("country/state not upper-cased: %q %q", f.AddressInfo.Country, f.AddressInfo.State)
	}
	if f.AccountInfo.Language != "EN" {
		t.Fatalf("language not upper-cased: %q", f.AccountInfo.Language)
	}
	if f.PaymentInfo.AcceptCreditCards == nil || !*f.PaymentInfo.AcceptCreditCards {
		t.Fatalf("acceptCreditCards: %v", f.PaymentInfo.AcceptCreditCards)
	}
}

func TestToFormPhoneNormalization(t *testing.T) {
	tr := NewTransformer("+1")
	cases := []struct {
		in, want string
	}{
		{"5551234567", "+15551234567"},
		{"05551234567", "+15551234567"},
		{"+442071838750", "+442071838750"},
		{"not-a-phone", "not-a-phone"}, // kept raw
		{"", ""},
	}
	for _, tc := range cases {
		b := validBackendProfile()
		b.Profile.Phone = tc.in
		got := tr.ToForm(b).BasicInfo.Phone
		if got != tc.want {
			t.Errorf("phone %q: got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToFormCardTranslation(t *testing.T) {
	tr := NewTransformer("")
	b := validBackendProfile()
	b.CreditCards = []string{"VISA", "UNKNOWN_NETWORK", "AMERICAN_EXPRESS"}

	f := tr.ToForm(b)
	want := []domain.CardType{domain.CardVisa, domain.CardAmericanExpress}
	if diff := cmp.Diff(want, f.PaymentInfo.AcceptedCardTypes); diff != "" {
		t.Fatalf("cards mismatch (-want +got):\n%s", diff)
	}
}

func TestToFormBillingAddress(t *testing.T) {
	tr := NewTransformer("")

	b := validBackendProfile()
	b.Profile.Address.UseRegistrationAddress = true
	if f := tr.ToForm(b); f.BillingAddress != nil {
		t.Fatalf("billing address should be absent when registration address is reused")
	}

	b.Profile.Address.UseRegistrationAddress = false
	b.Profile.Address.InvoiceCountry = "US"
	b.Profile.Address.InvoiceCity = "Reno"
	b.Profile.Address.InvoiceZip = "89501"
	b.Profile.Address.InvoiceAddress = "1 Main St"
	f := tr.ToForm(b)
	if f.BillingAddress == nil {
		t.Fatal("billing address missing")
	}
	if f.BillingAddress.City != "Reno" || f.BillingAddress.Zipcode != "89501" {
		t.Fatalf("billing address: %+v", f.BillingAddress)
	}
}

func TestToBackendOwnership(t *testing.T) {
	tr := NewTransformer("")
	original := validBackendProfile()
	original.Contacts = []domain.Contact{{ID: 7, Name: "Night Desk"}}

	f := tr.ToForm(original)
	f.BasicInfo.Name = "Sunrise Lodge"
	patch := tr.ToBackend(f, original)

	if patch.Profile == nil || patch.Profile.Name != "Sunrise Lodge" {
		t.Fatalf("profile: %+v", patch.Profile)
	}
	if patch.Profile.UserType != "PropertyManager" {
		t.Fatalf("userType: %q", patch.Profile.UserType)
	}
	if patch.PartyID != original.PartyID {
		t.Fatalf("partyId not copied: %d", patch.PartyID)
	}
	if patch.Profile.PMSID != original.Profile.PMSID {
		t.Fatalf("pmsId not copied: %q", patch.Profile.PMSID)
	}
	// untouched sections pass through
	if patch.Contacts == nil || len(*patch.Contacts) != 1 || (*patch.Contacts)[0].ID != 7 {
		t.Fatalf("contacts not passed through: %+v", patch.Contacts)
	}
	if patch.Policies == nil || patch.Policies.MinCheckInAge != 21 {
		t.Fatalf("policies not passed through: %+v", patch.Policies)
	}
	// invoiceCompanyName mirrors the form's name field
	if patch.Profile.Address.InvoiceCompanyName != "Sunrise Lodge" {
		t.Fatalf("invoiceCompanyName: %q", patch.Profile.Address.InvoiceCompanyName)
	}
}

func TestToBackendCardsClearedWhenNotAccepting(t *testing.T) {
	tr := NewTransformer("")
	original := validBackendProfile()
	f := tr.ToForm(original)

	no := false
	f.PaymentInfo.AcceptCreditCards = &no
	patch := tr.ToBackend(f, original)
	if patch.CanProcessPayment == nil || *patch.CanProcessPayment {
		t.Fatalf("canProcessPayment: %v", patch.CanProcessPayment)
	}
	if patch.CreditCards == nil || len(*patch.CreditCards) != 0 {
		t.Fatalf("cards should be cleared: %+v", patch.CreditCards)
	}
}

// An unmodified form must round-trip: applying the patch it produces to the
// original record and mapping back yields the same form.
func TestRoundTripIdempotence(t *testing.T) {
	tr := NewTransformer("")
	original := validBackendProfile()

	f1 := tr.ToForm(original)
	patch := tr.ToBackend(f1, original)
	merged := patch.ApplyTo(original)
	f2 := tr.ToForm(merged)

	if diff := cmp.Diff(f1, f2); diff != "" {
		t.Fatalf("round trip not idempotent (-first +second):\n%s", diff)
	}
}
