package app

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"

	"myaccount/internal/domain"
)

// UserType written on every profile save; the account screen only exists for
// property managers.
const userTypePropertyManager = "PropertyManager"

/********** card network translation (total for the 5 known codes) **********/

var backendToFormCards = map[string]domain.CardType{
	"MASTER_CARD":      domain.CardMasterCard,
	"VISA":             domain.CardVisa,
	"AMERICAN_EXPRESS": domain.CardAmericanExpress,
	"DINERS_CLUB":      domain.CardDinersClub,
	"DISCOVER":         domain.CardDiscover,
}

var formToBackendCards = map[domain.CardType]string{
	domain.CardMasterCard:      "MASTER_CARD",
	domain.CardVisa:            "VISA",
	domain.CardAmericanExpress: "AMERICAN_EXPRESS",
	domain.CardDinersClub:      "DINERS_CLUB",
	domain.CardDiscover:        "DISCOVER",
}

// Transformer converts between the server-canonical BackendProfile and the
// client-canonical FormProfile. Both directions are pure; anomalies degrade
// gracefully and are logged, never fatal.
type Transformer struct {
	// CallingCode is prepended to phone numbers that arrive without a "+"
	// prefix before canonicalization.
	CallingCode string
}

func NewTransformer(callingCode string) Transformer {
	if callingCode == "" {
		callingCode = "+1"
	}
	return Transformer{CallingCode: callingCode}
}

// ToForm maps a backend record into the form shape: identity and address
// fields verbatim, phone canonicalized to E.164, country/state/language
// upper-cased, billing address absent when the registration address is
// reused, card codes translated with unknown codes dropped.
func (t Transformer) ToForm(b domain.BackendProfile) domain.FormProfile {
	p := b.Profile

	var billing *domain.BillingAddress
	if !p.Address.UseRegistrationAddress {
		billing = &domain.BillingAddress{
			Country: p.Address.InvoiceCountry,
			City:    p.Address.InvoiceCity,
			Zipcode: p.Address.InvoiceZip,
			Address: p.Address.InvoiceAddress,
		}
	}

	cards := make([]domain.CardType, 0, len(b.CreditCards))
	for _, code := range b.CreditCards {
		ct, ok := backendToFormCards[code]
		if !ok {
			// Observed behavior: unrecognized networks are dropped silently.
			log.Debug().Str("code", code).Msg("dropping unrecognized card network code")
			continue
		}
		cards = append(cards, ct)
	}

	accept := b.CanProcessPayment

	return domain.FormProfile{
		BasicInfo: domain.BasicInfo{
			Name:           p.Name,
			Email:          p.Email,
			Phone:          t.normalizePhone(p.Phone),
			Website:        p.WebSite,
			Company:        p.OtherCompanyOperatingName,
			OtherBussiness: p.CompanyName,
		},
		AddressInfo: domain.AddressInfo{
			Country:                 strings.ToUpper(p.Address.Country),
			State:                   strings.ToUpper(p.Address.State),
			City:                    p.Address.City,
			Zipcode:                 p.Address.ZipCode,
			Address:                 p.Address.Address,
			UseMainAddressAsBilling: p.Address.UseRegistrationAddress,
		},
		AccountInfo: domain.AccountInfo{
			Currency: p.Currency,
			Language: strings.ToUpper(p.Language),
		},
		BillingAddress: billing,
		PropertyManagment: domain.PropertyManagment{
			PMSName:        p.PMSName,
			PMSAccountID:   p.PMSID,
			TokeyKey:       p.TokeyKey,
			TokenSecret:    p.TokenSecret,
			BookWebAddress: p.BookWebAddress,
		},
		PaymentInfo: domain.PaymentInfo{
			AcceptCreditCards: &accept,
			AcceptedCardTypes: cards,
		},
	}
}

// ToBackend builds the profile-form's update payload. The payload carries the
// full mutated profile, copies the fields the form never owns (partyId, the
// two supplier-API flags, pmsId, userType) from the original record, and
// passes contacts, channel contacts, policies, deposits and validation
// settings through untouched so saves from other tabs are not clobbered.
func (t Transformer) ToBackend(f domain.FormProfile, original domain.BackendProfile) domain.AccountPatch {
	accept := f.PaymentInfo.AcceptCreditCards != nil && *f.PaymentInfo.AcceptCreditCards

	cards := []string{}
	if accept {
		for _, ct := range f.PaymentInfo.AcceptedCardTypes {
			if code, ok := formToBackendCards[ct]; ok {
				cards = append(cards, code)
			}
		}
	}

	addr := original.Profile.Address
	addr.Country = f.AddressInfo.Country
	addr.State = f.AddressInfo.State
	addr.City = f.AddressInfo.City
	addr.ZipCode = f.AddressInfo.Zipcode
	addr.Address = f.AddressInfo.Address
	addr.StreetAddress = f.AddressInfo.Address
	addr.UseRegistrationAddress = f.AddressInfo.UseMainAddressAsBilling
	addr.InvoiceCompanyName = f.BasicInfo.Name
	if f.BillingAddress != nil {
		addr.InvoiceCountry = f.BillingAddress.Country
		addr.InvoiceCity = f.BillingAddress.City
		addr.InvoiceZip = f.BillingAddress.Zipcode
		addr.InvoiceAddress = f.BillingAddress.Address
	}

	profile := domain.Profile{
		Name:                      f.BasicInfo.Name,
		CompanyName:               f.BasicInfo.OtherBussiness,
		OtherCompanyOperatingName: f.BasicInfo.Company,
		Phone:                     f.BasicInfo.Phone,
		Email:                     f.BasicInfo.Email,
		Address:                   addr,
		PMSName:                   f.PropertyManagment.PMSName,
		PMSID:                     original.Profile.PMSID,
		Language:                  f.AccountInfo.Language,
		Currency:                  f.AccountInfo.Currency,
		WebSite:                   f.BasicInfo.Website,
		UserType:                  userTypePropertyManager,
		TokeyKey:                  f.PropertyManagment.TokeyKey,
		TokenSecret:               f.PropertyManagment.TokenSecret,
		BookWebAddress:            f.PropertyManagment.BookWebAddress,
	}

	contacts := original.Contacts
	channel := original.ChannelSpecificContacts
	policies := original.Policies
	deposits := original.Deposits
	settings := original.ValidationSettingsList

	return domain.AccountPatch{
		CanProcessPayment:       &accept,
		CreditCards:             &cards,
		PartyID:                 original.PartyID,
		PMBelongsToSupplierAPI:  original.PMBelongsToSupplierAPI,
		PMSBelongsToSupplierAPI: original.PMSBelongsToSupplierAPI,
		Profile:                 &profile,
		Contacts:                &contacts,
		ChannelSpecificContacts: &channel,
		Policies:                &policies,
		Deposits:                &deposits,
		ValidationSettingsList:  &settings,
	}
}

// normalizePhone canonicalizes a backend phone number to E.164. Numbers
// without a "+" get the default calling code first (a single leading "0" is
// stripped). Anything that still doesn't parse to a possible number keeps its
// raw value; that is a soft anomaly, not a failure.
func (t Transformer) normalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	withCode := raw
	if !strings.HasPrefix(raw, "+") {
		if strings.HasPrefix(raw, "0") {
			withCode = t.CallingCode + raw[1:]
		} else {
			withCode = t.CallingCode + raw
		}
	}
	num, err := phonenumbers.Parse(withCode, "")
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		log.Warn().Str("phone", raw).Msg("phone number not parseable, keeping raw value")
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
