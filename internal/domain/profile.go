package domain

// BackendProfile is the server-canonical account record as returned by the
// supplier API's profileInfo endpoint. Field names follow the wire contract.
type BackendProfile struct {
	Profile                 Profile             `json:"profile"`
	Contacts                []Contact           `json:"contacts"`
	ChannelSpecificContacts []ChannelContact    `json:"channelSpecificContacts"`
	Policies                Policies            `json:"policies"`
	Deposits                Deposits            `json:"deposits"`
	ValidationSettingsList  []ValidationSetting `json:"validationSettingsList"`
	CreditCards             []string            `json:"creditCards"`
	CanProcessPayment       bool                `json:"canProcessPayment"`
	PartyID                 int64               `json:"partyId"`
	PMBelongsToSupplierAPI  bool                `json:"pmBelongsToSupplierApi"`
	PMSBelongsToSupplierAPI bool                `json:"pmsBelongsToSupplierApi"`
}

type Profile struct {
	Name                      string  `json:"name"`
	CompanyName               string  `json:"companyName"`
	OtherCompanyOperatingName string  `json:"otherCompanyOperatingName"`
	Phone                     string  `json:"phone"`
	Email                     string  `json:"email"`
	Address                   Address `json:"address"`
	PMSName                   string  `json:"pmsName"`
	PMSID                     string  `json:"pmsId"`
	Language                  string  `json:"language"`
	Currency                  string  `json:"currency"`
	WebSite                   string  `json:"webSite"`
	UserType                  string  `json:"userType"`
	TokeyKey                  string  `json:"tokeyKey"`
	TokenSecret               string  `json:"tokenSecret"`
	BookWebAddress            string  `json:"bookWebAddress"`
}

// Address carries both the registration address and the invoice (billing)
// address. When UseRegistrationAddress is true the invoice fields are ignored
// by the client.
type Address struct {
	City                   string `json:"city"`
	State                  string `json:"state"`
	StreetAddress          string `json:"streetAddress"`
	ZipCode                string `json:"zipCode"`
	Country                string `json:"country"`
	InvoiceCity            string `json:"invoiceCity"`
	InvoiceZip             string `json:"invoiceZip"`
	InvoiceAddress         string `json:"invoiceAddress"`
	InvoiceCountry         string `json:"invoiceCountry"`
	InvoiceCompanyName     string `json:"invoiceCompanyName"`
	UseRegistrationAddress bool   `json:"useRegistrationAddress"`
	Address                string `json:"address"`
}

type Contact struct {
	ID           int64  `json:"id"`
	PMID         string `json:"pmId"`
	EmailAddress string `json:"emailAddress"`
	Phone        string `json:"phone"`
	Version      string `json:"version"`
	Type         string `json:"type"`
	Name         string `json:"name"`
}

type ChannelContact struct {
	ID                  int64  `json:"id"`
	ChannelAbbreviation string `json:"channelAbbreviation"`
	EmailAddress        string `json:"emailAddress"`
	Name                string `json:"name"`
}

// Policies holds arrival/departure times as HH:MM:SS strings.
type Policies struct {
	Arrival       string `json:"arrival"`
	Departure     string `json:"departure"`
	MinCheckInAge int    `json:"minCheckInAge"`
	LeadTime      int    `json:"leadTime"`
}

// Deposit collection modes on the wire.
const (
	DepositTypeFull  = "FULL"
	DepositTypeSplit = "SPLIT"

	SplitDepositPercentage = "PERCENTAGE"
	SplitDepositFlat       = "FLAT"
)

type Deposits struct {
	Type         string        `json:"type"`
	SplitPayment *SplitPayment `json:"splitPayment,omitempty"`
}

type SplitPayment struct {
	DepositType       string  `json:"depositType"`
	Value             float64 `json:"value"`
	SecondPaymentDays int     `json:"secondPaymentDays"`
}

// Named boolean validation settings. Identifiers are owned by the backend and
// must be preserved on save.
const (
	SettingAtLeastOneFee = "At least 1 fee"
	SettingAtLeastOneTax = "At least 1 tax"
)

type ValidationSetting struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Validate bool   `json:"validate"`
}

// AccountPatch is the update payload for the account endpoint. Each sub-form
// declares ownership by setting only its own pointers; nil sections are
// omitted from the request so one tab's save cannot revert another tab's
// already-persisted fields. PartyID and the two supplier-API flags are never
// user-editable and are always copied from the original record.
type AccountPatch struct {
	CanProcessPayment       *bool                `json:"canProcessPayment,omitempty"`
	CreditCards             *[]string            `json:"creditCards,omitempty"`
	PartyID                 int64                `json:"partyId"`
	PMBelongsToSupplierAPI  bool                 `json:"pmBelongsToSupplierApi"`
	PMSBelongsToSupplierAPI bool                 `json:"pmsBelongsToSupplierApi"`
	Profile                 *Profile             `json:"profile,omitempty"`
	Contacts                *[]Contact           `json:"contacts,omitempty"`
	ChannelSpecificContacts *[]ChannelContact    `json:"channelSpecificContacts,omitempty"`
	Policies                *Policies            `json:"policies,omitempty"`
	Deposits                *Deposits            `json:"deposits,omitempty"`
	ValidationSettingsList  *[]ValidationSetting `json:"validationSettingsList,omitempty"`
}

// ApplyTo merges the patch over b and returns the merged record. Used to keep
// the locally cached BackendProfile in sync after a successful save without
// re-fetching.
func (p AccountPatch) ApplyTo(b BackendProfile) BackendProfile {
	out := b
	out.PartyID = p.PartyID
	out.PMBelongsToSupplierAPI = p.PMBelongsToSupplierAPI
	out.PMSBelongsToSupplierAPI = p.PMSBelongsToSupplierAPI
	if p.CanProcessPayment != nil {
		out.CanProcessPayment = *p.CanProcessPayment
	}
	if p.CreditCards != nil {
		out.CreditCards = *p.CreditCards
	}
	if p.Profile != nil {
		out.Profile = *p.Profile
	}
	if p.Contacts != nil {
		out.Contacts = *p.Contacts
	}
	if p.ChannelSpecificContacts != nil {
		out.ChannelSpecificContacts = *p.ChannelSpecificContacts
	}
	if p.Policies != nil {
		out.Policies = *p.Policies
	}
	if p.Deposits != nil {
		out.Deposits = *p.Deposits
	}
	if p.ValidationSettingsList != nil {
		out.ValidationSettingsList = *p.ValidationSettingsList
	}
	return out
}
