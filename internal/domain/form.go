package domain

// CardType identifies a card network in the client-canonical form shape. The
// backend uses a disjoint enumeration of string codes; translation lives in
// the transformer.
type CardType string

const (
	CardMasterCard      CardType = "masterCard"
	CardVisa            CardType = "visa"
	CardAmericanExpress CardType = "americanExpress"
	CardDinersClub      CardType = "dinersClub"
	CardDiscover        CardType = "discover"
)

// CardTypes is the fixed set of accepted card identifiers.
var CardTypes = []CardType{
	CardMasterCard,
	CardVisa,
	CardAmericanExpress,
	CardDinersClub,
	CardDiscover,
}

// FormProfile is the client-canonical account record, grouped by UI concern.
// Leaf constraints are declared as validator tags; the cross-field rules
// (billing address, PMS integration credentials) are enforced by the schema
// validator because their failure paths don't map onto single fields.
//
// BillingAddress is present only when the billing address differs from the
// main address (AddressInfo.UseMainAddressAsBilling == false).
type FormProfile struct {
	BasicInfo         BasicInfo          `json:"basicInfo"`
	AddressInfo       AddressInfo        `json:"addressInfo"`
	AccountInfo       AccountInfo        `json:"accountInfo"`
	BillingAddress    *BillingAddress    `json:"billingAddress,omitempty"`
	PropertyManagment PropertyManagment  `json:"propertyManagment"`
	PaymentInfo       PaymentInfo        `json:"paymentInfo"`
}

type BasicInfo struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,min=12,phone_intl"`
	Website string `json:"website" validate:"required,website"`
	Company string `json:"company" validate:"required"`
	// OtherBussiness keeps the production wire spelling.
	OtherBussiness string `json:"otherBussiness" validate:"required"`
}

type AddressInfo struct {
	Country                 string `json:"country" validate:"required"`
	State                   string `json:"state" validate:"required"`
	City                    string `json:"city" validate:"required"`
	Zipcode                 string `json:"zipcode" validate:"required"`
	Address                 string `json:"address" validate:"required"`
	UseMainAddressAsBilling bool   `json:"useMainAddressAsBilling"`
}

// BillingAddress fields carry no tags: emptiness only matters when the main
// address is not used for billing, which is a cross-field rule.
type BillingAddress struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Address string `json:"address"`
	Zipcode string `json:"zipcode"`
}

type AccountInfo struct {
	Currency string `json:"currency" validate:"required"`
	Language string `json:"language" validate:"required"`
}

// PropertyManagment — spelling pinned by the wire contract, as is TokeyKey.
type PropertyManagment struct {
	PMSName        string `json:"pmsName" validate:"required"`
	PMSAccountID   string `json:"pmsAccountId" validate:"required"`
	TokeyKey       string `json:"tokeyKey"`
	TokenSecret    string `json:"tokenSecret"`
	BookWebAddress string `json:"bookWebAddress"`
}

type PaymentInfo struct {
	// AcceptCreditCards is tri-state: nil means the account never answered.
	AcceptCreditCards *bool      `json:"acceptCreditCards"`
	AcceptedCardTypes []CardType `json:"acceptedCardTypes" validate:"dive,oneof=masterCard visa americanExpress dinersClub discover"`
}

// Option is a {value,label} pair for a select list.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options aggregates the five lookup lists the account forms render from.
type Options struct {
	Currencies []Option `json:"currencies"`
	Languages  []Option `json:"languages"`
	Countries  []Option `json:"countries"`
	States     []Option `json:"states"`
	PMSList    []Option `json:"pmsList"`
}

type ContactType struct {
	Enum  string `json:"enum"`
	Value string `json:"value"`
}

// NotificationSetting is one named email-notification toggle for an
// additional contact.
type NotificationSetting struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
}
