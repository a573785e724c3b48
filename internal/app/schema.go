package app

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"myaccount/internal/domain"
)

// PMS integrations that require API credentials. Matching is a
// case-insensitive substring test on the PMS name.
var credentialedPMS = []string{"siteminder", "track"}

var (
	phonePattern   = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	websitePattern = regexp.MustCompile(`(?i)^(https?://)?([\w.-]+\.[a-z]{2,})(/.*)?$`)
)

// SchemaValidator checks a FormProfile against the profile-form rule set:
// per-leaf constraints from the struct tags plus the two cross-field
// refinements. The zero value is not usable; call NewSchemaValidator.
type SchemaValidator struct {
	v *validator.Validate
}

func NewSchemaValidator() *SchemaValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report paths by json name so failures line up with the wire shape.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	must("phone_intl", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	must("website", func(fl validator.FieldLevel) bool {
		return websitePattern.MatchString(fl.Field().String())
	})

	return &SchemaValidator{v: v}
}

// Validate returns nil when the profile is acceptable, otherwise a
// ValidationError listing every failing field path. Cross-field failures use
// the fixed paths "tokeyKey" and "billingAddress".
func (s *SchemaValidator) Validate(f domain.FormProfile) *domain.ValidationError {
	var fields []domain.FieldError

	if err := s.v.Struct(f); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			fields = append(fields, domain.FieldError{Path: "form", Message: err.Error()})
		}
		for _, fe := range verrs {
			path := trimRootNamespace(fe.Namespace())
			fields = append(fields, domain.FieldError{Path: path, Message: messageFor(path, fe.Tag())})
		}
	}

	if requiresPMSCredentials(f.PropertyManagment.PMSName) {
		pm := f.PropertyManagment
		if strings.TrimSpace(pm.TokeyKey) == "" ||
			strings.TrimSpace(pm.TokenSecret) == "" ||
			strings.TrimSpace(pm.BookWebAddress) == "" {
			fields = append(fields, domain.FieldError{
				Path:    "tokeyKey",
				Message: "Token Key, Token Secret, and URL are required for Siteminder or Track",
			})
		}
	}

	if !f.AddressInfo.UseMainAddressAsBilling {
		b := f.BillingAddress
		if b == nil || b.Country == "" || b.City == "" || b.Address == "" || b.Zipcode == "" {
			fields = append(fields, domain.FieldError{
				Path:    "billingAddress",
				Message: "Billing address is required when not using main address",
			})
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: fields}
}

func requiresPMSCredentials(pmsName string) bool {
	low := strings.ToLower(pmsName)
	for _, pms := range credentialedPMS {
		if strings.Contains(low, pms) {
			return true
		}
	}
	return false
}

// trimRootNamespace strips the leading struct name from a validator
// namespace: "FormProfile.basicInfo.name" -> "basicInfo.name".
func trimRootNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Inline messages shown next to each field, keyed by path. Format failures
// (email/phone/website, card enum) override the required-style message.
var fieldMessages = map[string]string{
	"basicInfo.name":                 "Name is required",
	"basicInfo.email":                "Email is required",
	"basicInfo.phone":                "Phone number is required",
	"basicInfo.website":              "Website is required",
	"basicInfo.company":              "Company name is required",
	"basicInfo.otherBussiness":       "Other business name is required",
	"addressInfo.country":            "Country required",
	"addressInfo.state":              "State required",
	"addressInfo.city":               "City required",
	"addressInfo.zipcode":            "ZipCode required",
	"addressInfo.address":            "Address required",
	"accountInfo.currency":           "Currency required",
	"accountInfo.language":           "Language required",
	"propertyManagment.pmsName":      "PMS Name required",
	"propertyManagment.pmsAccountId": "PMS Account Id required",
}

func messageFor(path, tag string) string {
	switch tag {
	case "phone_intl":
		return "Invalid phone number format"
	case "website":
		return "Invalid website format"
	case "oneof":
		return "Unsupported card type"
	}
	// min on the phone field doubles as its required message.
	if msg, ok := fieldMessages[stripIndexes(path)]; ok {
		return msg
	}
	return "Invalid value"
}

// stripIndexes drops slice indexes so "paymentInfo.acceptedCardTypes[2]"
// resolves like its field.
func stripIndexes(path string) string {
	if i := strings.IndexByte(path, '['); i >= 0 {
		if j := strings.IndexByte(path[i:], ']'); j >= 0 {
			return path[:i] + stripIndexes(path[i+j+1:])
		}
	}
	return path
}
