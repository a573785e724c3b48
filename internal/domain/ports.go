package domain

import "context"

// SupplierClient is the remote data gateway. Every call carries the session
// token; a 401 triggers the gateway's one-shot re-authentication before the
// error surfaces here.
type SupplierClient interface {
	GetProfile(ctx context.Context) (BackendProfile, error)
	UpdateAccount(ctx context.Context, patch AccountPatch) error

	GetContactTypes(ctx context.Context) ([]ContactType, error)
	GetEmailNotifications(ctx context.Context, contactID int64) ([]NotificationSetting, error)
	SaveEmailNotifications(ctx context.Context, contactID int64, settings []NotificationSetting) error
	DeleteContact(ctx context.Context, contactID int64) error

	GetCurrencies(ctx context.Context) ([]CurrencyData, error)
	GetLanguages(ctx context.Context) ([]LanguageData, error)
	GetCountries(ctx context.Context) ([]CountryData, error)
	GetStatesByCountry(ctx context.Context, countryCode string) ([]StateData, error)
	GetPMSList(ctx context.Context) ([]PMSData, error)
}

// Session is the explicit session context handed to the gateway. Only the
// login, refresh and logout paths mutate the token; everything else reads it.
type Session interface {
	Token() string
	SetToken(token string)
	UserID() string
	Logout(reason string)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Notifier surfaces transient user-facing notifications (the toast rail of
// the account screen).
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Warning(msg string)
}
