package domain

// Wire shapes of the reference-data lookups. Each list has its own field
// naming on the supplier side; the options service maps them all to Option.

type CurrencyData struct {
	DisplayName  string `json:"displayName"`
	CurrencyCode string `json:"currencyCode"`
}

type CountryData struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type LanguageData struct {
	LanguageName string `json:"languageName"`
	Language     string `json:"language"`
}

type StateData struct {
	Code        string `json:"code"`
	CountryCode string `json:"countryCode"`
	Name        string `json:"name"`
}

type PMSData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
