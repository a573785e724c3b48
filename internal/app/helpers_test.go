package app

import (
	"context"
	"encoding/json"
	"sync"

	"myaccount/internal/domain"
)

// fakeSupplier records update payloads and serves canned reference data.
type fakeSupplier struct {
	mu      sync.Mutex
	profile domain.BackendProfile
	patches []domain.AccountPatch

	updateErr error
	// barrier, when set, is waited on inside UpdateAccount so tests can
	// interleave a reset with an in-flight submit.
	barrier chan struct{}

	currencies []domain.CurrencyData
	languages  []domain.LanguageData
	countries  []domain.CountryData
	states     map[string][]domain.StateData
	pms        []domain.PMSData
	calls      map[string]int
}

func newFakeSupplier() *fakeSupplier {
	return &fakeSupplier{states: map[string][]domain.StateData{}, calls: map[string]int{}}
}

func (f *fakeSupplier) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeSupplier) GetProfile(ctx context.Context) (domain.BackendProfile, error) {
	f.count("GetProfile")
	return f.profile, nil
}

func (f *fakeSupplier) UpdateAccount(ctx context.Context, patch domain.AccountPatch) error {
	f.count("UpdateAccount")
	if f.barrier != nil {
		<-f.barrier
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.patches = append(f.patches, patch)
	return nil
}

func (f *fakeSupplier) lastPatch() (domain.AccountPatch, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.patches) == 0 {
		return domain.AccountPatch{}, false
	}
	return f.patches[len(f.patches)-1], true
}

func (f *fakeSupplier) GetContactTypes(ctx context.Context) ([]domain.ContactType, error) {
	f.count("GetContactTypes")
	return nil, nil
}

func (f *fakeSupplier) GetEmailNotifications(ctx context.Context, contactID int64) ([]domain.NotificationSetting, error) {
	f.count("GetEmailNotifications")
	return nil, nil
}

func (f *fakeSupplier) SaveEmailNotifications(ctx context.Context, contactID int64, settings []domain.NotificationSetting) error {
	f.count("SaveEmailNotifications")
	return nil
}

func (f *fakeSupplier) DeleteContact(ctx context.Context, contactID int64) error {
	f.count("DeleteContact")
	return nil
}

func (f *fakeSupplier) GetCurrencies(ctx context.Context) ([]domain.CurrencyData, error) {
	f.count("GetCurrencies")
	return f.currencies, nil
}

func (f *fakeSupplier) GetLanguages(ctx context.Context) ([]domain.LanguageData, error) {
	f.count("GetLanguages")
	return f.languages, nil
}

func (f *fakeSupplier) GetCountries(ctx context.Context) ([]domain.CountryData, error) {
	f.count("GetCountries")
	return f.countries, nil
}

func (f *fakeSupplier) GetStatesByCountry(ctx context.Context, countryCode string) ([]domain.StateData, error) {
	f.count("GetStatesByCountry")
	return f.states[countryCode], nil
}

func (f *fakeSupplier) GetPMSList(ctx context.Context) ([]domain.PMSData, error) {
	f.count("GetPMSList")
	return f.pms, nil
}

// fakeNotifier collects messages by level.
type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
	warnings  []string
}

func (n *fakeNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *fakeNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *fakeNotifier) Warning(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, msg)
}

// memCache is an in-process domain.Cache for the options tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// validBackendProfile is a record that maps to a form passing every rule.
func validBackendProfile() domain.BackendProfile {
	return domain.BackendProfile{
		Profile: domain.Profile{
			Name:                      "Sunset Lodge",
			CompanyName:               "Sunset Holdings LLC",
			OtherCompanyOperatingName: "Sunset Lodge Inc",
			Phone:                     "5551234567",
			Email:                     "owner@sunsetlodge.com",
			WebSite:                   "https://sunsetlodge.com",
			Language:                  "en",
			Currency:                  "USD",
			PMSName:                   "Cloudbeds",
			PMSID:                     "42",
			Address: domain.Address{
				Country:                "us",
				State:                  "ca",
				City:                   "San Diego",
				ZipCode:                "92101",
				Address:                "500 Harbor Dr",
				UseRegistrationAddress: true,
			},
		},
		Policies: domain.Policies{
			Arrival:       "15:00:00",
			Departure:     "11:00:00",
			MinCheckInAge: 21,
			LeadTime:      2,
		},
		Deposits:          domain.Deposits{Type: domain.DepositTypeFull},
		CreditCards:       []string{"VISA", "MASTER_CARD"},
		CanProcessPayment: true,
		PartyID:           9001,
		ValidationSettingsList: []domain.ValidationSetting{
			{ID: 11, Name: domain.SettingAtLeastOneFee, Validate: true},
			{ID: 12, Name: domain.SettingAtLeastOneTax, Validate: false},
		},
	}
}
