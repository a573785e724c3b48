// internal/adapters/supplier/client.go
package supplier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"myaccount/internal/adapters/observability"
	"myaccount/internal/domain"
)

// Client talks to the supplier API. Every response arrives in an envelope
// ({data, is_error, errorMessage}); the client unwraps successes to their data
// payload and turns is_error envelopes into BusinessError.
//
// Authorization: the session token travels in the "jwt" header. On a 401 the
// client performs exactly one re-authentication round-trip and replays the
// original request once (marked "x-retry"); a second 401, or a failed
// refresh, clears the session — the only retry policy in the system.
type Client struct {
	base string
	hc   *http.Client
	sess domain.Session
	rl   *rate.Limiter
}

func New(base string, sess domain.Session, rps int) (*Client, error) {
	if sess == nil {
		return nil, fmt.Errorf("session is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		sess: sess,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

func (c *Client) GetProfile(ctx context.Context) (domain.BackendProfile, error) {
	// profileInfo wraps the record in a single-element array.
	var rows []domain.BackendProfile
	if err := c.do(ctx, http.MethodGet, "account/profileInfo", nil, &rows); err != nil {
		return domain.BackendProfile{}, err
	}
	if len(rows) == 0 {
		return domain.BackendProfile{}, domain.ErrNotFound
	}
	return rows[0], nil
}

func (c *Client) UpdateAccount(ctx context.Context, patch domain.AccountPatch) error {
	return c.do(ctx, http.MethodPut, "account", map[string]any{"data": patch}, nil)
}

func (c *Client) GetContactTypes(ctx context.Context) ([]domain.ContactType, error) {
	var rows []struct {
		TransportAccount []struct {
			ContactTypeEnum  string `json:"contactTypeEnum"`
			ContactTypeValue string `json:"contactTypeValue"`
		} `json:"transportAccount"`
	}
	if err := c.do(ctx, http.MethodGet, "account/contactTypes", nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	out := make([]domain.ContactType, 0, len(rows[0].TransportAccount))
	for _, t := range rows[0].TransportAccount {
		out = append(out, domain.ContactType{Enum: t.ContactTypeEnum, Value: t.ContactTypeValue})
	}
	return out, nil
}

func (c *Client) GetEmailNotifications(ctx context.Context, contactID int64) ([]domain.NotificationSetting, error) {
	var rows []struct {
		Configuration []domain.NotificationSetting `json:"configuration"`
	}
	path := fmt.Sprintf("account/emailNotifications/%d", contactID)
	if err := c.do(ctx, http.MethodGet, path, nil, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].Configuration, nil
}

func (c *Client) SaveEmailNotifications(ctx context.Context, contactID int64, settings []domain.NotificationSetting) error {
	body := map[string]any{"data": map[string]any{
		"configuration":       settings,
		"additionalContactId": contactID,
	}}
	return c.do(ctx, http.MethodPut, "account/updateEmailNotifications", body, nil)
}

func (c *Client) DeleteContact(ctx context.Context, contactID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("account/deleteAdditionalContact/%d", contactID), nil, nil)
}

func (c *Client) GetCurrencies(ctx context.Context) ([]domain.CurrencyData, error) {
	var out []domain.CurrencyData
	return out, c.do(ctx, http.MethodGet, "listings/currencies", nil, &out)
}

func (c *Client) GetLanguages(ctx context.Context) ([]domain.LanguageData, error) {
	var out []domain.LanguageData
	return out, c.do(ctx, http.MethodGet, "listings/languages", nil, &out)
}

func (c *Client) GetCountries(ctx context.Context) ([]domain.CountryData, error) {
	var out []domain.CountryData
	return out, c.do(ctx, http.MethodGet, "listings/location/countries", nil, &out)
}

func (c *Client) GetStatesByCountry(ctx context.Context, countryCode string) ([]domain.StateData, error) {
	var out []domain.StateData
	path := "listings/location/country/states?countryCode=" + countryCode
	return out, c.do(ctx, http.MethodGet, path, nil, &out)
}

func (c *Client) GetPMSList(ctx context.Context) ([]domain.PMSData, error) {
	var out []domain.PMSData
	return out, c.do(ctx, http.MethodGet, "account/pmsList", nil, &out)
}

// ---- Internals ----

var ErrUnauthorized = errors.New("supplier: unauthorized")

type envelope struct {
	Message      string          `json:"message"`
	ErrorMessage []string        `json:"errorMessage"`
	Code         string          `json:"code"`
	Data         json.RawMessage `json:"data"`
	IsError      bool            `json:"is_error"`
}

// do performs one request with client-side rate limiting, the one-shot
// re-authentication flow, and envelope decoding into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
	}

	start := time.Now()
	status, raw, err := c.attempt(ctx, method, path, payload, false)
	if err == nil && status == http.StatusUnauthorized {
		// One refresh round-trip, then replay the original request once.
		if rerr := c.reauthorize(ctx); rerr != nil {
			c.sess.Logout("expired")
			observability.ObserveExternal("supplier", endpointLabel(path), status, time.Since(start))
			return domain.ErrSessionExpired
		}
		status, raw, err = c.attempt(ctx, method, path, payload, true)
		if err == nil && status == http.StatusUnauthorized {
			c.sess.Logout("expired")
			observability.ObserveExternal("supplier", endpointLabel(path), status, time.Since(start))
			return domain.ErrSessionExpired
		}
	}
	observability.ObserveExternal("supplier", endpointLabel(path), status, time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}

	switch {
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusNoContent:
		return nil
	case status < 200 || status > 299:
		return fmt.Errorf("supplier %s %s: bad status %d: %s",
			method, path, status, strings.TrimSpace(string(truncate(raw, 4096))))
	}

	return decodeEnvelope(raw, out)
}

// attempt builds a fresh request (the body reader can't be reused) and reads
// the full response.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, retry bool) (int, []byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+"/"+path, rd)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if tok := c.sess.Token(); tok != "" {
		req.Header.Set("jwt", tok)
	}
	if retry {
		req.Header.Set("x-retry", "true")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, raw, nil
}

// reauthorize fetches a fresh token for the session's user and installs it.
func (c *Client) reauthorize(ctx context.Context) error {
	userID := c.sess.UserID()
	if userID == "" {
		return fmt.Errorf("no user to reauthorize")
	}
	body, err := json.Marshal(map[string]string{"userId": userID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/reauthorize", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reauthorize: status %d", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if out.Token == "" {
		return fmt.Errorf("reauthorize: no token received")
	}
	c.sess.SetToken(out.Token)
	observability.ObserveSession("refresh")
	return nil
}

// decodeEnvelope unwraps {data, is_error, errorMessage} into out. Some
// reference endpoints return a bare JSON array instead of an envelope; that
// shape is accepted as-is.
func decodeEnvelope(raw []byte, out any) error {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if out == nil {
			return nil
		}
		return json.Unmarshal(trimmed, out)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if env.IsError {
		return &domain.BusinessError{Code: env.Code, Messages: env.ErrorMessage}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// endpointLabel strips query strings and numeric path tails so the metrics
// cardinality stays bounded.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }) < 0 {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
