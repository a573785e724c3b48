// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"myaccount/internal/app"
	"myaccount/internal/domain"
)

// Handlers is the HTTP face of the account screen: one form session, one
// policies session, the option lists and the contact operations.
type Handlers struct {
	Form     *app.FormService
	Policies *app.PolicyService
	Options  *app.OptionsService
	Contacts *app.ContactsService
	Supplier domain.SupplierClient
}

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1/account", func(r chi.Router) {
		r.Get("/form", h.getForm)
		r.Patch("/form/fields", h.patchField)
		r.Post("/form/submit", h.submitForm)
		r.Post("/form/reset", h.resetForm)

		r.Get("/policies", h.getPolicies)
		r.Put("/policies", h.putPolicies)
		r.Post("/policies/reset", h.resetPolicies)
	})

	s.mux.Get("/v1/options", h.getOptions)
	s.mux.Get("/v1/options/states/{country}", h.getStates)

	s.mux.Route("/v1/contacts", func(r chi.Router) {
		r.Get("/types", h.getContactTypes)
		r.Get("/{id}/notifications", h.getNotifications)
		r.Put("/{id}/notifications", h.putNotifications)
		r.Delete("/{id}", h.deleteContact)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeDomainErr maps the service-layer error taxonomy onto problem+json.
func writeDomainErr(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	var berr *domain.BusinessError
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		writeProblem(w, http.StatusUnauthorized, "Session Expired", "please sign in again")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, domain.ErrNotLoaded):
		writeProblem(w, http.StatusConflict, "Not Loaded", "form has not been loaded")
	case errors.As(err, &verr):
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		p := problem{Type: "about:blank", Title: "Validation Failed", Status: http.StatusUnprocessableEntity, Fields: verr.Fields}
		if err := json.NewEncoder(w).Encode(p); err != nil {
			log.Error().Err(err).Msg("write validation problem failed")
		}
	case errors.As(err, &berr):
		writeProblem(w, http.StatusBadGateway, "Upstream Rejected", strings.Join(berr.Messages, "; "))
	default:
		writeProblem(w, http.StatusBadGateway, "Upstream Error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON body failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- Shared form ----

type formView struct {
	Phase   string              `json:"phase"`
	Dirty   bool                `json:"dirty"`
	Valid   bool                `json:"valid"`
	Profile domain.FormProfile  `json:"profile"`
	Errors  []domain.FieldError `json:"errors"`
}

// ensureLoaded fetches the backend record on the session's first form access.
// Later calls are no-ops: the coordinator discards refetched records.
func (h *Handlers) ensureLoaded(r *http.Request) error {
	if h.Form.Phase() != app.PhaseUninitialized && h.Policies.Loaded() {
		return nil
	}
	b, err := h.Supplier.GetProfile(r.Context())
	if err != nil {
		return err
	}
	h.Form.Load(b)
	if !h.Policies.Loaded() {
		h.Policies.Load(b)
	}
	return nil
}

func (h *Handlers) formState() formView {
	return formView{
		Phase:   h.Form.Phase().String(),
		Dirty:   h.Form.Dirty(),
		Valid:   h.Form.Valid(),
		Profile: h.Form.Profile(),
		Errors:  h.Form.Errors(),
	}
}

func (h *Handlers) getForm(w http.ResponseWriter, r *http.Request) {
	if err := h.ensureLoaded(r); err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.formState())
}

func (h *Handlers) patchField(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Path  string          `json:"path"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Path == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected {path, value}")
		return
	}
	var value any
	if len(in.Value) > 0 {
		if err := json.Unmarshal(in.Value, &value); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Value", err.Error())
			return
		}
	}
	if err := h.Form.SetField(in.Path, value); err != nil {
		if errors.Is(err, domain.ErrNotLoaded) {
			writeDomainErr(w, err)
			return
		}
		writeProblem(w, http.StatusBadRequest, "Invalid Field", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.formState())
}

func (h *Handlers) submitForm(w http.ResponseWriter, r *http.Request) {
	err := h.Form.Submit(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, h.formState())
	case errors.Is(err, domain.ErrNoChanges):
		w.WriteHeader(http.StatusNoContent)
	default:
		writeDomainErr(w, err)
	}
}

func (h *Handlers) resetForm(w http.ResponseWriter, r *http.Request) {
	h.Form.Reset()
	writeJSON(w, http.StatusOK, h.formState())
}

// ---- Policies ----

type policyView struct {
	State   domain.PolicyFormState `json:"state"`
	Changed bool                   `json:"changed"`
	Errors  map[string]string      `json:"errors"`
}

func (h *Handlers) policyState() policyView {
	return policyView{State: h.Policies.State(), Changed: h.Policies.HasChanges(), Errors: h.Policies.Errors()}
}

func (h *Handlers) getPolicies(w http.ResponseWriter, r *http.Request) {
	if !h.Policies.Loaded() {
		if err := h.ensureLoaded(r); err != nil {
			writeDomainErr(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.policyState())
}

func (h *Handlers) putPolicies(w http.ResponseWriter, r *http.Request) {
	if !h.Policies.Loaded() {
		if err := h.ensureLoaded(r); err != nil {
			writeDomainErr(w, err)
			return
		}
	}
	var st domain.PolicyFormState
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	h.Policies.Set(st)
	if err := h.Policies.Save(r.Context()); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			// the working copy keeps the rejected edits; return them with the messages
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			if err := json.NewEncoder(w).Encode(h.policyState()); err != nil {
				log.Error().Err(err).Msg("write policy errors failed")
			}
			return
		}
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.policyState())
}

func (h *Handlers) resetPolicies(w http.ResponseWriter, r *http.Request) {
	h.Policies.Reset()
	writeJSON(w, http.StatusOK, h.policyState())
}

// ---- Options ----

func (h *Handlers) getOptions(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	if country == "" {
		country = "US"
	}
	opts, err := h.Options.LoadAll(r.Context(), country)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	etag, body := calcETagAndBody(opts)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write options body")
	}
}

func (h *Handlers) getStates(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	states, err := h.Options.States(r.Context(), country)
	if err != nil {
		writeDomainErr(w, err)
		return
	}

	etag, body := calcETagAndBody(states)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write states body")
	}
}

// ---- Contacts ----

func (h *Handlers) getContactTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Contacts.ContactTypes(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return 0, false
	}
	return id, true
}

func (h *Handlers) getNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}
	settings, err := h.Contacts.EmailNotifications(r.Context(), id)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handlers) putNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}
	var settings []domain.NotificationSetting
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.Contacts.SaveEmailNotifications(r.Context(), id, settings); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}
	if err := h.Contacts.DeleteContact(r.Context(), id); err != nil {
		writeDomainErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
