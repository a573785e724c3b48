package domain

import (
	"fmt"
	"strings"
)

var (
	// ErrNotFound: the remote has no record for the request.
	ErrNotFound = fmt.Errorf("account: not found")
	// ErrSessionExpired: re-authentication was attempted once and failed; the
	// session has been cleared.
	ErrSessionExpired = fmt.Errorf("account: session expired")
	// ErrNotLoaded: a form operation ran before the first successful load.
	ErrNotLoaded = fmt.Errorf("account: form not loaded")
	// ErrNoChanges: submit/save refused because the form equals its snapshot.
	ErrNoChanges = fmt.Errorf("account: no changes to save")
)

// BusinessError is a remote business failure: the envelope came back with
// is_error set. Local state is preserved and the operation may be retried.
type BusinessError struct {
	Code     string
	Messages []string
}

func (e *BusinessError) Error() string {
	if len(e.Messages) == 0 {
		return "supplier: request rejected"
	}
	return "supplier: " + strings.Join(e.Messages, "; ")
}

// FieldError is one validation failure attached to a field path
// (e.g. "basicInfo.name", "billingAddress", "tokeyKey").
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError blocks submission; it never reaches the network.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Fields))
}

// ByPath returns the message for a path, or "".
func (e *ValidationError) ByPath(path string) string {
	for _, f := range e.Fields {
		if f.Path == path {
			return f.Message
		}
	}
	return ""
}
