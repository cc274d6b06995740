package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorResponse is the wire shape for every non-2xx body. The gateway only
// looks at the status code, so the body stays minimal.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Kind classifies failures for logs and metrics without changing the HTTP
// contract: malformed payloads and failed store writes both surface as 500 to
// keep the gateway retrying, but they must be distinguishable to operators.
type Kind string

const (
	KindConfig      Kind = "CONFIG_MISSING"
	KindSignature   Kind = "INVALID_SIGNATURE"
	KindMalformed   Kind = "MALFORMED_PAYLOAD"
	KindPersistence Kind = "PERSISTENCE_FAILED"
	KindNotFound    Kind = "NOT_FOUND"
	KindInternal    Kind = "INTERNAL"
)

type kindError struct {
	kind Kind
	err  error
}

func (e *kindError) Error() string { return e.err.Error() }
func (e *kindError) Unwrap() error { return e.err }

// WithKind tags err with a classification kind. A nil err returns nil.
func WithKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// KindOf returns the innermost classification of err, or KindInternal if it
// was never tagged.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindInternal
}

func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
