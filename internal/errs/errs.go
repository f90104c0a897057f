// Package errs defines the error taxonomy shared by the webhook dispatcher,
// the dashboard API, and the transcript pipeline, plus the mapping from error
// kind to HTTP status.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for propagation and HTTP mapping.
type Kind int

const (
	// KindUnknown is the zero value; treated as an internal error.
	KindUnknown Kind = iota
	// KindAuthentication covers missing or invalid webhook credentials.
	KindAuthentication
	// KindValidation covers malformed payloads and missing identifiers.
	KindValidation
	// KindNotFound covers unknown meetings and agents.
	KindNotFound
	// KindUpstream covers failed calls to the video platform or transcript storage.
	KindUpstream
	// KindTransform covers unparseable transcript content.
	KindTransform
	// KindGeneration covers summarization failures; recovered inside the
	// pipeline, never surfaced to callers.
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindTransform:
		return "transform"
	case KindGeneration:
		return "generation"
	default:
		return "unknown"
	}
}

// Error is a kinded error. It unwraps to its cause, so errors.Is/As work
// through it.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a kind and message. Returns nil if err is nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus maps an error to the response status the webhook endpoint and
// dashboard API use for it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		return http.StatusBadGateway
	case KindTransform, KindGeneration:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
