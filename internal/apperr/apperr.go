// Package apperr defines the error taxonomy shared by every layer of the
// hashing pipeline. Errors carry a Kind so callers can branch on the failure
// class without matching message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a terminal pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidRequest
	KindFetch
	KindUnsupportedFormat
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "InvalidRequest"
	case KindFetch:
		return "FetchError"
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindDecode:
		return "DecodeError"
	default:
		return "Unknown"
	}
}

// FetchKind refines KindFetch with the storage collaborator's reason.
type FetchKind int

const (
	FetchNone FetchKind = iota
	FetchNotFound
	FetchAccessDenied
	FetchNetwork
)

func (f FetchKind) String() string {
	switch f {
	case FetchNotFound:
		return "NotFound"
	case FetchAccessDenied:
		return "AccessDenied"
	case FetchNetwork:
		return "Network"
	default:
		return ""
	}
}

// Error is the typed error returned by the pipeline.
type Error struct {
	Kind      Kind
	FetchKind FetchKind // set only when Kind == KindFetch
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.Kind == KindFetch && e.FetchKind != FetchNone {
		prefix += "(" + e.FetchKind.String() + ")"
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Err)
	case e.Msg != "":
		return prefix + ": " + e.Msg
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return prefix
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error on Kind, and on FetchKind when the target sets
// one. This lets callers write errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.FetchKind == FetchNone || t.FetchKind == e.FetchKind
}

// Sentinels for errors.Is.
var (
	ErrInvalidRequest    = &Error{Kind: KindInvalidRequest}
	ErrFetch             = &Error{Kind: KindFetch}
	ErrNotFound          = &Error{Kind: KindFetch, FetchKind: FetchNotFound}
	ErrAccessDenied      = &Error{Kind: KindFetch, FetchKind: FetchAccessDenied}
	ErrNetwork           = &Error{Kind: KindFetch, FetchKind: FetchNetwork}
	ErrUnsupportedFormat = &Error{Kind: KindUnsupportedFormat}
	ErrDecode            = &Error{Kind: KindDecode}
)

// InvalidRequest builds a request validation error.
func InvalidRequest(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Msg: fmt.Sprintf(format, args...)}
}

// Fetch builds a storage error of the given sub-kind wrapping cause.
func Fetch(kind FetchKind, path string, cause error) *Error {
	return &Error{Kind: KindFetch, FetchKind: kind, Msg: path, Err: cause}
}

// UnsupportedFormat reports bytes that match no enabled codec signature.
func UnsupportedFormat(format string, args ...any) *Error {
	return &Error{Kind: KindUnsupportedFormat, Msg: fmt.Sprintf(format, args...)}
}

// Decode reports a payload that matched a codec signature but failed to decode.
func Decode(format string, cause error) *Error {
	return &Error{Kind: KindDecode, Msg: format, Err: cause}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// FetchKindOf returns the FetchKind of the first *Error in err's chain.
func FetchKindOf(err error) FetchKind {
	var e *Error
	if errors.As(err, &e) {
		return e.FetchKind
	}
	return FetchNone
}
