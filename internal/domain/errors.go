package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorKind classifies the failures a run can end with.
type ErrorKind int

const (
	KindAuthMissing ErrorKind = iota + 1
	KindInvalidDate
	KindInvalidConfig
	KindHTTPStatus
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthMissing:
		return "auth missing"
	case KindInvalidDate:
		return "invalid date"
	case KindInvalidConfig:
		return "invalid config"
	case KindHTTPStatus:
		return "http status"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Error is a tagged failure. HTTP status failures carry StatusCode,
// every other kind carries Message.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

// ErrAuthMissing is returned when no GITHUB_TOKEN is available.
var ErrAuthMissing = &Error{Kind: KindAuthMissing, Message: "GITHUB_TOKEN environment variable is not set"}

// NewStatusError wraps a non-2xx response.
func NewStatusError(code int, err error) *Error {
	return &Error{Kind: KindHTTPStatus, StatusCode: code, Err: err}
}

// NewTransportError wraps a failure below the HTTP layer (DNS, connection, TLS, timeout).
func NewTransportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

// NewConfigError reports an unusable configuration value.
func NewConfigError(msg string) *Error {
	return &Error{Kind: KindInvalidConfig, Message: msg}
}

// Detail is the code or message shown to the user.
func (e *Error) Detail() string {
	if e.Kind == KindHTTPStatus {
		return strconv.Itoa(e.StatusCode)
	}
	return e.Message
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
