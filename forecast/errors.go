package forecast

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package matches exactly one of
// them with errors.Is.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnknownCountries = errors.New("unknown countries")
	ErrTooManyCountries = errors.New("too many countries")
	ErrInsufficientData = errors.New("insufficient data")
	ErrFittingFailure   = errors.New("fitting failure")
)

// Error carries the kind of a forecasting failure and its context.
type Error struct {
	Kind    error    // One of the Err* kinds above
	Country string   // Country being forecast, if any
	Known   []string // Known countries, for ErrUnknownCountries
	Err     error    // Underlying cause
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Country != "" {
		fmt.Fprintf(&b, " for %s", e.Country)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Kind == ErrUnknownCountries {
		fmt.Fprintf(&b, "; known countries: %s", strings.Join(e.Known, ", "))
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, country string, cause error) *Error {
	return &Error{Kind: kind, Country: country, Err: cause}
}
