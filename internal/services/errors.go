package services

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	KindNotFound Kind = iota + 1
	KindUnavailable
	// KindExtremeValue is a notification raised on successful lookups, not a failure.
	KindExtremeValue
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	case KindExtremeValue:
		return "extreme_value"
	default:
		return "unknown"
	}
}

const (
	MsgCityNotFound       = "City not found."
	MsgCityNotFoundByName = "City not found. Please enter a valid city name."
	MsgUnavailable        = "Weather data unavailable"
	MsgEmptyQuery         = "Please enter a city name."
	MsgInvalidCoords      = "Invalid coordinates."
)

// ErrInvalidQuery marks lookups rejected before any provider was called.
var ErrInvalidQuery = errors.New("invalid location query")

// LookupError is the only error shape that leaves the pipeline. Message is
// always fit for display.
type LookupError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *LookupError) Unwrap() error { return e.Err }

func NotFound(message string, err error) *LookupError {
	return &LookupError{Kind: KindNotFound, Message: message, Err: err}
}

func Unavailable(err error) *LookupError {
	return &LookupError{Kind: KindUnavailable, Message: MsgUnavailable, Err: err}
}

// ExtremeHeat builds the alert shown alongside the content when the current
// temperature is above threshold.
func ExtremeHeat(threshold float64) *LookupError {
	return &LookupError{
		Kind:    KindExtremeValue,
		Message: fmt.Sprintf("🔥 Extreme Temperature Alert! It's over %s°C!", trimFloat(threshold)),
	}
}

// KindOf reports the kind of err, defaulting to KindUnavailable.
func KindOf(err error) Kind {
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Kind
	}
	return KindUnavailable
}

// UserMessage turns any error into the single string shown in the error region.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var lookupErr *LookupError
	if errors.As(err, &lookupErr) && strings.TrimSpace(lookupErr.Message) != "" {
		return lookupErr.Message
	}
	return MsgUnavailable
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}
