package risk

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownBandSet   = errors.New("unknown band set")
	ErrFeatureMismatch  = errors.New("feature order mismatch")
	ErrUnknownLabel     = errors.New("unknown risk label")
	ErrNonFiniteResult  = errors.New("non-finite result")
	ErrModelUnavailable = errors.New("classifier model unavailable")
)

// FieldError describes one profile field outside its declared domain.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError is returned when a profile is rejected before scoring.
type ValidationError struct {
	Fields []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid patient profile"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Reason))
	}
	return "invalid patient profile: " + strings.Join(parts, "; ")
}

// ConfigurationError covers scorer wiring problems: artifacts, feature order, band sets.
type ConfigurationError struct {
	reason error
}

func (e ConfigurationError) Error() string {
	return "configuration error: " + e.reason.Error()
}

func (e ConfigurationError) Unwrap() error {
	return e.reason
}

// ComputationError signals a non-finite intermediate or final value.
type ComputationError struct {
	reason error
}

func (e ComputationError) Error() string {
	return "computation error: " + e.reason.Error()
}

func (e ComputationError) Unwrap() error {
	return e.reason
}

func NewConfigurationError(format string, args ...interface{}) error {
	return ConfigurationError{reason: fmt.Errorf(format, args...)}
}

func newComputationError(format string, args ...interface{}) error {
	return ComputationError{reason: fmt.Errorf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func IsConfigurationError(err error) bool {
	var ce ConfigurationError
	return errors.As(err, &ce)
}

func IsComputationError(err error) bool {
	var ce ComputationError
	return errors.As(err, &ce)
}

// ErrorKind names the taxonomy bucket of err, used for metrics and API responses.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidationError(err):
		return "validation"
	case IsConfigurationError(err):
		return "configuration"
	case IsComputationError(err):
		return "computation"
	default:
		return "internal"
	}
}
