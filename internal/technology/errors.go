package technology

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInputData marks a required time series that is absent from the
	// climate input table.
	ErrMissingInputData = errors.New("missing input data")
	// ErrInfeasibleConfiguration marks options or parameters that cannot
	// describe a physically meaningful unit.
	ErrInfeasibleConfiguration = errors.New("infeasible configuration")
)

// MissingInputDataError names the technology and the column it expected.
type MissingInputDataError struct {
	Technology string
	Column     string
}

func (e *MissingInputDataError) Error() string {
	return fmt.Sprintf("technology %s: %s: column %q not found", e.Technology, ErrMissingInputData, e.Column)
}

func (e *MissingInputDataError) Unwrap() error { return ErrMissingInputData }

// ConfigurationError reports an invalid field of a technology configuration.
type ConfigurationError struct {
	Technology string
	Field      string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("technology %s: %s: %s %s", e.Technology, ErrInfeasibleConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrInfeasibleConfiguration }

// Missing returns a *MissingInputDataError.
func Missing(tech, column string) error {
	return &MissingInputDataError{Technology: tech, Column: column}
}

// Invalid returns a *ConfigurationError with a formatted reason.
func Invalid(tech, field, format string, args ...any) error {
	return &ConfigurationError{Technology: tech, Field: field, Reason: fmt.Sprintf(format, args...)}
}
