package types

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested artifact or record does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a snapshot that cannot be decided on.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports missing or inconsistent configuration, e.g. a USD price
// without an ETH/USD rate to convert it.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %s", e.Setting, e.Reason)
}

// EstimatorError wraps any failure of the statistical estimator.
type EstimatorError struct {
	Op  string
	Err error
}

func (e *EstimatorError) Error() string {
	return fmt.Sprintf("estimator %s failed: %v", e.Op, e.Err)
}

func (e *EstimatorError) Unwrap() error { return e.Err }

// IntegrityError reports an artifact whose checksum could not be verified.
type IntegrityError struct {
	Path     string
	Expected string
	Actual   string
	Reason   string
}

func (e *IntegrityError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("integrity check failed for %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("integrity check failed for %s: expected sha256 %s, got %s", e.Path, e.Expected, e.Actual)
}
