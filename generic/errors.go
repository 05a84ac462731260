/*
errors.go - Centralized error types for the planner

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Configuration errors - Bad plan inputs, rejected before any work
  2. Region errors - No holiday calendar for the requested region
  3. Ledger errors - Leave spending beyond the budget
  4. Store errors - Missing plans, jobs or custom holidays

USAGE:
  Callers branch with errors.Is / errors.As:

    if errors.Is(err, generic.ErrUnsupportedRegion) {
        return http.StatusUnprocessableEntity
    }

SEE ALSO:
  - ledger.go: Uses these errors
  - timeoff/request.go: Produces ConfigError
  - holidays/rules.go: Produces RegionError
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidConfig is returned when a plan request is malformed
	// (negative budget, min rest below one, year out of range...).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedRegion is returned when no holiday calendar exists for
	// the requested country or subdivision.
	ErrUnsupportedRegion = errors.New("unsupported region")

	// ErrInsufficientBalance is returned when spending exceeds the leave budget.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrPlanNotFound is returned when a referenced plan doesn't exist.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrJobNotFound is returned when a referenced batch job doesn't exist.
	ErrJobNotFound = errors.New("job not found")

	// ErrHolidayNotFound is returned when a custom holiday doesn't exist.
	ErrHolidayNotFound = errors.New("holiday not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError names the offending input field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// RegionError records which region lookup failed.
type RegionError struct {
	CountryCode string
	Subdivision string
	Cause       error
}

func (e *RegionError) Error() string {
	region := e.CountryCode
	if e.Subdivision != "" {
		region += "-" + e.Subdivision
	}
	if e.Cause != nil {
		return fmt.Sprintf("unsupported region %q: %v", region, e.Cause)
	}
	return fmt.Sprintf("unsupported region %q", region)
}

func (e *RegionError) Unwrap() error {
	return ErrUnsupportedRegion
}

// InsufficientBalanceError provides details about a budget shortage.
type InsufficientBalanceError struct {
	Available Amount
	Requested Amount
	Shortfall Amount
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %v, requested %v, shortfall %v",
		e.Available.Value, e.Requested.Value, e.Shortfall.Value)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInsufficientBalance)
}

// IsUnsupportedRegion returns true if no calendar exists for the region.
func IsUnsupportedRegion(err error) bool {
	return errors.Is(err, ErrUnsupportedRegion)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrJobNotFound) ||
		errors.Is(err, ErrHolidayNotFound)
}
