/*
errors.go - Centralized error types for the accounting substrate

PURPOSE:
  All expected rejection outcomes in one place. Domain packages wrap
  these with additional context where useful. Expected business
  conditions are values checked with errors.Is; only contract
  violations (negative transfer value, active plan without activation
  date) panic.
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAccountNotFound is returned when a referenced account doesn't exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrMemberNotFound is returned when a referenced member doesn't exist.
	ErrMemberNotFound = errors.New("member not found")

	// ErrCompanyNotFound is returned when a referenced company doesn't exist.
	ErrCompanyNotFound = errors.New("company not found")

	// ErrInsufficientBalance is returned when a member transaction would
	// overdraw the sender's account beyond the allowed overdraw.
	ErrInsufficientBalance = errors.New("insufficient account balance")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError reports how far a member transaction fell short.
type InsufficientBalanceError struct {
	Account   uuid.UUID
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient account balance: available %s, requested %s",
		e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrCompanyNotFound)
}
