package mailreach

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSyntax is returned by Check, together with a fully
	// populated record, when the address fails the syntax check.
	ErrInvalidSyntax = errors.New("mailreach: invalid email syntax")

	// ErrEmptyBatch is returned by RunBatch when no address is left
	// after normalization.
	ErrEmptyBatch = errors.New("mailreach: no addresses to check")

	// ErrInsufficientBudget is returned (wrapped in a *BudgetError) when
	// the caller's budget does not cover the batch.
	ErrInsufficientBudget = errors.New("mailreach: insufficient budget")

	// ErrInvalidOptions is returned when the engine configuration is
	// rejected. The wrapping error names the offending fields.
	ErrInvalidOptions = errors.New("mailreach: invalid options")
)

// BudgetError reports how many units a batch needs and how many the
// caller has.
type BudgetError struct {
	Required  int
	Available int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("mailreach: insufficient budget: batch needs %d units, %d available", e.Required, e.Available)
}

func (e *BudgetError) Unwrap() error {
	return ErrInsufficientBudget
}
