package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Optional distinguishes "leave unchanged" from "set to value", including
// setting a field to its zero value.
type Optional[T any] struct {
	value T
	set   bool
}

// Set returns an Optional holding v.
func Set[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the held value and whether one was set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Optional[T]) IsSet() bool {
	return o.set
}

// BudgetUpdate lists the budget fields a partial update may replace.
// The owning contact is fixed at creation.
type BudgetUpdate struct {
	Name        Optional[string]
	TotalBudget Optional[decimal.Decimal]
	StartDate   Optional[Date]
	EndDate     Optional[Date]
	Currency    Optional[string]
}

// IsEmpty reports whether no field is set.
func (u BudgetUpdate) IsEmpty() bool {
	return !u.Name.IsSet() &&
		!u.TotalBudget.IsSet() &&
		!u.StartDate.IsSet() &&
		!u.EndDate.IsSet() &&
		!u.Currency.IsSet()
}

// Validate checks every set field. The date range is only checked when both
// ends are part of the update.
func (u BudgetUpdate) Validate() error {
	if u.IsEmpty() {
		return ErrEmptyUpdate
	}
	if v, ok := u.Name.Get(); ok {
		if err := validateName(v); err != nil {
			return err
		}
	}
	if v, ok := u.TotalBudget.Get(); ok {
		if err := ValidateAmount(v); err != nil {
			return err
		}
	}
	start, hasStart := u.StartDate.Get()
	if hasStart {
		if err := start.Validate(); err != nil {
			return fmt.Errorf("start date: %w", err)
		}
	}
	end, hasEnd := u.EndDate.Get()
	if hasEnd {
		if err := end.Validate(); err != nil {
			return fmt.Errorf("end date: %w", err)
		}
	}
	if hasStart && hasEnd && end.Before(start.Time) {
		return ErrInvalidDateRange
	}
	if v, ok := u.Currency.Get(); ok {
		if err := ValidateCurrency(v); err != nil {
			return err
		}
	}
	return nil
}
