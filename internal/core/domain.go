package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	// Contact is owned by the contacts table; budgets only reference it.
	Contact struct {
		ID    int64
		Name  string
		Email string
	}

	Budget struct {
		ID          int64 // Assigned by the store on insert
		ContactID   int64
		Name        string
		TotalBudget decimal.Decimal
		StartDate   Date
		EndDate     Date
		Currency    string // ISO 4217 code
	}
)

var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrBudgetNotFound   = errors.New("budget not found")
	ErrEmptyUpdate      = errors.New("no fields to update")
	ErrEmptyName        = errors.New("empty budget name")
	ErrNameTooLong      = errors.New("budget name too long (max 200 characters)")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrInvalidDateRange = errors.New("end date must not be before start date")
	ErrInvalidContact   = errors.New("invalid contact id")
	ErrInvalidDate      = errors.New("date cannot be zero")
)

// IsValidation reports whether err stems from rejected user input.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyUpdate,
		ErrEmptyName,
		ErrNameTooLong,
		ErrInvalidAmount,
		ErrInvalidCurrency,
		ErrInvalidDateRange,
		ErrInvalidContact,
		ErrInvalidDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String renders the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Validate checks the fields a budget form must carry before it reaches the store.
func (b Budget) Validate() error {
	if b.ContactID <= 0 {
		return ErrInvalidContact
	}
	if err := validateName(b.Name); err != nil {
		return err
	}
	if err := ValidateAmount(b.TotalBudget); err != nil {
		return err
	}
	if err := b.StartDate.Validate(); err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	if err := b.EndDate.Validate(); err != nil {
		return fmt.Errorf("end date: %w", err)
	}
	if b.EndDate.Before(b.StartDate.Time) {
		return ErrInvalidDateRange
	}
	return ValidateCurrency(b.Currency)
}

// Apply returns a copy of b with the set fields of u written over it.
func (b Budget) Apply(u BudgetUpdate) Budget {
	if v, ok := u.Name.Get(); ok {
		b.Name = v
	}
	if v, ok := u.TotalBudget.Get(); ok {
		b.TotalBudget = v
	}
	if v, ok := u.StartDate.Get(); ok {
		b.StartDate = v
	}
	if v, ok := u.EndDate.Get(); ok {
		b.EndDate = v
	}
	if v, ok := u.Currency.Get(); ok {
		b.Currency = v
	}
	return b
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > 200 {
		return ErrNameTooLong
	}
	return nil
}
