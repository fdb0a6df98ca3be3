package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validBudget() Budget {
	return Budget{
		ContactID:   1,
		Name:        "Test Budget",
		TotalBudget: decimal.NewFromInt(1000),
		StartDate:   NewDate(2025, 1, 1),
		EndDate:     NewDate(2025, 12, 31),
		Currency:    "USD",
	}
}

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-03-09 ")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.String() != "2025-03-09" {
		t.Fatalf("unexpected date %q", d.String())
	}
	if _, err := ParseDate("09/03/2025"); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
	if (Date{}).String() != "" {
		t.Fatalf("zero date should render empty")
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := validBudget().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	same := validBudget()
	same.EndDate = same.StartDate
	if err := same.Validate(); err != nil {
		t.Fatalf("single day budget should be valid, got %v", err)
	}

	bads := map[string]func(b *Budget){
		"no contact":     func(b *Budget) { b.ContactID = 0 },
		"empty name":     func(b *Budget) { b.Name = "  " },
		"negative total": func(b *Budget) { b.TotalBudget = decimal.NewFromInt(-1) },
		"zero start":     func(b *Budget) { b.StartDate = Date{} },
		"zero end":       func(b *Budget) { b.EndDate = Date{} },
		"inverted range": func(b *Budget) { b.EndDate = NewDate(2024, 12, 31) },
		"bad currency":   func(b *Budget) { b.Currency = "US" },
	}
	for name, mutate := range bads {
		b := validBudget()
		mutate(&b)
		if err := b.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestBudgetApply(t *testing.T) {
	b := validBudget()
	got := b.Apply(BudgetUpdate{TotalBudget: Set(decimal.NewFromInt(2000))})

	if !got.TotalBudget.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("total not applied: %s", got.TotalBudget)
	}
	if got.Name != b.Name || got.Currency != b.Currency || got.StartDate != b.StartDate || got.EndDate != b.EndDate {
		t.Fatalf("unset fields changed: %+v", got)
	}

	twice := got.Apply(BudgetUpdate{TotalBudget: Set(decimal.NewFromInt(2000))})
	if !twice.TotalBudget.Equal(got.TotalBudget) || twice.Name != got.Name {
		t.Fatalf("applying the same update twice changed the result: %+v", twice)
	}
}

func TestBudgetUpdateValidate(t *testing.T) {
	if err := (BudgetUpdate{}).Validate(); err != ErrEmptyUpdate {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}

	ok := BudgetUpdate{Name: Set("Renamed"), Currency: Set("EUR")}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Only one end of the range: ordering cannot be checked here.
	onlyEnd := BudgetUpdate{EndDate: Set(NewDate(2000, 1, 1))}
	if err := onlyEnd.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []BudgetUpdate{
		{Name: Set("")},
		{TotalBudget: Set(decimal.NewFromInt(-5))},
		{Currency: Set("dollars")},
		{StartDate: Set(NewDate(2025, 2, 1)), EndDate: Set(NewDate(2025, 1, 1))},
		{StartDate: Set(Date{})},
	}
	for i, u := range bads {
		if err := u.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestOptionalZeroValueIsStillSet(t *testing.T) {
	o := Set("")
	v, ok := o.Get()
	if !ok || v != "" {
		t.Fatalf("expected set empty string, got %q %v", v, ok)
	}
	var unset Optional[string]
	if unset.IsSet() {
		t.Fatalf("zero Optional must be unset")
	}
}

func TestSummarizeByCurrency(t *testing.T) {
	bs := []Budget{
		{Currency: "USD", TotalBudget: decimal.RequireFromString("10.50")},
		{Currency: "EUR", TotalBudget: decimal.RequireFromString("3")},
		{Currency: "USD", TotalBudget: decimal.RequireFromString("0.50")},
	}
	got := SummarizeByCurrency(bs)
	if len(got) != 2 {
		t.Fatalf("expected 2 currencies, got %d", len(got))
	}
	if got[0].Currency != "EUR" || got[1].Currency != "USD" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if !got[1].Total.Equal(decimal.NewFromInt(11)) || got[1].Count != 2 {
		t.Fatalf("unexpected USD total: %+v", got[1])
	}
	if len(SummarizeByCurrency(nil)) != 0 {
		t.Fatalf("expected empty summary")
	}
}

func TestIsValidation(t *testing.T) {
	b := validBudget()
	b.StartDate = Date{}
	if err := b.Validate(); !IsValidation(err) {
		t.Fatalf("zero start date should be a validation error, got %v", err)
	}
	if !IsValidation(BudgetUpdate{}.Validate()) {
		t.Fatalf("empty update should be a validation error")
	}
	if IsValidation(ErrBudgetNotFound) || IsValidation(nil) {
		t.Fatalf("not found and nil are not validation errors")
	}
}
