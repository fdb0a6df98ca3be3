package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1000.0", "1000", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0", "0", true},
		{" 2.50 ", "2.5", true},
		{"0.001", "0.001", true},
		{"-1", "", false},
		{"+1", "", false},
		{"1e3", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1.000,50", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestValidateCurrency(t *testing.T) {
	for _, code := range []string{"USD", "EUR", "JPY", "CHF"} {
		if err := ValidateCurrency(code); err != nil {
			t.Fatalf("%s expected ok, got %v", code, err)
		}
	}
	for _, code := range []string{"", "US", "USDD", "1$A", "QQQ"} {
		if err := ValidateCurrency(code); err == nil {
			t.Fatalf("%q expected error", code)
		}
	}
	if NormalizeCurrency(" usd ") != "USD" {
		t.Fatalf("normalize failed")
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(decimal.RequireFromString("1000.5"), "USD"); got != "1000.50 USD" {
		t.Fatalf("unexpected %q", got)
	}
	if got := FormatAmount(decimal.NewFromInt(3), ""); got != "3.00" {
		t.Fatalf("unexpected %q", got)
	}
}
