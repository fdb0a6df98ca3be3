package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CurrencyTotal is the sum of budget totals sharing one currency.
type CurrencyTotal struct {
	Currency string
	Total    decimal.Decimal
	Count    int
}

// SummarizeByCurrency totals budgets per currency, sorted by currency code.
// Amounts in different currencies are never added together.
func SummarizeByCurrency(budgets []Budget) []CurrencyTotal {
	byCode := make(map[string]*CurrencyTotal)
	for _, b := range budgets {
		ct, ok := byCode[b.Currency]
		if !ok {
			ct = &CurrencyTotal{Currency: b.Currency, Total: decimal.Zero}
			byCode[b.Currency] = ct
		}
		ct.Total = ct.Total.Add(b.TotalBudget)
		ct.Count++
	}

	out := make([]CurrencyTotal, 0, len(byCode))
	for _, ct := range byCode {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}
