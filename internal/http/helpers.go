package http

import (
	"net/http"
	"strconv"
	"strings"

	"budgets/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// pathID reads the {id} wildcard of the matched route.
func pathID(r *http.Request) (int64, error) {
	return parseID("id", r.PathValue("id"))
}

// queryContactID reads contact_id from the query string. Zero means none
// was selected.
func queryContactID(r *http.Request) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get(fieldContactID)), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// budgetRow is the view model of one table row.
type budgetRow struct {
	ID        int64
	Name      string
	Total     string
	Amount    string
	Currency  string
	StartDate string
	EndDate   string
}

func toBudgetRows(budgets []core.Budget) []budgetRow {
	rows := make([]budgetRow, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, budgetRow{
			ID:        b.ID,
			Name:      b.Name,
			Total:     core.FormatAmount(b.TotalBudget, b.Currency),
			Amount:    b.TotalBudget.String(),
			Currency:  b.Currency,
			StartDate: b.StartDate.String(),
			EndDate:   b.EndDate.String(),
		})
	}
	return rows
}

type currencyTotalView struct {
	Currency string
	Total    string
	Count    int
}

func toTotalsView(budgets []core.Budget) []currencyTotalView {
	totals := core.SummarizeByCurrency(budgets)
	out := make([]currencyTotalView, 0, len(totals))
	for _, t := range totals {
		out = append(out, currencyTotalView{
			Currency: t.Currency,
			Total:    core.FormatAmount(t.Total, t.Currency),
			Count:    t.Count,
		})
	}
	return out
}
