package sheets

import (
	"context"

	"budgets/internal/core"
)

// Ports for outbound adapters.
type (
	// BudgetMirror keeps a one-row-per-budget copy of the store in an
	// external spreadsheet.
	BudgetMirror interface {
		// UpsertBudget writes b over its existing row or appends a new one.
		UpsertBudget(ctx context.Context, b core.Budget) (rowRef string, err error)
		// DeleteBudget removes the row for id. A missing row is not an error.
		DeleteBudget(ctx context.Context, id int64) error
	}

	// BudgetIDLister reports which budgets are currently mirrored.
	BudgetIDLister interface {
		ListBudgetIDs(ctx context.Context) ([]int64, error)
	}
)
