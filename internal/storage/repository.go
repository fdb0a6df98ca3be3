package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"budgets/internal/core"
)

const budgetColumns = "id, contact_id, budget_name, total_budget, start_date, end_date, currency"

// BudgetRepository issues the contact and budget statements against a Store.
// Every write is a single statement followed by a single commit.
type BudgetRepository struct {
	store Store
}

func NewBudgetRepository(store Store) *BudgetRepository {
	return &BudgetRepository{store: store}
}

// GetContacts returns every contact in the order the store yields them.
func (r *BudgetRepository) GetContacts(ctx context.Context) ([]core.Contact, error) {
	rows, err := r.store.Fetch(ctx, "SELECT id, name, email FROM contacts")
	if err != nil {
		return nil, fmt.Errorf("get contacts: %w", err)
	}

	contacts := make([]core.Contact, 0, len(rows))
	for _, row := range rows {
		id, err := row.Int64("id")
		if err != nil {
			return nil, fmt.Errorf("decode contact: %w", err)
		}
		contacts = append(contacts, core.Contact{
			ID:    id,
			Name:  row.String("name"),
			Email: row.String("email"),
		})
	}
	return contacts, nil
}

// CreateBudget inserts b and returns the id the store assigned. A reference
// to a missing contact is reported as core.ErrContactNotFound.
func (r *BudgetRepository) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	res, err := r.store.ExecCommit(ctx,
		`INSERT INTO budgets (contact_id, budget_name, total_budget, start_date, end_date, currency)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ContactID,
		b.Name,
		b.TotalBudget.String(),
		b.StartDate.String(),
		b.EndDate.String(),
		b.Currency,
	)
	if err != nil {
		if errors.Is(err, ErrForeignKeyViolation) {
			return 0, fmt.Errorf("create budget for contact %d: %w: %w", b.ContactID, core.ErrContactNotFound, err)
		}
		return 0, fmt.Errorf("create budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		"id", res.LastInsertID,
		"contact_id", b.ContactID,
		"budget_name", b.Name,
		"total_budget", b.TotalBudget.String(),
		"currency", b.Currency)

	return res.LastInsertID, nil
}

// GetBudget returns the budget with the given id or core.ErrBudgetNotFound.
func (r *BudgetRepository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	rows, err := r.store.Fetch(ctx, "SELECT "+budgetColumns+" FROM budgets WHERE id = ?", id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget by id: %w", err)
	}
	if len(rows) == 0 {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, core.ErrBudgetNotFound)
	}
	return budgetFromRow(rows[0])
}

// GetBudgetsForContact returns all budgets owned by contactID, possibly none.
func (r *BudgetRepository) GetBudgetsForContact(ctx context.Context, contactID int64) ([]core.Budget, error) {
	rows, err := r.store.Fetch(ctx,
		"SELECT "+budgetColumns+" FROM budgets WHERE contact_id = ? ORDER BY id", contactID)
	if err != nil {
		return nil, fmt.Errorf("get budgets for contact %d: %w", contactID, err)
	}

	budgets := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		b, err := budgetFromRow(row)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, nil
}

// UpdateBudget writes only the fields set in u. Zero rows affected means the
// budget does not exist and is not an error.
func (r *BudgetRepository) UpdateBudget(ctx context.Context, id int64, u core.BudgetUpdate) (int64, error) {
	if u.IsEmpty() {
		return 0, core.ErrEmptyUpdate
	}

	var (
		sets []string
		args []any
	)
	if v, ok := u.Name.Get(); ok {
		sets = append(sets, "budget_name = ?")
		args = append(args, v)
	}
	if v, ok := u.TotalBudget.Get(); ok {
		sets = append(sets, "total_budget = ?")
		args = append(args, v.String())
	}
	if v, ok := u.StartDate.Get(); ok {
		sets = append(sets, "start_date = ?")
		args = append(args, v.String())
	}
	if v, ok := u.EndDate.Get(); ok {
		sets = append(sets, "end_date = ?")
		args = append(args, v.String())
	}
	if v, ok := u.Currency.Get(); ok {
		sets = append(sets, "currency = ?")
		args = append(args, v)
	}
	args = append(args, id)

	res, err := r.store.ExecCommit(ctx,
		"UPDATE budgets SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return 0, fmt.Errorf("update budget %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Budget updated", "id", id, "fields", len(sets), "rows_affected", res.RowsAffected)
	return res.RowsAffected, nil
}

// DeleteBudget removes the budget with the given id. Deleting a missing id
// affects zero rows and is not an error.
func (r *BudgetRepository) DeleteBudget(ctx context.Context, id int64) (int64, error) {
	res, err := r.store.ExecCommit(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete budget %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Budget deleted", "id", id, "rows_affected", res.RowsAffected)
	return res.RowsAffected, nil
}

func budgetFromRow(row Row) (core.Budget, error) {
	id, err := row.Int64("id")
	if err != nil {
		return core.Budget{}, fmt.Errorf("decode budget: %w", err)
	}
	contactID, err := row.Int64("contact_id")
	if err != nil {
		return core.Budget{}, fmt.Errorf("decode budget %d: %w", id, err)
	}
	total, err := row.Decimal("total_budget")
	if err != nil {
		return core.Budget{}, fmt.Errorf("decode budget %d: %w", id, err)
	}
	start, err := row.Date("start_date")
	if err != nil {
		return core.Budget{}, fmt.Errorf("decode budget %d: %w", id, err)
	}
	end, err := row.Date("end_date")
	if err != nil {
		return core.Budget{}, fmt.Errorf("decode budget %d: %w", id, err)
	}

	return core.Budget{
		ID:          id,
		ContactID:   contactID,
		Name:        row.String("budget_name"),
		TotalBudget: total,
		StartDate:   start,
		EndDate:     end,
		Currency:    row.String("currency"),
	}, nil
}
