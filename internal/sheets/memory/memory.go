package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"budgets/internal/core"
	ports "budgets/internal/sheets"
)

// Mirror is an in-process BudgetMirror. The worker falls back to it when no
// spreadsheet is configured; tests use it to observe mirrored rows.
type Mirror struct {
	mu   sync.Mutex
	rows map[int64]core.Budget
}

var (
	_ ports.BudgetMirror   = (*Mirror)(nil)
	_ ports.BudgetIDLister = (*Mirror)(nil)
)

func New() *Mirror {
	return &Mirror{rows: make(map[int64]core.Budget)}
}

func (m *Mirror) UpsertBudget(_ context.Context, b core.Budget) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[b.ID] = b
	return fmt.Sprintf("mem:%d", b.ID), nil
}

func (m *Mirror) DeleteBudget(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *Mirror) ListBudgetIDs(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Get returns the mirrored copy of budget id.
func (m *Mirror) Get(id int64) (core.Budget, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.rows[id]
	return b, ok
}
