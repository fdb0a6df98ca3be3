package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgets/internal/amqp"
	"budgets/internal/core"
	"budgets/internal/metrics"
	"budgets/internal/sheets"
)

// BudgetReader is the read side of the budget store.
type BudgetReader interface {
	GetContacts(ctx context.Context) ([]core.Contact, error)
	GetBudget(ctx context.Context, id int64) (core.Budget, error)
	GetBudgetsForContact(ctx context.Context, contactID int64) ([]core.Budget, error)
}

// MirrorWorker copies budget changes from the store into a BudgetMirror.
type MirrorWorker struct {
	store   BudgetReader
	mirror  sheets.BudgetMirror
	metrics *metrics.Metrics
}

func NewMirrorWorker(store BudgetReader, mirror sheets.BudgetMirror, m *metrics.Metrics) *MirrorWorker {
	return &MirrorWorker{
		store:   store,
		mirror:  mirror,
		metrics: m,
	}
}

// HandleEvent applies one change event. The store is the source of truth: a
// created or updated budget that no longer exists is removed from the mirror.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event amqp.BudgetEvent) error {
	err := w.handle(ctx, event)
	if err != nil {
		w.metrics.ObserveEvent(string(event.Kind), metrics.OutcomeError)
		return err
	}
	w.metrics.ObserveEvent(string(event.Kind), metrics.OutcomeSuccess)
	return nil
}

func (w *MirrorWorker) handle(ctx context.Context, event amqp.BudgetEvent) error {
	slog.InfoContext(ctx, "Processing budget event",
		"event_id", event.ID,
		"event_kind", event.Kind,
		"budget_id", event.BudgetID)

	if event.Kind == amqp.BudgetDeleted {
		if err := w.mirror.DeleteBudget(ctx, event.BudgetID); err != nil {
			return fmt.Errorf("delete mirrored budget %d: %w", event.BudgetID, err)
		}
		return nil
	}

	b, err := w.store.GetBudget(ctx, event.BudgetID)
	if errors.Is(err, core.ErrBudgetNotFound) {
		slog.InfoContext(ctx, "Budget gone before mirroring, removing row", "budget_id", event.BudgetID)
		if err := w.mirror.DeleteBudget(ctx, event.BudgetID); err != nil {
			return fmt.Errorf("delete mirrored budget %d: %w", event.BudgetID, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get budget from storage: %w", err)
	}

	ref, err := w.mirror.UpsertBudget(ctx, b)
	if err != nil {
		return fmt.Errorf("mirror budget %d: %w", b.ID, err)
	}

	slog.InfoContext(ctx, "Budget mirrored",
		"budget_id", b.ID,
		"sheets_ref", ref)
	return nil
}

// ReconcileStats summarises one reconcile pass.
type ReconcileStats struct {
	Upserted int
	Removed  int
	Failed   int
}

// Reconcile rewrites every stored budget into the mirror and, when the
// mirror can list its rows, removes rows whose budget no longer exists. It
// covers events lost while the broker or the worker was down.
func (w *MirrorWorker) Reconcile(ctx context.Context) error {
	stats, err := w.reconcile(ctx)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Mirror reconciled",
		"upserted", stats.Upserted,
		"removed", stats.Removed,
		"failed", stats.Failed)
	return nil
}

func (w *MirrorWorker) reconcile(ctx context.Context) (ReconcileStats, error) {
	var stats ReconcileStats

	contacts, err := w.store.GetContacts(ctx)
	if err != nil {
		return stats, fmt.Errorf("get contacts: %w", err)
	}

	live := make(map[int64]struct{})
	for _, c := range contacts {
		budgets, err := w.store.GetBudgetsForContact(ctx, c.ID)
		if err != nil {
			return stats, fmt.Errorf("get budgets for contact %d: %w", c.ID, err)
		}
		for _, b := range budgets {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			live[b.ID] = struct{}{}
			if _, err := w.mirror.UpsertBudget(ctx, b); err != nil {
				slog.ErrorContext(ctx, "Failed to mirror budget", "budget_id", b.ID, "error", err)
				stats.Failed++
				continue
			}
			stats.Upserted++
		}
	}

	lister, ok := w.mirror.(sheets.BudgetIDLister)
	if !ok {
		return stats, nil
	}
	ids, err := lister.ListBudgetIDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("list mirrored budgets: %w", err)
	}
	for _, id := range ids {
		if _, ok := live[id]; ok {
			continue
		}
		if err := w.mirror.DeleteBudget(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to remove orphan row", "budget_id", id, "error", err)
			stats.Failed++
			continue
		}
		stats.Removed++
	}
	return stats, nil
}
