package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgets/internal/amqp"
	"budgets/internal/core"
	"budgets/internal/log"
	"budgets/internal/metrics"
	"budgets/internal/notify"
)

// BudgetStore is the repository surface the service drives. Both the SQLite
// repository and the memory store satisfy it.
type BudgetStore interface {
	GetContacts(ctx context.Context) ([]core.Contact, error)
	CreateBudget(ctx context.Context, b core.Budget) (int64, error)
	GetBudget(ctx context.Context, id int64) (core.Budget, error)
	GetBudgetsForContact(ctx context.Context, contactID int64) ([]core.Budget, error)
	UpdateBudget(ctx context.Context, id int64, u core.BudgetUpdate) (int64, error)
	DeleteBudget(ctx context.Context, id int64) (int64, error)
}

// EventPublisher announces committed budget changes.
type EventPublisher interface {
	PublishBudgetEvent(ctx context.Context, event amqp.BudgetEvent) error
}

const (
	MsgBudgetCreated = "Budget created successfully!"
	MsgBudgetUpdated = "Budget updated successfully!"
	MsgBudgetDeleted = "Budget deleted successfully!"
)

// BudgetService validates input, runs one repository write, then raises a
// success notification and a best effort change event.
type BudgetService struct {
	store     BudgetStore
	notifier  notify.Notifier
	publisher EventPublisher
	metrics   *metrics.Metrics
	logger    *log.StructuredLogger
}

// NewBudgetService wires the service. publisher and m may be nil.
func NewBudgetService(store BudgetStore, notifier notify.Notifier, publisher EventPublisher, m *metrics.Metrics) *BudgetService {
	if notifier == nil {
		notifier = notify.ContextNotifier{}
	}
	return &BudgetService{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		metrics:   m,
		logger:    log.NewStructuredLogger(log.New(log.Config{Component: log.ComponentBudget, Handler: slog.Default().Handler()})),
	}
}

func (s *BudgetService) Contacts(ctx context.Context) ([]core.Contact, error) {
	contacts, err := s.store.GetContacts(ctx)
	s.observe(log.OpList, err)
	return contacts, err
}

func (s *BudgetService) BudgetsForContact(ctx context.Context, contactID int64) ([]core.Budget, error) {
	budgets, err := s.store.GetBudgetsForContact(ctx, contactID)
	s.observe(log.OpList, err)
	return budgets, err
}

func (s *BudgetService) Budget(ctx context.Context, id int64) (core.Budget, error) {
	b, err := s.store.GetBudget(ctx, id)
	s.observe(log.OpRead, err)
	return b, err
}

// CreateBudget stores b and returns its new id.
func (s *BudgetService) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	b.Currency = core.NormalizeCurrency(b.Currency)
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("validate budget: %w", err)
	}

	id, err := s.store.CreateBudget(ctx, b)
	s.observe(log.OpCreate, err)
	if err != nil {
		return 0, fmt.Errorf("create budget: %w", err)
	}

	s.logger.LogBudgetWrite(ctx, log.OpCreate,
		log.NewFields().WithBudget(id, b.ContactID, b.Name, b.TotalBudget.String(), b.Currency), 1)
	s.notifier.Notify(ctx, notify.Success(MsgBudgetCreated))
	s.publish(ctx, amqp.BudgetCreated, id, b.ContactID)
	return id, nil
}

// UpdateBudget applies the set fields of u to budget id. Updating a budget
// that does not exist affects zero rows and still reports success.
func (s *BudgetService) UpdateBudget(ctx context.Context, id int64, u core.BudgetUpdate) (int64, error) {
	if c, ok := u.Currency.Get(); ok {
		u.Currency = core.Set(core.NormalizeCurrency(c))
	}
	if err := u.Validate(); err != nil {
		return 0, fmt.Errorf("validate update: %w", err)
	}
	if err := s.checkMergedRange(ctx, id, u); err != nil {
		return 0, err
	}

	n, err := s.store.UpdateBudget(ctx, id, u)
	s.observe(log.OpUpdate, err)
	if err != nil {
		return 0, fmt.Errorf("update budget: %w", err)
	}

	s.logger.LogBudgetWrite(ctx, log.OpUpdate, log.NewFields().WithBudget(id, 0, "", "", ""), n)
	s.notifier.Notify(ctx, notify.Success(MsgBudgetUpdated))
	if n > 0 {
		s.publish(ctx, amqp.BudgetUpdated, id, 0)
	}
	return n, nil
}

// DeleteBudget removes budget id. Deleting a missing id affects zero rows
// and still reports success.
func (s *BudgetService) DeleteBudget(ctx context.Context, id int64) (int64, error) {
	n, err := s.store.DeleteBudget(ctx, id)
	s.observe(log.OpDelete, err)
	if err != nil {
		return 0, fmt.Errorf("delete budget: %w", err)
	}

	s.logger.LogBudgetWrite(ctx, log.OpDelete, log.NewFields().WithBudget(id, 0, "", "", ""), n)
	s.notifier.Notify(ctx, notify.Success(MsgBudgetDeleted))
	if n > 0 {
		s.publish(ctx, amqp.BudgetDeleted, id, 0)
	}
	return n, nil
}

// checkMergedRange validates the date range when an update moves only one
// end of it, against the stored other end.
func (s *BudgetService) checkMergedRange(ctx context.Context, id int64, u core.BudgetUpdate) error {
	if u.StartDate.IsSet() == u.EndDate.IsSet() {
		return nil
	}
	current, err := s.store.GetBudget(ctx, id)
	if errors.Is(err, core.ErrBudgetNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load budget %d: %w", id, err)
	}
	merged := current.Apply(u)
	if merged.EndDate.Before(merged.StartDate.Time) {
		return fmt.Errorf("validate update: %w", core.ErrInvalidDateRange)
	}
	return nil
}

func (s *BudgetService) publish(ctx context.Context, kind amqp.EventKind, budgetID, contactID int64) {
	if s.publisher == nil {
		return
	}
	event := amqp.NewBudgetEvent(kind, budgetID, contactID)
	if err := s.publisher.PublishBudgetEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget event",
			log.FieldEventID, event.ID,
			log.FieldEventKind, kind,
			log.FieldBudgetID, budgetID,
			log.FieldError, err)
		s.metrics.ObserveEvent(string(kind), metrics.OutcomeError)
		return
	}
	s.metrics.ObserveEvent(string(kind), metrics.OutcomeSuccess)
}

func (s *BudgetService) observe(op string, err error) {
	switch {
	case err == nil:
		s.metrics.ObserveBudgetOp(op, metrics.OutcomeSuccess)
	case errors.Is(err, core.ErrBudgetNotFound), errors.Is(err, core.ErrContactNotFound):
		s.metrics.ObserveBudgetOp(op, metrics.OutcomeNotFound)
	default:
		s.metrics.ObserveBudgetOp(op, metrics.OutcomeError)
	}
}
