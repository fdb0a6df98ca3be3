package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventKind names the budget change an event reports.
type EventKind string

const (
	BudgetCreated EventKind = "budget.created"
	BudgetUpdated EventKind = "budget.updated"
	BudgetDeleted EventKind = "budget.deleted"
)

func (k EventKind) Valid() bool {
	switch k {
	case BudgetCreated, BudgetUpdated, BudgetDeleted:
		return true
	}
	return false
}

// BudgetEvent is a lightweight change notice. It carries only ids; consumers
// fetch the current budget from the store.
type BudgetEvent struct {
	ID        uuid.UUID `json:"id"`
	Kind      EventKind `json:"kind"`
	BudgetID  int64     `json:"budget_id"`
	ContactID int64     `json:"contact_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBudgetEvent creates an event with a fresh id and the current time.
func NewBudgetEvent(kind EventKind, budgetID, contactID int64) BudgetEvent {
	return BudgetEvent{
		ID:        uuid.New(),
		Kind:      kind,
		BudgetID:  budgetID,
		ContactID: contactID,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e BudgetEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// BudgetEventFromJSON decodes and checks an event body.
func BudgetEventFromJSON(data []byte) (BudgetEvent, error) {
	var e BudgetEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return BudgetEvent{}, err
	}
	if !e.Kind.Valid() {
		return BudgetEvent{}, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.BudgetID <= 0 {
		return BudgetEvent{}, fmt.Errorf("event %s has no budget id", e.ID)
	}
	return e, nil
}
