package amqp

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewBudgetEvent(t *testing.T) {
	e := NewBudgetEvent(BudgetUpdated, 12345, 7)

	if e.ID == uuid.Nil {
		t.Error("NewBudgetEvent() ID should be set")
	}
	if e.Kind != BudgetUpdated || e.BudgetID != 12345 || e.ContactID != 7 {
		t.Errorf("NewBudgetEvent() = %+v", e)
	}
	if time.Since(e.Timestamp) > time.Second {
		t.Error("NewBudgetEvent() Timestamp should be recent")
	}
}

func TestBudgetEvent_JSON(t *testing.T) {
	e := BudgetEvent{
		ID:        uuid.MustParse("6f1c1b4e-8f59-4c1e-9d4a-2b0f3c6d7e81"),
		Kind:      BudgetDeleted,
		BudgetID:  42,
		Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	body, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := BudgetEventFromJSON(body)
	if err != nil {
		t.Fatalf("BudgetEventFromJSON() error = %v", err)
	}
	if got.ID != e.ID || got.Kind != e.Kind || got.BudgetID != e.BudgetID || !got.Timestamp.Equal(e.Timestamp) {
		t.Errorf("round trip mismatch: got %+v want %+v", got, e)
	}
}

func TestBudgetEventFromJSON_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad json":     `{"budget_id": "nope"}`,
		"unknown kind": `{"kind": "budget.archived", "budget_id": 1}`,
		"no budget id": `{"kind": "budget.created"}`,
	}
	for name, body := range cases {
		if _, err := BudgetEventFromJSON([]byte(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
