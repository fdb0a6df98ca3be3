package memory

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"budgets/internal/core"
	"budgets/internal/storage"
)

// Store keeps contacts and budgets in process memory. It mirrors the SQLite
// repository semantics so handlers and services can be exercised without a file.
type Store struct {
	mu       sync.Mutex
	contacts []core.Contact
	budgets  map[int64]core.Budget
	nextID   int64
}

func New(contacts []core.Contact) *Store {
	return &Store{
		contacts: dedupeContacts(contacts),
		budgets:  make(map[int64]core.Budget),
	}
}

// NewFromFiles seeds contacts from base/seed_contacts.txt, falling back to
// two demo contacts when the file is missing or empty.
func NewFromFiles(base string) *Store {
	contacts, err := storage.ReadSeedContacts(filepath.Join(base, "seed_contacts.txt"))
	if err != nil || len(contacts) == 0 {
		contacts = []core.Contact{
			{Name: "John Doe", Email: "john@example.com"},
			{Name: "Jane Smith", Email: "jane@example.com"},
		}
	}
	return New(contacts)
}

func (s *Store) GetContacts(_ context.Context) ([]core.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Contact{}, s.contacts...), nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasContact(b.ContactID) {
		return 0, fmt.Errorf("create budget for contact %d: %w", b.ContactID, core.ErrContactNotFound)
	}
	s.nextID++
	b.ID = s.nextID
	s.budgets[b.ID] = b
	return b.ID, nil
}

func (s *Store) GetBudget(_ context.Context, id int64) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, fmt.Errorf("budget %d: %w", id, core.ErrBudgetNotFound)
	}
	return b, nil
}

func (s *Store) GetBudgetsForContact(_ context.Context, contactID int64) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Budget{}
	for _, b := range s.budgets {
		if b.ContactID == contactID {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b core.Budget) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *Store) UpdateBudget(_ context.Context, id int64, u core.BudgetUpdate) (int64, error) {
	if u.IsEmpty() {
		return 0, core.ErrEmptyUpdate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return 0, nil
	}
	s.budgets[id] = b.Apply(u)
	return 1, nil
}

func (s *Store) DeleteBudget(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[id]; !ok {
		return 0, nil
	}
	delete(s.budgets, id)
	return 1, nil
}

func (s *Store) hasContact(id int64) bool {
	for _, c := range s.contacts {
		if c.ID == id {
			return true
		}
	}
	return false
}

// dedupeContacts drops blank and repeated names and assigns sequential ids
// to contacts that arrive without one. Input order is preserved.
func dedupeContacts(in []core.Contact) []core.Contact {
	seen := map[string]struct{}{}
	out := make([]core.Contact, 0, len(in))
	var maxID int64
	for _, c := range in {
		maxID = max(maxID, c.ID)
	}
	for _, c := range in {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		if c.ID == 0 {
			maxID++
			c.ID = maxID
		}
		out = append(out, c)
	}
	return out
}
