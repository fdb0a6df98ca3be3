package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"budgets/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeedContacts(t *testing.T) {
	dir := t.TempDir()

	none, err := ReadSeedContacts(filepath.Join(dir, "missing.txt"))
	require.NoError(t, err)
	assert.Empty(t, none)

	path := filepath.Join(dir, "seed_contacts.txt")
	require.NoError(t, os.WriteFile(path, []byte("# name,email\nJohn Doe, john@example.com\n\nSolo\n"), 0o644))

	got, err := ReadSeedContacts(path)
	require.NoError(t, err)
	assert.Equal(t, []core.Contact{
		{Name: "John Doe", Email: "john@example.com"},
		{Name: "Solo"},
	}, got)
}

func TestSeedContactsOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	seed := []core.Contact{{Name: "John Doe", Email: "john@example.com"}, {Name: " "}, {Name: "Jane Smith"}}

	n, err := SeedContacts(ctx, store, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = SeedContacts(ctx, store, seed)
	require.NoError(t, err)
	assert.Zero(t, n)

	contacts, err := NewBudgetRepository(store).GetContacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}
