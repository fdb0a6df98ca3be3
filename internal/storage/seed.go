package storage

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"budgets/internal/core"
)

// ReadSeedContacts parses a "name,email" per line file. Blank lines and
// # comments are skipped; a missing file yields no contacts.
func ReadSeedContacts(path string) ([]core.Contact, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	var out []core.Contact
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, email, _ := strings.Cut(line, ",")
		out = append(out, core.Contact{
			Name:  strings.TrimSpace(name),
			Email: strings.TrimSpace(email),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return out, nil
}

// SeedContacts inserts contacts only when the contacts table is empty, so a
// table populated by the contact manager is never touched.
func SeedContacts(ctx context.Context, store Store, contacts []core.Contact) (int, error) {
	rows, err := store.Fetch(ctx, "SELECT COUNT(*) AS n FROM contacts")
	if err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	if len(rows) > 0 {
		n, err := rows[0].Int64("n")
		if err != nil {
			return 0, fmt.Errorf("count contacts: %w", err)
		}
		if n > 0 {
			return 0, nil
		}
	}

	inserted := 0
	for _, c := range contacts {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		if _, err := store.ExecCommit(ctx, "INSERT INTO contacts (name, email) VALUES (?, ?)", c.Name, c.Email); err != nil {
			return inserted, fmt.Errorf("seed contact %q: %w", c.Name, err)
		}
		inserted++
	}
	slog.InfoContext(ctx, "Seeded contacts", "count", inserted)
	return inserted, nil
}
