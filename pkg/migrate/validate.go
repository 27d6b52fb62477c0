package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	fileNameRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
	// Ledger history is settled money; only released_at may change after insert.
	ledgerRewriteRe = regexp.MustCompile(`(?i)\b(delete\s+from|truncate(\s+table)?)\s+ledger_entries\b`)
)

// ValidateDir checks every .sql file in dir: the file name carries a unique
// 14 digit version, both goose sections are present, and no Up section
// deletes or truncates ledger_entries.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	versions := make(map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".sql" {
			continue
		}
		m := fileNameRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("migration %q: want <YYYYMMDDHHMMSS>_<name>.sql", name)
		}
		if prev, dup := versions[m[1]]; dup {
			return fmt.Errorf("migration %q reuses version %s from %q", name, m[1], prev)
		}
		versions[m[1]] = name

		body, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read migration %q: %w", name, err)
		}
		if err := checkSections(name, string(body)); err != nil {
			return err
		}
	}
	return nil
}

func checkSections(name, body string) error {
	upAt := strings.Index(body, "-- +goose Up")
	downAt := strings.Index(body, "-- +goose Down")
	switch {
	case upAt < 0:
		return fmt.Errorf("migration %q has no goose Up section", name)
	case downAt < 0:
		return fmt.Errorf("migration %q has no goose Down section", name)
	case downAt < upAt:
		return fmt.Errorf("migration %q declares Down before Up", name)
	}
	if ledgerRewriteRe.MatchString(body[upAt:downAt]) {
		return fmt.Errorf("migration %q removes ledger_entries rows", name)
	}
	return nil
}
