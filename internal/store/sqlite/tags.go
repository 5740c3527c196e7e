package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/memorylane/memorylane-server/internal/domain"
	"github.com/memorylane/memorylane-server/internal/util"
)

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag
	if err := scanner.Scan(&t.ID, &t.Name); err != nil {
		return nil, err
	}
	return &t, nil
}

// SeedTags inserts every catalog name that is not already present and
// returns how many rows were added. Names are normalized first.
func (s *Store) SeedTags(ctx context.Context, names []string) (int, error) {
	names = util.NormalizeTagNames(names)

	var added int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO tags (name) VALUES (?)`)
		if err != nil {
			return fmt.Errorf("prepare seed tag: %w", err)
		}
		defer stmt.Close()

		for _, name := range names {
			res, err := stmt.ExecContext(ctx, name)
			if err != nil {
				return fmt.Errorf("seed tag %q: %w", name, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			added += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if added > 0 {
		s.logger.Info("tag catalog seeded", "added", added)
	}
	return added, nil
}

// ListTags returns the whole catalog in insertion order.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM tags ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ResolveTags returns the catalog entries matching names. Names that are
// not in the catalog are absent from the result.
func (s *Store) ResolveTags(ctx context.Context, names []string) ([]*domain.Tag, error) {
	names = util.NormalizeTagNames(names)
	if len(names) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		placeholders[i] = "?"
		args[i] = name
	}

	query := `SELECT id, name FROM tags WHERE name IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
