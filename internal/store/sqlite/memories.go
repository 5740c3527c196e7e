package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/memorylane/memorylane-server/internal/domain"
	"github.com/memorylane/memorylane-server/internal/store"
	"github.com/memorylane/memorylane-server/internal/util"
)

// tagSeparator joins tag names inside GROUP_CONCAT. Catalog names never
// contain control characters, so the ASCII unit separator is safe.
const tagSeparator = "\x1f"

// memorySelect selects a memory row with its tag names aggregated into
// one column, ordered by catalog id. Must match the scan order in scanMemory.
const memorySelect = `
	SELECT m.id, m.name, m.description, m.timestamp, m.image,
		(SELECT GROUP_CONCAT(name, char(31)) FROM (
			SELECT t.name FROM memory_tags mt
			JOIN tags t ON t.id = mt.tag_id
			WHERE mt.memory_id = m.id
			ORDER BY t.id
		)) AS tags
	FROM memories m`

// scanMemory scans a sql.Row (or sql.Rows via its Scan method) into a domain.Memory.
func scanMemory(scanner interface{ Scan(dest ...any) error }) (*domain.Memory, error) {
	var (
		m    domain.Memory
		tags sql.NullString
	)

	err := scanner.Scan(
		&m.ID,
		&m.Name,
		&m.Description,
		&m.Timestamp,
		&m.Image,
		&tags,
	)
	if err != nil {
		return nil, err
	}

	m.Tags = []string{}
	if tags.Valid && tags.String != "" {
		m.Tags = strings.Split(tags.String, tagSeparator)
	}
	return &m, nil
}

// ListMemories returns every memory with its tags in id order.
// A non-empty filter.Tag keeps only memories carrying that tag.
func (s *Store) ListMemories(ctx context.Context, filter store.MemoryFilter) ([]*domain.Memory, error) {
	query := memorySelect
	var args []any

	if tag := util.NormalizeTagName(filter.Tag); tag != "" {
		query += `
	WHERE EXISTS (
		SELECT 1 FROM memory_tags mt
		JOIN tags t ON t.id = mt.tag_id
		WHERE mt.memory_id = m.id AND t.name = ?
	)`
		args = append(args, tag)
	}
	query += ` ORDER BY m.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}
	defer rows.Close()

	memories := []*domain.Memory{}
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

// GetMemory retrieves a memory by id.
// Returns store.ErrMemoryNotFound if the memory does not exist.
func (s *Store) GetMemory(ctx context.Context, id int64) (*domain.Memory, error) {
	row := s.db.QueryRowContext(ctx, memorySelect+` WHERE m.id = ?`, id)

	m, err := scanMemory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrMemoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get memory %d: %w", id, err)
	}
	return m, nil
}

// CreateMemory inserts the memory row and its tag links in one transaction
// and returns the new id. m.ID is set on success.
func (s *Store) CreateMemory(ctx context.Context, m *domain.Memory) (int64, error) {
	tags, err := linkableTags(m.Tags)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO memories (name, description, timestamp, image)
			VALUES (?, ?, ?, ?)`,
			m.Name,
			m.Description,
			m.Timestamp,
			m.Image,
		)
		if err != nil {
			return fmt.Errorf("insert memory: %w", err)
		}

		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		return insertMemoryTags(ctx, tx, id, tags)
	})
	if err != nil {
		return 0, err
	}

	m.ID = id
	return id, nil
}

// UpdateMemory replaces every field and the tag set of an existing memory.
// Returns store.ErrMemoryNotFound, with nothing changed, if the id is unknown.
func (s *Store) UpdateMemory(ctx context.Context, m *domain.Memory) error {
	tags, err := linkableTags(m.Tags)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE memories
			SET name = ?, description = ?, timestamp = ?, image = ?
			WHERE id = ?`,
			m.Name,
			m.Description,
			m.Timestamp,
			m.Image,
			m.ID,
		)
		if err != nil {
			return fmt.Errorf("update memory: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrMemoryNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM memory_tags WHERE memory_id = ?`, m.ID); err != nil {
			return fmt.Errorf("clear memory tags: %w", err)
		}

		return insertMemoryTags(ctx, tx, m.ID, tags)
	})
}

// DeleteMemory removes a memory and its tag links. Deleting an id that does
// not exist is not an error.
func (s *Store) DeleteMemory(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM memory_tags WHERE memory_id = ?`, id); err != nil {
			return fmt.Errorf("delete memory tags: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete memory: %w", err)
		}

		if n, _ := res.RowsAffected(); n == 0 {
			s.logger.Debug("delete of unknown memory", "id", id)
		}
		return nil
	})
}

// linkableTags normalizes and de-duplicates names and enforces the per-memory cap.
// MemoryService validates the raw list first, so only direct store callers hit ErrTooManyTags.
func linkableTags(names []string) ([]string, error) {
	tags := util.NormalizeTagNames(names)
	if len(tags) > domain.MaxTagsPerMemory {
		return nil, store.ErrTooManyTags
	}
	return tags, nil
}

// insertMemoryTags links memoryID to each named catalog tag. Names missing
// from the catalog select no row and are skipped.
func insertMemoryTags(ctx context.Context, tx *sql.Tx, memoryID int64, names []string) error {
	if len(names) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO memory_tags (memory_id, tag_id)
		SELECT ?, id FROM tags WHERE name = ?`)
	if err != nil {
		return fmt.Errorf("prepare memory tag insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, memoryID, name); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}
	return nil
}
