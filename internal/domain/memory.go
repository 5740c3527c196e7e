// Package domain holds the core types of the memory journal.
package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	// MaxTagsPerMemory caps the number of tags a memory can carry.
	MaxTagsPerMemory = 3

	// MaxDescriptionLength caps the description in characters.
	MaxDescriptionLength = 700
)

// Layouts accepted for a memory timestamp, tried in order.
// Clients send either a bare date or a UTC ISO string.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Memory is a single journal entry.
// Timestamp is kept exactly as the client sent it; use Date for comparisons.
type Memory struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Timestamp   string   `json:"timestamp"`
	Image       string   `json:"image"`
	Tags        []string `json:"tags"`
}

// Date parses Timestamp as a calendar date in UTC.
func (m *Memory) Date() (time.Time, error) {
	return ParseDate(m.Timestamp)
}

// ParseDate parses a memory timestamp in any accepted layout.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// SortOrder controls the order of a memory listing.
type SortOrder string

// Supported sort orders. SortNone keeps the store's natural order.
const (
	SortNone   SortOrder = ""
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// SortMemories orders memories by date in place.
// Memories whose timestamp does not parse sort after all dated ones,
// and ties keep their original relative order.
func SortMemories(memories []*Memory, order SortOrder) {
	if order == SortNone {
		return
	}

	dates := make(map[int64]time.Time, len(memories))
	for _, m := range memories {
		if d, err := m.Date(); err == nil {
			dates[m.ID] = d
		}
	}

	slices.SortStableFunc(memories, func(a, b *Memory) int {
		da, okA := dates[a.ID]
		db, okB := dates[b.ID]
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		if order == SortNewest {
			return db.Compare(da)
		}
		return da.Compare(db)
	})
}
