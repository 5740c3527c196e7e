// Package store defines the persistence interface for the MemoryLane server.
package store

import (
	"context"

	"github.com/memorylane/memorylane-server/internal/domain"
)

// MemoryFilter narrows a memory listing.
type MemoryFilter struct {
	// Tag keeps only memories carrying this catalog tag name. Empty means all.
	Tag string
}

// Store defines the persistence operations the services rely on.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Tag catalog
	SeedTags(ctx context.Context, names []string) (int, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	ResolveTags(ctx context.Context, names []string) ([]*domain.Tag, error)

	// Memories
	ListMemories(ctx context.Context, filter MemoryFilter) ([]*domain.Memory, error)
	GetMemory(ctx context.Context, id int64) (*domain.Memory, error)
	CreateMemory(ctx context.Context, m *domain.Memory) (int64, error)
	UpdateMemory(ctx context.Context, m *domain.Memory) error
	DeleteMemory(ctx context.Context, id int64) error
}
