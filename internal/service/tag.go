package service

import (
	"context"
	"log/slog"

	"github.com/memorylane/memorylane-server/internal/domain"
	"github.com/memorylane/memorylane-server/internal/store"
)

// TagService exposes the fixed tag catalog.
// The catalog is seeded at startup and never modified through the API.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// ListTags returns every catalog tag in insertion order.
func (s *TagService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []*domain.Tag{}
	}
	return tags, nil
}

// SeedCatalog makes sure every name in vocabulary exists in the catalog.
// An empty vocabulary falls back to domain.DefaultTagVocabulary.
func (s *TagService) SeedCatalog(ctx context.Context, vocabulary []string) (int, error) {
	if len(vocabulary) == 0 {
		vocabulary = domain.DefaultTagVocabulary
	}

	added, err := s.store.SeedTags(ctx, vocabulary)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("tag catalog ready", "vocabulary", vocabulary, "added", added)
	return added, nil
}
