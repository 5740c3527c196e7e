package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/memorylane/memorylane-server/internal/domain"
	domainerrors "github.com/memorylane/memorylane-server/internal/errors"
	"github.com/memorylane/memorylane-server/internal/store"
	"github.com/memorylane/memorylane-server/internal/util"
	"github.com/memorylane/memorylane-server/internal/validation"
)

// MemoryService orchestrates memory operations.
type MemoryService struct {
	store     store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewMemoryService creates a new memory service.
func NewMemoryService(store store.Store, logger *slog.Logger) *MemoryService {
	return &MemoryService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// MemoryRequest contains the fields for creating or replacing a memory.
// Tags holds catalog names; the limit applies to the list as supplied.
type MemoryRequest struct {
	Name        string   `json:"name" validate:"notblank"`
	Description string   `json:"description" validate:"notblank,max=700"`
	Timestamp   string   `json:"timestamp" validate:"required,calendardate"`
	Image       string   `json:"image" validate:"notblank"`
	Tags        []string `json:"tags" validate:"max=3"`
}

// ListMemoriesRequest contains optional listing controls.
type ListMemoriesRequest struct {
	Sort string `json:"sort" validate:"omitempty,oneof=newest oldest"`
	Tag  string `json:"tag"`
}

// ListMemories returns every memory with its tags, optionally filtered by
// one tag and ordered by timestamp.
func (s *MemoryService) ListMemories(ctx context.Context, req ListMemoriesRequest) ([]*domain.Memory, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	memories, err := s.store.ListMemories(ctx, store.MemoryFilter{Tag: req.Tag})
	if err != nil {
		return nil, err
	}

	domain.SortMemories(memories, domain.SortOrder(req.Sort))
	return memories, nil
}

// GetMemory returns a single memory with its tags.
func (s *MemoryService) GetMemory(ctx context.Context, id int64) (*domain.Memory, error) {
	if id <= 0 {
		return nil, memoryNotFound(store.ErrMemoryNotFound)
	}

	m, err := s.store.GetMemory(ctx, id)
	if err != nil {
		return nil, memoryNotFound(err)
	}
	return m, nil
}

// CreateMemory validates req and stores a new memory, returning its id.
// Tags outside the catalog are dropped.
func (s *MemoryService) CreateMemory(ctx context.Context, req MemoryRequest) (int64, error) {
	m, err := s.buildMemory(ctx, req)
	if err != nil {
		return 0, err
	}

	id, err := s.store.CreateMemory(ctx, m)
	if err != nil {
		return 0, err
	}

	s.logger.Info("memory created", "id", id, "tags", m.Tags)
	return id, nil
}

// UpdateMemory replaces every field and the tag set of memory id.
func (s *MemoryService) UpdateMemory(ctx context.Context, id int64, req MemoryRequest) error {
	if id <= 0 {
		return memoryNotFound(store.ErrMemoryNotFound)
	}

	m, err := s.buildMemory(ctx, req)
	if err != nil {
		return err
	}
	m.ID = id

	if err := s.store.UpdateMemory(ctx, m); err != nil {
		return memoryNotFound(err)
	}

	s.logger.Info("memory updated", "id", id, "tags", m.Tags)
	return nil
}

// DeleteMemory removes memory id. Unknown ids succeed.
func (s *MemoryService) DeleteMemory(ctx context.Context, id int64) error {
	if err := s.store.DeleteMemory(ctx, id); err != nil {
		return err
	}

	s.logger.Info("memory deleted", "id", id)
	return nil
}

// buildMemory validates req and resolves its tags against the catalog.
func (s *MemoryService) buildMemory(ctx context.Context, req MemoryRequest) (*domain.Memory, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}

	return &domain.Memory{
		Name:        req.Name,
		Description: req.Description,
		Timestamp:   req.Timestamp,
		Image:       req.Image,
		Tags:        tags,
	}, nil
}

// resolveTags keeps the names that exist in the catalog.
func (s *MemoryService) resolveTags(ctx context.Context, names []string) ([]string, error) {
	wanted := util.NormalizeTagNames(names)
	if len(wanted) == 0 {
		return []string{}, nil
	}

	known, err := s.store.ResolveTags(ctx, wanted)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "resolve tags")
	}

	found := make(map[string]bool, len(known))
	for _, t := range known {
		found[t.Name] = true
	}

	tags := make([]string, 0, len(wanted))
	for _, name := range wanted {
		if !found[name] {
			s.logger.Debug("dropping tag outside the catalog", "tag", name)
			continue
		}
		tags = append(tags, name)
	}
	return tags, nil
}

// memoryNotFound converts a store not-found error into a domain error.
// Other errors pass through unchanged.
func memoryNotFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound("Memory not found").WithCause(err)
	}
	return err
}
