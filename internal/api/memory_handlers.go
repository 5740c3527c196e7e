package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/memorylane/memorylane-server/internal/domain"
	"github.com/memorylane/memorylane-server/internal/service"
)

func (s *Server) registerMemoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMemories",
		Method:      http.MethodGet,
		Path:        "/memories",
		Summary:     "List memories",
		Description: "Returns every memory with its tags. Optionally filtered by one tag and sorted by date.",
		Tags:        []string{"Memories"},
	}, s.handleListMemories)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMemory",
		Method:      http.MethodGet,
		Path:        "/memories/{id}",
		Summary:     "Get memory",
		Description: "Returns a single memory with its tags",
		Tags:        []string{"Memories"},
	}, s.handleGetMemory)

	huma.Register(s.api, huma.Operation{
		OperationID:     "createMemory",
		Method:          http.MethodPost,
		Path:            "/memories",
		Summary:         "Create memory",
		Description:     "Creates a memory and links up to three catalog tags in one transaction",
		Tags:            []string{"Memories"},
		DefaultStatus:   http.StatusCreated,
		MaxBodyBytes:    s.opts.MaxBodyBytes,
		BodyReadTimeout: -1,
	}, s.handleCreateMemory)

	huma.Register(s.api, huma.Operation{
		OperationID:     "updateMemory",
		Method:          http.MethodPut,
		Path:            "/memories/{id}",
		Summary:         "Update memory",
		Description:     "Replaces every field of a memory and its whole tag set in one transaction",
		Tags:            []string{"Memories"},
		MaxBodyBytes:    s.opts.MaxBodyBytes,
		BodyReadTimeout: -1,
	}, s.handleUpdateMemory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteMemory",
		Method:      http.MethodDelete,
		Path:        "/memories/{id}",
		Summary:     "Delete memory",
		Description: "Deletes a memory and its tag links. Deleting an unknown ID succeeds.",
		Tags:        []string{"Memories"},
	}, s.handleDeleteMemory)
}

// === DTOs ===

// MemoryBody is the request body for creating or replacing a memory.
// Field rules are enforced by the service so all violations come back together.
type MemoryBody struct {
	_           struct{} `json:"-" additionalProperties:"true"`
	Name        string   `json:"name" required:"false" doc:"Title of the memory"`
	Description string   `json:"description" required:"false" doc:"Free text, at most 700 characters"`
	Timestamp   string   `json:"timestamp" required:"false" doc:"Date as YYYY-MM-DD or RFC 3339" example:"2024-07-04"`
	Image       string   `json:"image" required:"false" doc:"Image URL or data URL"`
	Tags        []string `json:"tags,omitempty" required:"false" nullable:"true" doc:"Up to three catalog tag names"`
}

func (b MemoryBody) toRequest() service.MemoryRequest {
	return service.MemoryRequest{
		Name:        b.Name,
		Description: b.Description,
		Timestamp:   b.Timestamp,
		Image:       b.Image,
		Tags:        b.Tags,
	}
}

// ListMemoriesInput contains parameters for listing memories.
type ListMemoriesInput struct {
	Sort string `query:"sort" doc:"Order by date: newest or oldest. Omit for creation order."`
	Tag  string `query:"tag" doc:"Only memories carrying this tag"`
}

// ListMemoriesOutput contains the memory list.
type ListMemoriesOutput struct {
	Body []*domain.Memory
}

// MemoryIDInput identifies a memory by path.
type MemoryIDInput struct {
	ID int64 `path:"id" doc:"Memory ID"`
}

// MemoryResponse wraps a single memory.
type MemoryResponse struct {
	Memory *domain.Memory `json:"memory"`
}

// GetMemoryOutput contains a single memory.
type GetMemoryOutput struct {
	Body MemoryResponse
}

// CreateMemoryInput contains parameters for creating a memory.
type CreateMemoryInput struct {
	Body MemoryBody
}

// CreatedResponse acknowledges a creation with the new ID.
type CreatedResponse struct {
	Message string `json:"message" example:"Memory created successfully"`
	ID      int64  `json:"id" doc:"ID of the new memory"`
}

// CreateMemoryOutput contains the create acknowledgement.
type CreateMemoryOutput struct {
	Body CreatedResponse
}

// UpdateMemoryInput contains parameters for replacing a memory.
type UpdateMemoryInput struct {
	ID   int64 `path:"id" doc:"Memory ID"`
	Body MemoryBody
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// MessageOutput wraps a MessageResponse for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListMemories(ctx context.Context, input *ListMemoriesInput) (*ListMemoriesOutput, error) {
	memories, err := s.services.Memory.ListMemories(ctx, service.ListMemoriesRequest{
		Sort: input.Sort,
		Tag:  input.Tag,
	})
	if err != nil {
		return nil, err
	}
	return &ListMemoriesOutput{Body: memories}, nil
}

func (s *Server) handleGetMemory(ctx context.Context, input *MemoryIDInput) (*GetMemoryOutput, error) {
	m, err := s.services.Memory.GetMemory(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetMemoryOutput{Body: MemoryResponse{Memory: m}}, nil
}

func (s *Server) handleCreateMemory(ctx context.Context, input *CreateMemoryInput) (*CreateMemoryOutput, error) {
	id, err := s.services.Memory.CreateMemory(ctx, input.Body.toRequest())
	if err != nil {
		return nil, err
	}
	return &CreateMemoryOutput{Body: CreatedResponse{Message: MsgMemoryCreated, ID: id}}, nil
}

func (s *Server) handleUpdateMemory(ctx context.Context, input *UpdateMemoryInput) (*MessageOutput, error) {
	if err := s.services.Memory.UpdateMemory(ctx, input.ID, input.Body.toRequest()); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: MsgMemoryUpdated}}, nil
}

func (s *Server) handleDeleteMemory(ctx context.Context, input *MemoryIDInput) (*MessageOutput, error) {
	if err := s.services.Memory.DeleteMemory(ctx, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: MsgMemoryDeleted}}, nil
}
