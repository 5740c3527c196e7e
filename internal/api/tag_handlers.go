package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/memorylane/memorylane-server/internal/domain"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/tags",
		Summary:     "List tags",
		Description: "Returns the fixed tag catalog a memory can draw from",
		Tags:        []string{"Tags"},
	}, s.handleListTags)
}

// ListTagsOutput contains the tag catalog.
type ListTagsOutput struct {
	Body []*domain.Tag
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	return &ListTagsOutput{Body: tags}, nil
}
