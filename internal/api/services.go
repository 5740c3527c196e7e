package api

import (
	"github.com/memorylane/memorylane-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Memory *service.MemoryService
	Tag    *service.TagService
}
