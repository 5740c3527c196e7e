package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/memorylane/memorylane-server/internal/service"
)

// ProvideMemoryService provides the memory service.
func ProvideMemoryService(i do.Injector) (*service.MemoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewMemoryService(storeHandle.Store, log), nil
}

// ProvideTagService provides the tag catalog service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewTagService(storeHandle.Store, log), nil
}
