package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/memorylane/memorylane-server/internal/config"
	"github.com/memorylane/memorylane-server/internal/logger"
	"github.com/memorylane/memorylane-server/internal/service"
	"github.com/memorylane/memorylane-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store, creating the database directory if needed.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.Database.Path
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// Bootstrap contains the startup seeding result.
type Bootstrap struct {
	TagsAdded int
}

// ProvideBootstrap seeds the tag catalog. Existing tags are left alone, so
// this is safe on every start.
func ProvideBootstrap(i do.Injector) (*Bootstrap, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	tagService := do.MustInvoke[*service.TagService](i)

	added, err := tagService.SeedCatalog(context.Background(), cfg.Tags.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("seed tag catalog: %w", err)
	}

	log.Info("Tag catalog ready", "vocabulary", len(cfg.Tags.Vocabulary), "added", added)

	return &Bootstrap{TagsAdded: added}, nil
}

// ProvideSlogLogger exposes the underlying slog.Logger to the services, which
// log through plain slog.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
