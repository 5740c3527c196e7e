package providers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/samber/do/v2"
	"golang.org/x/net/netutil"

	"github.com/memorylane/memorylane-server/internal/api"
	"github.com/memorylane/memorylane-server/internal/config"
	"github.com/memorylane/memorylane-server/internal/logger"
	"github.com/memorylane/memorylane-server/internal/ratelimit"
	"github.com/memorylane/memorylane-server/internal/service"
)

// Version is reported in the OpenAPI document. Set at build time with
// -ldflags "-X github.com/memorylane/memorylane-server/internal/di/providers.Version=...".
var Version = "dev"

// RateLimiterHandle wraps the write limiter with Shutdownable.
// Limiter is nil when rate limiting is disabled.
type RateLimiterHandle struct {
	Limiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	if h.Limiter != nil {
		h.Limiter.Stop()
	}
	return nil
}

// ProvideRateLimiter provides the per-client limiter for mutating requests.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.RateLimitEnabled() {
		log.Info("Write rate limiting disabled by configuration")
		return &RateLimiterHandle{}, nil
	}

	limiter := ratelimit.NewPerMinute(cfg.RateLimit.WritesPerMinute, cfg.RateLimit.Burst)
	log.Info("Write rate limiting enabled",
		"per_minute", cfg.RateLimit.WritesPerMinute,
		"burst", cfg.RateLimit.Burst,
	)

	return &RateLimiterHandle{Limiter: limiter}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server. The listener is bound before
// returning so a busy port fails startup instead of a background goroutine.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)

	// The catalog must exist before the first request.
	_ = do.MustInvoke[*Bootstrap](i)

	services := &api.Services{
		Memory: do.MustInvoke[*service.MemoryService](i),
		Tag:    do.MustInvoke[*service.TagService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, api.Options{
		Version:      Version,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		CORSOrigins:  cfg.Server.CORSOrigins,
		WriteLimiter: limiterHandle.Limiter,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}
	if cfg.Server.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.Server.MaxConnections)
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr, "max_connections", cfg.Server.MaxConnections)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
