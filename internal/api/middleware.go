package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/memorylane/memorylane-server/internal/http/response"
	"github.com/memorylane/memorylane-server/internal/id"
	"github.com/memorylane/memorylane-server/internal/logger"
)

// requestID assigns every request an ID, reusing a well-formed inbound
// X-Request-ID. The ID is echoed in the response and stored in the context
// so log records made with that context carry it.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := id.Sanitize(r.Header.Get(HeaderRequestID))
		if reqID == "" {
			generated, err := id.Generate(id.RequestPrefix)
			if err != nil {
				s.logger.Warn("Failed to generate request ID", "error", err)
			}
			reqID = generated
		}

		if reqID != "" {
			w.Header().Set(HeaderRequestID, reqID)
			r = r.WithContext(logger.WithRequestID(r.Context(), reqID))
		}

		next.ServeHTTP(w, r)
	})
}

// accessLog logs one line per request once the response is written.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		}

		ctx := r.Context()
		switch {
		case status >= 500:
			s.logger.ErrorContext(ctx, "HTTP request", attrs...)
		case status >= 400:
			s.logger.WarnContext(ctx, "HTTP request", attrs...)
		default:
			s.logger.InfoContext(ctx, "HTTP request", attrs...)
		}
	})
}

// recoverer turns a handler panic into a 500 with the standard error body.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			s.logger.ErrorContext(r.Context(), "Panic serving request",
				"panic", rvr,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)
			response.InternalError(w, "internal server error", s.logger)
		}()

		next.ServeHTTP(w, r)
	})
}
