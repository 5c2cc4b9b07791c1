package server

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kataras/dicebear-exporter/internal/logging"
	"github.com/kataras/dicebear-exporter/pkg/definition"
	"github.com/kataras/dicebear-exporter/pkg/export"
	"github.com/kataras/dicebear-exporter/pkg/host/local"
)

// Error codes.
const (
	CodeBadRequest       = "BAD_REQUEST"
	CodeInvalidManifest  = "INVALID_MANIFEST"
	CodeBuildFailed      = "BUILD_FAILED"
	CodeRequestCancelled = "REQUEST_CANCELLED"
	CodeInternal         = "INTERNAL_ERROR"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	UptimeS int64  `json:"uptime_s"`
}

// NewRouter returns the service routes. Config defaults must already be applied.
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler(cfg))
	r.Post("/v1/definitions", buildHandler(cfg))

	return r
}

func healthHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

// buildHandler builds the definition of the posted manifest. Node markup must be
// inline: file sources are rejected.
func buildHandler(cfg Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := requestFormat(r)
		if err != nil {
			WriteError(w, http.StatusUnsupportedMediaType, err.Error(), CodeBadRequest)
			return
		}

		m, err := export.Load(http.MaxBytesReader(w, r.Body, cfg.MaxBodyBytes), format)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteError(w, http.StatusRequestEntityTooLarge, "manifest too large", CodeBadRequest)
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error(), CodeBadRequest)
			return
		}

		if err := m.Validate(); err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), CodeInvalidManifest)
			return
		}

		requestLogger := cfg.Logger.With("request_id", middleware.GetReqID(r.Context()))
		assembler := definition.New(
			local.New(m, local.WithFiles(false)),
			cfg.Optimizer,
			definition.WithLogger(logging.Leveled{Logger: requestLogger}),
		)

		res, err := assembler.Build(r.Context(), &m.Export)
		if err != nil {
			writeBuildError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Dicebear-Mode", res.Summary.Mode.String())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(res.JSON))
	}
}

func writeBuildError(w http.ResponseWriter, err error) {
	var buildErr *definition.BuildError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusServiceUnavailable, err.Error(), CodeRequestCancelled)
	case errors.As(err, &buildErr):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), CodeBuildFailed)
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), CodeInternal)
	}
}

// requestFormat picks the manifest decoder from the Content-Type header.
// A missing header means JSON.
func requestFormat(r *http.Request) (export.Format, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return export.FormatJSON, nil
	}

	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", fmt.Errorf("invalid content type: %w", err)
	}

	switch {
	case mediaType == "application/json":
		return export.FormatJSON, nil
	case strings.HasSuffix(mediaType, "yaml"):
		return export.FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported content type %q", mediaType)
	}
}
