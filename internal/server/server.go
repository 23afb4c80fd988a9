// Package server exposes the current digest over HTTP: a rendered page, a
// JSON view, a manual regeneration trigger, and archive history.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"PortfolioDigest/internal/render"
	"PortfolioDigest/internal/usecase"
)

const historyLimit = 20

// Server hosts the HTTP listener around the pipeline.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New builds a server bound to addr.
func New(addr string, pipeline *usecase.Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(pipeline, logger),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// NewRouter wires all routes; exposed separately for tests.
func NewRouter(pipeline *usecase.Pipeline, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{pipeline: pipeline, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", h.digestPage)
	r.Get("/digest", h.digestPage)
	r.Get("/api/digest", h.digestJSON)
	r.Post("/api/regenerate", h.regenerate)
	r.Get("/api/history", h.history)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info("http server listening", "addr", s.httpServer.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

type handlers struct {
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

func (h *handlers) digestPage(w http.ResponseWriter, r *http.Request) {
	d := h.pipeline.Current()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if d == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("<!doctype html><html><body><p>The digest is not available yet. Try again shortly.</p></body></html>"))
		return
	}
	_, _ = w.Write([]byte(render.Page(d)))
}

func (h *handlers) digestJSON(w http.ResponseWriter, r *http.Request) {
	d := h.pipeline.Current()
	w.Header().Set("Content-Type", "application/json")
	if d == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "digest not loaded yet"})
		return
	}
	if err := json.NewEncoder(w).Encode(d); err != nil {
		h.logger.Warn("encode digest", "error", err)
	}
}

func (h *handlers) regenerate(w http.ResponseWriter, r *http.Request) {
	// The attempt outlives the request on purpose.
	err := h.pipeline.StartRegeneration(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, usecase.ErrGenerationInFlight):
		http.Error(w, "generation already in flight", http.StatusConflict)
	case err != nil:
		h.logger.Warn("start regeneration", "error", err)
		http.Error(w, "cannot start generation", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	items, err := h.pipeline.History(r.Context(), historyLimit)
	if err != nil {
		h.logger.Warn("load history", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if items == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}
	if err := json.NewEncoder(w).Encode(items); err != nil {
		h.logger.Warn("encode history", "error", err)
	}
}
