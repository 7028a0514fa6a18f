// Package api exposes the pipeline, client directory and history over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/dealnotes/internal/app"
	"github.com/alexanderramin/dealnotes/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the use cases the server routes to. Import, Gatherer and Logger
// may be nil; /import and /metrics are then not mounted and logging goes to
// slog.Default.
type Deps struct {
	Clients  service.ClientService
	History  service.HistoryService
	Ingest   app.IngestUseCase
	Status   app.StatusUseCase
	Import   service.ImportService
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

type Server struct {
	router chi.Router
	deps   Deps
	logger *slog.Logger
}

func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{router: chi.NewRouter(), deps: deps, logger: logger}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Get("/status", s.status)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/clients", func(r chi.Router) {
		r.Post("/", s.createClient)
		r.Get("/", s.listClients)
		r.Route("/{clientID}", func(r chi.Router) {
			r.Get("/", s.getClient)
			r.Put("/", s.updateClient)
			r.Delete("/", s.deleteClient)
			r.Post("/restore", s.restoreClient)
			r.Post("/interactions", s.ingest)
			r.Get("/interactions", s.timeline)
			r.Get("/stats", s.stats)
		})
	})
	r.Route("/interactions/{interactionID}", func(r chi.Router) {
		r.Get("/", s.getInteraction)
		r.Post("/reextract", s.reextract)
		r.Get("/followup", s.getFollowup)
		r.Post("/followup", s.regenerateFollowup)
	})
	r.Get("/followups/due", s.due)
	if deps.Import != nil {
		r.Post("/import", s.importClients)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to shutdownGrace.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api_listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

const shutdownGrace = 15 * time.Second

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	if s.deps.Status == nil {
		respondError(w, http.StatusServiceUnavailable, "status unavailable")
		return
	}
	resp, err := s.deps.Status.GetStatus(r.Context(), app.NewStatusRequest())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newStatusView(resp))
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

const maxBodyBytes = 1 << 20
