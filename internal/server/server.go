// Package server hosts the dashboard and its JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matsen/scholarnet/internal/app"
	"github.com/matsen/scholarnet/internal/cohort"
	"github.com/matsen/scholarnet/internal/logging"
	"github.com/matsen/scholarnet/internal/viz"
)

// Options configures the server.
type Options struct {
	Title      string // page heading
	CORSOrigin string // empty allows any origin
	PlotlyURL  string // empty uses viz.DefaultPlotlyURL
}

// Server serves the dashboard page, the figure API and metrics.
type Server struct {
	app       *app.App
	opts      Options
	log       *slog.Logger
	dashboard string
	handler   http.Handler
}

// New builds a server around a.
func New(a *app.App, opts Options, logger *slog.Logger) (*Server, error) {
	if a == nil {
		return nil, errors.New("server: app is required")
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	if opts.Title == "" {
		opts.Title = "Scholar Network"
	}

	var tabs []viz.CohortTab
	for _, c := range a.Cohorts() {
		tabs = append(tabs, viz.CohortTab{Name: c.Name, Title: c.Title})
	}
	page, err := viz.GenerateDashboardHTML(viz.DashboardOptions{
		Title:         opts.Title,
		PlotlyURL:     opts.PlotlyURL,
		Cohorts:       tabs,
		DefaultCohort: a.DefaultCohort(),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering dashboard: %w", err)
	}

	s := &Server{
		app:       a,
		opts:      opts,
		log:       logging.OrDiscard(logger),
		dashboard: page,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/cohorts", s.handleCohorts)
	mux.HandleFunc("GET /api/scholars", s.handleScholars)
	mux.HandleFunc("GET /api/figure", s.handleFigure)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Outermost first: recovery sees panics from everything below it.
	s.handler = s.recoveryMiddleware(s.requestIDMiddleware(s.loggingMiddleware(s.corsMiddleware(mux))))
	return s, nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("dashboard listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, s.dashboard)
}

func (s *Server) handleCohorts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": s.app.DefaultCohort(),
		"cohorts": s.app.Cohorts(),
	})
}

func (s *Server) handleScholars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := s.app.Options(q.Get("cohort"), q.Get("exclude"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fig, err := s.app.Figure(r.Context(), app.Selection{
		Author1: q.Get("author1"),
		Author2: q.Get("author2"),
		Cohort:  q.Get("cohort"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fig)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps app errors to status codes: 400 for bad input, 502 for
// provider failures, 500 otherwise.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, cohort.ErrUnknownCohort):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrProvider):
		status = http.StatusBadGateway
	}
	if status >= 500 {
		s.log.Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestID(r.Context()))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
