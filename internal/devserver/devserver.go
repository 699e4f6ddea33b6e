// Package devserver serves the spreadsheet script protocol over HTTP, backed by
// the in-memory backend, so the CLI and TUI can run without a real sheet.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"flooring-cli/internal/metrics"
	"flooring-cli/internal/remote"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const PingMessage = "Marine Flooring Backend is Online"

type Server struct {
	Backend *remote.Memory
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// NewHandler routes GET/POST on "/" and "/exec" to the backend. When reg is
// non-nil, per-action call metrics are registered on it and served on /metrics.
func NewHandler(backend *remote.Memory, logger *slog.Logger, reg *prometheus.Registry) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{Backend: backend, Logger: logger}
	if reg != nil {
		s.Metrics = metrics.New(reg)
	}

	r := mux.NewRouter()
	for _, p := range []string{"/", "/exec"} {
		r.HandleFunc(p, s.handleGet).Methods(http.MethodGet)
		r.HandleFunc(p, s.handlePost).Methods(http.MethodPost)
	}
	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.Use(s.logRequests)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.Logger.Debug("request", "method", r.Method, "path", r.URL.Path, "action", r.URL.Query().Get("action"), "duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	action := r.URL.Query().Get("action")
	if action == remote.ActionPing {
		s.Metrics.ObserveRemote(action, start, nil)
		writeJSON(w, remote.Response{Status: "ok", Message: PingMessage})
		return
	}
	rows, err := s.Backend.Rows(r.Context(), action)
	if action == "" {
		action = remote.ActionFetchReports
	}
	s.Metrics.ObserveRemote(action, start, err)
	if err != nil {
		s.Logger.Warn("fetch failed", "action", action, "err", err)
		writeJSON(w, remote.Response{Error: errorText(err)})
		return
	}
	if rows == nil {
		rows = []remote.Row{}
	}
	writeJSON(w, rows)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, remote.Response{Error: "Invalid JSON"})
		return
	}
	var req struct {
		Action string          `json:"action"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, remote.Response{Error: "Invalid JSON"})
		return
	}
	err = s.Backend.Apply(r.Context(), req.Action, req.Data)
	s.Metrics.ObserveRemote(req.Action, start, err)
	if err != nil {
		s.Logger.Warn("post failed", "action", req.Action, "err", err)
		if errors.Is(err, remote.ErrUnknownAction) {
			writeJSON(w, remote.Response{Error: "Unknown action: " + req.Action})
			return
		}
		writeJSON(w, remote.Response{Error: errorText(err)})
		return
	}
	writeJSON(w, remote.Response{Success: true})
}

// errorText strips the action prefix; the script reports bare messages.
func errorText(err error) string {
	var re *remote.Error
	if errors.As(err, &re) {
		if re.Message != "" {
			return re.Message
		}
		if re.Err != nil {
			return re.Err.Error()
		}
	}
	return err.Error()
}

// The script always answers 200; failures travel in the body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves h on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	if logger != nil {
		logger.Info("dev backend listening", "addr", addr)
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
