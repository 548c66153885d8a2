/*
Package server exposes the dataset and entity lookups over HTTP.

Handlers here are thin consumers of the loader and the entity store: they
shape responses and report provenance, and hold no caching logic of their
own. Every /api response carries a Server-Timing header naming the tier
that answered and how long the load took.
*/
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/jvb127/faultserve/api"
	"github.com/jvb127/faultserve/types"
)

// DurationObserver receives load latencies; *metrics.Metrics satisfies it.
type DurationObserver interface {
	ObserveLoadDuration(d time.Duration)
}

// Server holds the handler dependencies.
type Server struct {
	loader    api.Loader
	entities  api.EntityStore
	logger    log.Logger
	durations DurationObserver
}

// New creates a Server. logger and durations may be nil.
func New(loader api.Loader, entities api.EntityStore, logger log.Logger, durations DurationObserver) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Server{loader: loader, entities: entities, logger: logger, durations: durations}
}

// Routes builds the routing table. metricsHandler, when non-nil, is mounted
// at /metrics.
func (s *Server) Routes(metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api", s.handleDataset)
	mux.HandleFunc("GET /api/compute", s.handleCompute)
	mux.HandleFunc("POST /api/compute", s.handleCompute)
	mux.HandleFunc("GET /api/entity", s.handleEntity)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
	return mux
}

// load runs one dataset load, stamps the Server-Timing header and reports
// latency. On failure it writes the error response and returns ok=false.
func (s *Server) load(ctx context.Context, w http.ResponseWriter) (*types.Dataset, bool) {
	start := time.Now()
	ds, prov, err := s.loader.Load(ctx)
	elapsed := time.Since(start)
	if s.durations != nil {
		s.durations.ObserveLoadDuration(elapsed)
	}

	if err != nil {
		level.Error(s.logger).Log("msg", "dataset load failed", "err", err)
		// Never a half-populated dataset: the caller gets a retriable
		// "temporarily unavailable" outcome instead.
		http.Error(w, "dataset temporarily unavailable", http.StatusServiceUnavailable)
		return nil, false
	}

	w.Header().Set("Server-Timing", serverTiming(prov, elapsed))
	return ds, true
}

// serverTiming renders the provenance and duration the way the original
// deployment reported them, e.g. `cache;desc="MEMORY", load;dur=12.3`.
func serverTiming(prov types.Provenance, elapsed time.Duration) string {
	return fmt.Sprintf("cache;desc=%q, load;dur=%.1f", prov.String(), float64(elapsed.Microseconds())/1000)
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.load(r.Context(), w)
	if !ok {
		return
	}
	s.writeJSON(w, ds)
}

// computeRequest is the optional POST body of /api/compute.
type computeRequest struct {
	Compute string `json:"compute"`
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if r.Method == http.MethodPost && r.Body != nil {
		// An empty body is an ordinary "no compute requested" POST.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid compute request body", http.StatusBadRequest)
			return
		}
	}

	ds, ok := s.load(r.Context(), w)
	if !ok {
		return
	}

	if filter := r.URL.Query().Get("filter"); filter != "" {
		ds = ds.Filter(filter)
	}

	switch req.Compute {
	case "":
		s.writeJSON(w, ds)
	case "count":
		s.writeJSON(w, map[string]any{
			"timestamp": ds.SourceTime.UTC().Format(time.RFC3339),
			"counts":    ds.Counts(),
		})
	default:
		http.Error(w, fmt.Sprintf("unsupported compute %q", req.Compute), http.StatusBadRequest)
	}
}

func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("id")
	if key == "" {
		http.Error(w, "missing id parameter", http.StatusBadRequest)
		return
	}

	start := time.Now()
	rec, err := s.entities.GetByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			http.Error(w, "entity not found", http.StatusNotFound)
			return
		}
		level.Error(s.logger).Log("msg", "entity lookup failed", "key", key, "err", err)
		http.Error(w, "entity temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Server-Timing", fmt.Sprintf("entity;dur=%.1f", float64(time.Since(start).Microseconds())/1000))
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(rec.Data); err != nil {
		level.Warn(s.logger).Log("msg", "writing entity response failed", "err", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		level.Warn(s.logger).Log("msg", "writing response failed", "err", err)
	}
}
