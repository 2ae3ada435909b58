package http

import (
	"encoding/json"
	"net/http"

	"github.com/aretw0/voicelink/pkg/state"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine is the read-only view of the running device.
type Engine interface {
	Snapshot() state.Node
	Steps() uint64
}

// Server serves device diagnostics.
type Server struct {
	Engine   Engine
	Gatherer prometheus.Gatherer
	Version  string
}

// StateResponse is the body of GET /state.
type StateResponse struct {
	Path  string     `json:"path"`
	Tree  state.Node `json:"tree"`
	Steps uint64     `json:"steps"`
}

// NewHandler creates the diagnostics handler. A nil gatherer serves the
// default prometheus registry.
func NewHandler(engine Engine, gatherer prometheus.Gatherer, version string) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{Engine: engine, Gatherer: gatherer, Version: version}

	r := chi.NewRouter()
	r.Get("/healthz", s.Health)
	r.Get("/state", s.State)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.Version,
	})
}

// State handles GET /state.
func (s *Server) State(w http.ResponseWriter, r *http.Request) {
	if s.Engine == nil {
		http.Error(w, "engine not running", http.StatusServiceUnavailable)
		return
	}
	tree := s.Engine.Snapshot()
	writeJSON(w, http.StatusOK, StateResponse{
		Path:  tree.Path(),
		Tree:  tree,
		Steps: s.Engine.Steps(),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
