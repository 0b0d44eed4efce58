// Package rest serves the HTTP probes of the bot process.
package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type sessionCounter interface {
	Len() int
}

const pingTimeout = 3 * time.Second

// HealthHandler serves /live, /ready and /health.
type HealthHandler struct {
	db       dbPinger
	sessions sessionCounter
	mode     string
	version  string
}

// NewHealthHandler creates a HealthHandler. mode is the update intake mode
// reported by /health.
func NewHealthHandler(db dbPinger, sessions sessionCounter, mode, version string) *HealthHandler {
	return &HealthHandler{db: db, sessions: sessions, mode: mode, version: version}
}

// Register mounts the probes on mux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /live", h.Live)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.HandleFunc("GET /health", h.Health)
}

// HealthResponse is the JSON body of every probe.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of one component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Live always answers 200 while the process serves HTTP.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready answers 200 when the database answers a ping, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "down", Timestamp: time.Now()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Health reports the database with ping latency, the number of active
// conversations and the intake mode.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	components := make(map[string]CompStatus, 3)
	overall := "ok"

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		components["database"] = CompStatus{Status: "down"}
		overall = "down"
	} else {
		components["database"] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}

	components["sessions"] = CompStatus{Status: "ok", Detail: strconv.Itoa(h.sessions.Len()) + " active"}
	components["intake"] = CompStatus{Status: "ok", Detail: h.mode}

	status := http.StatusOK
	if overall != "ok" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
