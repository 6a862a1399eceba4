// Package api provides the read-mostly HTTP surface for observing the
// battlefield: grid state, agents, path service counters, and recent
// journal events. The one mutating endpoint enqueues a path request and
// is rate-limited.
//
// Handlers run on the HTTP goroutines while the tick loop owns the
// simulation state, so everything is read through the Simulation's
// snapshot accessors or the path service's locked surface; the live
// grid and agent structures are never touched from here.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/talgya/hexfield/internal/engine"
	"github.com/talgya/hexfield/internal/journal"
	"github.com/talgya/hexfield/internal/path"
	"github.com/talgya/hexfield/internal/world"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Sim  *engine.Simulation
	DB   *journal.DB // Optional; /events returns 404 when nil.
	Port int
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	pathLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/cell", s.handleCell)
	mux.HandleFunc("/api/v1/chunks", s.handleChunks)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/path", RateLimitMiddleware(pathLimiter, s.handlePath))

	addr := fmt.Sprintf(":%d", s.Port)
	go func() {
		slog.Info("api listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("api server stopped", "error", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.Status()
	writeJSON(w, map[string]any{
		"tick":          st.Tick,
		"agents":        st.Agents,
		"chunks_loaded": st.ChunksLoaded,
		"chunks_pooled": st.ChunksPooled,
		"path_stats":    s.Sim.Paths.Stats(),
		"cached_paths":  s.Sim.Paths.CachedPaths(),
	})
}

// handleCell returns the cell at ?q=&r=, or at the world position
// ?x=&y= when q/r are absent. Unloaded cells return 404.
func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	var coord world.HexCoord
	if r.URL.Query().Has("q") {
		q, err1 := strconv.Atoi(r.URL.Query().Get("q"))
		rr, err2 := strconv.Atoi(r.URL.Query().Get("r"))
		if err1 != nil || err2 != nil {
			http.Error(w, "q and r must be integers", http.StatusBadRequest)
			return
		}
		coord = world.HexCoord{Q: q, R: rr}
	} else {
		x, err1 := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
		y, err2 := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
		if err1 != nil || err2 != nil {
			http.Error(w, "need q/r or x/y", http.StatusBadRequest)
			return
		}
		coord = world.WorldToHex(x, y)
	}

	info, ok := s.Sim.CellInfo(coord)
	if !ok {
		http.Error(w, "cell not loaded", http.StatusNotFound)
		return
	}
	writeJSON(w, info)
}

func (s *Server) handleChunks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"loaded": s.Sim.ChunkInfos(),
		"pooled": s.Sim.Status().ChunksPooled,
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.AgentInfos())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	events, err := s.DB.RecentEvents(limit)
	if err != nil {
		http.Error(w, "journal read failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

// handlePath enqueues a path request between two cells and returns its
// id. The result lands in the journal's path_records once delivered;
// this endpoint never blocks on the search.
func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fromQ, e1 := strconv.Atoi(q.Get("from_q"))
	fromR, e2 := strconv.Atoi(q.Get("from_r"))
	toQ, e3 := strconv.Atoi(q.Get("to_q"))
	toR, e4 := strconv.Atoi(q.Get("to_r"))
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
		http.Error(w, "need integer from_q, from_r, to_q, to_r", http.StatusBadRequest)
		return
	}

	id := s.Sim.Paths.RequestPath(s.Sim.Grid,
		world.HexCoord{Q: fromQ, R: fromR},
		world.HexCoord{Q: toQ, R: toR},
		nil,
	)
	if id == path.InvalidRequestID {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"request_id": id})
}
