package engine

import (
	"github.com/talgya/hexfield/internal/world"
)

// Snapshot accessors for goroutines outside the tick loop (the HTTP
// API). Each returns a point-in-time copy taken under the read lock;
// the caller never sees live grid or agent structures.

// StatusInfo summarizes the running simulation.
type StatusInfo struct {
	Tick          uint64 `json:"tick"`
	Agents        int    `json:"agents"`
	ChunksLoaded  int    `json:"chunks_loaded"`
	ChunksPooled  int    `json:"chunks_pooled"`
	StreamLoads   uint64 `json:"stream_loads"`
	StreamUnloads uint64 `json:"stream_unloads"`
}

// AgentInfo is a copy of one agent's observable state.
type AgentInfo struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Pos            world.HexCoord `json:"pos"`
	Goal           world.HexCoord `json:"goal"`
	RouteRemaining int            `json:"route_remaining"`
	PendingRequest int64          `json:"pending_request"`
}

// ChunkInfo describes one loaded chunk.
type ChunkInfo struct {
	Coord  world.HexCoord `json:"coord"`
	Active bool           `json:"active"`
	Cells  int            `json:"cells"`
}

// CellInfo is a copy of one cell's observable state.
type CellInfo struct {
	Coord     world.HexCoord `json:"coord"`
	Chunk     world.HexCoord `json:"chunk"`
	Terrain   string         `json:"terrain"`
	Cost      int            `json:"cost"`
	Walkable  bool           `json:"walkable"`
	Buildable bool           `json:"buildable"`
	Occupied  bool           `json:"occupied"`
	Occupants int            `json:"occupants"`
}

// Status returns a snapshot of the simulation counters.
func (s *Simulation) Status() StatusInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatusInfo{
		Tick:          s.LastTick,
		Agents:        len(s.Agents),
		ChunksLoaded:  s.Grid.ChunkCount(),
		ChunksPooled:  s.Grid.PooledChunks(),
		StreamLoads:   s.ChunksLoaded,
		StreamUnloads: s.ChunksUnloaded,
	}
}

// AgentInfos returns a snapshot of every agent.
func (s *Simulation) AgentInfos() []AgentInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AgentInfo, 0, len(s.Agents))
	for _, a := range s.Agents {
		out = append(out, AgentInfo{
			ID:             a.ID.String(),
			Name:           a.Name,
			Pos:            a.Pos,
			Goal:           a.Goal,
			RouteRemaining: len(a.Route),
			PendingRequest: a.PendingRequest,
		})
	}
	return out
}

// ChunkInfos returns a snapshot of every loaded chunk.
func (s *Simulation) ChunkInfos() []ChunkInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChunkInfo, 0, s.Grid.ChunkCount())
	for _, cc := range s.Grid.ChunkCoords() {
		if ch := s.Grid.Chunk(cc); ch != nil {
			out = append(out, ChunkInfo{Coord: cc, Active: ch.Active, Cells: ch.CellCount()})
		}
	}
	return out
}

// CellInfo returns a snapshot of the cell at coord, or false when its
// chunk is not loaded.
func (s *Simulation) CellInfo(coord world.HexCoord) (CellInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.Grid.Cell(coord)
	if c == nil {
		return CellInfo{}, false
	}
	return CellInfo{
		Coord:     c.Coord,
		Chunk:     c.ChunkCoord,
		Terrain:   world.TerrainName(c.Terrain),
		Cost:      c.MovementCost(),
		Walkable:  c.Walkable,
		Buildable: c.Buildable,
		Occupied:  c.Occupied(),
		Occupants: len(c.Occupants),
	}, true
}
