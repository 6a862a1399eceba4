// Simulation wires the grid, the path service, and the wandering agents
// together and advances them each tick.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexfield/internal/journal"
	"github.com/talgya/hexfield/internal/path"
	"github.com/talgya/hexfield/internal/world"
)

// terrainChangeEvery is the tick period of random terrain mutations,
// which exercise cache invalidation under churn.
const terrainChangeEvery = 97

// journalFlushEvery is the tick period of journal batch writes.
const journalFlushEvery = 200

// Simulation holds the complete battlefield state.
//
// The tick loop is the only writer: TickStep holds the write lock for
// the whole step, so the grid, the cells, and the agents are never
// mutated concurrently. Other goroutines observe the simulation
// through the snapshot accessors in observe.go, which take the read
// lock. Grid, Agents, and the other fields must not be touched
// directly from outside the tick loop while the engine runs.
type Simulation struct {
	mu sync.RWMutex

	Grid   *world.Grid
	Paths  *path.Service
	Agents []*Agent

	// Journal is optional; nil disables telemetry persistence.
	Journal *journal.DB

	// StreamRadius is how many chunks around each agent stay loaded.
	StreamRadius int

	LastTick uint64

	rng       *rand.Rand
	byRequest map[int64]*Agent

	// Batches flushed to the journal periodically.
	pendingEvents  []journal.Event
	pendingRecords []journal.PathRecord

	// Streaming churn counters.
	ChunksLoaded   uint64
	ChunksUnloaded uint64
}

// NewSimulation creates a simulation over the given grid and path
// service and spawns the requested number of agents on walkable cells.
func NewSimulation(g *world.Grid, ps *path.Service, seed int64, agents, streamRadius int) *Simulation {
	s := &Simulation{
		Grid:         g,
		Paths:        ps,
		StreamRadius: streamRadius,
		rng:          rand.New(rand.NewSource(seed)),
		byRequest:    make(map[int64]*Agent),
	}

	for i := 0; i < agents; i++ {
		pos, ok := s.randomWalkable()
		if !ok {
			slog.Warn("no walkable spawn cell found", "agent", i)
			continue
		}
		a := NewAgent(s.rng, i, pos)
		s.Grid.Cell(pos).AddOccupant(a.Occupant())
		s.Agents = append(s.Agents, a)
	}

	slog.Info("simulation ready", "agents", len(s.Agents), "chunks", g.ChunkCount())
	return s
}

// TickStep advances the simulation by one tick: pump the path service,
// stream chunks around the agents, then move the agents.
func (s *Simulation) TickStep(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastTick = tick

	s.Paths.Update()
	s.streamChunks(tick)

	for _, a := range s.Agents {
		s.updateAgent(a, tick)
	}

	if tick%terrainChangeEvery == 0 {
		s.mutateTerrain(tick)
	}
	if tick%journalFlushEvery == 0 {
		s.flushJournalLocked()
	}
}

// Report logs a periodic summary.
func (s *Simulation) Report(tick uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.Paths.Stats()
	slog.Info("field report",
		"tick", tick,
		"agents", len(s.Agents),
		"chunks_loaded", s.Grid.ChunkCount(),
		"chunks_pooled", s.Grid.PooledChunks(),
		"chunk_allocations", s.Grid.Allocations,
		"stream_loads", humanize.Comma(int64(s.ChunksLoaded)),
		"stream_unloads", humanize.Comma(int64(s.ChunksUnloaded)),
		"paths_succeeded", st.Succeeded,
		"paths_failed", st.Failed,
		"cache_hits", st.CacheHits,
		"cached_paths", s.Paths.CachedPaths(),
		"nodes_expanded", humanize.Comma(st.NodesExpanded),
	)
}

// streamChunks keeps chunks within StreamRadius of every agent loaded
// and returns distant ones to the pool.
func (s *Simulation) streamChunks(tick uint64) {
	wanted := make(map[world.HexCoord]bool)
	for _, a := range s.Agents {
		cc := world.ChunkCoordFor(a.Pos)
		for dq := -s.StreamRadius; dq <= s.StreamRadius; dq++ {
			for dr := -s.StreamRadius; dr <= s.StreamRadius; dr++ {
				wanted[world.HexCoord{Q: cc.Q + dq, R: cc.R + dr}] = true
			}
		}
	}

	// Unload first so the pool can feed the loads below.
	var toUnload []world.HexCoord
	for _, cc := range s.Grid.ChunkCoords() {
		if !wanted[cc] {
			toUnload = append(toUnload, cc)
		}
	}
	for _, cc := range toUnload {
		if s.Grid.UnloadChunk(cc) {
			s.ChunksUnloaded++
			s.journalEvent(tick, "stream", fmt.Sprintf("chunk (%d,%d) unloaded", cc.Q, cc.R))
		}
	}

	for cc := range wanted {
		if s.Grid.Chunk(cc) == nil {
			s.Grid.LoadChunk(cc)
			s.ChunksLoaded++
			s.journalEvent(tick, "stream", fmt.Sprintf("chunk (%d,%d) loaded", cc.Q, cc.R))
		}
	}
}

// updateAgent steps an agent along its route, or requests a fresh path
// when it has none.
func (s *Simulation) updateAgent(a *Agent, tick uint64) {
	if len(a.Route) > 0 {
		s.walkRoute(a)
		return
	}
	if a.PendingRequest != 0 {
		return
	}
	s.requestRoute(a, tick)
}

// walkRoute consumes up to the agent's per-tick step budget. A route
// step into a cell that no longer resolves or walks is abandoned; the
// agent re-requests on a later tick.
func (s *Simulation) walkRoute(a *Agent) {
	for i := 0; i < a.StepsPerTick && len(a.Route) > 0; i++ {
		next := a.Route[0]
		cell := s.Grid.Cell(next)
		if cell == nil || !cell.Walkable {
			a.Route = nil
			return
		}
		if prev := s.Grid.Cell(a.Pos); prev != nil {
			prev.RemoveOccupant(a.ID)
		}
		cell.AddOccupant(a.Occupant())
		a.Pos = next
		a.Route = a.Route[1:]
	}
}

// requestRoute picks a fresh wander goal and enqueues a path request.
func (s *Simulation) requestRoute(a *Agent, tick uint64) {
	goal, ok := s.randomWalkableNear(a.Pos, world.ChunkSize*2)
	if !ok || goal == a.Pos {
		return
	}
	a.Goal = goal

	id := s.Paths.RequestPath(s.Grid, a.Pos, goal, func(id int64, p []world.HexCoord, err error) {
		s.onPathResult(id, p, err)
	})
	if id == path.InvalidRequestID {
		return
	}
	a.PendingRequest = id
	s.byRequest[id] = a
}

// onPathResult runs on the tick loop, inside Paths.Update.
func (s *Simulation) onPathResult(id int64, p []world.HexCoord, err error) {
	a := s.byRequest[id]
	delete(s.byRequest, id)
	if a == nil || a.PendingRequest != id {
		return
	}
	a.PendingRequest = 0

	outcome := "done"
	steps := 0
	if err != nil {
		outcome = "failed"
		a.Route = nil
	} else {
		// The first coordinate is the agent's own cell.
		if len(p) > 0 && p[0] == a.Pos {
			a.Route = p[1:]
		} else {
			a.Route = p
		}
		steps = len(p)
	}

	s.pendingRecords = append(s.pendingRecords, journal.PathRecord{
		RequestID: id,
		Tick:      s.LastTick,
		StartQ:    a.Pos.Q,
		StartR:    a.Pos.R,
		GoalQ:     a.Goal.Q,
		GoalR:     a.Goal.R,
		Steps:     steps,
		Outcome:   outcome,
	})
}

// mutateTerrain toggles one random unoccupied loaded cell between
// plains and ocean, then invalidates cached paths through it. Stands in
// for the combat and construction collaborators that edit the field;
// the invalidate-before-reuse discipline is theirs to follow too.
func (s *Simulation) mutateTerrain(tick uint64) {
	ch := s.randomChunk()
	if ch == nil {
		return
	}
	coord := world.HexCoord{
		Q: ch.Coord.Q*world.ChunkSize + s.rng.Intn(world.ChunkSize),
		R: ch.Coord.R*world.ChunkSize + s.rng.Intn(world.ChunkSize),
	}
	cell := s.Grid.Cell(coord)
	if cell == nil || cell.Occupied() {
		return
	}

	var next world.Terrain
	switch cell.Terrain {
	case world.TerrainOcean:
		next = world.TerrainPlains
	case world.TerrainPlains:
		next = world.TerrainOcean
	default:
		return
	}
	cell.SetTerrain(next)
	if ch := s.Grid.Chunk(cell.ChunkCoord); ch != nil {
		ch.Dirty = true
	}

	s.Paths.InvalidateCacheAt(coord)
	s.journalEvent(tick, "terrain",
		fmt.Sprintf("cell (%d,%d) became %s", coord.Q, coord.R, world.TerrainName(next)))
}

// randomWalkable picks a random walkable cell from a random loaded
// chunk. Returns false when nothing walkable is loaded.
func (s *Simulation) randomWalkable() (world.HexCoord, bool) {
	for attempt := 0; attempt < 32; attempt++ {
		ch := s.randomChunk()
		if ch == nil {
			return world.HexCoord{}, false
		}
		base := world.HexCoord{
			Q: ch.Coord.Q*world.ChunkSize + s.rng.Intn(world.ChunkSize),
			R: ch.Coord.R*world.ChunkSize + s.rng.Intn(world.ChunkSize),
		}
		if c := s.Grid.Cell(base); c != nil && c.Walkable {
			return base, true
		}
	}
	return world.HexCoord{}, false
}

// randomWalkableNear picks a random walkable loaded cell within the
// given hex distance of origin.
func (s *Simulation) randomWalkableNear(origin world.HexCoord, radius int) (world.HexCoord, bool) {
	for attempt := 0; attempt < 32; attempt++ {
		dq := s.rng.Intn(2*radius+1) - radius
		lo := max(-radius, -dq-radius)
		hi := min(radius, -dq+radius)
		dr := lo + s.rng.Intn(hi-lo+1)
		coord := origin.Add(world.HexCoord{Q: dq, R: dr})
		if c := s.Grid.Cell(coord); c != nil && c.Walkable {
			return coord, true
		}
	}
	return world.HexCoord{}, false
}

func (s *Simulation) randomChunk() *world.Chunk {
	// Sample via a random agent's surroundings; falls back to origin.
	if len(s.Agents) > 0 {
		a := s.Agents[s.rng.Intn(len(s.Agents))]
		return s.Grid.Chunk(world.ChunkCoordFor(a.Pos))
	}
	return s.Grid.Chunk(world.HexCoord{})
}

func (s *Simulation) journalEvent(tick uint64, category, description string) {
	if s.Journal == nil {
		return
	}
	s.pendingEvents = append(s.pendingEvents, journal.Event{
		Tick:        tick,
		Category:    category,
		Description: description,
	})
}

// FlushJournal writes batched events and path records. Safe to call
// with a nil journal.
func (s *Simulation) FlushJournal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushJournalLocked()
}

func (s *Simulation) flushJournalLocked() {
	if s.Journal == nil {
		s.pendingEvents = nil
		s.pendingRecords = nil
		return
	}
	if err := s.Journal.AppendEvents(s.pendingEvents); err != nil {
		slog.Error("journal event flush failed", "error", err)
	}
	if err := s.Journal.AppendPathRecords(s.pendingRecords); err != nil {
		slog.Error("journal path flush failed", "error", err)
	}
	s.pendingEvents = nil
	s.pendingRecords = nil
}
