package world

import "log/slog"

// TerrainSource decides the terrain for a cell when its chunk is
// populated. The default source is uniform plains.
type TerrainSource func(coord HexCoord) Terrain

// Grid owns the sparse map of loaded chunks and the pool of cleared
// chunks awaiting reuse. A coordinate belongs to exactly one chunk;
// lookups outside loaded chunks return nil, which callers treat the
// same as "does not exist".
//
// Grid is not safe for concurrent use. A single goroutine owns it;
// anything observing it from elsewhere must synchronize with that
// owner, the way engine.Simulation serves snapshots under its lock.
type Grid struct {
	chunks  map[HexCoord]*Chunk
	pool    []*Chunk
	terrain TerrainSource

	// Allocations counts chunks constructed fresh (not drawn from the
	// pool), for observing streaming churn.
	Allocations int
}

// NewGrid creates an empty grid with the given terrain source. A nil
// source yields uniform plains.
func NewGrid(terrain TerrainSource) *Grid {
	if terrain == nil {
		terrain = func(HexCoord) Terrain { return TerrainPlains }
	}
	return &Grid{
		chunks:  make(map[HexCoord]*Chunk),
		terrain: terrain,
	}
}

// Initialize loads and activates a chunksWide x chunksHigh rectangle of
// chunks starting at chunk coordinate (0,0).
func (g *Grid) Initialize(chunksWide, chunksHigh int) {
	for cq := 0; cq < chunksWide; cq++ {
		for cr := 0; cr < chunksHigh; cr++ {
			g.LoadChunk(HexCoord{Q: cq, R: cr})
		}
	}
	slog.Info("grid initialized",
		"chunks_wide", chunksWide,
		"chunks_high", chunksHigh,
		"cells", len(g.chunks)*CellsPerChunk,
	)
}

// ChunkCoordFor returns the chunk coordinate owning a cell coordinate.
// Floor division, so negative cell coordinates map to negative chunk
// coordinates: cell q=-1 belongs to chunk q=-1, not chunk q=0.
func ChunkCoordFor(coord HexCoord) HexCoord {
	return HexCoord{
		Q: floorDiv(coord.Q, ChunkSize),
		R: floorDiv(coord.R, ChunkSize),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Chunk returns the loaded chunk at the given chunk coordinate, or nil.
func (g *Grid) Chunk(chunkCoord HexCoord) *Chunk {
	return g.chunks[chunkCoord]
}

// ChunkCount returns the number of loaded chunks.
func (g *Grid) ChunkCount() int {
	return len(g.chunks)
}

// ChunkCoords returns the coordinates of every loaded chunk. The slice
// is a snapshot; callers may load and unload while iterating it.
func (g *Grid) ChunkCoords() []HexCoord {
	coords := make([]HexCoord, 0, len(g.chunks))
	for cc := range g.chunks {
		coords = append(coords, cc)
	}
	return coords
}

// PooledChunks returns the number of chunks sitting in the reuse pool.
func (g *Grid) PooledChunks() int {
	return len(g.pool)
}

// Cell returns the cell at the given coordinate, or nil when the owning
// chunk is not loaded. Never an error: "unloaded" and "nonexistent"
// look the same to callers.
func (g *Grid) Cell(coord HexCoord) *Cell {
	ch := g.chunks[ChunkCoordFor(coord)]
	if ch == nil {
		return nil
	}
	return ch.Cell(coord)
}

// CellAtWorldPosition returns the cell containing the world-space position, or
// nil when its chunk is not loaded.
func (g *Grid) CellAtWorldPosition(x, y float64) *Cell {
	return g.Cell(WorldToHex(x, y))
}

// Neighbors returns the cells adjacent to coord that currently resolve.
// Neighbors in unloaded chunks are silently dropped. If the center cell
// itself does not resolve the result is empty.
func (g *Grid) Neighbors(coord HexCoord) []*Cell {
	if g.Cell(coord) == nil {
		return nil
	}
	result := make([]*Cell, 0, 6)
	for _, nc := range coord.Neighbors() {
		if c := g.Cell(nc); c != nil {
			result = append(result, c)
		}
	}
	return result
}

// CellsInRange returns the resolving cells within the given hex distance
// of center, including center. Same silent-drop semantics as Neighbors.
func (g *Grid) CellsInRange(center HexCoord, radius int) []*Cell {
	coords := HexesInRange(center, radius)
	result := make([]*Cell, 0, len(coords))
	for _, hc := range coords {
		if c := g.Cell(hc); c != nil {
			result = append(result, c)
		}
	}
	return result
}

// LoadChunk loads and activates the chunk at the given chunk
// coordinate, populating its cells from the terrain source. A pooled
// chunk is reused when available. Loading an already-loaded chunk is a
// no-op returning the existing chunk.
func (g *Grid) LoadChunk(chunkCoord HexCoord) *Chunk {
	if ch := g.chunks[chunkCoord]; ch != nil {
		return ch
	}

	var ch *Chunk
	if n := len(g.pool); n > 0 {
		ch = g.pool[n-1]
		g.pool = g.pool[:n-1]
		ch.Reset(chunkCoord)
	} else {
		ch = NewChunk(chunkCoord)
		g.Allocations++
	}

	g.populate(ch)
	g.chunks[chunkCoord] = ch
	ch.Activate()
	return ch
}

// UnloadChunk removes the chunk from the active map, clears its cells,
// and returns it to the pool. Returns false if the chunk was not
// loaded.
func (g *Grid) UnloadChunk(chunkCoord HexCoord) bool {
	ch := g.chunks[chunkCoord]
	if ch == nil {
		return false
	}
	delete(g.chunks, chunkCoord)
	ch.Deactivate()
	ch.Clear()
	g.pool = append(g.pool, ch)
	return true
}

// populate fills a chunk with its ChunkSize x ChunkSize cells.
func (g *Grid) populate(ch *Chunk) {
	baseQ := ch.Coord.Q * ChunkSize
	baseR := ch.Coord.R * ChunkSize
	for dq := 0; dq < ChunkSize; dq++ {
		for dr := 0; dr < ChunkSize; dr++ {
			coord := HexCoord{Q: baseQ + dq, R: baseR + dr}
			ch.AddCell(NewCell(coord, g.terrain(coord)))
		}
	}
}
