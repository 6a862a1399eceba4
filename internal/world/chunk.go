package world

// ChunkSize is the number of cells per axis in a chunk. A chunk at chunk
// coordinate (cq, cr) owns the cells with q in [cq*16, cq*16+15] and
// r in [cr*16, cr*16+15].
const ChunkSize = 16

// CellsPerChunk is the cell count of a fully populated chunk.
const CellsPerChunk = ChunkSize * ChunkSize

// Chunk is a fixed-size block of cells, the unit of streaming load and
// unload. Chunks are recycled through the grid's pool rather than
// discarded, so Clear must leave the chunk ready for repopulation.
type Chunk struct {
	Coord HexCoord

	// Cells keyed by absolute (not chunk-local) coordinate.
	cells map[HexCoord]*Cell

	// Active marks the chunk as participating in simulation/visibility.
	Active bool

	// Dirty is set on any mutation and consumed by the renderer.
	Dirty bool
}

// NewChunk creates an empty chunk at the given chunk coordinate.
func NewChunk(coord HexCoord) *Chunk {
	return &Chunk{
		Coord: coord,
		cells: make(map[HexCoord]*Cell, CellsPerChunk),
	}
}

// AddCell stores a cell in the chunk, stamping the cell's chunk
// coordinate. The stamp happens exactly once, here. Cells whose
// coordinate falls outside this chunk, or whose slot is already taken,
// are rejected.
func (ch *Chunk) AddCell(c *Cell) bool {
	if ChunkCoordFor(c.Coord) != ch.Coord {
		return false
	}
	if _, taken := ch.cells[c.Coord]; taken {
		return false
	}
	c.ChunkCoord = ch.Coord
	ch.cells[c.Coord] = c
	ch.Dirty = true
	return true
}

// Cell returns the cell at the given absolute coordinate, or nil.
func (ch *Chunk) Cell(coord HexCoord) *Cell {
	return ch.cells[coord]
}

// CellCount returns the number of populated cells.
func (ch *Chunk) CellCount() int {
	return len(ch.cells)
}

// Cells iterates over the chunk's cells in map order.
func (ch *Chunk) Cells(fn func(*Cell)) {
	for _, c := range ch.cells {
		fn(c)
	}
}

// Clear empties the chunk's cell storage for pooled reuse. The chunk
// keeps its allocation but forgets its coordinate binding until Reset.
func (ch *Chunk) Clear() {
	clear(ch.cells)
	ch.Dirty = true
}

// Reset rebinds a pooled chunk to a new chunk coordinate. The cell map
// must already be empty.
func (ch *Chunk) Reset(coord HexCoord) {
	ch.Coord = coord
	ch.Active = false
	ch.Dirty = true
}

// Activate marks the chunk as live for simulation and rendering.
func (ch *Chunk) Activate() {
	if !ch.Active {
		ch.Active = true
		ch.Dirty = true
	}
}

// Deactivate hides the chunk without destroying its data.
func (ch *Chunk) Deactivate() {
	if ch.Active {
		ch.Active = false
		ch.Dirty = true
	}
}

// ConsumeDirty returns the dirty flag and resets it. The renderer calls
// this once per frame per visible chunk.
func (ch *Chunk) ConsumeDirty() bool {
	d := ch.Dirty
	ch.Dirty = false
	return d
}
