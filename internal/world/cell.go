package world

import "github.com/google/uuid"

// OccupantKind classifies what is standing on a cell.
type OccupantKind uint8

const (
	OccupantUnit OccupantKind = iota
	OccupantStructure
	OccupantProp
)

// Occupant is an entity currently standing on a cell. EntityID refers to
// the owning entity in whatever system placed it here.
type Occupant struct {
	Name          string       `json:"name"`
	CurrentHealth int          `json:"current_health"`
	MaxHealth     int          `json:"max_health"`
	Kind          OccupantKind `json:"kind"`
	EntityID      uuid.UUID    `json:"entity_id"`
}

// Cell is a single hex on the battlefield. Cells are created when their
// chunk is populated and cleared (not destroyed) when the chunk is
// returned to the pool.
//
// A cell does not hold a pointer to its owning chunk; it records the
// chunk coordinate instead, and the owning chunk is resolved through the
// grid's chunk map. This keeps the ownership relation one-directional.
type Cell struct {
	Coord      HexCoord `json:"coord"`
	ChunkCoord HexCoord `json:"chunk_coord"`

	Terrain   Terrain `json:"terrain"`
	Walkable  bool    `json:"walkable"`
	Buildable bool    `json:"buildable"`
	HasEvent  bool    `json:"has_event"`
	Visible   bool    `json:"visible"`

	// Occupants in arrival order. Zero, one, or many per cell.
	Occupants []Occupant `json:"occupants,omitempty"`
}

// NewCell creates a cell with the given terrain, deriving walkability
// and buildability from the terrain defaults.
func NewCell(coord HexCoord, terrain Terrain) *Cell {
	return &Cell{
		Coord:     coord,
		Terrain:   terrain,
		Walkable:  terrain.Passable(),
		Buildable: terrain.Buildable(),
	}
}

// Occupied reports whether anything is standing on the cell.
func (c *Cell) Occupied() bool {
	return len(c.Occupants) > 0
}

// MovementCost returns the cost of entering this cell, or
// ImpassableCost when the cell cannot be walked.
func (c *Cell) MovementCost() int {
	if !c.Walkable {
		return ImpassableCost
	}
	return c.Terrain.MovementCost()
}

// AddOccupant appends an occupant to the cell.
func (c *Cell) AddOccupant(o Occupant) {
	c.Occupants = append(c.Occupants, o)
}

// RemoveOccupant removes the occupant with the given entity ID,
// preserving the order of the rest. Returns true if one was removed.
func (c *Cell) RemoveOccupant(id uuid.UUID) bool {
	for i, o := range c.Occupants {
		if o.EntityID == id {
			c.Occupants = append(c.Occupants[:i], c.Occupants[i+1:]...)
			return true
		}
	}
	return false
}

// SetTerrain changes the cell's terrain and rederives walkability and
// buildability. Callers that cache paths through this cell must
// invalidate them afterwards.
func (c *Cell) SetTerrain(t Terrain) {
	c.Terrain = t
	c.Walkable = t.Passable()
	c.Buildable = t.Buildable()
}
