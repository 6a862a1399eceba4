package world

// Terrain types for hex cells.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Open ground, cheapest to cross
	TerrainForest                  // Slows movement, blocks building
	TerrainMountain                // Hard going, defensive positions
	TerrainRiver                   // Fordable but slow
	TerrainDesert                  // Harsh, slightly slow
	TerrainSwamp                   // Very slow, never buildable
	TerrainTundra                  // Frozen ground
	TerrainOcean                   // Impassable
)

// ImpassableCost is the sentinel movement cost for cells that cannot be
// entered. Far larger than any real path cost.
const ImpassableCost = 999

// terrainCosts maps terrain to its base movement cost.
var terrainCosts = [...]int{
	TerrainPlains:   1,
	TerrainForest:   2,
	TerrainMountain: 3,
	TerrainRiver:    3,
	TerrainDesert:   2,
	TerrainSwamp:    4,
	TerrainTundra:   2,
	TerrainOcean:    ImpassableCost,
}

// MovementCost returns the base cost of entering a cell of this terrain.
func (t Terrain) MovementCost() int {
	if int(t) < len(terrainCosts) {
		return terrainCosts[t]
	}
	return 1
}

// Passable reports whether the terrain can be walked at all.
func (t Terrain) Passable() bool {
	return t.MovementCost() < ImpassableCost
}

// Buildable reports whether structures may be placed on this terrain.
func (t Terrain) Buildable() bool {
	switch t {
	case TerrainPlains, TerrainDesert, TerrainTundra:
		return true
	default:
		return false
	}
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainMountain:
		return "Mountain"
	case TerrainRiver:
		return "River"
	case TerrainDesert:
		return "Desert"
	case TerrainSwamp:
		return "Swamp"
	case TerrainTundra:
		return "Tundra"
	case TerrainOcean:
		return "Ocean"
	default:
		return "Unknown"
	}
}
