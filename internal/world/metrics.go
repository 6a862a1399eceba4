// Hex metric functions: world-space projection, inverse projection with
// cube rounding, and range/ring enumeration. All functions are pure.
package world

import "math"

// HexSize is the outer radius of a hex in world units. The origin hex
// (0,0) is centered on the world origin.
const HexSize = 1.0

const sqrt3 = 1.7320508075688772

// WorldPosition projects an axial coordinate to the world-space center
// of its hex (pointy-top orientation).
func WorldPosition(h HexCoord) (x, y float64) {
	x = HexSize * sqrt3 * (float64(h.Q) + float64(h.R)*0.5)
	y = HexSize * 1.5 * float64(h.R)
	return x, y
}

// WorldToHex converts a world-space position to the axial coordinate of
// the hex containing it. Inverse of WorldPosition: for every coordinate
// c, WorldToHex(WorldPosition(c)) == c.
func WorldToHex(x, y float64) HexCoord {
	qf := (sqrt3/3.0*x - y/3.0) / HexSize
	rf := (2.0 / 3.0 * y) / HexSize
	return cubeRound(qf, rf)
}

// cubeRound snaps fractional axial coordinates to the nearest hex.
// Each cube component is rounded independently, then the component with
// the largest rounding error is recomputed so q+r+s == 0 holds again.
// Naive rounding of q and r alone breaks the round-trip identity near
// hex edges.
func cubeRound(qf, rf float64) HexCoord {
	sf := -qf - rf

	q := math.Round(qf)
	r := math.Round(rf)
	s := math.Round(sf)

	dq := math.Abs(q - qf)
	dr := math.Abs(r - rf)
	ds := math.Abs(s - sf)

	switch {
	case dq > dr && dq > ds:
		q = -r - s
	case dr > ds:
		r = -q - s
	}

	return HexCoord{Q: int(q), R: int(r)}
}

// HexesInRange returns every coordinate within the given hex distance of
// center, including center itself. The result holds exactly
// 3*radius^2 + 3*radius + 1 coordinates with no duplicates.
func HexesInRange(center HexCoord, radius int) []HexCoord {
	if radius < 0 {
		return nil
	}
	result := make([]HexCoord, 0, 3*radius*radius+3*radius+1)
	for dq := -radius; dq <= radius; dq++ {
		lo := max(-radius, -dq-radius)
		hi := min(radius, -dq+radius)
		for dr := lo; dr <= hi; dr++ {
			result = append(result, HexCoord{Q: center.Q + dq, R: center.R + dr})
		}
	}
	return result
}

// Ring returns the coordinates at exactly the given hex distance from
// center, walking the ring counterclockwise from the south-west corner.
// Radius 0 yields just the center.
func Ring(center HexCoord, radius int) []HexCoord {
	if radius < 0 {
		return nil
	}
	if radius == 0 {
		return []HexCoord{center}
	}
	result := make([]HexCoord, 0, 6*radius)
	// Start at the SW corner of the ring, then walk each of the six sides.
	cur := center.Add(HexNeighborDirections[DirSW].Scale(radius))
	for _, dir := range []Direction{DirE, DirNE, DirNW, DirW, DirSW, DirSE} {
		for i := 0; i < radius; i++ {
			result = append(result, cur)
			cur = cur.Neighbor(dir)
		}
	}
	return result
}
