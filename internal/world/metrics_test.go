package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldPositionOrigin(t *testing.T) {
	x, y := WorldPosition(HexCoord{})
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestWorldRoundTrip(t *testing.T) {
	// Every coordinate in a generous window must survive the projection
	// and inverse projection unchanged. This exercises cube rounding:
	// naive rounding of q and r fails near hex edges.
	for q := -40; q <= 40; q++ {
		for r := -40; r <= 40; r++ {
			c := HexCoord{Q: q, R: r}
			x, y := WorldPosition(c)
			got := WorldToHex(x, y)
			require.Equal(t, c, got, "round-trip failed at %v (world %f,%f)", c, x, y)
		}
	}
}

func TestWorldToHexOffCenter(t *testing.T) {
	// Points close to a hex center, but off it, still land on that hex.
	c := HexCoord{Q: 5, R: -3}
	x, y := WorldPosition(c)
	assert.Equal(t, c, WorldToHex(x+0.2, y-0.2))
	assert.Equal(t, c, WorldToHex(x-0.3, y+0.1))
}

func TestHexesInRangeCardinality(t *testing.T) {
	center := HexCoord{Q: -7, R: 12}
	cases := []struct {
		radius int
		want   int
	}{
		{0, 1},
		{1, 7},
		{2, 19},
		{3, 37},
	}
	for _, tc := range cases {
		got := HexesInRange(center, tc.radius)
		require.Len(t, got, tc.want, "radius %d", tc.radius)

		seen := make(map[HexCoord]bool, len(got))
		foundCenter := false
		for _, h := range got {
			assert.False(t, seen[h], "duplicate %v at radius %d", h, tc.radius)
			seen[h] = true
			assert.LessOrEqual(t, Distance(center, h), tc.radius)
			if h == center {
				foundCenter = true
			}
		}
		assert.True(t, foundCenter, "center must be included at radius %d", tc.radius)
	}
}

func TestHexesInRangeNegativeRadius(t *testing.T) {
	assert.Empty(t, HexesInRange(HexCoord{}, -1))
}

func TestRing(t *testing.T) {
	center := HexCoord{Q: 2, R: 2}

	ring0 := Ring(center, 0)
	require.Equal(t, []HexCoord{center}, ring0)

	for radius := 1; radius <= 4; radius++ {
		ring := Ring(center, radius)
		require.Len(t, ring, 6*radius, "ring radius %d", radius)

		seen := make(map[HexCoord]bool, len(ring))
		for _, h := range ring {
			assert.Equal(t, radius, Distance(center, h), "ring member %v", h)
			assert.False(t, seen[h], "duplicate ring member %v", h)
			seen[h] = true
		}
	}
}

func TestRingUnionMatchesRange(t *testing.T) {
	center := HexCoord{Q: -1, R: 3}
	radius := 3

	union := make(map[HexCoord]bool)
	for r := 0; r <= radius; r++ {
		for _, h := range Ring(center, r) {
			union[h] = true
		}
	}

	inRange := HexesInRange(center, radius)
	require.Len(t, inRange, len(union))
	for _, h := range inRange {
		assert.True(t, union[h], "range member %v missing from ring union", h)
	}
}
