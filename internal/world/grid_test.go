package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkCoordFor(t *testing.T) {
	cases := []struct {
		cell  HexCoord
		chunk HexCoord
	}{
		{HexCoord{0, 0}, HexCoord{0, 0}},
		{HexCoord{15, 15}, HexCoord{0, 0}},
		{HexCoord{16, 0}, HexCoord{1, 0}},
		{HexCoord{0, 16}, HexCoord{0, 1}},
		{HexCoord{-1, 0}, HexCoord{-1, 0}},
		{HexCoord{-16, -16}, HexCoord{-1, -1}},
		{HexCoord{-17, 0}, HexCoord{-2, 0}},
		{HexCoord{31, -1}, HexCoord{1, -1}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.chunk, ChunkCoordFor(tc.cell), "cell %v", tc.cell)
	}
}

func TestInitializePopulatesRectangle(t *testing.T) {
	g := NewGrid(nil)
	g.Initialize(2, 3)

	assert.Equal(t, 6, g.ChunkCount())
	assert.Equal(t, 6, g.Allocations)

	// Every cell in the rectangle resolves with the plains defaults.
	c := g.Cell(HexCoord{Q: 20, R: 40})
	require.NotNil(t, c)
	assert.True(t, c.Walkable)
	assert.True(t, c.Buildable)
	assert.Equal(t, TerrainPlains, c.Terrain)
	assert.Equal(t, HexCoord{Q: 1, R: 2}, c.ChunkCoord)
}

func TestCellOutsideLoadedChunksIsNil(t *testing.T) {
	g := NewGrid(nil)
	g.Initialize(1, 1)

	assert.NotNil(t, g.Cell(HexCoord{Q: 15, R: 15}))
	assert.Nil(t, g.Cell(HexCoord{Q: 16, R: 0}), "neighboring chunk not loaded")
	assert.Nil(t, g.Cell(HexCoord{Q: -1, R: 0}), "negative side not loaded")
}

func TestNeighborsSilentDrop(t *testing.T) {
	g := NewGrid(nil)
	g.Initialize(1, 1)

	// Interior cell: all six neighbors resolve.
	assert.Len(t, g.Neighbors(HexCoord{Q: 8, R: 8}), 6)

	// Corner cell (0,0): only E and SE stay inside the loaded chunk.
	corner := g.Neighbors(HexCoord{Q: 0, R: 0})
	assert.Len(t, corner, 2)
	for _, c := range corner {
		assert.NotNil(t, c)
	}

	// Center that does not itself resolve yields nothing.
	assert.Empty(t, g.Neighbors(HexCoord{Q: 100, R: 100}))
}

func TestCellsInRangeSilentDrop(t *testing.T) {
	g := NewGrid(nil)
	g.Initialize(1, 1)

	full := g.CellsInRange(HexCoord{Q: 8, R: 8}, 2)
	assert.Len(t, full, 19)

	// At the corner most of the disc is unloaded.
	clipped := g.CellsInRange(HexCoord{Q: 0, R: 0}, 2)
	assert.Less(t, len(clipped), 19)
	assert.NotEmpty(t, clipped)
	for _, c := range clipped {
		assert.LessOrEqual(t, Distance(HexCoord{Q: 0, R: 0}, c.Coord), 2)
	}
}

func TestLoadChunkIdempotent(t *testing.T) {
	g := NewGrid(nil)
	first := g.LoadChunk(HexCoord{Q: 2, R: 2})
	second := g.LoadChunk(HexCoord{Q: 2, R: 2})
	assert.Same(t, first, second)
	assert.Equal(t, 1, g.ChunkCount())
	assert.Equal(t, 1, g.Allocations)
}

func TestUnloadReturnsChunkToPool(t *testing.T) {
	g := NewGrid(nil)
	g.Initialize(2, 2)
	require.Equal(t, 4, g.Allocations)

	assert.True(t, g.UnloadChunk(HexCoord{Q: 1, R: 1}))
	assert.Equal(t, 3, g.ChunkCount())
	assert.Equal(t, 1, g.PooledChunks())
	assert.Nil(t, g.Cell(HexCoord{Q: 17, R: 17}), "cells of unloaded chunk stop resolving")

	assert.False(t, g.UnloadChunk(HexCoord{Q: 1, R: 1}), "double unload")

	// Loading a different coordinate reuses the pooled chunk: count is
	// restored with no fresh allocation.
	g.LoadChunk(HexCoord{Q: 5, R: -3})
	assert.Equal(t, 4, g.ChunkCount())
	assert.Equal(t, 0, g.PooledChunks())
	assert.Equal(t, 4, g.Allocations, "no net allocation growth under churn")

	c := g.Cell(HexCoord{Q: 5*ChunkSize + 1, R: -3*ChunkSize + 2})
	require.NotNil(t, c)
	assert.Equal(t, HexCoord{Q: 5, R: -3}, c.ChunkCoord)
}

func TestPoolChurn(t *testing.T) {
	g := NewGrid(nil)
	g.Initialize(1, 1)

	for i := 0; i < 50; i++ {
		cc := HexCoord{Q: i + 1, R: 0}
		g.LoadChunk(cc)
		g.UnloadChunk(cc)
	}
	assert.Equal(t, 2, g.Allocations, "one live chunk plus one recycled")
}

func TestCellAtWorldPosition(t *testing.T) {
	g := NewGrid(nil)
	g.Initialize(1, 1)

	x, y := WorldPosition(HexCoord{Q: 3, R: 4})
	c := g.CellAtWorldPosition(x, y)
	require.NotNil(t, c)
	assert.Equal(t, HexCoord{Q: 3, R: 4}, c.Coord)

	x, y = WorldPosition(HexCoord{Q: -5, R: 0})
	assert.Nil(t, g.CellAtWorldPosition(x, y), "world position in unloaded chunk")
}

func TestChunkAddCell(t *testing.T) {
	ch := NewChunk(HexCoord{Q: 1, R: 0})

	ok := ch.AddCell(NewCell(HexCoord{Q: 16, R: 0}, TerrainPlains))
	assert.True(t, ok)
	assert.Equal(t, 1, ch.CellCount())

	assert.False(t, ch.AddCell(NewCell(HexCoord{Q: 16, R: 0}, TerrainForest)), "slot already taken")
	assert.False(t, ch.AddCell(NewCell(HexCoord{Q: 0, R: 0}, TerrainPlains)), "cell outside chunk bounds")
}

func TestChunkDirtyLifecycle(t *testing.T) {
	g := NewGrid(nil)
	ch := g.LoadChunk(HexCoord{})
	assert.True(t, ch.Active)
	assert.True(t, ch.ConsumeDirty())
	assert.False(t, ch.ConsumeDirty(), "dirty consumed")

	ch.Deactivate()
	assert.True(t, ch.ConsumeDirty(), "state changes re-dirty the chunk")
}

func TestNoiseTerrainDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	a := NoiseTerrain(cfg)
	b := NoiseTerrain(cfg)

	for q := -20; q <= 20; q += 3 {
		for r := -20; r <= 20; r += 3 {
			coord := HexCoord{Q: q, R: r}
			require.Equal(t, a(coord), b(coord), "same seed must give same terrain at %v", coord)
		}
	}
}

func TestNoiseTerrainConsistentAcrossLoadOrder(t *testing.T) {
	cfg := DefaultGenConfig()

	g1 := NewGrid(NoiseTerrain(cfg))
	g1.LoadChunk(HexCoord{Q: 0, R: 0})
	g1.LoadChunk(HexCoord{Q: 1, R: 0})

	g2 := NewGrid(NoiseTerrain(cfg))
	g2.LoadChunk(HexCoord{Q: 1, R: 0})
	g2.LoadChunk(HexCoord{Q: 0, R: 0})

	for q := 0; q < 2*ChunkSize; q += 5 {
		for r := 0; r < ChunkSize; r += 5 {
			coord := HexCoord{Q: q, R: r}
			require.Equal(t, g1.Cell(coord).Terrain, g2.Cell(coord).Terrain,
				"terrain must not depend on chunk load order at %v", coord)
		}
	}
}
