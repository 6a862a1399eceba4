package path

import "github.com/talgya/hexfield/internal/world"

type pairKey struct {
	start world.HexCoord
	goal  world.HexCoord
}

// cache maps (start, goal) to the last computed path, with a reverse
// index from every traversed coordinate to the cache keys whose paths
// touch it. The reverse index makes targeted invalidation cheap: a
// terrain change at one coordinate drops exactly the paths that could
// have used it.
type cache struct {
	paths   map[pairKey][]world.HexCoord
	byCoord map[world.HexCoord]map[pairKey]struct{}
}

func newCache() *cache {
	return &cache{
		paths:   make(map[pairKey][]world.HexCoord),
		byCoord: make(map[world.HexCoord]map[pairKey]struct{}),
	}
}

func (c *cache) get(start, goal world.HexCoord) ([]world.HexCoord, bool) {
	p, ok := c.paths[pairKey{start: start, goal: goal}]
	if !ok {
		return nil, false
	}
	// Callers get a copy; the cached slice must never be aliased by
	// callback consumers.
	out := make([]world.HexCoord, len(p))
	copy(out, p)
	return out, true
}

func (c *cache) put(start, goal world.HexCoord, p []world.HexCoord) {
	key := pairKey{start: start, goal: goal}
	c.drop(key)

	stored := make([]world.HexCoord, len(p))
	copy(stored, p)
	c.paths[key] = stored
	for _, coord := range stored {
		set := c.byCoord[coord]
		if set == nil {
			set = make(map[pairKey]struct{})
			c.byCoord[coord] = set
		}
		set[key] = struct{}{}
	}
}

// invalidateAll clears every cached path.
func (c *cache) invalidateAll() {
	c.paths = make(map[pairKey][]world.HexCoord)
	c.byCoord = make(map[world.HexCoord]map[pairKey]struct{})
}

// invalidateAt drops every cached path that starts at, ends at, or
// passes through the coordinate.
func (c *cache) invalidateAt(coord world.HexCoord) int {
	keys := c.byCoord[coord]
	n := len(keys)
	for key := range keys {
		c.drop(key)
	}
	return n
}

func (c *cache) drop(key pairKey) {
	p, ok := c.paths[key]
	if !ok {
		return
	}
	delete(c.paths, key)
	for _, coord := range p {
		set := c.byCoord[coord]
		delete(set, key)
		if len(set) == 0 {
			delete(c.byCoord, coord)
		}
	}
}

func (c *cache) size() int {
	return len(c.paths)
}
