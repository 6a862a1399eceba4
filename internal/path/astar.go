// Package path computes shortest routes over the hex grid and delivers
// them asynchronously: requests are queued, searched a bounded number of
// node expansions per tick, cached, and completed through callbacks, so
// the host loop never blocks on a full search.
package path

import (
	"container/heap"

	"github.com/talgya/hexfield/internal/world"
)

// search is an in-progress A* run over a grid. It is advanced
// incrementally by step so a long search spreads across several ticks.
type search struct {
	grid  *world.Grid
	start world.HexCoord
	goal  world.HexCoord

	open     *nodeHeap
	g        map[world.HexCoord]int
	came     map[world.HexCoord]world.HexCoord
	closed   map[world.HexCoord]bool
	expanded int
}

func newSearch(grid *world.Grid, start, goal world.HexCoord) *search {
	s := &search{
		grid:   grid,
		start:  start,
		goal:   goal,
		open:   &nodeHeap{},
		g:      map[world.HexCoord]int{start: 0},
		came:   make(map[world.HexCoord]world.HexCoord),
		closed: make(map[world.HexCoord]bool),
	}
	heap.Init(s.open)
	heap.Push(s.open, node{coord: start, f: world.Distance(start, goal)})
	return s
}

// step runs up to budget node expansions. It returns done=false when the
// budget ran out with the search still live. When done, result is the
// path from start to goal inclusive, or nil if the goal is unreachable.
func (s *search) step(budget int) (done bool, result []world.HexCoord) {
	for i := 0; i < budget; i++ {
		if s.open.Len() == 0 {
			return true, nil
		}
		cur := heap.Pop(s.open).(node)
		if s.closed[cur.coord] {
			// Stale heap entry superseded by a cheaper route.
			continue
		}
		s.closed[cur.coord] = true
		s.expanded++

		if cur.coord == s.goal {
			return true, s.reconstruct()
		}

		for _, nb := range cur.coord.Neighbors() {
			if s.closed[nb] {
				continue
			}
			// Cells in unloaded chunks do not resolve and are never
			// traversed.
			cell := s.grid.Cell(nb)
			if cell == nil || !cell.Walkable {
				continue
			}
			tentative := s.g[cur.coord] + cell.MovementCost()
			if old, ok := s.g[nb]; !ok || tentative < old {
				s.g[nb] = tentative
				s.came[nb] = cur.coord
				// Hex distance is an admissible heuristic: every step
				// costs at least 1.
				heap.Push(s.open, node{coord: nb, f: tentative + world.Distance(nb, s.goal)})
			}
		}
	}
	return false, nil
}

func (s *search) reconstruct() []world.HexCoord {
	rev := []world.HexCoord{s.goal}
	cur := s.goal
	for cur != s.start {
		cur = s.came[cur]
		rev = append(rev, cur)
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

type node struct {
	coord world.HexCoord
	f     int
}

type nodeHeap []node

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)        { *h = append(*h, x.(node)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
