package path

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/talgya/hexfield/internal/world"
)

// Status is the lifecycle state of a path request. Done, Failed, and
// Cancelled are terminal.
type Status uint8

const (
	StatusQueued Status = iota
	StatusComputing
	StatusDone
	StatusCancelled
	StatusFailed
)

// StatusName returns a human-readable name for a request status.
func StatusName(s Status) string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusComputing:
		return "computing"
	case StatusDone:
		return "done"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrNoPath is reported when no walkable route exists, or when an
// endpoint does not resolve on the grid.
var ErrNoPath = errors.New("no walkable path")

// InvalidRequestID is returned by RequestPath when the request is
// structurally invalid (nil grid) and nothing was enqueued.
const InvalidRequestID = -1

// Callback receives the outcome of a single request. Path is the
// coordinate sequence from start to goal inclusive on success; on
// failure it is nil and err is ErrNoPath.
type Callback func(id int64, path []world.HexCoord, err error)

// Observer receives every request outcome the service delivers.
// Observers are an explicit subscription list; subscribing twice means
// being called twice.
type Observer interface {
	PathCalculated(id int64, path []world.HexCoord)
	PathFailed(id int64)
}

// Stats are cumulative service counters. Succeeded and Failed each
// count delivered outcomes of that kind; Cancelled requests deliver
// nothing and are counted separately.
type Stats struct {
	Requested     int64 `json:"requested"`
	SearchesRun   int64 `json:"searches_run"`
	NodesExpanded int64 `json:"nodes_expanded"`
	CacheHits     int64 `json:"cache_hits"`
	Succeeded     int64 `json:"succeeded"`
	Failed        int64 `json:"failed"`
	Cancelled     int64 `json:"cancelled"`
}

type request struct {
	id       int64
	grid     *world.Grid
	start    world.HexCoord
	goal     world.HexCoord
	callback Callback
	status   Status

	// cached holds a fast-path result found at request time; requests
	// with a cached result skip the search entirely.
	cached []world.HexCoord
}

// Service queues, computes, caches, and delivers shortest paths.
//
// All computation happens inside Update, which the owning loop calls
// once per tick: at most one search is in flight, advanced a bounded
// number of node expansions per call. The mutex makes the public
// surface safe to call from other goroutines (the HTTP API does), but
// delivery always happens on the loop that calls Update.
type Service struct {
	mu sync.Mutex

	nextID   int64
	requests map[int64]*request
	queue    []*request
	active   *request
	searcher *search

	cache     *cache
	observers []Observer

	// StepBudget is the number of node expansions Update may spend per
	// call across all searches.
	StepBudget int

	stats Stats
}

// NewService creates a path service with the given per-tick expansion
// budget. Budgets below 1 are clamped to a sane default.
func NewService(stepBudget int) *Service {
	if stepBudget < 1 {
		stepBudget = 256
	}
	return &Service{
		nextID:     1,
		requests:   make(map[int64]*request),
		cache:      newCache(),
		StepBudget: stepBudget,
	}
}

// Subscribe adds an observer for every delivered outcome.
func (s *Service) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// RequestPath enqueues a shortest-path request from start to goal on
// the given grid and returns its id. Ids are strictly increasing and
// never reused, whatever the outcome. A nil grid returns
// InvalidRequestID without enqueueing. The callback may be nil when the
// caller only listens through observers.
func (s *Service) RequestPath(grid *world.Grid, start, goal world.HexCoord, cb Callback) int64 {
	if grid == nil {
		return InvalidRequestID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.stats.Requested++

	req := &request{
		id:       id,
		grid:     grid,
		start:    start,
		goal:     goal,
		callback: cb,
		status:   StatusQueued,
	}

	if cached, ok := s.cache.get(start, goal); ok {
		req.cached = cached
		s.stats.CacheHits++
	}

	s.requests[id] = req
	s.queue = append(s.queue, req)
	return id
}

// CancelRequest cancels a request that is still queued or computing.
// Returns false if the id is unknown or already terminal; a cancelled
// request never delivers a callback.
func (s *Service) CancelRequest(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok || (req.status != StatusQueued && req.status != StatusComputing) {
		return false
	}
	req.status = StatusCancelled
	s.stats.Cancelled++
	if s.active == req {
		// Drop the in-flight search immediately rather than letting it
		// run to completion.
		s.active = nil
		s.searcher = nil
	}
	return true
}

// RequestStatus reports the current status of a request id.
func (s *Service) RequestStatus(id int64) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[id]
	if !ok {
		return 0, false
	}
	return req.status, true
}

// InvalidateCache clears every cached path.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.invalidateAll()
}

// InvalidateCacheAt drops every cached path whose route starts at, ends
// at, or traverses the coordinate. Callers mutating terrain or
// walkability must call this (or InvalidateCache) before requesting
// fresh paths through the affected cell.
func (s *Service) InvalidateCacheAt(coord world.HexCoord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.cache.invalidateAt(coord); n > 0 {
		slog.Debug("path cache invalidated", "q", coord.Q, "r", coord.R, "entries", n)
	}
}

// CachedPaths returns the number of cached entries.
func (s *Service) CachedPaths() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.size()
}

// Stats returns a snapshot of the cumulative counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// delivery is a completed outcome waiting for its callbacks to fire.
type delivery struct {
	req  *request
	path []world.HexCoord
	err  error
}

// Update advances the service by one tick: it pumps queued requests,
// steps the in-flight search within the expansion budget, and delivers
// completed outcomes in completion order. Cancellation is honored up to
// the moment of delivery.
func (s *Service) Update() {
	s.mu.Lock()
	budget := s.StepBudget
	var done []delivery

	for budget > 0 {
		if s.active == nil {
			if !s.startNext(&done) {
				break
			}
			continue
		}

		before := s.searcher.expanded
		finished, result := s.searcher.step(budget)
		spent := s.searcher.expanded - before
		s.stats.NodesExpanded += int64(spent)
		if !finished {
			break
		}
		budget -= spent
		if budget < 1 {
			budget = 0
		}

		req := s.active
		s.active = nil
		s.searcher = nil
		if result == nil {
			done = append(done, delivery{req: req, err: ErrNoPath})
		} else {
			s.cache.put(req.start, req.goal, result)
			done = append(done, delivery{req: req, path: result})
		}
	}
	s.mu.Unlock()

	s.deliver(done)
}

// startNext pops the queue until a runnable request is found. Cached
// and trivially-failing requests complete immediately. Returns false
// when the queue is empty.
func (s *Service) startNext(done *[]delivery) bool {
	for len(s.queue) > 0 {
		req := s.queue[0]
		s.queue = s.queue[1:]

		if req.status != StatusQueued {
			continue
		}

		if req.cached != nil {
			*done = append(*done, delivery{req: req, path: req.cached})
			continue
		}

		// Endpoints must resolve and be walkable; anything else fails
		// without a search.
		startCell := req.grid.Cell(req.start)
		goalCell := req.grid.Cell(req.goal)
		if startCell == nil || goalCell == nil || !startCell.Walkable || !goalCell.Walkable {
			*done = append(*done, delivery{req: req, err: ErrNoPath})
			continue
		}

		req.status = StatusComputing
		s.active = req
		s.searcher = newSearch(req.grid, req.start, req.goal)
		s.stats.SearchesRun++
		return true
	}
	return false
}

// maxRetainedRequests bounds the request table. Terminal requests past
// the cap are forgotten; cancelling a forgotten id still returns false,
// the same as any unknown id.
const maxRetainedRequests = 4096

func (s *Service) pruneLocked() {
	if len(s.requests) <= maxRetainedRequests {
		return
	}
	terminal := make([]int64, 0, len(s.requests))
	for id, req := range s.requests {
		if req.status == StatusDone || req.status == StatusFailed || req.status == StatusCancelled {
			terminal = append(terminal, id)
		}
	}
	// Oldest first, so recent outcomes stay queryable the longest.
	sort.Slice(terminal, func(i, j int) bool { return terminal[i] < terminal[j] })
	for _, id := range terminal {
		if len(s.requests) <= maxRetainedRequests/2 {
			return
		}
		delete(s.requests, id)
	}
}

// deliver fires callbacks and observers outside the lock. A request
// cancelled after completing but before this point is still suppressed.
func (s *Service) deliver(done []delivery) {
	for _, d := range done {
		s.mu.Lock()
		if d.req.status == StatusCancelled {
			s.mu.Unlock()
			continue
		}
		if d.err != nil {
			d.req.status = StatusFailed
			s.stats.Failed++
		} else {
			d.req.status = StatusDone
			s.stats.Succeeded++
		}
		s.pruneLocked()
		observers := make([]Observer, len(s.observers))
		copy(observers, s.observers)
		s.mu.Unlock()

		if d.req.callback != nil {
			d.req.callback(d.req.id, d.path, d.err)
		}
		for _, o := range observers {
			if d.err != nil {
				o.PathFailed(d.req.id)
			} else {
				o.PathCalculated(d.req.id, d.path)
			}
		}
	}
}
