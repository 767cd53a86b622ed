package pathfind

import (
	"runtime"
	"time"

	"github.com/dzautner/megacity/internal/grid"
)

// MaxSpawnPerTick caps new async pathfinding tasks dispatched per tick to
// bound the latency tail.
const MaxSpawnPerTick = 256

// syncBudget bounds the synchronous fallback on single-threaded hosts.
const (
	syncBudget   = 2 * time.Millisecond
	syncMaxCount = 256
)

// Request asks for a path between two road cells on behalf of a citizen.
// Generation guards against stale results: the requester bumps its
// generation when it despawns or changes state, and discards mismatches.
type Request struct {
	Citizen    uint32
	Generation uint32
	Start      grid.Coord
	Goal       grid.Coord
}

// Result carries a completed path (nil when unreachable).
type Result struct {
	Citizen    uint32
	Generation uint32
	Path       []grid.Coord
}

// Pool dispatches path requests to background workers, each holding the
// snapshot pointer current at dispatch time. On hosts with a single CPU it
// degrades to a time-sliced synchronous loop.
type Pool struct {
	pending  []Request
	requests chan task
	results  chan Result
	workers  int
}

type task struct {
	req  Request
	snap *Snapshot
}

// NewPool starts worker goroutines sized to the host.
func NewPool() *Pool {
	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 0 // synchronous fallback
	}
	p := &Pool{
		requests: make(chan task, MaxSpawnPerTick*4),
		results:  make(chan Result, MaxSpawnPerTick*4),
		workers:  workers,
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for t := range p.requests {
		path := t.snap.FindPath(t.req.Start, t.req.Goal)
		p.results <- Result{Citizen: t.req.Citizen, Generation: t.req.Generation, Path: path}
	}
}

// Submit queues a request; it is dispatched on the next Dispatch call.
func (p *Pool) Submit(req Request) {
	p.pending = append(p.pending, req)
}

// PendingCount returns the number of requests not yet dispatched.
func (p *Pool) PendingCount() int { return len(p.pending) }

// Dispatch hands up to MaxSpawnPerTick pending requests to the workers using
// the given snapshot. Without workers it solves them inline, bounded by a
// wall-clock budget and a hard count.
func (p *Pool) Dispatch(snap *Snapshot) {
	n := len(p.pending)
	if n > MaxSpawnPerTick {
		n = MaxSpawnPerTick
	}
	batch := p.pending[:n]
	p.pending = p.pending[n:]

	if p.workers > 0 {
		for _, req := range batch {
			select {
			case p.requests <- task{req: req, snap: snap}:
			default:
				// Channel full: return to pending rather than block the tick.
				p.pending = append(p.pending, req)
			}
		}
		return
	}

	deadline := time.Now().Add(syncBudget)
	solved := 0
	for i, req := range batch {
		if solved >= syncMaxCount || time.Now().After(deadline) {
			p.pending = append(p.pending, batch[i:]...)
			return
		}
		path := snap.FindPath(req.Start, req.Goal)
		p.results <- Result{Citizen: req.Citizen, Generation: req.Generation, Path: path}
		solved++
	}
}

// Poll drains completed results without blocking.
func (p *Pool) Poll(dst []Result) []Result {
	for {
		select {
		case r := <-p.results:
			dst = append(dst, r)
		default:
			return dst
		}
	}
}
