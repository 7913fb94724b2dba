package search

import (
	"sync"
	"sync/atomic"

	"github.com/epistemicgo/episteme/internal/bisim"
	"github.com/epistemicgo/episteme/internal/bits"
	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// concurrentQueue is the shared FIFO open list for parallel BFS: a
// blocking queue workers pop from, woken either by a push or by close
// (§4.4 "Parallel BFS", §5 suspension points).
type concurrentQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []*State
	closed bool
}

func newConcurrentQueue() *concurrentQueue {
	q := &concurrentQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *concurrentQueue) push(s *State) {
	q.mu.Lock()
	q.items = append(q.items, s)
	q.mu.Unlock()
	q.cond.Signal()
}

// pop blocks until an item is available or the queue is closed, in
// which case it returns (nil, false).
func (q *concurrentQueue) pop() (*State, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	s := q.items[0]
	q.items = q.items[1:]
	return s, true
}

func (q *concurrentQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// ParallelBFS runs N workers sharing a concurrent open queue and a
// read-write-locked visited set; each worker loops pop/expand/push
// until a goal is observed, at which point an atomic found flag halts
// the others (§4.4, §5.1). Optimal-cost recovery only holds with
// CheckVisited disabled (§5 ordering guarantees); this is the caller's
// choice, not enforced here.
type ParallelConfig struct {
	Domain       *domain.Domain
	Store        *kripke.WorldStore
	AllAgents    bits.AgentSet
	Workers      int
	CheckVisited bool
	Bisimulation bool
	BisimType    bisim.Type
}

// ParallelBFS explores the model breadth-first with cfg.Workers
// goroutines. Termination uses a shared in-flight counter: the initial
// state counts as one unit of outstanding work, each expansion adds one
// unit per pushed child and retires its own unit when done; the queue
// is closed once the counter reaches zero with nothing found.
func ParallelBFS(cfg *ParallelConfig, initial *kripke.State) (*Result, error) {
	queue := newConcurrentQueue()
	var visited *VisitedSet
	if cfg.CheckVisited {
		visited = NewVisitedSet()
	}

	var found atomic.Bool
	var firstErr atomic.Value // error
	var result atomic.Value   // *Result
	var inflight atomic.Int64
	var expanded atomic.Int64

	start := &State{Kripke: initial}
	inflight.Add(1)
	queue.push(start)

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		var bisimEngine *bisim.Engine
		if cfg.Bisimulation {
			bisimEngine = bisim.NewEngine()
		}
		go func(be *bisim.Engine) {
			defer wg.Done()
			for {
				if found.Load() {
					return
				}
				s, ok := queue.pop()
				if !ok {
					return
				}

				if s.Kripke.EntailsAll(cfg.Domain.Goal) {
					if found.CompareAndSwap(false, true) {
						result.Store(&Result{
							Found:           true,
							ExecutedActions: s.ExecutedActions,
							PlanLength:      s.PlanLength,
						})
					}
					inflight.Add(-1)
					queue.close()
					return
				}

				skip := false
				if cfg.CheckVisited {
					skip = visited.CheckAndInsert(s)
				}
				if !skip {
					expanded.Add(1)
					for _, act := range cfg.Domain.Actions {
						if !act.ExecutableAt(s.Kripke.Entails) {
							continue
						}
						next, err := s.Kripke.Apply(cfg.Store, act, cfg.AllAgents)
						if err != nil {
							firstErr.CompareAndSwap(nil, err)
							found.Store(true)
							queue.close()
							return
						}
						if be != nil {
							if contracted, applied := be.Contract(next, cfg.BisimType); applied {
								next = contracted
							}
						}
						child := successor(s, next, act.ID)
						inflight.Add(1)
						queue.push(child)
					}
				}

				if inflight.Add(-1) == 0 {
					queue.close()
					return
				}
			}
		}(bisimEngine)
	}
	wg.Wait()

	if e, _ := firstErr.Load().(error); e != nil {
		return nil, e
	}
	if r, ok := result.Load().(*Result); ok {
		r.Expanded = int(expanded.Load())
		return r, nil
	}
	return &Result{Expanded: int(expanded.Load())}, nil
}
