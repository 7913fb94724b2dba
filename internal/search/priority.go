package search

import "container/heap"

// priorityKey computes the ordering key for a priority-queue entry;
// smaller is higher priority (§4.4).
type priorityKey func(s *State) int

// heapEntry is one slot in the underlying container/heap slice.
type heapEntry struct {
	state *State
	key   int
	seq   int
}

type entryHeap []*heapEntry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key < h[j].key
	}
	// Stable tie-breaking on insertion order keeps sequential runs
	// deterministic given a deterministic action iteration order (§5).
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(*heapEntry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// PriorityList is a min-priority queue keyed by priorityKey, backing
// both HeuristicFirst and A* (§4.4). Rejection of negative-keyed
// non-initial states is the caller's responsibility (engine.go), since
// the key function alone cannot tell the initial state apart from any
// other.
type PriorityList struct {
	h       entryHeap
	key     priorityKey
	name    string
	nextSeq int
}

// NewHeuristicFirst returns a priority list keyed by each state's
// HeuristicValue.
func NewHeuristicFirst() *PriorityList {
	return newPriorityList("HFS", func(s *State) int { return s.HeuristicValue })
}

// NewAStar returns a priority list keyed by heuristic value plus plan
// length.
func NewAStar() *PriorityList {
	return newPriorityList("A*", func(s *State) int { return s.HeuristicValue + int(s.PlanLength) })
}

func newPriorityList(name string, key priorityKey) *PriorityList {
	pl := &PriorityList{key: key, name: name}
	heap.Init(&pl.h)
	return pl
}

func (pl *PriorityList) Push(s *State) {
	heap.Push(&pl.h, &heapEntry{state: s, key: pl.key(s), seq: pl.nextSeq})
	pl.nextSeq++
}

func (pl *PriorityList) Pop() *State {
	if pl.h.Len() == 0 {
		return nil
	}
	e := heap.Pop(&pl.h).(*heapEntry)
	return e.state
}

func (pl *PriorityList) Peek() *State {
	if pl.h.Len() == 0 {
		return nil
	}
	return pl.h[0].state
}

func (pl *PriorityList) Empty() bool { return pl.h.Len() == 0 }

func (pl *PriorityList) Reset() {
	pl.h = nil
	pl.nextSeq = 0
	heap.Init(&pl.h)
}

func (pl *PriorityList) Name() string { return pl.name }
