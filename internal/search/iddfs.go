package search

// IDDFSList is a depth-capped stack (§4.4): a state with PlanLength
// greater than the current cap is rejected and a flag is set; once the
// stack empties with that flag set, the cap is raised by step and the
// initial state is re-pushed to start the next iteration.
type IDDFSList struct {
	items      []*State
	cap        int
	initialCap int
	step       int
	rejected   bool
	initial    *State
}

// NewIDDFS returns an IDDFS open list starting at initialCap and
// raising the cap by step each time the stack is exhausted with a
// rejected state pending.
func NewIDDFS(initialCap, step int) *IDDFSList {
	return &IDDFSList{cap: initialCap, initialCap: initialCap, step: step}
}

// SetInitial records the initial state so it can be re-pushed whenever
// the cap is raised; it always enters regardless of the cap (§3).
func (q *IDDFSList) SetInitial(s *State) {
	q.initial = s
	q.items = append(q.items, s)
}

func (q *IDDFSList) Push(s *State) {
	if int(s.PlanLength) > q.cap {
		q.rejected = true
		return
	}
	q.items = append(q.items, s)
}

// ready raises the cap and re-pushes the initial state if the stack is
// empty but a deeper state was rejected this iteration, so Peek and Pop
// observe a consistent stack.
func (q *IDDFSList) ready() {
	if len(q.items) != 0 || !q.rejected {
		return
	}
	q.cap += q.step
	q.rejected = false
	if q.initial != nil {
		q.items = append(q.items, q.initial)
	}
}

func (q *IDDFSList) Pop() *State {
	q.ready()
	if len(q.items) == 0 {
		return nil
	}
	s := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return s
}

func (q *IDDFSList) Peek() *State {
	q.ready()
	if len(q.items) == 0 {
		return nil
	}
	return q.items[len(q.items)-1]
}

func (q *IDDFSList) Empty() bool { return len(q.items) == 0 && !q.rejected }

func (q *IDDFSList) Reset() {
	q.items = nil
	q.cap = q.initialCap
	q.rejected = false
}

func (q *IDDFSList) Name() string { return "IDDFS" }

// Cap reports the current depth cap, for diagnostics/tests.
func (q *IDDFSList) Cap() int { return q.cap }
