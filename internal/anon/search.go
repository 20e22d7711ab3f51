package anon

import (
	"container/heap"
	"context"
	"math"
	"time"

	"github.com/roach88/latticebench/internal/lattice"
)

// lossEpsilon absorbs float noise when comparing a loss to the loss limit.
const lossEpsilon = 1e-12

// search holds the state shared by all strategies of one run.
type search struct {
	ctx     context.Context
	eval    *evaluator
	lattice *lattice.Lattice
	run     *RunContext
	now     func() time.Time

	start    time.Time
	deadline time.Time
	limited  bool
	steps    int
	total    int

	best     *evaluation
	bestNode *lattice.Node
}

func newSearch(ctx context.Context, ev *evaluator, lat *lattice.Lattice, run *RunContext, now func() time.Time) *search {
	s := &search{
		ctx:     ctx,
		eval:    ev,
		lattice: lat,
		run:     run,
		now:     now,
		start:   now(),
		limited: ev.cfg.Algorithm != Optimal,
		total:   latticeSize(ev.data.MaxLevels()),
	}
	if ev.cfg.TimeLimit > 0 {
		s.deadline = s.start.Add(ev.cfg.TimeLimit)
	}
	return s
}

// latticeSize returns the number of nodes of a full-domain lattice,
// saturating at math.MaxInt.
func latticeSize(maxLevels []int) int {
	size := 1
	for _, m := range maxLevels {
		if size > math.MaxInt/(m+1) {
			return math.MaxInt
		}
		size *= m + 1
	}
	return size
}

// evaluate assesses n and records a checkpoint when it improves on the best
// anonymous solution. Ties keep the earlier solution.
func (s *search) evaluate(n *lattice.Node) *evaluation {
	ev, fresh := s.eval.evaluate(n)
	if fresh {
		s.steps++
	}
	if ev.anonymous && (s.best == nil || ev.loss < s.best.loss) {
		s.best = ev
		s.bestNode = n
		s.run.Record(Checkpoint{
			Elapsed:         s.now().Sub(s.start).Milliseconds(),
			Transformation:  n.Transformation(),
			InternalUtility: s.eval.internalUtility(ev),
		})
	}
	return ev
}

// done reports whether the search must stop. The optimal search only stops
// on cancellation or exhaustion.
func (s *search) done() bool {
	if s.ctx.Err() != nil {
		return true
	}
	if s.eval.evaluated() >= s.total {
		return true
	}
	if !s.limited {
		return false
	}
	if !s.deadline.IsZero() && !s.now().Before(s.deadline) {
		return true
	}
	if limit := s.eval.cfg.StepLimit; limit > 0 && s.steps >= limit {
		return true
	}
	if limit, ok := s.run.LossLimit(); ok && s.best != nil && s.best.loss <= limit+lossEpsilon {
		return true
	}
	return false
}

// optimal evaluates every node breadth-first from the bottom.
func (s *search) optimal() {
	bottom := s.lattice.Bottom()
	queue := []*lattice.Node{bottom}
	seen := map[*lattice.Node]bool{bottom: true}
	for len(queue) > 0 && s.ctx.Err() == nil {
		n := queue[0]
		queue = queue[1:]
		s.evaluate(n)
		n.Expand()
		for _, succ := range n.Successors() {
			if !seen[succ] {
				seen[succ] = true
				queue = append(queue, succ)
			}
		}
	}
}

// bottomUp expands the lowest-loss evaluated node first, starting at the
// bottom of the lattice.
func (s *search) bottomUp() {
	bottom := s.lattice.Bottom()
	seen := map[*lattice.Node]bool{bottom: true}
	q := &nodeQueue{}
	q.push(bottom, s.evaluate(bottom).loss)

	for q.Len() > 0 && !s.done() {
		n := q.pop()
		n.Expand()
		for _, succ := range n.Successors() {
			if seen[succ] {
				continue
			}
			seen[succ] = true
			q.push(succ, s.evaluate(succ).loss)
			if s.done() {
				return
			}
		}
	}
}

// topDown descends from the top of the lattice, always continuing from the
// anonymous node with the lowest loss. When the top node is not anonymous
// it falls back to the bottom-up search.
func (s *search) topDown() {
	top := s.lattice.Top()
	if !s.evaluate(top).anonymous {
		s.bottomUp()
		return
	}
	seen := map[*lattice.Node]bool{top: true}
	q := &nodeQueue{}
	q.push(top, s.best.loss)

	for q.Len() > 0 && !s.done() {
		n := q.pop()
		for _, pred := range n.Predecessors() {
			if seen[pred] {
				continue
			}
			seen[pred] = true
			if ev := s.evaluate(pred); ev.anonymous {
				q.push(pred, ev.loss)
			}
			if s.done() {
				return
			}
		}
	}
}

type queued struct {
	node     *lattice.Node
	priority float64
	seq      int
}

// nodeQueue is a min-heap of nodes by priority, FIFO among equals.
type nodeQueue struct {
	items []queued
	seq   int
}

func (q *nodeQueue) Len() int { return len(q.items) }

func (q *nodeQueue) Less(i, j int) bool {
	if q.items[i].priority != q.items[j].priority {
		return q.items[i].priority < q.items[j].priority
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *nodeQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *nodeQueue) Push(x any) { q.items = append(q.items, x.(queued)) }

func (q *nodeQueue) Pop() any {
	last := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return last
}

func (q *nodeQueue) push(n *lattice.Node, priority float64) {
	heap.Push(q, queued{node: n, priority: priority, seq: q.seq})
	q.seq++
}

func (q *nodeQueue) pop() *lattice.Node {
	return heap.Pop(q).(queued).node
}
