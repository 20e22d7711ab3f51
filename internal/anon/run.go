package anon

// Checkpoint is an improving solution recorded during a run.
type Checkpoint struct {
	// Elapsed is the time since the start of the search in milliseconds.
	Elapsed int64

	// Transformation is the generalization vector of the solution.
	Transformation []int

	// InternalUtility is 1 minus the normalized loss seen by the search.
	InternalUtility float64

	// ExternalUtility is filled in after the run by resolving the
	// transformation against the result's lattice.
	ExternalUtility float64
}

// RunContext carries the mutable state of one anonymization run: the loss
// limit heuristics stop at and the recorded trajectory.
//
// A RunContext is owned by a single caller and is not safe for concurrent
// use. Reset returns it to the fresh state.
type RunContext struct {
	lossLimit  float64
	bounded    bool
	trajectory []Checkpoint
}

// NewRunContext returns an unbounded context with an empty trajectory.
func NewRunContext() *RunContext {
	return &RunContext{}
}

// SetLossLimit bounds heuristic searches: they stop once they find a
// solution whose loss is at most limit.
func (r *RunContext) SetLossLimit(limit float64) {
	r.lossLimit = limit
	r.bounded = true
}

// LossLimit returns the loss limit and whether one is set.
func (r *RunContext) LossLimit() (float64, bool) {
	return r.lossLimit, r.bounded
}

// Trajectory returns the recorded checkpoints in recording order. The slice
// is shared with the context so callers can annotate ExternalUtility in
// place.
func (r *RunContext) Trajectory() []Checkpoint {
	return r.trajectory
}

// Reset removes the loss limit and drains the trajectory.
func (r *RunContext) Reset() {
	r.lossLimit = 0
	r.bounded = false
	r.trajectory = nil
}

// Record appends a checkpoint to the trajectory.
func (r *RunContext) Record(cp Checkpoint) {
	r.trajectory = append(r.trajectory, cp)
}
