package harness

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/latticebench/internal/anon"
	"github.com/roach88/latticebench/internal/dataset"
	"github.com/roach88/latticebench/internal/experiment"
	"github.com/roach88/latticebench/internal/lattice"
	"github.com/roach88/latticebench/internal/resultlog"
	"github.com/roach88/latticebench/internal/testutil"
	"github.com/roach88/latticebench/internal/trial"
)

func adultTrial(alg anon.Algorithm, run int) trial.Trial {
	t := trial.Default()
	t.Dataset = "ADULT"
	t.Algorithm = alg
	t.Run = run
	return t
}

func newTestHarness(eng Engine, sink resultlog.Sink, opts ...Option) *Harness {
	opts = append([]Option{WithLogger(quietLogger()), WithClock(testutil.NewStepClock(time.Millisecond))}, opts...)
	return New(eng, newFakeSource(), sink, opts...)
}

func TestBaselineCache_Memoizes(t *testing.T) {
	eng := &fakeEngine{outcome: newFakeOutcome()}
	sink := &resultlog.MemorySink{}
	h := newTestHarness(eng, sink)

	a := adultTrial(anon.BestEffortBottomUp, 1)
	a.LimitByOptimalLoss = true
	b := adultTrial(anon.BestEffortGenetic, 2)
	b.LimitByOptimalLoss = true

	require.NoError(t, h.RunAll(context.Background(), []trial.Trial{a, b}))

	assert.Equal(t, 1, h.Cache().Calls())
	assert.Equal(t, 1, h.Cache().Len())
	assert.Equal(t, 1, eng.optimalCalls())
	require.Len(t, eng.calls, 3)

	// The baseline runs unbounded on its own context; both trials are
	// bounded by its loss.
	assert.False(t, eng.calls[0].bounded)
	for _, c := range eng.calls[1:] {
		assert.True(t, c.bounded)
		assert.Equal(t, 0.125, c.limit)
		assert.NotSame(t, eng.calls[0].run, c.run)
	}
	assert.Len(t, sink.Rows, 2)
}

func TestBaselineCache_KeyModes(t *testing.T) {
	a := trial.Default()
	a.Dataset, a.QIs = "Aa", 4
	b := trial.Default()
	b.Dataset, b.QIs = "Ab", 3
	require.Equal(t, trial.ObjectiveKey(a), trial.ObjectiveKey(b))

	tests := []struct {
		name     string
		additive bool
		calls    int
	}{
		{"composite keys separate colliding objectives", false, 2},
		{"additive keys share colliding objectives", true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &fakeEngine{outcome: newFakeOutcome()}
			cache := NewBaselineCache(eng, newFakeSource(), tt.additive, quietLogger())

			for _, tr := range []trial.Trial{a, b} {
				run := anon.NewRunContext()
				loss, err := cache.Resolve(context.Background(), tr, run)
				require.NoError(t, err)
				assert.Equal(t, 0.125, loss)
				limit, bounded := run.LossLimit()
				assert.True(t, bounded)
				assert.Equal(t, loss, limit)
			}
			assert.Equal(t, tt.calls, cache.Calls())
			assert.Equal(t, tt.calls, cache.Len())
		})
	}
}

func TestBaselineCache_Errors(t *testing.T) {
	unavailable := newFakeOutcome()
	unavailable.available = false
	cache := NewBaselineCache(&fakeEngine{outcome: unavailable}, newFakeSource(), false, quietLogger())

	_, err := cache.Resolve(context.Background(), adultTrial(anon.BestEffortBottomUp, 1), anon.NewRunContext())
	assert.True(t, errors.Is(err, anon.ErrNotAvailable))
	assert.Zero(t, cache.Len(), "failures are not cached")

	missing := trial.Default()
	missing.Dataset = "MISSING"
	_, err = cache.Resolve(context.Background(), missing, anon.NewRunContext())
	assert.True(t, errors.Is(err, dataset.ErrUnknownDataset))

	boom := errors.New("boom")
	cache = NewBaselineCache(&fakeEngine{err: boom}, newFakeSource(), false, quietLogger())
	_, err = cache.Resolve(context.Background(), adultTrial(anon.BestEffortBottomUp, 1), anon.NewRunContext())
	assert.True(t, errors.Is(err, boom))
}

func TestHarness_StateIsolation(t *testing.T) {
	eng := &fakeEngine{
		outcome:     newFakeOutcome(),
		checkpoints: []anon.Checkpoint{{Elapsed: 3, Transformation: []int{1, 0}, InternalUtility: 0.5}},
	}
	h := newTestHarness(eng, &resultlog.MemorySink{})

	trials := []trial.Trial{
		adultTrial(anon.BestEffortBottomUp, 1),
		adultTrial(anon.BestEffortTopDown, 1),
		adultTrial(anon.BestEffortGenetic, 1),
	}
	require.NoError(t, h.RunAll(context.Background(), trials))

	require.Len(t, eng.calls, 3)
	for i, c := range eng.calls {
		assert.False(t, c.bounded, "call %d", i)
		assert.Zero(t, c.trajectory, "call %d", i)
		// Drained after the trial even though the engine kept the pointer.
		assert.Empty(t, c.run.Trajectory(), "call %d", i)
	}

	// Drained on failure too.
	eng.err = errors.New("engine crashed")
	err := h.RunTrial(context.Background(), 0, trials[0])
	require.Error(t, err)
	assert.Equal(t, ErrCodeEngine, CodeOf(err))
	assert.Empty(t, eng.calls[3].run.Trajectory())
}

func TestHarness_WritesOneRowPerTrial(t *testing.T) {
	eng := &fakeEngine{outcome: newFakeOutcome()}
	sink := &resultlog.MemorySink{}
	h := newTestHarness(eng, sink)

	tr := adultTrial(anon.BestEffortGenetic, 3)
	require.NoError(t, h.RunAll(context.Background(), []trial.Trial{tr}))

	require.Len(t, sink.Rows, 1)
	row := sink.Rows[0]
	assert.Equal(t, "BEST_EFFORT_GENETIC", row.Algorithm)
	assert.Equal(t, int64(1), row.Time, "one clock step around the engine call")
	assert.Equal(t, 0.75, row.ExternalUtility)
	assert.Zero(t, row.InternalUtility)
	assert.Equal(t, 3, row.BatchNumber)
	assert.Equal(t, trial.MustFingerprint(tr), row.Fingerprint)
}

func TestHarness_UnavailableResultLogsZeroUtility(t *testing.T) {
	out := newFakeOutcome()
	out.available = false
	sink := &resultlog.MemorySink{}
	h := newTestHarness(&fakeEngine{outcome: out}, sink)

	require.NoError(t, h.RunAll(context.Background(), []trial.Trial{adultTrial(anon.Optimal, 1)}))
	require.Len(t, sink.Rows, 1)
	assert.Zero(t, sink.Rows[0].ExternalUtility)
}

func TestHarness_WarmupExcluded(t *testing.T) {
	def, err := experiment.Parse([]byte(`name: warmup
repetitions: 4
datasets: [ADULT, IHIS]
algorithms: [BEST_EFFORT_BOTTOM_UP, BEST_EFFORT_TOP_DOWN, BEST_EFFORT_GENETIC]
privacy_models: [K_ANONYMITY]
time_limits: [1000, 5000]
limit_by_optimal_loss: true
`))
	require.NoError(t, err)
	trials, err := experiment.Generate(def)
	require.NoError(t, err)

	const repetitions, combinations = 4, 2 * 3 * 2
	require.Len(t, trials, repetitions*combinations)

	sink := &resultlog.MemorySink{}
	eng := &fakeEngine{outcome: newFakeOutcome()}
	h := newTestHarness(eng, sink)
	require.NoError(t, h.RunAll(context.Background(), trials))

	assert.Len(t, sink.Rows, (repetitions-1)*combinations)
	for _, row := range sink.Rows {
		assert.NotZero(t, row.BatchNumber, "warm-up rows are not logged")
	}
	// Warm-ups still run: every trial reached the engine, plus one
	// baseline per objective.
	assert.Equal(t, 2, h.Cache().Len())
	assert.Len(t, eng.calls, len(trials)+h.Cache().Calls())
}

func TestHarness_TrajectoryRows(t *testing.T) {
	eng := &fakeEngine{
		outcome: newFakeOutcome(),
		checkpoints: []anon.Checkpoint{
			{Elapsed: 2, Transformation: []int{0, 0}, InternalUtility: 0.25},
			{Elapsed: 9, Transformation: []int{1, 1}, InternalUtility: 0.5},
			{Elapsed: 40, Transformation: []int{2, 1}, InternalUtility: 0.625},
		},
	}
	sink := &resultlog.MemorySink{}
	h := newTestHarness(eng, sink, WithTrajectoryTracking())

	require.NoError(t, h.RunAll(context.Background(), []trial.Trial{adultTrial(anon.BestEffortGenetic, 1)}))

	require.Len(t, sink.Rows, 3)
	wantTime := []int64{2, 9, 40}
	wantExternal := []float64{1, 0.5, 0.25}
	wantInternal := []float64{0.25, 0.5, 0.625}
	for i, row := range sink.Rows {
		assert.Equal(t, wantTime[i], row.Time)
		assert.InDelta(t, wantExternal[i], row.ExternalUtility, 1e-12)
		assert.InDelta(t, wantInternal[i], row.InternalUtility, 1e-12)
	}
}

func TestHarness_LocalTransformation(t *testing.T) {
	out := newFakeOutcome()
	sink := &resultlog.MemorySink{}
	h := newTestHarness(&fakeEngine{outcome: out}, sink)

	tr := adultTrial(anon.BestEffortBottomUp, 1)
	tr.LocalTransformation = true
	tr.LocalIterations = 4
	require.NoError(t, h.RunAll(context.Background(), []trial.Trial{tr}))

	assert.Equal(t, []float64{0.25}, out.refined)
	assert.Len(t, sink.Rows, 1)
}

func TestHarness_RollbackIsFatal(t *testing.T) {
	out := newFakeOutcome()
	out.refineErr = fmt.Errorf("step 2: %w", anon.ErrRollbackRequired)
	sink := &resultlog.MemorySink{}
	h := newTestHarness(&fakeEngine{outcome: out}, sink)

	tr := adultTrial(anon.BestEffortBottomUp, 1)
	tr.LocalTransformation = true
	tr.LocalIterations = 2
	next := adultTrial(anon.BestEffortTopDown, 1)

	err := h.RunAll(context.Background(), []trial.Trial{tr, next})
	require.Error(t, err)
	assert.True(t, IsRollbackError(err))
	assert.True(t, errors.Is(err, anon.ErrRollbackRequired))
	assert.Empty(t, sink.Rows, "no partial salvage")
}

func TestHarness_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		engine  *fakeEngine
		sink    resultlog.Sink
		opts    []Option
		mutate  func(*trial.Trial)
		code    TrialErrorCode
		invoked bool
	}{
		{
			name:   "unknown dataset",
			engine: &fakeEngine{outcome: newFakeOutcome()},
			mutate: func(t *trial.Trial) { t.Dataset = "MISSING" },
			code:   ErrCodeDataset,
		},
		{
			name:   "missing privacy model",
			engine: &fakeEngine{outcome: newFakeOutcome()},
			mutate: func(t *trial.Trial) { t.Privacy = nil },
			code:   ErrCodeInvalidTrial,
		},
		{
			name:   "trajectory with local transformation",
			engine: &fakeEngine{outcome: newFakeOutcome()},
			opts:   []Option{WithTrajectoryTracking()},
			mutate: func(t *trial.Trial) {
				t.LocalTransformation = true
				t.LocalIterations = 2
			},
			code: ErrCodeInvalidTrial,
		},
		{
			name:    "baseline failure",
			engine:  &fakeEngine{err: boom},
			mutate:  func(t *trial.Trial) { t.LimitByOptimalLoss = true },
			code:    ErrCodeBaseline,
			invoked: true,
		},
		{
			name:    "engine failure",
			engine:  &fakeEngine{err: boom},
			mutate:  func(*trial.Trial) {},
			code:    ErrCodeEngine,
			invoked: true,
		},
		{
			name:    "log failure",
			engine:  &fakeEngine{outcome: newFakeOutcome()},
			sink:    failingSink{},
			mutate:  func(*trial.Trial) {},
			code:    ErrCodeLog,
			invoked: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := tt.sink
			if sink == nil {
				sink = &resultlog.MemorySink{}
			}
			h := newTestHarness(tt.engine, sink, tt.opts...)
			tr := adultTrial(anon.BestEffortBottomUp, 1)
			tt.mutate(&tr)

			err := h.RunAll(context.Background(), []trial.Trial{tr})
			require.Error(t, err)
			assert.Equal(t, tt.code, CodeOf(err))

			var te *TrialError
			require.True(t, errors.As(err, &te))
			assert.Equal(t, 0, te.Index)
			assert.Equal(t, tr.Dataset, te.Trial.Dataset)
			assert.Equal(t, tt.invoked, len(tt.engine.calls) > 0)
		})
	}
}

type failingSink struct{}

func (failingSink) Write(context.Context, resultlog.Row) error { return errors.New("disk full") }
func (failingSink) Close() error                               { return nil }

func TestHarness_StopsOnCancellation(t *testing.T) {
	eng := &fakeEngine{outcome: newFakeOutcome()}
	h := newTestHarness(eng, &resultlog.MemorySink{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.RunAll(ctx, []trial.Trial{adultTrial(anon.Optimal, 1)})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, eng.calls)
}

func TestHarness_CancellationFinishesRunningTrial(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSyntheticDataset(t, dir)
	catalog, err := dataset.ParseCatalog("synthetic.cue", []byte(testutil.SyntheticCatalog))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// The sweep is cancelled as soon as the first search reads the clock.
	clock := testutil.NewStepClock(time.Millisecond)
	now := func() time.Time {
		cancel()
		return clock.Now()
	}

	sink := &resultlog.MemorySink{}
	eng := NewAnonEngine(anon.New(anon.WithLogger(quietLogger()), anon.WithClock(now)))
	h := New(eng, dataset.NewLoader(dir, catalog), sink, WithLogger(quietLogger()))

	first := trial.Default()
	first.Dataset = testutil.SyntheticName
	first.Algorithm = anon.BestEffortBottomUp
	first.LimitByOptimalLoss = true
	first.Run = 1
	second := first
	second.Run = 2

	err = h.RunAll(ctx, []trial.Trial{first, second})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, CodeOf(err), "cancellation is not a trial failure")

	require.Len(t, sink.Rows, 1, "the running trial completes and is logged")
	assert.Equal(t, 1, sink.Rows[0].BatchNumber)
	assert.Equal(t, 1, h.Cache().Len(), "the baseline search was not interrupted")
}

func TestHarness_EndToEndSynthetic(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSyntheticDataset(t, dir)
	catalog, err := dataset.ParseCatalog("synthetic.cue", []byte(testutil.SyntheticCatalog))
	require.NoError(t, err)

	sink := &resultlog.MemorySink{}
	eng := NewAnonEngine(anon.New(anon.WithLogger(quietLogger())))
	h := New(eng, dataset.NewLoader(dir, catalog), sink, WithLogger(quietLogger()))

	tr := trial.Default()
	tr.Dataset = testutil.SyntheticName
	tr.Privacy = trial.KAnonymity(5)
	tr.Suppression = 1
	tr.Algorithm = anon.Optimal
	require.NoError(t, h.RunAll(context.Background(), []trial.Trial{tr}))

	require.Len(t, sink.Rows, 1)
	row := sink.Rows[0]
	assert.GreaterOrEqual(t, row.Time, int64(0))
	assert.GreaterOrEqual(t, row.ExternalUtility, 0.0)
	assert.LessOrEqual(t, row.ExternalUtility, 1.0)
	assert.Equal(t, 5, row.K)
	assert.Equal(t, testutil.SyntheticName, row.Dataset)
}

func TestHarness_EndToEndTrajectoryLimitedByOptimum(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSyntheticDataset(t, dir)
	catalog, err := dataset.ParseCatalog("synthetic.cue", []byte(testutil.SyntheticCatalog))
	require.NoError(t, err)

	sink := &resultlog.MemorySink{}
	eng := NewAnonEngine(anon.New(anon.WithLogger(quietLogger())))
	h := New(eng, dataset.NewLoader(dir, catalog), sink, WithLogger(quietLogger()), WithTrajectoryTracking())

	tr := trial.Default()
	tr.Dataset = testutil.SyntheticName
	tr.Algorithm = anon.BestEffortBottomUp
	tr.LimitByOptimalLoss = true
	require.NoError(t, h.RunAll(context.Background(), []trial.Trial{tr}))

	assert.Equal(t, 1, h.Cache().Calls())
	require.NotEmpty(t, sink.Rows)
	for _, row := range sink.Rows {
		assert.GreaterOrEqual(t, row.ExternalUtility, 0.0)
		assert.LessOrEqual(t, row.ExternalUtility, 1.0)
	}
	last := sink.Rows[len(sink.Rows)-1]
	assert.Greater(t, last.ExternalUtility, 0.0, "the final checkpoint resolves inside the lattice")
}

func TestRampWeights(t *testing.T) {
	w := RampWeights([]string{"a", "b", "c", "d", "e"})
	got := []float64{w["a"], w["b"], w["c"], w["d"], w["e"]}
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, got)

	assert.Equal(t, map[string]float64{"only": 1}, RampWeights([]string{"only"}))
	assert.Empty(t, RampWeights(nil))
}

func TestTranslate(t *testing.T) {
	data := &dataset.Data{Name: "ADULT", Header: []string{"sex", "age", "race"}}

	tr := adultTrial(anon.BestEffortGenetic, 1)
	tr.Privacy = trial.PopulationUniqueness()
	tr.Suppression = 0.1
	tr.GSFactor = 0.25
	tr.Aggregate = anon.GeometricMean
	tr.Seed = 99

	cfg := Translate(tr, data)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, anon.BestEffortGenetic, cfg.Algorithm)
	assert.Equal(t, 0.1, cfg.SuppressionLimit)
	assert.Equal(t, anon.QualityModel{GSFactor: 0.25, Aggregate: anon.GeometricMean}, cfg.Quality)
	assert.Equal(t, []anon.Criterion{trial.PopulationUniqueness().Criterion()}, cfg.Criteria)
	assert.Zero(t, cfg.TimeLimit, "unlimited time")
	assert.Zero(t, cfg.StepLimit, "unlimited steps")
	assert.Nil(t, cfg.Weights)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, math.MaxInt32, cfg.Genetic.Iterations)

	tr.TimeLimit = 1500
	tr.StepLimit = 40
	tr.WeightedQIs = true
	cfg = Translate(tr, data)
	assert.Equal(t, 1500*time.Millisecond, cfg.TimeLimit)
	assert.Equal(t, 40, cfg.StepLimit)
	assert.Equal(t, map[string]float64{"sex": 0, "age": 0.5, "race": 1}, cfg.Weights)
}

func TestTranslate_WeightsFollowFullQIList(t *testing.T) {
	tr := adultTrial(anon.BestEffortBottomUp, 1)
	tr.WeightedQIs = true

	projected, err := newFakeSource().Load("ADULT", 3)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"sex": 0, "age": 0.25, "race": 0.5}, Translate(tr, projected).Weights)

	full, err := newFakeSource().Load("ADULT", 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"sex": 0, "age": 0.25, "race": 0.5, "marital-status": 0.75, "education": 1,
	}, Translate(tr, full).Weights)
}

// countingLattice is a full-domain lattice over max levels whose successor
// function counts its calls.
func countingLattice(maxLevels []int, expansions *int) *lattice.Lattice {
	return lattice.New(make([]int, len(maxLevels)), func(t []int) [][]int {
		*expansions++
		var out [][]int
		for i := range t {
			if t[i] < maxLevels[i] {
				next := append([]int(nil), t...)
				next[i]++
				out = append(out, next)
			}
		}
		return out
	})
}

type latticeScorer struct {
	lat *lattice.Lattice
}

func (s latticeScorer) Lattice() *lattice.Lattice          { return s.lat }
func (s latticeScorer) UtilityOf(n *lattice.Node) float64 { return 1 - float64(n.Level())/4 }

func TestResolveUtilities_ConvergesFirstOnTies(t *testing.T) {
	expansions := 0
	lat := countingLattice([]int{2, 2}, &expansions)
	traj := []anon.Checkpoint{{Transformation: []int{1, 1}}}

	require.NoError(t, ResolveUtilities(latticeScorer{lat}, traj))

	assert.Equal(t, 2, expansions)
	assert.InDelta(t, 0.5, traj[0].ExternalUtility, 1e-12)
	// [1,0] and [0,1] tie on the first step; the first successor wins.
	assert.True(t, lat.Node([]int{1, 0}).Expanded())
	assert.False(t, lat.Node([]int{0, 1}).Expanded())
}

func TestResolveUtilities_Bottom(t *testing.T) {
	expansions := 0
	lat := countingLattice([]int{2, 2}, &expansions)
	traj := []anon.Checkpoint{{Transformation: []int{0, 0}}}

	require.NoError(t, ResolveUtilities(latticeScorer{lat}, traj))
	assert.Zero(t, expansions)
	assert.InDelta(t, 1.0, traj[0].ExternalUtility, 1e-12)
}

func TestResolveUtilities_OvershootFallsBackToZero(t *testing.T) {
	expansions := 0
	lat := countingLattice([]int{2, 2}, &expansions)
	// Level 3 in the second attribute does not exist: the walk climbs to the
	// top and runs out of successors.
	traj := []anon.Checkpoint{{Transformation: []int{0, 3}, ExternalUtility: 0.9}}

	require.NoError(t, ResolveUtilities(latticeScorer{lat}, traj))
	assert.Zero(t, traj[0].ExternalUtility)
	assert.LessOrEqual(t, expansions, 9)
}

func TestResolveUtilities_WrongDimensionScoresZero(t *testing.T) {
	expansions := 0
	lat := countingLattice([]int{2, 2}, &expansions)
	traj := []anon.Checkpoint{
		{Transformation: []int{1, 1, 1}, ExternalUtility: 0.9},
		{Transformation: []int{1}, ExternalUtility: 0.9},
		{Transformation: []int{1, 1}},
	}

	require.NoError(t, ResolveUtilities(latticeScorer{lat}, traj))
	assert.Zero(t, traj[0].ExternalUtility)
	assert.Zero(t, traj[1].ExternalUtility)
	assert.InDelta(t, 0.5, traj[2].ExternalUtility, 1e-12)
}

func TestResolveUtilities_NoLattice(t *testing.T) {
	assert.NoError(t, ResolveUtilities(latticeScorer{}, nil))
	err := ResolveUtilities(latticeScorer{}, []anon.Checkpoint{{Transformation: []int{0}}})
	assert.True(t, errors.Is(err, ErrNoLattice))
}

func TestTrialError(t *testing.T) {
	cause := errors.New("no such file")
	tr := adultTrial(anon.Optimal, 2)
	err := fmt.Errorf("sweep: %w", newTrialError(ErrCodeDataset, 4, tr, "load dataset", cause))

	assert.Equal(t, ErrCodeDataset, CodeOf(err))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, IsRollbackError(err))
	assert.False(t, IsBaselineError(err))
	assert.Contains(t, err.Error(), "DATASET: load dataset (trial=5, config=OPTIMAL | ADULT")
	assert.Equal(t, TrialErrorCode(""), CodeOf(cause))
}

func TestSessionGenerators(t *testing.T) {
	id := UUIDv7Generator{}.Generate()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, UUIDv7Generator{}.Generate())

	gen := NewFixedGenerator("s-1", "s-2")
	assert.Equal(t, "s-1", gen.Generate())
	assert.Equal(t, "s-2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
