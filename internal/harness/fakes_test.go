package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/latticebench/internal/anon"
	"github.com/roach88/latticebench/internal/dataset"
	"github.com/roach88/latticebench/internal/lattice"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource serves datasets with the given quasi-identifiers and no rows.
type fakeSource struct {
	qis   map[string][]string
	loads int
}

func newFakeSource() *fakeSource {
	return &fakeSource{qis: map[string][]string{
		"ADULT": {"sex", "age", "race", "marital-status", "education"},
		"IHIS":  {"YEAR", "QUARTER", "REGION"},
		"Aa":    {"a", "b", "c", "d", "e"},
		"Ab":    {"a", "b", "c", "d", "e"},
	}}
}

func (s *fakeSource) Load(name string, qids int) (*dataset.Data, error) {
	s.loads++
	qis, ok := s.qis[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dataset.ErrUnknownDataset, name)
	}
	all := qis
	if qids > 0 && qids < len(qis) {
		qis = qis[:qids]
	}
	return &dataset.Data{Name: name, Header: qis, QIs: all}, nil
}

// engineCall records what the engine saw when it was invoked.
type engineCall struct {
	cfg        anon.Config
	run        *anon.RunContext
	bounded    bool
	limit      float64
	trajectory int
}

// fakeEngine returns a fixed outcome and optionally records checkpoints.
type fakeEngine struct {
	calls       []engineCall
	outcome     *fakeOutcome
	checkpoints []anon.Checkpoint
	err         error
}

func (e *fakeEngine) Anonymize(_ context.Context, _ *dataset.Data, cfg anon.Config, run *anon.RunContext) (Outcome, error) {
	limit, bounded := run.LossLimit()
	e.calls = append(e.calls, engineCall{
		cfg:        cfg,
		run:        run,
		bounded:    bounded,
		limit:      limit,
		trajectory: len(run.Trajectory()),
	})
	for _, cp := range e.checkpoints {
		run.Record(cp)
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.outcome, nil
}

// optimalCalls counts invocations with the exhaustive algorithm.
func (e *fakeEngine) optimalCalls() int {
	n := 0
	for _, c := range e.calls {
		if c.cfg.Algorithm == anon.Optimal {
			n++
		}
	}
	return n
}

// fakeOutcome scores nodes by their level over a full-domain lattice.
type fakeOutcome struct {
	available bool
	utility   float64
	loss      float64
	lat       *lattice.Lattice
	refineErr error
	refined   []float64
}

func newFakeOutcome() *fakeOutcome {
	return &fakeOutcome{
		available: true,
		utility:   0.75,
		loss:      0.125,
		lat:       lattice.FullDomain([]int{2, 2}),
	}
}

func (o *fakeOutcome) Available() bool                   { return o.available }
func (o *fakeOutcome) Utility() float64                  { return o.utility }
func (o *fakeOutcome) OptimumScore() float64             { return o.loss }
func (o *fakeOutcome) Lattice() *lattice.Lattice         { return o.lat }
func (o *fakeOutcome) UtilityOf(n *lattice.Node) float64 { return 1 - float64(n.Level())/4 }

func (o *fakeOutcome) Refine(step float64) error {
	o.refined = append(o.refined, step)
	return o.refineErr
}
