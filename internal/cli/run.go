package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/latticebench/internal/anon"
	"github.com/roach88/latticebench/internal/dataset"
	"github.com/roach88/latticebench/internal/experiment"
	"github.com/roach88/latticebench/internal/harness"
	"github.com/roach88/latticebench/internal/resultlog"
	"github.com/roach88/latticebench/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	DataDir      string
	Catalog      string
	Output       string
	Database     string
	AdditiveKeys bool
	Trajectory   bool

	// SessionGenerator allows overriding the session id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionGenerator harness.SessionGenerator

	// Engine allows overriding the anonymization engine (for testing).
	// If nil, the lattice anonymizer is used.
	Engine harness.Engine
}

// RunResult reports a finished sweep.
type RunResult struct {
	Experiment string `json:"experiment"`
	Trials     int    `json:"trials"`
	Rows       int    `json:"rows"`
	Baselines  int    `json:"baselines"`
	Output     string `json:"output"`
	Session    string `json:"session,omitempty"`
}

func (r RunResult) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Sweep %s complete: %d trial(s), %d row(s) logged, %d optimal loss(es) computed\n",
		r.Experiment, r.Trials, r.Rows, r.Baselines)
	fmt.Fprintf(w, "Results: %s\n", r.Output)
	if r.Session != "" {
		fmt.Fprintf(w, "Session: %s\n", r.Session)
	}
	return nil
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <experiment|definition.yaml>",
		Short: "Run a benchmark sweep",
		Long: `Run every trial of an experiment and append the results to its log.

The experiment is a built-in preset (see "latticebench list") or a YAML
definition file. Datasets are read from <data>/data and hierarchies from
<data>/hierarchies, as described by the dataset catalog.

Trials run one at a time. Ctrl-C stops the sweep after the running trial.

Example:
  latticebench run experiment1 --data ./benchmark
  latticebench run sweep.yaml --db results.db --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data", "data", "directory holding data/ and hierarchies/")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE dataset catalog (default: built-in)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "CSV result log (default: the experiment's output)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "also record results in this SQLite database")
	cmd.Flags().BoolVar(&opts.AdditiveKeys, "additive-keys", false, "key optimal losses by the additive hash")
	cmd.Flags().BoolVar(&opts.Trajectory, "trajectory", false, "log every improving solution (overrides the experiment)")

	return cmd
}

func runSweep(opts *RunOptions, name string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.Verbose, cmd.ErrOrStderr())

	def, err := experiment.Resolve(name)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to load experiment", err)
	}
	trials, err := experiment.Generate(def)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInvalid, "invalid experiment", err)
	}
	logger.Info("experiment loaded", "experiment", def.Name, "trials", len(trials))

	catalog, err := loadCatalog(opts.Catalog)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeParse, "failed to load dataset catalog", err)
	}
	loader := dataset.NewLoader(opts.DataDir, catalog)

	output := opts.Output
	if output == "" {
		output = def.Output
	}
	if output == "" {
		output = def.Name + ".csv"
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to create output directory", err)
	}
	csvSink, err := resultlog.OpenCSV(output)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to open result log", err)
	}
	defer func() {
		if closeErr := csvSink.Close(); closeErr != nil {
			logger.Error("error closing result log", "error", closeErr)
		}
	}()

	ctx, cancel := signalContext(cmd.Context(), logger)
	defer cancel()

	sinks := resultlog.MultiSink{csvSink}
	session := ""
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		gen := opts.SessionGenerator
		if gen == nil {
			gen = harness.UUIDv7Generator{}
		}
		dbSink, err := store.NewSink(ctx, st, gen.Generate(), def.Name)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, "failed to start session", err)
		}
		session = dbSink.Session()
		sinks = append(sinks, dbSink)
	}
	counter := &countingSink{Sink: sinks}

	eng := opts.Engine
	if eng == nil {
		eng = harness.NewAnonEngine(anon.New(anon.WithLogger(logger)))
	}
	hopts := []harness.Option{harness.WithLogger(logger)}
	if opts.Trajectory || def.TrackTrajectory {
		hopts = append(hopts, harness.WithTrajectoryTracking())
	}
	if opts.AdditiveKeys {
		hopts = append(hopts, harness.WithAdditiveKeys())
	}
	if session != "" {
		hopts = append(hopts, harness.WithSession(session))
	}
	h := harness.New(eng, loader, counter, hopts...)

	if err := h.RunAll(ctx, trials); err != nil {
		if errors.Is(err, context.Canceled) {
			return formatter.Fail(ExitFailure, ErrCodeCancelled, "sweep cancelled", err)
		}
		return formatter.Fail(ExitFailure, ErrCodeSweep, "sweep failed", err)
	}

	return formatter.SuccessWithSession(RunResult{
		Experiment: def.Name,
		Trials:     len(trials),
		Rows:       counter.rows,
		Baselines:  h.Cache().Len(),
		Output:     output,
		Session:    session,
	}, session)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping after the running trial", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func loadCatalog(path string) (*dataset.Catalog, error) {
	if path == "" {
		return dataset.DefaultCatalog()
	}
	return dataset.LoadCatalogFile(path)
}

// countingSink counts the rows passed to the wrapped sink.
type countingSink struct {
	resultlog.Sink
	rows int
}

func (s *countingSink) Write(ctx context.Context, row resultlog.Row) error {
	if err := s.Sink.Write(ctx, row); err != nil {
		return err
	}
	s.rows++
	return nil
}
