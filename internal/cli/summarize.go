package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/latticebench/internal/report"
	"github.com/roach88/latticebench/internal/resultlog"
	"github.com/roach88/latticebench/internal/store"
)

// SourceOptions select the results a report reads: a CSV log or a session
// of a result database.
type SourceOptions struct {
	Database string
	Session  string
}

func (o *SourceOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "read results from this SQLite database instead of a CSV log")
	cmd.Flags().StringVar(&o.Session, "session", "", "session to read from the database (default: latest)")
}

// load returns the rows of the selected source and a name for it.
func (o *SourceOptions) load(ctx context.Context, args []string) ([]resultlog.Row, string, error) {
	if o.Database == "" {
		if len(args) != 1 {
			return nil, "", fmt.Errorf("expected a result log path or --db")
		}
		rows, err := resultlog.ReadCSVFile(args[0])
		return rows, args[0], err
	}
	if len(args) != 0 {
		return nil, "", fmt.Errorf("a result log path cannot be combined with --db")
	}

	st, err := store.Open(o.Database)
	if err != nil {
		return nil, "", err
	}
	defer st.Close()

	session := o.Session
	if session == "" {
		if session, err = st.LatestSession(ctx); err != nil {
			return nil, "", err
		}
	}
	rows, err := st.ReadRows(ctx, session)
	return rows, session, err
}

// SummaryResult is the output of the summarize command.
type SummaryResult struct {
	Source    string           `json:"source"`
	Rows      int              `json:"rows"`
	Summaries []report.Summary `json:"summaries"`
}

func (r SummaryResult) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "%s: %d row(s), %d group(s)\n", r.Source, r.Rows, len(r.Summaries))
	fmt.Fprintf(w, "%-22s %-12s %-22s %9s %4s %10s %9s %8s %8s\n",
		"PRIVACY", "DATASET", "ALGORITHM", "LIMIT(s)", "N", "TIME(s)", "±", "UTILITY", "±")
	for _, s := range r.Summaries {
		fmt.Fprintf(w, "%-22s %-12s %-22s %9.1f %4d %10.3f %9.3f %8.4f %8.4f",
			s.PrivacyModel, s.Dataset, s.Algorithm, float64(s.TimeLimit)/1000, s.Runs,
			s.TimeMean, s.TimeStd, s.UtilityMean, s.UtilityStd)
		if s.TuningParameter != "" && s.TuningParameter != "none" {
			fmt.Fprintf(w, "  %s=%s", s.TuningParameter, s.TuningValue)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// SummarizeOptions holds flags for the summarize command.
type SummarizeOptions struct {
	*RootOptions
	SourceOptions
}

// NewSummarizeCommand creates the summarize command.
func NewSummarizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SummarizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "summarize [results.csv]",
		Short: "Average time and utility per configuration",
		Long: `Group result rows by privacy model, dataset, algorithm, time limit and
tuning value, and print the mean and population standard deviation of the
run time (seconds) and the external utility of each group.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(opts, args, cmd)
		},
	}
	opts.addFlags(cmd)
	return cmd
}

func runSummarize(opts *SummarizeOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	rows, source, err := opts.load(commandContext(cmd), args)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to read results", err)
	}
	return formatter.Success(SummaryResult{
		Source:    source,
		Rows:      len(rows),
		Summaries: report.Summarize(rows),
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
