package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/latticebench/internal/report"
)

// PlotOptions holds flags for the plot command.
type PlotOptions struct {
	*RootOptions
	SourceOptions
	OutDir    string
	Title     string
	Extension string
	Traces    bool
	XMax      float64
}

// PlotResult lists the written charts.
type PlotResult struct {
	Files []string `json:"files"`
}

func (r PlotResult) WriteText(w io.Writer) error {
	for _, f := range r.Files {
		fmt.Fprintf(w, "wrote %s\n", f)
	}
	return nil
}

// NewPlotCommand creates the plot command.
func NewPlotCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlotOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plot [results.csv]",
		Short: "Chart benchmark results",
		Long: `Render charts of a result log.

By default, one bar chart of the mean run time per algorithm and dataset is
written. With --traces, the log is read as search trajectories and one chart
per dataset shows the averaged utility over time, in percent, up to --x-max
seconds.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(opts, args, cmd)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.OutDir, "out", "figures", "directory charts are written to")
	cmd.Flags().StringVar(&opts.Title, "title", "", "chart title")
	cmd.Flags().StringVar(&opts.Extension, "ext", "svg", "chart format (svg|png|pdf)")
	cmd.Flags().BoolVar(&opts.Traces, "traces", false, "plot averaged utility traces")
	cmd.Flags().Float64Var(&opts.XMax, "x-max", 10, "time range of trace charts in seconds")
	return cmd
}

func runPlot(opts *PlotOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	rows, _, err := opts.load(commandContext(cmd), args)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to read results", err)
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to create output directory", err)
	}

	result := PlotResult{Files: []string{}}
	if !opts.Traces {
		path := filepath.Join(opts.OutDir, "time."+opts.Extension)
		if err := report.TimeChart(report.Summarize(rows), opts.Title, path); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeReport, "failed to plot", err)
		}
		result.Files = append(result.Files, path)
		return formatter.Success(result)
	}

	traces := report.Traces(rows)
	seen := map[string]bool{}
	var datasets []string
	for _, tr := range traces {
		if !seen[tr.Dataset] {
			seen[tr.Dataset] = true
			datasets = append(datasets, tr.Dataset)
		}
	}
	sort.Strings(datasets)
	for _, ds := range datasets {
		path := filepath.Join(opts.OutDir, "trace_"+ds+"."+opts.Extension)
		formatter.VerboseLog("Plotting %s", path)
		if err := report.TraceChart(traces, ds, opts.XMax, path); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeReport, "failed to plot", err)
		}
		result.Files = append(result.Files, path)
	}
	if len(result.Files) == 0 {
		return formatter.Fail(ExitFailure, ErrCodeReport, "no traces to plot", nil)
	}
	return formatter.Success(result)
}
