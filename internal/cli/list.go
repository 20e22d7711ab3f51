package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/latticebench/internal/experiment"
	"github.com/roach88/latticebench/internal/trial"
)

// ListedTrial is one trial of a listed experiment.
type ListedTrial struct {
	Index       int    `json:"index"`
	Label       string `json:"label"`
	Privacy     string `json:"privacy_model"`
	Logged      bool   `json:"logged"`
	Fingerprint string `json:"fingerprint"`
}

// ListResult lists presets, or the trials of one experiment.
type ListResult struct {
	Presets    []string      `json:"presets,omitempty"`
	Experiment string        `json:"experiment,omitempty"`
	Trials     []ListedTrial `json:"trials,omitempty"`
}

func (r ListResult) WriteText(w io.Writer) error {
	if r.Experiment == "" {
		fmt.Fprintln(w, "Built-in experiments:")
		for _, p := range r.Presets {
			fmt.Fprintf(w, "  %s\n", p)
		}
		return nil
	}
	fmt.Fprintf(w, "%s: %d trial(s)\n", r.Experiment, len(r.Trials))
	for _, t := range r.Trials {
		marker := " "
		if !t.Logged {
			marker = "w"
		}
		fmt.Fprintf(w, "%5d %s %s | %s\n", t.Index, marker, t.Label, t.Privacy)
	}
	return nil
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [experiment|definition.yaml]",
		Short: "List built-in experiments or the trials of one",
		Long: `Without arguments, list the built-in experiments. With an experiment,
print its trials in execution order. Warm-up trials, which are not logged,
are marked with "w".`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runList(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	if len(args) == 0 {
		return formatter.Success(ListResult{Presets: experiment.Presets()})
	}

	def, err := experiment.Resolve(args[0])
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, "failed to load experiment", err)
	}
	trials, err := experiment.Generate(def)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeInvalid, "invalid experiment", err)
	}

	result := ListResult{Experiment: def.Name, Trials: make([]ListedTrial, 0, len(trials))}
	for i, t := range trials {
		fp, err := trial.Fingerprint(t)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeInvalid, "failed to fingerprint trial", err)
		}
		result.Trials = append(result.Trials, ListedTrial{
			Index:       i + 1,
			Label:       t.String(),
			Privacy:     t.PrivacyTag(),
			Logged:      t.Log,
			Fingerprint: fp,
		})
	}
	return formatter.Success(result)
}
