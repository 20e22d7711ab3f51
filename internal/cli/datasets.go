package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// DatasetsOptions holds flags for the datasets command.
type DatasetsOptions struct {
	*RootOptions
	Catalog string
}

// DatasetInfo describes one catalog entry.
type DatasetInfo struct {
	Name  string   `json:"name"`
	Label string   `json:"label"`
	File  string   `json:"file"`
	QIs   []string `json:"qis"`
}

// DatasetsResult lists the catalog.
type DatasetsResult struct {
	Datasets []DatasetInfo `json:"datasets"`
}

func (r DatasetsResult) WriteText(w io.Writer) error {
	for _, d := range r.Datasets {
		fmt.Fprintf(w, "%-12s %-24s %2d QIs  %s\n", d.Name, d.Label, len(d.QIs), d.File)
	}
	return nil
}

// NewDatasetsCommand creates the datasets command.
func NewDatasetsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DatasetsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "datasets",
		Short:         "List the benchmark datasets of the catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDatasets(opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE dataset catalog (default: built-in)")
	return cmd
}

func runDatasets(opts *DatasetsOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	catalog, err := loadCatalog(opts.Catalog)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeParse, "failed to load dataset catalog", err)
	}

	result := DatasetsResult{Datasets: []DatasetInfo{}}
	for _, name := range catalog.Names() {
		e, err := catalog.Lookup(name)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeGeneric, "catalog lookup failed", err)
		}
		result.Datasets = append(result.Datasets, DatasetInfo{
			Name:  name,
			Label: e.Label,
			File:  e.File,
			QIs:   e.QIs,
		})
	}
	return formatter.Success(result)
}
