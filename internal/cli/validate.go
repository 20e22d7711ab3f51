package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/latticebench/internal/dataset"
	"github.com/roach88/latticebench/internal/experiment"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Catalog string
}

// FileValidation is the outcome for one file.
type FileValidation struct {
	Path   string   `json:"path"`
	Kind   string   `json:"kind"` // "experiment" | "catalog"
	Trials int      `json:"trials,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

func (r ValidationResult) WriteText(w io.Writer) error {
	for _, f := range r.Files {
		if len(f.Errors) == 0 {
			if f.Kind == "experiment" {
				fmt.Fprintf(w, "ok   %s (%d trials)\n", f.Path, f.Trials)
			} else {
				fmt.Fprintf(w, "ok   %s\n", f.Path)
			}
			continue
		}
		fmt.Fprintf(w, "FAIL %s\n", f.Path)
		for _, e := range f.Errors {
			fmt.Fprintf(w, "     %s\n", e)
		}
	}
	return nil
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate experiment definitions and dataset catalogs",
		Long: `Validate YAML experiment definitions and CUE dataset catalogs without
running anything.

Experiments are parsed strictly, expanded into trials, and their datasets
are checked against the catalog. Catalogs are checked against the catalog
schema.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE dataset catalog experiments are checked against (default: built-in)")
	return cmd
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	catalog, err := loadCatalog(opts.Catalog)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeParse, "failed to load dataset catalog", err)
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	failed := 0
	for _, p := range paths {
		formatter.VerboseLog("Validating %s", p)
		fv := validateFile(p, catalog)
		if len(fv.Errors) > 0 {
			result.Valid = false
			failed++
		}
		result.Files = append(result.Files, fv)
	}

	if err := formatter.Success(result); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d file(s)", failed))
	}
	return nil
}

func validateFile(path string, catalog *dataset.Catalog) FileValidation {
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		fv := FileValidation{Path: path, Kind: "catalog"}
		if _, err := dataset.LoadCatalogFile(path); err != nil {
			fv.Errors = append(fv.Errors, err.Error())
		}
		return fv
	}

	fv := FileValidation{Path: path, Kind: "experiment"}
	def, err := experiment.Load(path)
	if err != nil {
		fv.Errors = append(fv.Errors, err.Error())
		return fv
	}
	trials, err := experiment.Generate(def)
	if err != nil {
		fv.Errors = append(fv.Errors, err.Error())
		return fv
	}
	fv.Trials = len(trials)
	for _, name := range def.Datasets {
		if _, err := catalog.Lookup(name); err != nil {
			fv.Errors = append(fv.Errors, err.Error())
		}
	}
	return fv
}
