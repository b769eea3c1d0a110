package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/shutter/internal/scenario"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidationResult describes one file's validation outcome.
type ValidationResult struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Validate scenario files without running them",
		Long: `Validate one or more scenario YAML files.

Each file is parsed with strict field checking, so typos in keys are
reported as errors. Exits 1 if any file is invalid.

Examples:
  shutter validate scenarios/browse-basic.yaml
  shutter validate scenarios/*.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	results := make([]ValidationResult, 0, len(paths))
	invalid := 0

	for _, path := range paths {
		res := ValidationResult{Path: path, Valid: true}
		s, err := scenario.LoadScenario(path)
		if err != nil {
			res.Valid = false
			res.Error = err.Error()
			invalid++
		} else {
			res.Name = s.Name
		}
		results = append(results, res)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}

	if opts.Format == "json" {
		if err := formatter.Success(results); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, res := range results {
			if res.Valid {
				fmt.Fprintf(w, "OK   %s (%s)\n", res.Path, res.Name)
			} else {
				fmt.Fprintf(w, "FAIL %s: %s\n", res.Path, res.Error)
			}
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario files invalid", invalid, len(paths)))
	}
	return nil
}
