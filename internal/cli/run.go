package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/shutter/internal/scenario"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ArtifactDir string
	Database    string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Execute a scenario and report its verdict",
		Long: `Execute a declarative UI test scenario.

The scenario runs against the scripted driver. Each action captures a
screenshot artifact; every action and wait is journaled. The command
exits 0 when all steps and assertions pass, 1 when the scenario fails,
and 2 on command errors.

Examples:
  shutter run scenarios/browse-basic.yaml
  shutter run scenarios/browse-basic.yaml --artifacts ./artifacts --db ./journal.db
  shutter run scenarios/browse-basic.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ArtifactDir, "artifacts", "", "artifact directory (default: throwaway temp dir)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal database (default: in-memory)")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	s, err := scenario.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	result, err := scenario.RunWith(s, scenario.Options{
		ArtifactDir: opts.ArtifactDir,
		JournalPath: opts.Database,
		Logger:      logger,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	if opts.Format == "json" {
		if err := outputRunJSON(cmd, s.Name, result); err != nil {
			return err
		}
	} else {
		outputRunText(cmd, s.Name, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", s.Name))
	}
	return nil
}

// outputRunJSON outputs the run result as JSON.
func outputRunJSON(cmd *cobra.Command, name string, result *scenario.Result) error {
	response := CLIResponse{
		Status: "ok",
		Data: map[string]interface{}{
			"scenario": name,
			"result":   result,
		},
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputRunText outputs the run result as text.
func outputRunText(cmd *cobra.Command, name string, result *scenario.Result) {
	w := cmd.OutOrStdout()

	verdict := "PASS"
	if !result.Pass {
		verdict = "FAIL"
	}
	fmt.Fprintf(w, "Scenario: %s\n", name)
	fmt.Fprintf(w, "Run:      %s\n", result.RunID)
	fmt.Fprintf(w, "Verdict:  %s\n", verdict)

	if len(result.Artifacts) > 0 {
		fmt.Fprintln(w, "\nArtifacts:")
		for _, a := range result.Artifacts {
			fmt.Fprintf(w, "  %s\n", a)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "\nFailures:")
		for _, msg := range result.Errors {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}
}
