package cli

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/roach88/shutter/internal/artifact"
)

// ArtifactsOptions holds flags for the artifacts subcommands.
type ArtifactsOptions struct {
	*RootOptions
	Match string
	Keep  int
}

// NewArtifactsCommand creates the artifacts command group.
func NewArtifactsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect and rotate a screenshot artifact directory",
	}

	cmd.AddCommand(newArtifactsListCommand(rootOpts))
	cmd.AddCommand(newArtifactsRotateCommand(rootOpts))

	return cmd
}

func newArtifactsListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArtifactsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <dir>",
		Short: "List the artifacts in a directory",
		Long: `List the screenshot artifacts in a directory, in the store's
listing order. The optional --match pattern filters by file name.

Examples:
  shutter artifacts list ./artifacts
  shutter artifacts list ./artifacts --match 'TestLoadPage_*.png'
  shutter artifacts list ./artifacts --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactsList(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Match, "match", "", "glob pattern to filter artifact names")

	return cmd
}

func newArtifactsRotateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArtifactsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rotate <dir>",
		Short: "Delete the oldest artifacts beyond the retention bound",
		Long: `Apply the retention policy to an artifact directory: keep the
latest --keep artifacts and delete the rest.

Examples:
  shutter artifacts rotate ./artifacts
  shutter artifacts rotate ./artifacts --keep 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactsRotate(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Keep, "keep", artifact.DefaultKeepLatest, "number of artifacts to keep")

	return cmd
}

func runArtifactsList(opts *ArtifactsOptions, dir string, cmd *cobra.Command) error {
	if opts.Match != "" {
		if !doublestar.ValidatePattern(opts.Match) {
			return NewExitError(ExitCommandError, fmt.Sprintf("invalid match pattern %q", opts.Match))
		}
	}

	store := artifact.NewStore(dir)
	names, err := store.List()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list artifacts", err)
	}

	if opts.Match != "" {
		filtered := names[:0]
		for _, name := range names {
			ok, err := doublestar.Match(opts.Match, name)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to apply match pattern", err)
			}
			if ok {
				filtered = append(filtered, name)
			}
		}
		names = filtered
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		return formatter.Success(map[string]interface{}{
			"dir":       dir,
			"artifacts": names,
			"count":     len(names),
		})
	}

	w := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(w, "(no artifacts)")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}

func runArtifactsRotate(opts *ArtifactsOptions, dir string, cmd *cobra.Command) error {
	if opts.Keep < 1 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--keep must be at least 1, got %d", opts.Keep))
	}

	store := artifact.NewStore(dir)
	removed, err := store.Rotate(artifact.RetentionPolicy{KeepLatest: opts.Keep})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to rotate artifacts", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
		return formatter.Success(map[string]interface{}{
			"dir":     dir,
			"keep":    opts.Keep,
			"removed": removed,
		})
	}

	w := cmd.OutOrStdout()
	if len(removed) == 0 {
		fmt.Fprintln(w, "Nothing to rotate.")
		return nil
	}
	fmt.Fprintf(w, "Removed %d artifacts:\n", len(removed))
	for _, name := range removed {
		fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}
