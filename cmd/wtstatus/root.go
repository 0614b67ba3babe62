package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/colorprofile"
	"github.com/spf13/cobra"

	"github.com/wtstatus/wtstatus/internal/config"
	"github.com/wtstatus/wtstatus/internal/git"
	"github.com/wtstatus/wtstatus/internal/log"
	"github.com/wtstatus/wtstatus/internal/output"
	"github.com/wtstatus/wtstatus/internal/ui/styles"
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Shared state injected into commands
	cfg     *config.Config
	workDir string
)

// Command group IDs for organizing help output.
const (
	GroupCore   = "core"
	GroupConfig = "config"
)

var rootCmd = &cobra.Command{
	Use:   "wtstatus",
	Short: "Status table, JSON, and statusline for a repository's worktrees",
	Long: `wtstatus inspects a git repository containing multiple linked worktrees
and renders a dense, column-aligned status table: which branches exist,
which are in sync with the default branch and their remote, which carry
unique unmerged work, which have integration hazards, and which are safe
to delete.

The same engine exports the data as JSON for scripting and as a
single-line statusline for shell prompts and editor status bars.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "help" {
			return nil
		}
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}
		cmd.SetContext(log.WithLogger(cmd.Context(), log.New(os.Stderr, verbose, quiet)))
		return git.CheckGit()
	},
}

// Execute loads configuration, wires up the ambient context, and runs the
// command tree (grounded on the teacher's cmd/wt Execute()).
func Execute() {
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	cfg = &loadedCfg

	workDir, err = os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wtstatus: failed to get working directory: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := log.New(os.Stderr, verbose, quiet)
	ctx = log.WithLogger(ctx, logger)
	ctx = output.WithPrinter(ctx, os.Stdout)
	ctx = config.WithConfig(ctx, cfg)
	ctx = config.WithWorkDir(ctx, workDir)

	profile := colorprofile.Detect(os.Stdout, os.Environ())
	styles.Init(cfg.Theme)
	_ = profile // lipgloss styles pick up NO_COLOR/CLICOLOR_FORCE through the detected writer at render time

	rootCmd.SetContext(ctx)

	if ctx.Err() != nil {
		os.Exit(130)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(ctx, err))
	}

	if ctx.Err() != nil {
		os.Exit(130)
	}
}

// exitCodeFor maps an error to the documented exit code (spec.md §6): 130
// on cancellation, 2 on a usage error (a flag parse error or an invalid
// flag value), 1 otherwise.
func exitCodeFor(ctx context.Context, err error) int {
	if ctx.Err() != nil {
		return 130
	}
	if _, ok := err.(usageError); ok {
		return 2
	}
	return 1
}

// usageError marks an error as a CLI usage mistake (unknown flag/format
// value) rather than a runtime failure, for exitCodeFor's mapping.
type usageError struct{ error }

func newUsageError(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress diagnostic output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newStatuslineCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newCompletionCmd())
}
