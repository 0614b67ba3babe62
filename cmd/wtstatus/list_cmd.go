package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wtstatus/wtstatus/internal/config"
	"github.com/wtstatus/wtstatus/internal/serialize"
)

func newListCmd() *cobra.Command {
	var (
		branches   bool
		full       bool
		fetchCI    bool
		format     string
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:     "list [branch-filter]",
		Short:   "Render the worktree status table",
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `List every linked worktree (and, with --branches, every local branch that
has no worktree) as a dense status table: branch, sync status against the
default branch and its remote, ahead/behind counts, working-tree state,
and deletion safety.

With --branches, an optional branch-filter argument fuzzy-narrows which
branch-only rows are added, for repositories where many local branches
share a typed prefix.`,
		Example: `  wtstatus list                    # status table for the current repo
  wtstatus list --branches          # include branches with no worktree
  wtstatus list --branches relea    # ...narrowed to branches matching "relea"
  wtstatus list --full              # run the heavier diff/conflict probes
  wtstatus list --fetch-ci          # query gh/glab for CI and PR status
  wtstatus list --format json       # machine-readable row array`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return newUsageError("--format must be \"text\" or \"json\", got %q", format)
			}

			var filter string
			if len(args) > 0 {
				filter = args[0]
			}

			ctx := cmd.Context()
			repoPath := config.WorkDirFromContext(ctx)
			cfgFromCtx := config.FromContext(ctx)
			opts := collectOptions{IncludeBranches: branches, BranchFilter: filter, Full: full, FetchCI: fetchCI}

			if format == "json" {
				return runListJSON(ctx, repoPath, cfgFromCtx, opts)
			}
			return renderListTable(ctx, repoPath, cfgFromCtx, opts, noProgress)
		},
	}

	cmd.Flags().BoolVar(&branches, "branches", false, "Include local branches that have no worktree")
	cmd.Flags().BoolVar(&full, "full", false, "Run the heavier diff and conflict probes")
	cmd.Flags().BoolVar(&fetchCI, "fetch-ci", false, "Query the configured forge for CI/PR status")
	cmd.Flags().StringVar(&format, "format", "text", `Output format: "text" or "json"`)
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progressive in-place table redraw")

	cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runListJSON(ctx context.Context, repoPath string, cfg *config.Config, opts collectOptions) error {
	result, err := collect(ctx, repoPath, cfg, opts)
	if err != nil {
		return fmt.Errorf("list worktrees: %w", err)
	}
	out, err := serialize.Marshal(result.Rows)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return printMissingNotice(result.Missing)
}
