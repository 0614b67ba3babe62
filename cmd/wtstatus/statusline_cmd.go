package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wtstatus/wtstatus/internal/config"
	"github.com/wtstatus/wtstatus/internal/serialize"
	"github.com/wtstatus/wtstatus/internal/statusrow"
	"github.com/wtstatus/wtstatus/internal/termcap"
)

func newStatuslineCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "statusline",
		Short:   "Print a single-line status summary for the current worktree",
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Render a compact, single-line summary of the current worktree: branch,
status glyphs, working-tree diff, ahead/behind counts against the default
branch, and remote/CI status — suited for a shell prompt or editor status
bar.

The "claude-code" format reads a JSON payload from stdin (workspace path,
model name, optional context-window usage), prefixes the statusline with
a shortened project path, and appends the model name and a context-usage
gauge glyph.`,
		Example: `  wtstatus statusline
  wtstatus statusline --format json
  echo '{"workspace":{"current_dir":"/repo"}}' | wtstatus statusline --format claude-code`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" && format != "claude-code" {
				return newUsageError("--format must be \"text\", \"json\", or \"claude-code\", got %q", format)
			}

			ctx := cmd.Context()
			repoPath := config.WorkDirFromContext(ctx)
			cfgFromCtx := config.FromContext(ctx)

			return runStatusline(ctx, repoPath, cfgFromCtx, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", `Output format: "text", "json", or "claude-code"`)
	cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "claude-code"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runStatusline(ctx context.Context, repoPath string, cfg *config.Config, format string) error {
	opts := collectOptions{IncludeBranches: false, Full: false, FetchCI: true}
	result, err := collect(ctx, repoPath, cfg, opts)
	if err != nil {
		return fmt.Errorf("statusline: %w", err)
	}

	row := currentRow(result.Rows)
	if row == nil {
		return fmt.Errorf("statusline: no worktree matches the current directory")
	}

	width := statuslineWidth()

	switch format {
	case "json":
		out, err := json.MarshalIndent(serialize.RowsToJSON([]*statusrow.Row{row})[0], "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "claude-code":
		in, err := serialize.ReadClaudeCodeInput(os.Stdin)
		if err != nil {
			return fmt.Errorf("statusline: reading claude-code input: %w", err)
		}
		fmt.Println(serialize.BuildClaudeCode(row, in, width))
	default:
		fmt.Println(serialize.Build(row, width))
	}

	return printMissingNotice(result.Missing)
}

func currentRow(rows []*statusrow.Row) *statusrow.Row {
	for _, r := range rows {
		if r.IsCurrent {
			return r
		}
	}
	if len(rows) > 0 {
		return rows[0]
	}
	return nil
}

// statuslineWidth returns the terminal width to clamp to, or 0
// (unconstrained) when stdout isn't a TTY — a shell prompt's width comes
// from its own pane, not from wtstatus's stdout fd.
func statuslineWidth() int {
	caps := termcap.Detect(os.Stdout)
	if !caps.IsTTY {
		return 0
	}
	return caps.Width
}
