package main

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/wtstatus/wtstatus/internal/config"
	"github.com/wtstatus/wtstatus/internal/git"
	"github.com/wtstatus/wtstatus/internal/ui/static"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Diagnose environment and configuration issues",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Long: `Check that wtstatus's environment is set up correctly: git is on PATH,
the current directory is inside a git repository, the optional gh/glab CLIs
used for --fetch-ci are available, and the configuration file (if any)
parses.

This is a read-only report; wtstatus never repairs a repository or its
configuration on your behalf.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var rows [][]string
			var issues int

			check := func(label string, ok bool, okDetail, failDetail string) {
				status := "ok"
				detail := okDetail
				if !ok {
					status = "FAIL"
					detail = failDetail
					issues++
				}
				rows = append(rows, []string{label, status, detail})
			}
			warn := func(label, detail string) {
				rows = append(rows, []string{label, "warn", detail})
			}

			if err := git.CheckGit(); err != nil {
				check("git", false, "", err.Error())
			} else {
				check("git", true, "available on PATH", "")
			}

			repoPath := config.WorkDirFromContext(ctx)
			inside := git.IsInsideRepoPath(ctx, repoPath)
			check("repository", inside, "current directory is a git repository", "current directory is not inside a git repository")

			if _, err := exec.LookPath("gh"); err == nil {
				rows = append(rows, []string{"gh (GitHub CLI)", "ok", "available"})
			} else {
				warn("gh (GitHub CLI)", "not found, needed only for --fetch-ci on GitHub remotes")
			}

			if _, err := exec.LookPath("glab"); err == nil {
				rows = append(rows, []string{"glab (GitLab CLI)", "ok", "available"})
			} else {
				warn("glab (GitLab CLI)", "not found, needed only for --fetch-ci on GitLab remotes")
			}

			if _, err := config.Load(); err != nil {
				check("configuration", false, "", err.Error())
			} else {
				check("configuration", true, "loaded", "")
			}

			fmt.Print(static.RenderTable([]string{"CHECK", "STATUS", "DETAIL"}, rows))
			fmt.Println()

			if issues > 0 {
				fmt.Printf("Found %d issue(s)\n", issues)
				return fmt.Errorf("%d issues found", issues)
			}
			fmt.Println("All checks passed")
			return nil
		},
	}

	return cmd
}
