package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/wtstatus/wtstatus/internal/cmd"
)

// staleAfter is how long a PR/MR can go without an update before its CI
// status is flagged stale (its checks may no longer reflect the branch).
const staleAfter = 14 * 24 * time.Hour

// GitHub implements Forge for GitHub repositories using the gh CLI.
type GitHub struct{}

// Name returns "github"
func (g *GitHub) Name() string {
	return "github"
}

// Check verifies that gh CLI is available and authenticated
func (g *GitHub) Check() error {
	_, err := exec.LookPath("gh")
	if err != nil {
		return fmt.Errorf("gh not found: please install GitHub CLI (https://cli.github.com)")
	}

	c := exec.Command("gh", "auth", "status")
	if err := cmd.Run(c); err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "not logged") || strings.Contains(errMsg, "no accounts") {
			return fmt.Errorf("gh not authenticated: please run 'gh auth login'")
		}
		return fmt.Errorf("gh auth check failed: %s", errMsg)
	}

	return nil
}

// CIStatusForBranch queries PR + check status for branch using gh CLI.
// With no PR for branch in any state, State is CINone and Source is
// SourceBranch.
func (g *GitHub) CIStatusForBranch(ctx context.Context, repoURL, branch string) (*CIStatus, error) {
	output, err := cmd.OutputContext(ctx, "", "gh", "pr", "list",
		"-R", repoURL,
		"--head", branch,
		"--state", "all",
		"--json", "number,url,mergeStateStatus,statusCheckRollup,updatedAt",
		"--limit", "1")
	if err != nil {
		return nil, fmt.Errorf("gh command failed: %v", err)
	}

	var prs []struct {
		Number            int    `json:"number"`
		URL               string `json:"url"`
		MergeStateStatus  string `json:"mergeStateStatus"`
		UpdatedAt         string `json:"updatedAt"`
		StatusCheckRollup []struct {
			Conclusion string `json:"conclusion"`
			State      string `json:"state"`
		} `json:"statusCheckRollup"`
	}
	if err := json.Unmarshal(output, &prs); err != nil {
		return nil, fmt.Errorf("failed to parse gh output: %w", err)
	}

	if len(prs) == 0 {
		return &CIStatus{State: CINone, Source: SourceBranch}, nil
	}

	pr := prs[0]
	stale := isStale(pr.UpdatedAt)
	if pr.MergeStateStatus == "DIRTY" {
		return &CIStatus{State: CIConflicts, URL: pr.URL, Stale: stale, Source: SourcePullRequest}, nil
	}

	return &CIStatus{
		State:  aggregateGitHubChecks(pr.StatusCheckRollup),
		URL:    pr.URL,
		Stale:  stale,
		Source: SourcePullRequest,
	}, nil
}

// isStale reports whether an RFC3339 updatedAt timestamp is older than
// staleAfter. An unparseable or empty timestamp is treated as not stale
// rather than risk flagging every row on a malformed response.
func isStale(updatedAt string) bool {
	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return false
	}
	return time.Since(t) > staleAfter
}

func aggregateGitHubChecks(checks []struct {
	Conclusion string `json:"conclusion"`
	State      string `json:"state"`
}) CIState {
	if len(checks) == 0 {
		return CINone
	}
	sawFailure, sawPending := false, false
	for _, c := range checks {
		switch strings.ToUpper(c.Conclusion) {
		case "FAILURE", "CANCELLED", "TIMED_OUT":
			sawFailure = true
		case "":
			if strings.ToUpper(c.State) == "PENDING" || strings.ToUpper(c.State) == "QUEUED" {
				sawPending = true
			}
		}
	}
	switch {
	case sawFailure:
		return CIFailed
	case sawPending:
		return CIRunning
	default:
		return CIPassed
	}
}
