package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/wtstatus/wtstatus/internal/cmd"
)

// GitLab implements Forge for GitLab repositories using the glab CLI.
type GitLab struct{}

// Name returns "gitlab"
func (g *GitLab) Name() string {
	return "gitlab"
}

// Check verifies that glab CLI is available and authenticated
func (g *GitLab) Check() error {
	_, err := exec.LookPath("glab")
	if err != nil {
		return fmt.Errorf("glab not found: please install GitLab CLI (https://gitlab.com/gitlab-org/cli)")
	}

	c := exec.Command("glab", "auth", "status")
	if err := cmd.Run(c); err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "not logged") || strings.Contains(errMsg, "no token") {
			return fmt.Errorf("glab not authenticated: please run 'glab auth login'")
		}
		return fmt.Errorf("glab auth check failed: %s", errMsg)
	}

	return nil
}

// CIStatusForBranch queries MR + pipeline status for branch using glab CLI.
// With no MR for branch in any state, State is CINone and Source is
// SourceBranch.
func (g *GitLab) CIStatusForBranch(ctx context.Context, repoURL, branch string) (*CIStatus, error) {
	projectPath := extractGitLabProject(repoURL)

	output, err := cmd.OutputContext(ctx, "", "glab", "mr", "list",
		"-R", projectPath,
		"--source-branch", branch,
		"--state", "all",
		"-F", "json",
		"-P", "1")
	if err != nil {
		return nil, fmt.Errorf("glab command failed: %v", err)
	}

	var mrs []struct {
		IID          int    `json:"iid"`
		WebURL       string `json:"web_url"`
		HasConflicts bool   `json:"has_conflicts"`
		UpdatedAt    string `json:"updated_at"`
		HeadPipeline struct {
			Status string `json:"status"`
		} `json:"head_pipeline"`
	}
	if err := json.Unmarshal(output, &mrs); err != nil {
		return nil, fmt.Errorf("failed to parse glab output: %w", err)
	}

	if len(mrs) == 0 {
		return &CIStatus{State: CINone, Source: SourceBranch}, nil
	}

	mr := mrs[0]
	stale := isStale(mr.UpdatedAt)
	if mr.HasConflicts {
		return &CIStatus{State: CIConflicts, URL: mr.WebURL, Stale: stale, Source: SourcePullRequest}, nil
	}

	return &CIStatus{
		State:  normalizeGitLabPipelineStatus(mr.HeadPipeline.Status),
		URL:    mr.WebURL,
		Stale:  stale,
		Source: SourcePullRequest,
	}, nil
}

func normalizeGitLabPipelineStatus(status string) CIState {
	switch strings.ToLower(status) {
	case "success":
		return CIPassed
	case "failed", "canceled":
		return CIFailed
	case "running", "pending", "created", "waiting_for_resource":
		return CIRunning
	default:
		return CINone
	}
}

// extractGitLabProject extracts the project path from a GitLab URL
// e.g., "git@gitlab.com:group/project.git" -> "group/project"
// e.g., "https://gitlab.com/group/subgroup/project.git" -> "group/subgroup/project"
func extractGitLabProject(url string) string {
	url = strings.TrimSuffix(url, ".git")

	if strings.HasPrefix(url, "git@") {
		parts := strings.SplitN(url, ":", 2)
		if len(parts) == 2 {
			return parts[1]
		}
	}

	if strings.Contains(url, "://") {
		parts := strings.SplitN(url, "://", 2)
		if len(parts) == 2 {
			pathParts := strings.SplitN(parts[1], "/", 2)
			if len(pathParts) == 2 {
				return pathParts[1]
			}
		}
	}

	return url
}
