// Package forge provides a read-only abstraction over git hosting services
// (GitHub, GitLab) for the CiStatus probe. It never mutates a repository or
// a PR/MR; it only queries CI/PR state through the host's CLI.
package forge

import "context"

// CIState is the normalized CI/PR check state for a branch.
type CIState string

const (
	CIPassed    CIState = "passed"
	CIRunning   CIState = "running"
	CIFailed    CIState = "failed"
	CIConflicts CIState = "conflicts"
	CINone      CIState = "none"
)

// CISource identifies whether a CIStatus came from a pull/merge request or
// a bare branch-status query.
type CISource string

const (
	SourcePullRequest CISource = "pr"
	SourceBranch      CISource = "branch"
)

// CIStatus is the result of the CiStatus network probe (spec.md §4.1).
type CIStatus struct {
	State  CIState
	URL    string
	Stale  bool
	Source CISource
}

// Forge represents a git hosting service (GitHub, GitLab, etc.) as consumed
// by the CiStatus probe. Mutating operations (clone, merge, create) belong
// to the commands outside the core and are not part of this interface.
type Forge interface {
	// Name returns the forge name ("github" or "gitlab").
	Name() string

	// Check verifies the hosting CLI is installed and authenticated.
	Check() error

	// CIStatusForBranch queries CI/PR status for a branch on repoURL.
	// Returns a CIStatus with State CINone if no PR/MR and no CI run exists.
	CIStatusForBranch(ctx context.Context, repoURL, branch string) (*CIStatus, error)
}
