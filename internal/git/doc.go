// Package git provides read-only git operations via shell commands.
//
// All operations use [os/exec.Command] to call the git CLI directly rather
// than using Go git libraries. This approach is simpler, more reliable,
// and ensures compatibility with user configurations (SSH keys,
// credential helpers, aliases).
//
// # Worktree and Branch Listing
//
//   - [ListWorktrees]: enumerate linked worktrees via "git worktree list --porcelain"
//   - [ListLocalBranches]: enumerate local branches, for the --branches rows
//   - [DefaultBranch]: detect the repository's default/main branch
//
// # Commit and Diff Queries
//
//   - [GetCommitDetails], [ResolveRef], [TreeSHA]: per-ref commit metadata
//   - [AheadBehind], [IsAncestor]: relationship between two refs
//   - [ThreeDotDiffEmpty], [TwoDotNumstat], [WorkingTreeNumstat]: diff probes
//   - [GetWorkingTreeStatus]: uncommitted-change classification
//   - [MergeTreeConflicts], [WouldMergeAdd], [StashCreateTree]: merge-safety probes
//
// # Repository Metadata
//
//   - [GetOriginURL], [ExtractRepoNameFromURL]: remote identity
//   - [BranchConfigValue], [UpstreamRef]: per-branch git config lookups
//   - [GitDir], [DetectGitOperation]: in-progress rebase/merge detection
//
// Every probe runs with a non-interactive environment (see exec.go's
// nonInteractiveEnv) and an explicit working directory; none of them
// mutate the repository.
package git
