package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Worktree describes one entry from `git worktree list --porcelain`.
type Worktree struct {
	Path     string
	Head     string // full commit SHA, empty for a worktree with no commits
	Branch   string // local branch name, empty if detached
	Detached bool
	Bare     bool
	Locked   string // reason, "" if not locked (present but empty reason also reports "")
	LockedSet bool
	Prunable string // reason, "" if not prunable
	PrunableSet bool
}

// ListWorktrees parses `git worktree list --porcelain` for repoPath.
// Grounded on the upstream git documentation's porcelain format: entries are
// separated by a blank line, each line is "<key> <value>" or a bare key.
func ListWorktrees(ctx context.Context, repoPath string) ([]Worktree, error) {
	out, err := outputGit(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("git worktree list: %w", err)
	}

	var worktrees []Worktree
	var cur *Worktree
	flush := func() {
		if cur != nil {
			worktrees = append(worktrees, *cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(string(out), "\n") {
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur = &Worktree{Path: strings.TrimPrefix(line, "worktree ")}
		case cur == nil:
			// malformed porcelain stream; ignore until next "worktree " line
		case strings.HasPrefix(line, "HEAD "):
			cur.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch refs/heads/"):
			cur.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "detached":
			cur.Detached = true
		case line == "bare":
			cur.Bare = true
		case line == "locked":
			cur.LockedSet = true
		case strings.HasPrefix(line, "locked "):
			cur.LockedSet = true
			cur.Locked = strings.TrimPrefix(line, "locked ")
		case line == "prunable":
			cur.PrunableSet = true
		case strings.HasPrefix(line, "prunable "):
			cur.PrunableSet = true
			cur.Prunable = strings.TrimPrefix(line, "prunable ")
		}
	}
	flush()

	return worktrees, nil
}

// ListLocalBranches returns every local branch name via `git for-each-ref`.
func ListLocalBranches(ctx context.Context, repoPath string) ([]string, error) {
	out, err := outputGit(ctx, repoPath, "for-each-ref", "--format=%(refname:short)", "refs/heads/")
	if err != nil {
		return nil, fmt.Errorf("git for-each-ref: %w", err)
	}
	var branches []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line != "" {
			branches = append(branches, line)
		}
	}
	return branches, nil
}

// DefaultBranch resolves the repository's default branch: the symbolic
// target of refs/remotes/origin/HEAD, falling back to "main" then "master"
// if either exists locally, and finally "main".
func DefaultBranch(ctx context.Context, repoPath string) string {
	if out, err := outputGit(ctx, repoPath, "symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		ref := strings.TrimSpace(string(out))
		if parts := strings.Split(ref, "/"); len(parts) > 0 {
			return parts[len(parts)-1]
		}
	}
	if runGit(ctx, repoPath, "rev-parse", "--verify", "refs/heads/main") == nil {
		return "main"
	}
	if runGit(ctx, repoPath, "rev-parse", "--verify", "refs/heads/master") == nil {
		return "master"
	}
	return "main"
}

// CommitDetails is HEAD's timestamp (Unix seconds) and subject for ref,
// grounding the CommitDetails probe.
type CommitDetails struct {
	Timestamp int64
	Subject   string
}

// GetCommitDetails computes the CommitDetails probe for ref in dir.
func GetCommitDetails(ctx context.Context, dir, ref string) (CommitDetails, error) {
	out, err := outputGit(ctx, dir, "log", "-1", "--format=%ct%x00%s", ref, "--")
	if err != nil {
		return CommitDetails{}, fmt.Errorf("git log: %w", err)
	}
	parts := strings.SplitN(strings.TrimRight(string(out), "\n"), "\x00", 2)
	if len(parts) != 2 {
		return CommitDetails{}, fmt.Errorf("unexpected git log output: %q", out)
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return CommitDetails{}, fmt.Errorf("parse commit timestamp: %w", err)
	}
	return CommitDetails{Timestamp: ts, Subject: parts[1]}, nil
}

// AheadBehind runs `git rev-list --left-right --count left...right` and
// returns (ahead, behind) commit counts: ahead counts commits reachable only
// from left, behind those reachable only from right. Grounds the
// AheadBehind and Upstream probes.
func AheadBehind(ctx context.Context, dir, left, right string) (ahead, behind int, err error) {
	out, err := outputGit(ctx, dir, "rev-list", "--left-right", "--count", left+"..."+right)
	if err != nil {
		return 0, 0, fmt.Errorf("git rev-list: %w", err)
	}
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output: %q", out)
	}
	ahead, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, err
	}
	behind, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

// HasMergeBase reports whether left and right share any common ancestor
// (`git merge-base left right`). A non-zero exit means the two refs have
// unrelated histories (an orphan branch), independent of whatever
// AheadBehind's rev-list count comes back as — `...` is a set-level
// symmetric difference and returns counts even with no merge base.
func HasMergeBase(ctx context.Context, dir, left, right string) bool {
	return runGit(ctx, dir, "merge-base", left, right) == nil
}

// IsAncestor reports whether ancestor is an ancestor of descendant
// (`git merge-base --is-ancestor`). Grounds the IsAncestor integration
// signal. A non-zero exit (not-an-ancestor or an invalid ref) is reported
// as false, matching how callers treat "unknown" and "no" identically.
func IsAncestor(ctx context.Context, dir, ancestor, descendant string) (bool, error) {
	return runGit(ctx, dir, "merge-base", "--is-ancestor", ancestor, descendant) == nil, nil
}

// ResolveRef resolves ref to its full commit SHA (`git rev-parse ref`).
func ResolveRef(ctx context.Context, dir, ref string) (string, error) {
	out, err := outputGit(ctx, dir, "rev-parse", ref)
	if err != nil {
		return "", fmt.Errorf("git rev-parse %s: %w", ref, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// TreeSHA resolves ref's tree object id (`git rev-parse ref^{tree}`).
func TreeSHA(ctx context.Context, dir, ref string) (string, error) {
	out, err := outputGit(ctx, dir, "rev-parse", ref+"^{tree}")
	if err != nil {
		return "", fmt.Errorf("git rev-parse %s^{tree}: %w", ref, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ThreeDotDiffEmpty reports whether `git diff target...branch` is empty,
// i.e. branch adds nothing relative to their merge base.
func ThreeDotDiffEmpty(ctx context.Context, dir, target, branch string) (bool, error) {
	out, err := outputGit(ctx, dir, "diff", "--name-only", target+"..."+branch)
	if err != nil {
		return false, fmt.Errorf("git diff %s...%s: %w", target, branch, err)
	}
	return strings.TrimSpace(string(out)) == "", nil
}

// NumstatTotal is the aggregated added/deleted line counts from a numstat
// diff. Binary files (numstat reports "-") are not counted.
type NumstatTotal struct {
	Added   int
	Deleted int
}

// TwoDotNumstat aggregates `git diff --numstat target..branch`.
func TwoDotNumstat(ctx context.Context, dir, target, branch string) (NumstatTotal, error) {
	out, err := outputGit(ctx, dir, "diff", "--numstat", target+".."+branch)
	if err != nil {
		return NumstatTotal{}, fmt.Errorf("git diff --numstat %s..%s: %w", target, branch, err)
	}
	return parseNumstat(out), nil
}

// WorkingTreeNumstat aggregates `git diff --numstat HEAD` for the worktree
// at dir (uncommitted changes, staged and unstaged, vs HEAD).
func WorkingTreeNumstat(ctx context.Context, dir string) (NumstatTotal, error) {
	out, err := outputGit(ctx, dir, "diff", "--numstat", "HEAD")
	if err != nil {
		return NumstatTotal{}, fmt.Errorf("git diff --numstat HEAD: %w", err)
	}
	return parseNumstat(out), nil
}

func parseNumstat(out []byte) NumstatTotal {
	var total NumstatTotal
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if fields[0] != "-" {
			if n, err := strconv.Atoi(fields[0]); err == nil {
				total.Added += n
			}
		}
		if fields[1] != "-" {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				total.Deleted += n
			}
		}
	}
	return total
}

// WorkingTreeStatus mirrors the tri-state working-tree flags in spec.md §3.
type WorkingTreeStatus struct {
	Untracked  bool
	Modified   bool
	Staged     bool
	Renamed    bool
	Deleted    bool
	Conflicted bool
}

// GetWorkingTreeStatus parses `git status --porcelain=v1` for dir.
func GetWorkingTreeStatus(ctx context.Context, dir string) (WorkingTreeStatus, error) {
	out, err := outputGit(ctx, dir, "status", "--porcelain=v1")
	if err != nil {
		return WorkingTreeStatus{}, fmt.Errorf("git status: %w", err)
	}
	var s WorkingTreeStatus
	for _, line := range strings.Split(string(out), "\n") {
		if len(line) < 2 {
			continue
		}
		x, y := line[0], line[1]
		switch {
		case x == '?' && y == '?':
			s.Untracked = true
		case x == 'U' || y == 'U' || (x == 'A' && y == 'A') || (x == 'D' && y == 'D'):
			s.Conflicted = true
		default:
			if x == 'R' || y == 'R' {
				s.Renamed = true
			}
			if x == 'D' || y == 'D' {
				s.Deleted = true
			}
			if y == 'M' {
				s.Modified = true
			}
			if x != ' ' && x != '?' {
				s.Staged = true
			}
		}
	}
	return s, nil
}

// MergeTreeConflicts reports whether merging branch into target would
// conflict, via `git merge-tree --write-tree` (no working-tree or index
// side effects).
func MergeTreeConflicts(ctx context.Context, dir, target, branch string) (bool, error) {
	return runGit(ctx, dir, "merge-tree", "--write-tree", target, branch) != nil, nil
}

// WouldMergeAdd reports whether merging branch into target would change
// target's tree (i.e. the merge result differs from target's current
// tree). Grounds the WouldMergeAdd integration signal.
func WouldMergeAdd(ctx context.Context, dir, target, branch string) (bool, error) {
	out, err := outputGit(ctx, dir, "merge-tree", "--write-tree", target, branch)
	if err != nil {
		// a conflicting merge always "adds" something
		return true, nil
	}
	resultTree := strings.Fields(strings.TrimSpace(string(out)))
	if len(resultTree) == 0 {
		return false, fmt.Errorf("empty merge-tree output")
	}
	targetTree, err := TreeSHA(ctx, dir, target)
	if err != nil {
		return false, err
	}
	return resultTree[0] != targetTree, nil
}

// StashCreateTree creates a stash commit object (without touching the
// index/stash ref) for the worktree at dir and returns its tree SHA,
// grounding the WorkingTreeConflicts probe's "as if committed" comparison.
// Returns ("", nil) when the worktree has no changes to stash.
func StashCreateTree(ctx context.Context, dir string) (string, error) {
	out, err := outputGit(ctx, dir, "stash", "create")
	if err != nil {
		return "", fmt.Errorf("git stash create: %w", err)
	}
	commit := strings.TrimSpace(string(out))
	if commit == "" {
		return "", nil
	}
	return TreeSHA(ctx, dir, commit)
}

// BranchConfigValue reads `git config branch.<branch>.<key>`, grounding the
// UserMarker probe. Returns ("", nil) when the key is unset or on error —
// an absent marker is not a probe failure.
func BranchConfigValue(ctx context.Context, dir, branch, key string) (string, error) {
	out, err := outputGit(ctx, dir, "config", fmt.Sprintf("branch.%s.%s", branch, key))
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(string(out)), nil
}

// UpstreamRef resolves a local branch's upstream remote-tracking ref
// (`branch.<name>.remote` + `branch.<name>.merge`), e.g. "origin/feature".
// Returns ("", "", nil) when no upstream is configured.
func UpstreamRef(ctx context.Context, dir, branch string) (remote, ref string, err error) {
	remoteOut, err := outputGit(ctx, dir, "config", fmt.Sprintf("branch.%s.remote", branch))
	if err != nil {
		return "", "", nil
	}
	mergeOut, err := outputGit(ctx, dir, "config", fmt.Sprintf("branch.%s.merge", branch))
	if err != nil {
		return "", "", nil
	}
	remote = strings.TrimSpace(string(remoteOut))
	mergeRef := strings.TrimPrefix(strings.TrimSpace(string(mergeOut)), "refs/heads/")
	if remote == "" || mergeRef == "" {
		return "", "", nil
	}
	return remote, remote + "/" + mergeRef, nil
}

// GitOperationState is the in-progress operation detected for a worktree's
// git-dir, per the GitOperation probe (filesystem probe, no subprocess).
type GitOperationState int

const (
	GitOperationNone GitOperationState = iota
	GitOperationRebase
	GitOperationMerge
)

// DetectGitOperation checks gitDir for rebase-merge/, rebase-apply/, or
// MERGE_HEAD.
func DetectGitOperation(gitDir string) GitOperationState {
	if dirExists(filepath.Join(gitDir, "rebase-merge")) || dirExists(filepath.Join(gitDir, "rebase-apply")) {
		return GitOperationRebase
	}
	if fileExists(filepath.Join(gitDir, "MERGE_HEAD")) {
		return GitOperationMerge
	}
	return GitOperationNone
}

// GitDir resolves the .git directory for a worktree path (handles both a
// main checkout's .git directory and a linked worktree's .git file).
func GitDir(ctx context.Context, worktreePath string) (string, error) {
	out, err := outputGit(ctx, worktreePath, "rev-parse", "--git-dir")
	if err != nil {
		return "", fmt.Errorf("git rev-parse --git-dir: %w", err)
	}
	dir := strings.TrimSpace(string(out))
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(worktreePath, dir)
	}
	return filepath.Clean(dir), nil
}

// GetOriginURL returns the origin remote URL for repoPath, or "" if unset.
func GetOriginURL(ctx context.Context, repoPath string) (string, error) {
	out, err := outputGit(ctx, repoPath, "remote", "get-url", "origin")
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(string(out)), nil
}

// ExtractRepoNameFromURL extracts the repository name from a git remote URL.
func ExtractRepoNameFromURL(url string) string {
	url = strings.TrimSuffix(url, ".git")
	parts := strings.Split(url, "/")
	return parts[len(parts)-1]
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
