package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// resolveTempDir creates a temp directory and resolves macOS symlinks.
func resolveTempDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("failed to resolve symlinks for %s: %v", tmpDir, err)
	}
	return resolved
}

// configureTestRepo sets git user config and disables GPG signing.
func configureTestRepo(t *testing.T, repoPath string) {
	t.Helper()
	ctx := context.Background()
	for _, args := range [][]string{
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test User"},
		{"config", "commit.gpgsign", "false"},
	} {
		if err := runGit(ctx, repoPath, args...); err != nil {
			t.Fatalf("failed to run git %v: %v", args, err)
		}
	}
}

// setupTestRepo creates a git repo with main branch, initial commit, and git config.
// Returns the resolved repo path.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	tmpDir := resolveTempDir(t)
	repoPath := filepath.Join(tmpDir, "test-repo")

	ctx := context.Background()
	if err := runGit(ctx, "", "init", "-b", "main", repoPath); err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	configureTestRepo(t, repoPath)

	readme := filepath.Join(repoPath, "README.md")
	if err := os.WriteFile(readme, []byte("# test\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := runGit(ctx, repoPath, "add", "README.md"); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}
	if err := runGit(ctx, repoPath, "commit", "-m", "Initial commit"); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}

	return repoPath
}

// assertContains checks that all wanted items exist in the got slice.
func assertContains(t *testing.T, got []string, want ...string) {
	t.Helper()
	set := make(map[string]bool, len(got))
	for _, s := range got {
		set[s] = true
	}
	for _, w := range want {
		if !set[w] {
			t.Errorf("missing %q in %v", w, got)
		}
	}
}

// setupTestRepoWithOrigin creates a repo with a bare origin remote.
// Returns (repoPath, originPath).
func setupTestRepoWithOrigin(t *testing.T) (string, string) {
	t.Helper()
	tmpDir := resolveTempDir(t)

	originPath := filepath.Join(tmpDir, "origin.git")
	repoPath := filepath.Join(tmpDir, "repo")

	ctx := context.Background()

	if err := runGit(ctx, "", "init", "--bare", "-b", "main", originPath); err != nil {
		t.Fatalf("failed to init bare repo: %v", err)
	}
	if err := runGit(ctx, "", "clone", originPath, repoPath); err != nil {
		t.Fatalf("failed to clone: %v", err)
	}

	configureTestRepo(t, repoPath)

	readme := filepath.Join(repoPath, "README.md")
	if err := os.WriteFile(readme, []byte("# test\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := runGit(ctx, repoPath, "add", "README.md"); err != nil {
		t.Fatalf("failed to add: %v", err)
	}
	if err := runGit(ctx, repoPath, "commit", "-m", "Initial commit"); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	if err := runGit(ctx, repoPath, "push", "-u", "origin", "HEAD"); err != nil {
		t.Fatalf("failed to push: %v", err)
	}

	return repoPath, originPath
}

func TestListWorktrees(t *testing.T) {
	t.Parallel()

	t.Run("main only", func(t *testing.T) {
		t.Parallel()
		repoPath := setupTestRepo(t)

		wts, err := ListWorktrees(context.Background(), repoPath)
		if err != nil {
			t.Fatalf("ListWorktrees failed: %v", err)
		}
		if len(wts) != 1 {
			t.Fatalf("got %d worktrees, want 1", len(wts))
		}
		if wts[0].Branch != "main" {
			t.Errorf("branch = %q, want main", wts[0].Branch)
		}
		if wts[0].Detached || wts[0].Bare {
			t.Errorf("main worktree should be neither detached nor bare: %+v", wts[0])
		}
		if wts[0].Head == "" {
			t.Error("expected a non-empty HEAD sha")
		}
	})

	t.Run("with linked worktrees", func(t *testing.T) {
		t.Parallel()
		repoPath := setupTestRepo(t)
		tmpDir := filepath.Dir(repoPath)
		ctx := context.Background()

		wt1 := filepath.Join(tmpDir, "wt-feature-1")
		wt2 := filepath.Join(tmpDir, "wt-feature-2")

		if err := runGit(ctx, repoPath, "worktree", "add", "-b", "feature-1", wt1); err != nil {
			t.Fatalf("failed to create worktree 1: %v", err)
		}
		if err := runGit(ctx, repoPath, "worktree", "add", "-b", "feature-2", wt2); err != nil {
			t.Fatalf("failed to create worktree 2: %v", err)
		}

		wts, err := ListWorktrees(ctx, repoPath)
		if err != nil {
			t.Fatalf("ListWorktrees failed: %v", err)
		}
		if len(wts) != 3 {
			t.Fatalf("got %d worktrees, want 3", len(wts))
		}

		var branches []string
		for _, wt := range wts {
			branches = append(branches, wt.Branch)
		}
		assertContains(t, branches, "main", "feature-1", "feature-2")
	})

	t.Run("detached worktree", func(t *testing.T) {
		t.Parallel()
		repoPath := setupTestRepo(t)
		tmpDir := filepath.Dir(repoPath)
		ctx := context.Background()

		wtPath := filepath.Join(tmpDir, "wt-detached")
		if err := runGit(ctx, repoPath, "worktree", "add", "--detach", wtPath, "main"); err != nil {
			t.Fatalf("failed to create detached worktree: %v", err)
		}

		wts, err := ListWorktrees(ctx, repoPath)
		if err != nil {
			t.Fatalf("ListWorktrees failed: %v", err)
		}
		var found bool
		for _, wt := range wts {
			if wt.Path == wtPath {
				found = true
				if !wt.Detached {
					t.Error("expected Detached true")
				}
				if wt.Branch != "" {
					t.Errorf("expected empty branch for detached worktree, got %q", wt.Branch)
				}
			}
		}
		if !found {
			t.Fatal("detached worktree not found in listing")
		}
	})
}

func TestListLocalBranches(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	if err := runGit(ctx, repoPath, "branch", "alpha"); err != nil {
		t.Fatalf("failed to create branch: %v", err)
	}
	if err := runGit(ctx, repoPath, "branch", "beta"); err != nil {
		t.Fatalf("failed to create branch: %v", err)
	}

	branches, err := ListLocalBranches(ctx, repoPath)
	if err != nil {
		t.Fatalf("ListLocalBranches failed: %v", err)
	}

	assertContains(t, branches, "main", "alpha", "beta")
}

func TestDefaultBranch(t *testing.T) {
	t.Parallel()

	result := DefaultBranch(context.Background(), "/nonexistent/path")
	if result != "main" {
		t.Errorf("expected fallback main, got %s", result)
	}

	t.Run("resolves from origin HEAD", func(t *testing.T) {
		t.Parallel()
		repoPath, _ := setupTestRepoWithOrigin(t)
		got := DefaultBranch(context.Background(), repoPath)
		if got != "main" {
			t.Errorf("DefaultBranch = %q, want main", got)
		}
	})
}

func TestGetCommitDetails(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	details, err := GetCommitDetails(ctx, repoPath, "HEAD")
	if err != nil {
		t.Fatalf("GetCommitDetails failed: %v", err)
	}
	if details.Subject != "Initial commit" {
		t.Errorf("Subject = %q, want %q", details.Subject, "Initial commit")
	}
	if details.Timestamp == 0 {
		t.Error("expected non-zero timestamp")
	}
}

func TestAheadBehind(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	if err := runGit(ctx, repoPath, "checkout", "-b", "feature"); err != nil {
		t.Fatalf("failed to create branch: %v", err)
	}
	extra := filepath.Join(repoPath, "extra.txt")
	if err := os.WriteFile(extra, []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := runGit(ctx, repoPath, "add", "extra.txt"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := runGit(ctx, repoPath, "commit", "-m", "extra"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	ahead, behind, err := AheadBehind(ctx, repoPath, "main", "feature")
	if err != nil {
		t.Fatalf("AheadBehind failed: %v", err)
	}
	if ahead != 0 || behind != 1 {
		t.Errorf("got ahead=%d behind=%d, want ahead=0 behind=1", ahead, behind)
	}
}

func TestIsAncestor(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	if err := runGit(ctx, repoPath, "checkout", "-b", "feature"); err != nil {
		t.Fatalf("failed to create branch: %v", err)
	}

	yes, err := IsAncestor(ctx, repoPath, "main", "feature")
	if err != nil {
		t.Fatalf("IsAncestor failed: %v", err)
	}
	if !yes {
		t.Error("expected main to be an ancestor of feature")
	}

	no, err := IsAncestor(ctx, repoPath, "feature", "nonexistent-ref")
	if err != nil {
		t.Fatalf("IsAncestor on invalid ref should not error: %v", err)
	}
	if no {
		t.Error("expected false for an invalid ref")
	}
}

func TestTreeSHAAndThreeDotDiffEmpty(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	if err := runGit(ctx, repoPath, "checkout", "-b", "feature"); err != nil {
		t.Fatalf("failed to create branch: %v", err)
	}

	empty, err := ThreeDotDiffEmpty(ctx, repoPath, "main", "feature")
	if err != nil {
		t.Fatalf("ThreeDotDiffEmpty failed: %v", err)
	}
	if !empty {
		t.Error("expected no diff between main and an unmodified feature branch")
	}

	mainTree, err := TreeSHA(ctx, repoPath, "main")
	if err != nil {
		t.Fatalf("TreeSHA failed: %v", err)
	}
	featureTree, err := TreeSHA(ctx, repoPath, "feature")
	if err != nil {
		t.Fatalf("TreeSHA failed: %v", err)
	}
	if mainTree != featureTree {
		t.Errorf("expected matching trees, got %q vs %q", mainTree, featureTree)
	}

	extra := filepath.Join(repoPath, "extra.txt")
	if err := os.WriteFile(extra, []byte("x\ny\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := runGit(ctx, repoPath, "add", "extra.txt"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := runGit(ctx, repoPath, "commit", "-m", "extra"); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	empty, err = ThreeDotDiffEmpty(ctx, repoPath, "main", "feature")
	if err != nil {
		t.Fatalf("ThreeDotDiffEmpty failed: %v", err)
	}
	if empty {
		t.Error("expected a diff after adding a commit to feature")
	}

	total, err := TwoDotNumstat(ctx, repoPath, "main", "feature")
	if err != nil {
		t.Fatalf("TwoDotNumstat failed: %v", err)
	}
	if total.Added != 2 || total.Deleted != 0 {
		t.Errorf("got %+v, want added=2 deleted=0", total)
	}
}

func TestGetWorkingTreeStatus(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	status, err := GetWorkingTreeStatus(ctx, repoPath)
	if err != nil {
		t.Fatalf("GetWorkingTreeStatus failed: %v", err)
	}
	if status.Untracked || status.Modified || status.Staged {
		t.Errorf("expected clean status, got %+v", status)
	}

	untracked := filepath.Join(repoPath, "new.txt")
	if err := os.WriteFile(untracked, []byte("new"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	status, err = GetWorkingTreeStatus(ctx, repoPath)
	if err != nil {
		t.Fatalf("GetWorkingTreeStatus failed: %v", err)
	}
	if !status.Untracked {
		t.Error("expected Untracked true")
	}

	if err := runGit(ctx, repoPath, "add", "new.txt"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	status, err = GetWorkingTreeStatus(ctx, repoPath)
	if err != nil {
		t.Fatalf("GetWorkingTreeStatus failed: %v", err)
	}
	if !status.Staged {
		t.Error("expected Staged true")
	}
}

func TestWorkingTreeNumstat(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	readme := filepath.Join(repoPath, "README.md")
	if err := os.WriteFile(readme, []byte("# test\nmore\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	total, err := WorkingTreeNumstat(ctx, repoPath)
	if err != nil {
		t.Fatalf("WorkingTreeNumstat failed: %v", err)
	}
	if total.Added != 1 {
		t.Errorf("got %+v, want added=1", total)
	}
}

func TestMergeTreeConflictsAndWouldMergeAdd(t *testing.T) {
	t.Parallel()

	t.Run("clean fast-forward merge is conflict-free and adds content", func(t *testing.T) {
		t.Parallel()
		repoPath := setupTestRepo(t)
		ctx := context.Background()

		if err := runGit(ctx, repoPath, "checkout", "-b", "feature"); err != nil {
			t.Fatalf("failed to create branch: %v", err)
		}
		extra := filepath.Join(repoPath, "extra.txt")
		if err := os.WriteFile(extra, []byte("x"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if err := runGit(ctx, repoPath, "add", "extra.txt"); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := runGit(ctx, repoPath, "commit", "-m", "extra"); err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		conflicts, err := MergeTreeConflicts(ctx, repoPath, "main", "feature")
		if err != nil {
			t.Fatalf("MergeTreeConflicts failed: %v", err)
		}
		if conflicts {
			t.Error("expected no conflicts")
		}

		adds, err := WouldMergeAdd(ctx, repoPath, "main", "feature")
		if err != nil {
			t.Fatalf("WouldMergeAdd failed: %v", err)
		}
		if !adds {
			t.Error("expected merging feature into main to add content")
		}
	})

	t.Run("conflicting merge", func(t *testing.T) {
		t.Parallel()
		repoPath := setupTestRepo(t)
		ctx := context.Background()

		readme := filepath.Join(repoPath, "README.md")

		if err := runGit(ctx, repoPath, "checkout", "-b", "feature"); err != nil {
			t.Fatalf("failed to create branch: %v", err)
		}
		if err := os.WriteFile(readme, []byte("feature version\n"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if err := runGit(ctx, repoPath, "commit", "-am", "feature edit"); err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		if err := runGit(ctx, repoPath, "checkout", "main"); err != nil {
			t.Fatalf("checkout main failed: %v", err)
		}
		if err := os.WriteFile(readme, []byte("main version\n"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
		if err := runGit(ctx, repoPath, "commit", "-am", "main edit"); err != nil {
			t.Fatalf("commit failed: %v", err)
		}

		conflicts, err := MergeTreeConflicts(ctx, repoPath, "main", "feature")
		if err != nil {
			t.Fatalf("MergeTreeConflicts failed: %v", err)
		}
		if !conflicts {
			t.Error("expected a conflict")
		}
	})
}

func TestStashCreateTree(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	tree, err := StashCreateTree(ctx, repoPath)
	if err != nil {
		t.Fatalf("StashCreateTree failed: %v", err)
	}
	if tree != "" {
		t.Errorf("expected empty tree for a clean worktree, got %q", tree)
	}

	readme := filepath.Join(repoPath, "README.md")
	if err := os.WriteFile(readme, []byte("# test\nchanged\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	tree, err = StashCreateTree(ctx, repoPath)
	if err != nil {
		t.Fatalf("StashCreateTree failed: %v", err)
	}
	if tree == "" {
		t.Error("expected a non-empty tree sha for a dirty worktree")
	}
}

func TestBranchConfigValue(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	if err := runGit(ctx, repoPath, "config", "branch.main.description", "hello"); err != nil {
		t.Fatalf("failed to set config: %v", err)
	}

	got, err := BranchConfigValue(ctx, repoPath, "main", "description")
	if err != nil {
		t.Fatalf("BranchConfigValue failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}

	got, err = BranchConfigValue(ctx, repoPath, "main", "nonexistent-key")
	if err != nil {
		t.Fatalf("BranchConfigValue failed: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty for unset key", got)
	}
}

func TestUpstreamRef(t *testing.T) {
	t.Parallel()

	repoPath, _ := setupTestRepoWithOrigin(t)
	ctx := context.Background()

	if err := runGit(ctx, repoPath, "checkout", "-b", "feature-up"); err != nil {
		t.Fatalf("failed to create branch: %v", err)
	}
	if err := runGit(ctx, repoPath, "push", "-u", "origin", "feature-up"); err != nil {
		t.Fatalf("failed to push: %v", err)
	}

	remote, ref, err := UpstreamRef(ctx, repoPath, "feature-up")
	if err != nil {
		t.Fatalf("UpstreamRef failed: %v", err)
	}
	if remote != "origin" || ref != "origin/feature-up" {
		t.Errorf("got remote=%q ref=%q, want remote=origin ref=origin/feature-up", remote, ref)
	}

	if err := runGit(ctx, repoPath, "checkout", "-b", "no-upstream"); err != nil {
		t.Fatalf("failed to create branch: %v", err)
	}
	remote, ref, err = UpstreamRef(ctx, repoPath, "no-upstream")
	if err != nil {
		t.Fatalf("UpstreamRef failed: %v", err)
	}
	if remote != "" || ref != "" {
		t.Errorf("got remote=%q ref=%q, want both empty", remote, ref)
	}
}

func TestDetectGitOperation(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	gitDir, err := GitDir(ctx, repoPath)
	if err != nil {
		t.Fatalf("GitDir failed: %v", err)
	}

	if got := DetectGitOperation(gitDir); got != GitOperationNone {
		t.Errorf("got %v, want GitOperationNone", got)
	}

	if err := os.WriteFile(filepath.Join(gitDir, "MERGE_HEAD"), []byte("deadbeef\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if got := DetectGitOperation(gitDir); got != GitOperationMerge {
		t.Errorf("got %v, want GitOperationMerge", got)
	}
}

func TestGetOriginURL(t *testing.T) {
	t.Parallel()

	t.Run("no origin", func(t *testing.T) {
		t.Parallel()
		repoPath := setupTestRepo(t)
		url, err := GetOriginURL(context.Background(), repoPath)
		if err != nil {
			t.Fatalf("GetOriginURL failed: %v", err)
		}
		if url != "" {
			t.Errorf("got %q, want empty", url)
		}
	})

	t.Run("with origin", func(t *testing.T) {
		t.Parallel()
		repoPath, originPath := setupTestRepoWithOrigin(t)
		url, err := GetOriginURL(context.Background(), repoPath)
		if err != nil {
			t.Fatalf("GetOriginURL failed: %v", err)
		}
		if url != originPath {
			t.Errorf("got %q, want %q", url, originPath)
		}
	})
}

func TestExtractRepoNameFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{"git@github.com:org/repo.git", "repo"},
		{"https://github.com/org/repo.git", "repo"},
		{"https://github.com/org/repo", "repo"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			got := ExtractRepoNameFromURL(tt.url)
			if got != tt.want {
				t.Errorf("ExtractRepoNameFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
