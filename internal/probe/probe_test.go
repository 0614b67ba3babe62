package probe

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/wtstatus/wtstatus/internal/statusrow"
)

func setupRepo(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	resolved, err := filepath.EvalSymlinks(tmp)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	repoPath := filepath.Join(resolved, "repo")
	ctx := context.Background()

	mustRun(t, ctx, "", "init", "-b", "main", repoPath)
	mustRun(t, ctx, repoPath, "config", "user.email", "test@test.com")
	mustRun(t, ctx, repoPath, "config", "user.name", "Test User")
	mustRun(t, ctx, repoPath, "config", "commit.gpgsign", "false")

	if err := os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("# test\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mustRun(t, ctx, repoPath, "add", "README.md")
	mustRun(t, ctx, repoPath, "commit", "-m", "initial")

	return repoPath
}

func mustRun(t *testing.T, ctx context.Context, dir string, args ...string) {
	t.Helper()
	c := exec.CommandContext(ctx, "git", args...)
	c.Dir = dir
	if out, err := c.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v (%s)", args, err, out)
	}
}

func TestExecute_CommitDetails(t *testing.T) {
	t.Parallel()
	repoPath := setupRepo(t)
	row := &statusrow.Row{}

	taskErr := Execute(context.Background(), Task{
		Kind:         CommitDetails,
		Row:          row,
		WorktreePath: repoPath,
	})
	if taskErr != nil {
		t.Fatalf("Execute failed: %v", taskErr)
	}
	if !row.Commit.Loaded || row.Commit.Subject != "initial" {
		t.Errorf("got %+v, want Subject=initial", row.Commit)
	}
}

func TestExecute_AheadBehind(t *testing.T) {
	t.Parallel()
	repoPath := setupRepo(t)
	ctx := context.Background()
	mustRun(t, ctx, repoPath, "checkout", "-b", "feature")
	if err := os.WriteFile(filepath.Join(repoPath, "x.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	mustRun(t, ctx, repoPath, "add", "x.txt")
	mustRun(t, ctx, repoPath, "commit", "-m", "feature commit")

	row := &statusrow.Row{}
	taskErr := Execute(ctx, Task{
		Kind:         AheadBehind,
		Row:          row,
		WorktreePath: repoPath,
		Branch:       "feature",
		Target:       "main",
	})
	if taskErr != nil {
		t.Fatalf("Execute failed: %v", taskErr)
	}
	if row.Counts.Ahead != 1 || row.Counts.Behind != 0 {
		t.Errorf("got %+v, want ahead=1 behind=0", row.Counts)
	}
}

func TestExecute_GitOperationNone(t *testing.T) {
	t.Parallel()
	repoPath := setupRepo(t)
	row := &statusrow.Row{}

	taskErr := Execute(context.Background(), Task{
		Kind:         GitOperation,
		Row:          row,
		WorktreePath: repoPath,
	})
	if taskErr != nil {
		t.Fatalf("Execute failed: %v", taskErr)
	}
	if row.GitOp != statusrow.GitOperationNone {
		t.Errorf("got %v, want GitOperationNone", row.GitOp)
	}
}

func TestExecute_UrlStatusNoTemplate(t *testing.T) {
	t.Parallel()
	row := &statusrow.Row{}
	taskErr := Execute(context.Background(), Task{Kind: UrlStatus, Row: row})
	if taskErr != nil {
		t.Fatalf("Execute failed: %v", taskErr)
	}
	if row.URL != "" || row.URLActiveLoaded {
		t.Errorf("expected no-op without a URL template, got %+v", row)
	}
}

func TestHostPortFromURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url  string
		want string
	}{
		{"http://localhost:3000", "localhost:3000"},
		{"https://example.com", "example.com:443"},
		{"http://example.com", "example.com:80"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		if got := hostPortFromURL(tt.url); got != tt.want {
			t.Errorf("hostPortFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestMaxConcurrentCommands(t *testing.T) {
	t.Setenv(EnvMaxConcurrentCommands, "")
	if got := MaxConcurrentCommands(); got != DefaultMaxConcurrentCommands {
		t.Errorf("got %d, want default %d", got, DefaultMaxConcurrentCommands)
	}
	t.Setenv(EnvMaxConcurrentCommands, "8")
	if got := MaxConcurrentCommands(); got != 8 {
		t.Errorf("got %d, want 8", got)
	}
}
