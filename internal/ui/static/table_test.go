package static

import (
	"strings"
	"testing"
)

func TestRenderTable(t *testing.T) {
	t.Parallel()

	out := RenderTable(
		[]string{"CHECK", "STATUS"},
		[][]string{
			{"git", "ok"},
			{"gh CLI", "missing"},
		},
	)

	if !strings.Contains(out, "CHECK") || !strings.Contains(out, "STATUS") {
		t.Fatalf("expected headers in output, got %q", out)
	}
	if !strings.Contains(out, "git") || !strings.Contains(out, "missing") {
		t.Fatalf("expected row content in output, got %q", out)
	}
}

func TestRenderTableEmpty(t *testing.T) {
	t.Parallel()

	out := RenderTable([]string{"A"}, nil)
	if out != "" {
		t.Errorf("expected empty string for no rows, got %q", out)
	}
}
