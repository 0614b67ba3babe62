package symbols

import (
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/wtstatus/wtstatus/internal/statusrow"
)

func TestCompute_BranchOpPriority(t *testing.T) {
	t.Parallel()

	r := &statusrow.Row{}
	r.WorkingConflicts = statusrow.WorkingTreeConflictsDirtyConflict
	r.GitOp = statusrow.GitOperationRebase
	r.MainState = statusrow.MainStateIntegrated

	got := Compute(r)
	if got.BranchOp != GlyphConflicts {
		t.Errorf("BranchOp = %q, want conflicts glyph (dirty-conflict beats rebase-in-progress and integrated)", got.BranchOp)
	}
}

func TestCompute_MainDivergence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		row    *statusrow.Row
		want   rune
	}{
		{"is main", &statusrow.Row{IsMain: true}, GlyphIsMain},
		{"ahead", rowWithCounts(1, 0), GlyphAhead},
		{"behind", rowWithCounts(0, 1), GlyphBehind},
		{"diverged", rowWithCounts(1, 1), GlyphDiverged},
		{"even and not loaded", &statusrow.Row{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Compute(tt.row)
			if got.MainDivergence != tt.want {
				t.Errorf("MainDivergence = %q, want %q", got.MainDivergence, tt.want)
			}
		})
	}
}

func rowWithCounts(ahead, behind int) *statusrow.Row {
	r := &statusrow.Row{}
	r.Counts = statusrow.Counts{Ahead: ahead, Behind: behind, Loaded: true}
	return r
}

func TestRender_WidthMatchesPositionWidths(t *testing.T) {
	t.Parallel()

	s := statusrow.StatusSymbols{
		Staged: true, Modified: true, Untracked: true,
		BranchOp: GlyphConflicts, MainDivergence: GlyphAhead,
		UpstreamDivergence: GlyphUpstreamAhead, WorktreeAttr: GlyphLocked,
		UserMarker: "ab",
	}
	rendered := Render(s)

	wantWidth := 0
	for _, w := range PositionWidths {
		wantWidth += w
	}
	if got := ansi.StringWidth(rendered); got != wantWidth {
		t.Errorf("Render width = %d, want %d (%q)", got, wantWidth, rendered)
	}
}

func TestRender_EmptyPositionsAreSpaces(t *testing.T) {
	t.Parallel()

	rendered := Render(statusrow.StatusSymbols{})
	for _, r := range rendered {
		if r != ' ' {
			t.Errorf("expected all spaces for an empty grid, got %q", rendered)
			break
		}
	}
}

func TestWorktreeAttrGlyph_BranchOnlyBeatsEverythingElse(t *testing.T) {
	t.Parallel()
	r := &statusrow.Row{Kind: statusrow.KindBranch, LockedSet: true, PrunableSet: true}
	got := Compute(r)
	if got.WorktreeAttr != GlyphBranchOnly {
		t.Errorf("got %q, want branch-only glyph", got.WorktreeAttr)
	}
}
