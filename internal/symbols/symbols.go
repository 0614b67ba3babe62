// Package symbols compresses a row's probed state into the fixed-width
// glyph grid documented in spec.md §4.4. The glyph assignments are part of
// the external interface (§6): tests lock them in.
package symbols

import "github.com/wtstatus/wtstatus/internal/statusrow"

// Position widths, in the grid's stable left-to-right order.
var PositionWidths = [8]int{1, 1, 1, 1, 1, 1, 1, 2}

const (
	PosStaged = iota
	PosModified
	PosUntracked
	PosBranchOp
	PosMainDivergence
	PosUpstreamDivergence
	PosWorktreeAttr
	PosUserMarker
)

// Branch/op glyphs, position 3, in priority order (first match wins).
const (
	GlyphConflicts      = '✘'
	GlyphInProgress     = '⤴' // rebase in progress
	GlyphMergeInProgress = '⤵'
	GlyphWouldConflict  = '✗'
	GlyphIntegrated     = '⊂'
	GlyphEmpty          = '_'
	GlyphSameCommitDirty = '–'
	GlyphOrphan         = '∅'
)

// Main-divergence glyphs, position 4.
const (
	GlyphIsMain   = '^'
	GlyphAhead    = '↑'
	GlyphBehind   = '↓'
	GlyphDiverged = '↕'
)

// Upstream-divergence glyphs, position 5.
const (
	GlyphUpstreamAhead    = '⇡'
	GlyphUpstreamBehind   = '⇣'
	GlyphUpstreamDiverged = '⇅'
	GlyphUpstreamInSync   = '|'
)

// Worktree-attribute glyphs, position 6.
const (
	GlyphBranchWorktreeMismatch = '⚑'
	GlyphPrunable               = '⊟'
	GlyphLocked                 = '⊞'
	GlyphBranchOnly             = '/'
)

// Compute derives StatusSymbols from a row's current (possibly partial)
// state. It is pure and idempotent: the same inputs always yield the same
// output, so it may be called after every probe completes or deferred to
// render-time (spec.md §9 open question — both are conformant).
func Compute(r *statusrow.Row) statusrow.StatusSymbols {
	r.RLock()
	defer r.RUnlock()

	s := statusrow.StatusSymbols{
		Staged:    r.WorkingTree.Loaded && r.WorkingTree.Staged,
		Modified:  r.WorkingTree.Loaded && r.WorkingTree.Modified,
		Untracked: r.WorkingTree.Loaded && r.WorkingTree.Untracked,
	}

	s.BranchOp = branchOpGlyph(r)
	s.MainDivergence = mainDivergenceGlyph(r)
	s.UpstreamDivergence = upstreamDivergenceGlyph(r)
	s.WorktreeAttr = worktreeAttrGlyph(r)

	if r.UserMarkerLoaded && r.UserMarker != "" {
		marker := r.UserMarker
		if len(marker) > 2 {
			marker = marker[:2]
		}
		s.UserMarker = marker
	}

	return s
}

// branchOpGlyph applies position 3's priority: Conflicts > InProgress
// (rebase/merge) > Would-conflict (merge-tree) > Integrated > Empty >
// SameCommit-dirty > Orphan.
func branchOpGlyph(r *statusrow.Row) rune {
	switch {
	case r.WorkingConflicts == statusrow.WorkingTreeConflictsDirtyConflict:
		return GlyphConflicts
	case r.GitOp == statusrow.GitOperationRebase:
		return GlyphInProgress
	case r.GitOp == statusrow.GitOperationMerge:
		return GlyphMergeInProgress
	case r.MergeConflictsDone && r.HasMergeConflicts:
		return GlyphWouldConflict
	case r.MainState == statusrow.MainStateIntegrated:
		return GlyphIntegrated
	case r.MainState == statusrow.MainStateEmpty:
		return GlyphEmpty
	case r.Counts.Loaded && r.Counts.Ahead == 0 && r.Counts.Behind == 0 &&
		r.WorkingConflicts == statusrow.WorkingTreeConflictsDirtyClean:
		return GlyphSameCommitDirty
	case r.MainState == statusrow.MainStateOrphan:
		return GlyphOrphan
	default:
		return 0
	}
}

func mainDivergenceGlyph(r *statusrow.Row) rune {
	if r.IsMain {
		return GlyphIsMain
	}
	if !r.Counts.Loaded {
		return 0
	}
	switch {
	case r.Counts.Ahead > 0 && r.Counts.Behind > 0:
		return GlyphDiverged
	case r.Counts.Ahead > 0:
		return GlyphAhead
	case r.Counts.Behind > 0:
		return GlyphBehind
	default:
		return 0
	}
}

func upstreamDivergenceGlyph(r *statusrow.Row) rune {
	if !r.Upstream.Loaded || !r.Upstream.Active {
		return 0
	}
	switch {
	case r.Upstream.Ahead > 0 && r.Upstream.Behind > 0:
		return GlyphUpstreamDiverged
	case r.Upstream.Ahead > 0:
		return GlyphUpstreamAhead
	case r.Upstream.Behind > 0:
		return GlyphUpstreamBehind
	default:
		return GlyphUpstreamInSync
	}
}

func worktreeAttrGlyph(r *statusrow.Row) rune {
	switch {
	case r.Kind == statusrow.KindBranch:
		return GlyphBranchOnly
	case r.BranchWorktreeMismatch:
		return GlyphBranchWorktreeMismatch
	case r.PrunableSet:
		return GlyphPrunable
	case r.LockedSet:
		return GlyphLocked
	default:
		return 0
	}
}

// Render produces the printable string for a StatusSymbols value,
// reserving each position's full width regardless of whether it is set
// (spec.md §4.4: "the renderer emits the allocated number of spaces so
// that columns align across rows").
func Render(s statusrow.StatusSymbols) string {
	b := make([]rune, 0, 9)

	b = append(b, glyphOrSpace(s.Staged, '+'))
	b = append(b, glyphOrSpace(s.Modified, '!'))
	b = append(b, glyphOrSpace(s.Untracked, '?'))
	b = append(b, runeOrSpace(s.BranchOp))
	b = append(b, runeOrSpace(s.MainDivergence))
	b = append(b, runeOrSpace(s.UpstreamDivergence))
	b = append(b, runeOrSpace(s.WorktreeAttr))

	marker := s.UserMarker
	for len(marker) < PositionWidths[PosUserMarker] {
		marker += " "
	}
	return string(b) + marker
}

func glyphOrSpace(set bool, glyph rune) rune {
	if set {
		return glyph
	}
	return ' '
}

func runeOrSpace(r rune) rune {
	if r == 0 {
		return ' '
	}
	return r
}
