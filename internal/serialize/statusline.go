package serialize

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/wtstatus/wtstatus/internal/statusrow"
	"github.com/wtstatus/wtstatus/internal/symbols"
)

// segment is one candidate statusline piece, in priority order (spec.md
// §4.8: "Branch, Status, WorkingDiff, AheadBehind, BranchDiff, Url,
// Upstream, CiStatus"). Branch is never dropped; the rest drop lowest
// priority (rightmost) first when width is constrained.
type segment struct {
	text string
}

// Build renders row as a compact single-line statusline. width <= 0 means
// unconstrained: every non-empty segment is kept.
func Build(r *statusrow.Row, width int) string {
	segs := rowSegments(r)

	joined := joinSegments(segs)
	if width <= 0 {
		return joined
	}

	for len(segs) > 1 && ansi.StringWidth(joined) > width {
		segs = segs[:len(segs)-1]
		joined = joinSegments(segs)
	}
	if len(segs) == 1 && ansi.StringWidth(joined) > width {
		return ansi.Truncate(joined, width, "")
	}
	return joined
}

func joinSegments(segs []segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if s.text != "" {
			parts = append(parts, s.text)
		}
	}
	return strings.Join(parts, "  ")
}

func rowSegments(r *statusrow.Row) []segment {
	r.RLock()
	branch := r.Branch
	workingDiff := r.WorkingTreeDiff
	counts := r.Counts
	branchDiff := r.BranchDiff
	url := r.URL
	urlActive := r.URLActive
	urlActiveLoaded := r.URLActiveLoaded
	upstream := r.Upstream
	pr := r.PR
	symbolsSnapshot := r.Symbols
	r.RUnlock()

	return []segment{
		{text: branch},
		{text: statusSegment(symbolsSnapshot)},
		{text: diffSegment(workingDiff)},
		{text: aheadBehindSegment(counts)},
		{text: diffSegment(branchDiff)},
		{text: urlSegment(url, urlActive, urlActiveLoaded)},
		{text: upstreamSegment(upstream)},
		{text: ciSegment(pr)},
	}
}

// statusSegment collapses the symbol grid to its non-blank glyphs, dropping
// the fixed-width spaces that exist only to keep table columns aligned.
func statusSegment(s statusrow.StatusSymbols) string {
	rendered := symbols.Render(s)
	return strings.ReplaceAll(rendered, " ", "")
}

func diffSegment(d statusrow.LineDiff) string {
	if !d.Loaded || (d.Added == 0 && d.Deleted == 0) {
		return ""
	}
	return fmt.Sprintf("+%d -%d", d.Added, d.Deleted)
}

func aheadBehindSegment(c statusrow.Counts) string {
	if !c.Loaded {
		return ""
	}
	switch {
	case c.Ahead > 0 && c.Behind > 0:
		return fmt.Sprintf("↑%d↓%d", c.Ahead, c.Behind)
	case c.Ahead > 0:
		return fmt.Sprintf("↑%d", c.Ahead)
	case c.Behind > 0:
		return fmt.Sprintf("↓%d", c.Behind)
	default:
		return ""
	}
}

func upstreamSegment(u statusrow.Upstream) string {
	if !u.Loaded || !u.Active {
		return ""
	}
	switch {
	case u.Ahead > 0 && u.Behind > 0:
		return fmt.Sprintf("⇅%d/%d", u.Ahead, u.Behind)
	case u.Ahead > 0:
		return fmt.Sprintf("⇡%d", u.Ahead)
	case u.Behind > 0:
		return fmt.Sprintf("⇣%d", u.Behind)
	default:
		return ""
	}
}

func urlSegment(url string, active, loaded bool) string {
	if url == "" {
		return ""
	}
	if !loaded {
		return "url:…"
	}
	if active {
		return "url:●"
	}
	return "url:○"
}

func ciSegment(pr statusrow.PRStatus) string {
	if !pr.Loaded || pr.State == "" || pr.State == statusrow.CINone {
		return ""
	}
	switch pr.State {
	case statusrow.CIPassed:
		return "ci:✓"
	case statusrow.CIRunning:
		return "ci:●"
	case statusrow.CIFailed:
		return "ci:✗"
	case statusrow.CIConflicts:
		return "ci:⚠"
	default:
		return ""
	}
}
