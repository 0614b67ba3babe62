// Package rowfmt renders one statusrow.Row's columns into styled, aligned
// cell strings for the progressive table renderer (spec.md §4.6). Styling
// mirrors internal/ui/styles' conventions (bold-reversed current worktree,
// cyan-bold main worktree, dimmed removable rows) rather than inventing a
// parallel style vocabulary.
package rowfmt

import (
	"strings"
	"time"
	"unicode"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/wtstatus/wtstatus/internal/layout"
	"github.com/wtstatus/wtstatus/internal/statusrow"
	"github.com/wtstatus/wtstatus/internal/ui/styles"
)

// SpinnerGlyph is rendered, dimmed, for a cell whose value has not loaded
// yet (spec.md §4.6).
const SpinnerGlyph = "⋯"

// CurrentWorktreeStyle, MainWorktreeStyle, RemovableStyle and LoadingStyle
// are the row-level styles applied to the Branch and Path cells.
var (
	CurrentWorktreeStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	MainWorktreeStyle    = styles.PrimaryStyle.Bold(true)
	RemovableStyle       = lipgloss.NewStyle().Faint(true)
	LoadingStyle         = lipgloss.NewStyle().Faint(true)
)

// BranchCell renders the branch column for a row, applying the
// current/main/removable precedence spec.md §4.6 describes (current beats
// main beats removable-dimming; a row may only carry one of the three).
func BranchCell(r *statusrow.Row, width int) string {
	r.RLock()
	branch := r.Branch
	isCurrent := r.IsCurrent
	isMain := r.IsMain
	r.RUnlock()

	text := padRight(branch, width)
	switch {
	case isCurrent:
		return CurrentWorktreeStyle.Render(text)
	case isMain:
		return MainWorktreeStyle.Render(text)
	case r.IsPotentiallyRemovable():
		return RemovableStyle.Render(text)
	default:
		return text
	}
}

// PathCell renders the worktree path with a shared-prefix shortened, styled
// to match BranchCell's current/main/removable precedence.
func PathCell(r *statusrow.Row, commonPrefix string, width int) string {
	r.RLock()
	path := r.Path
	isCurrent := r.IsCurrent
	isMain := r.IsMain
	r.RUnlock()

	shown := ShortenPath(path, commonPrefix)
	text := padRight(shown, width)
	switch {
	case isCurrent:
		return CurrentWorktreeStyle.Render(text)
	case isMain:
		return MainWorktreeStyle.Render(text)
	case r.IsPotentiallyRemovable():
		return RemovableStyle.Render(text)
	default:
		return text
	}
}

// CommonPathPrefix returns the longest directory shared by every path
// (spec.md §4.6: "the longest directory shared by all worktree paths").
func CommonPathPrefix(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	split := make([][]string, len(paths))
	for i, p := range paths {
		split[i] = strings.Split(p, "/")
	}
	prefix := split[0]
	for _, parts := range split[1:] {
		prefix = commonSlicePrefix(prefix, parts)
		if len(prefix) == 0 {
			break
		}
	}
	if len(prefix) == 0 {
		return ""
	}
	return strings.Join(prefix, "/")
}

func commonSlicePrefix(a, b []string) []string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// ShortenPath drops a shared prefix from path, leaving the path unchanged
// if it doesn't share that prefix with the rest of the set.
func ShortenPath(path, commonPrefix string) string {
	if commonPrefix == "" || commonPrefix == "/" {
		return path
	}
	if !strings.HasPrefix(path, commonPrefix) {
		return path
	}
	rest := strings.TrimPrefix(path, commonPrefix)
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return "."
	}
	return ".../" + rest
}

// DiffCell right-aligns an added/deleted pair on the ones digit, padded to
// width; a value whose digit count overflows the column renders in bold
// compact notation instead (spec.md §4.6).
func DiffCell(d statusrow.LineDiff, width int) string {
	if !d.Loaded {
		return LoadingStyle.Render(padRight(SpinnerGlyph, width))
	}
	added := formatDiffNumber(d.Added, width/2)
	deleted := formatDiffNumber(d.Deleted, width/2)
	text := added + "/" + deleted
	return padLeft(text, width)
}

// CountCell formats an ahead/behind pair the same way as DiffCell.
func CountCell(ahead, behind int, loaded bool, width int) string {
	if !loaded {
		return LoadingStyle.Render(padRight(SpinnerGlyph, width))
	}
	aheadStr := formatDiffNumber(ahead, width/2)
	behindStr := formatDiffNumber(behind, width/2)
	text := aheadStr + "/" + behindStr
	return padLeft(text, width)
}

func formatDiffNumber(n int, digitBudget int) string {
	plain := itoa(n)
	if len(plain) <= digitBudget {
		return plain
	}
	return lipgloss.NewStyle().Bold(true).Render(layout.CompactNotation(n))
}

// RelativeTime formats t in the row formatter's compact style
// ("1h", "3d", "12mo"), distinct from internal/format's chattier
// "ago"-suffixed style used in interactive UI chrome.
func RelativeTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return itoa(int(d/time.Minute)) + "m"
	case d < 24*time.Hour:
		return itoa(int(d/time.Hour)) + "h"
	case d < 30*24*time.Hour:
		return itoa(int(d/(24*time.Hour))) + "d"
	case d < 365*24*time.Hour:
		return itoa(int(d/(30*24*time.Hour))) + "mo"
	default:
		return itoa(int(d/(365*24*time.Hour))) + "y"
	}
}

func itoa(n int) string {
	if n <= 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// TruncateMessage truncates s at a word boundary to at most width display
// columns, appending an ellipsis when truncated (spec.md §4.6).
func TruncateMessage(s string, width int) string {
	if width <= 1 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	budget := width - 1 // reserve a column for the ellipsis
	runes := []rune(s)
	cut := 0
	lastBoundary := 0
	w := 0
	for i, r := range runes {
		rw := ansi.StringWidth(string(r))
		if w+rw > budget {
			break
		}
		w += rw
		cut = i + 1
		if unicode.IsSpace(r) {
			lastBoundary = i
		}
	}
	if lastBoundary > 0 && lastBoundary < cut {
		cut = lastBoundary
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "…"
}

// ClampLine truncates a fully-rendered line to maxWidth display columns,
// preserving ANSI escapes and OSC-8 hyperlinks (spec.md §4.6's final
// safe-width clamp).
func ClampLine(s string, maxWidth int) string {
	if ansi.StringWidth(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "")
}

func padRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func padLeft(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}
