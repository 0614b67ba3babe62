package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/wtstatus/wtstatus/internal/config"
	"github.com/wtstatus/wtstatus/internal/layout"
	"github.com/wtstatus/wtstatus/internal/render"
	"github.com/wtstatus/wtstatus/internal/rowfmt"
	"github.com/wtstatus/wtstatus/internal/scheduler"
	"github.com/wtstatus/wtstatus/internal/serialize"
	"github.com/wtstatus/wtstatus/internal/statusrow"
	"github.com/wtstatus/wtstatus/internal/symbols"
	"github.com/wtstatus/wtstatus/internal/termcap"
	"github.com/wtstatus/wtstatus/internal/ui/progress"
)

// renderListTable drives the progressive table renderer (spec.md §4.7):
// list worktrees, print a skeleton, then patch rows in place as probes
// complete. Non-TTY output (or --no-progress) buffers the complete table
// and prints it once.
func renderListTable(ctx context.Context, repoPath string, cfg *config.Config, opts collectOptions, noProgress bool) error {
	caps := termcap.Detect(os.Stdout)
	progressive := caps.IsTTY && !noProgress

	set, err := prepareRowSet(ctx, repoPath, cfg, opts)
	if err != nil {
		return fmt.Errorf("list worktrees: %w", err)
	}
	if len(set.Rows) == 0 {
		fmt.Println("No worktrees found")
		return nil
	}

	commonPrefix := rowfmt.CommonPathPrefix(rowPaths(set.Rows))
	columns := skeletonColumns(set.Rows, opts)
	skeletonResult := layout.Allocate(columns, caps.Width)

	var rend *render.Renderer
	var spin *progress.Spinner
	if progressive {
		header := renderHeaderLine(skeletonResult.Placements)
		skeleton := rowfmt.LoadingStyle.Render(strings.Repeat(" ", lineWidth(skeletonResult.Placements)))
		rend = render.New(os.Stdout, true, header, len(set.Rows), caps.Height, skeleton)
	} else if caps.IsTTY {
		// --no-progress still on a TTY: skip the in-place skeleton but show a
		// spinner while probes run, rather than leaving the terminal silent.
		spin = progress.NewSpinner("collecting worktree status…")
		spin.Start()
	}

	onUpdate := func(rowIdx int, row *statusrow.Row) {
		if rend == nil {
			return
		}
		rend.UpdateRow(rowIdx, renderRowLine(row, skeletonResult.Placements, commonPrefix, serialize.Now()))
	}

	result := runRowSet(ctx, set, onUpdate)
	if spin != nil {
		spin.Stop()
	}

	finalColumns := finalColumnsFor(result.Rows, opts)
	finalResult := layout.Allocate(finalColumns, caps.Width)
	commonPrefix = rowfmt.CommonPathPrefix(rowPaths(result.Rows))

	footer := buildFooter(result, finalResult)

	if rend != nil {
		// re-render every row against the final (data-derived) column
		// widths before the footer is patched in, so the progressive
		// skeleton's generous estimates don't linger in the finished table.
		for i, r := range result.Rows {
			rend.UpdateRow(i, renderRowLine(r, finalResult.Placements, commonPrefix, serialize.Now()))
		}
		rend.Finalize(footer)
		return nil
	}

	fmt.Println(renderHeaderLine(finalResult.Placements))
	for _, r := range result.Rows {
		fmt.Println(renderRowLine(r, finalResult.Placements, commonPrefix, serialize.Now()))
	}
	fmt.Println()
	fmt.Println(footer)
	return nil
}

func rowPaths(rows []*statusrow.Row) []string {
	paths := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Path != "" {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

// skeletonColumns builds the catalog with the generous skeleton-phase
// width estimates (spec.md §4.5's final paragraph), gating columns the
// current flags didn't request.
func skeletonColumns(rows []*statusrow.Row, opts collectOptions) []layout.Column {
	cols := make([]layout.Column, len(layout.Catalog))
	copy(cols, layout.Catalog)
	for i := range cols {
		cols[i].Gated = columnGated(cols[i].Kind, opts)
		cols[i].HasData = true
		if w, ok := layout.EstimatedWidths[cols[i].Kind]; ok {
			cols[i].IdealWidth = w
		} else {
			cols[i].IdealWidth = idealWidthFallback(cols[i].Kind, rows)
		}
	}
	return cols
}

// finalColumnsFor rebuilds the catalog from actually observed row data,
// once every probe has either landed or timed out.
func finalColumnsFor(rows []*statusrow.Row, opts collectOptions) []layout.Column {
	cols := make([]layout.Column, len(layout.Catalog))
	copy(cols, layout.Catalog)
	for i := range cols {
		k := cols[i].Kind
		cols[i].Gated = columnGated(k, opts)
		cols[i].HasData = columnHasData(k, rows)
		cols[i].IdealWidth = idealWidthFallback(k, rows)
	}
	return cols
}

func columnGated(k layout.ColumnKind, opts collectOptions) bool {
	switch k {
	case layout.BranchDiff, layout.WorkingDiff:
		return !opts.Full
	case layout.CiStatus:
		return !opts.FetchCI
	}
	return false
}

func columnHasData(k layout.ColumnKind, rows []*statusrow.Row) bool {
	for _, r := range rows {
		r.RLock()
		has := columnRowHasData(k, r)
		r.RUnlock()
		if has {
			return true
		}
	}
	return false
}

func columnRowHasData(k layout.ColumnKind, r *statusrow.Row) bool {
	switch k {
	case layout.Branch:
		return r.Branch != ""
	case layout.Status:
		return true
	case layout.WorkingDiff:
		return r.WorkingTreeDiff.Loaded && (r.WorkingTreeDiff.Added != 0 || r.WorkingTreeDiff.Deleted != 0)
	case layout.AheadBehind:
		return r.Counts.Loaded && (r.Counts.Ahead != 0 || r.Counts.Behind != 0)
	case layout.BranchDiff:
		return r.BranchDiff.Loaded && (r.BranchDiff.Added != 0 || r.BranchDiff.Deleted != 0)
	case layout.Path:
		return r.Path != ""
	case layout.Upstream:
		return r.Upstream.Loaded && r.Upstream.Active
	case layout.Url:
		return r.URL != ""
	case layout.CiStatus:
		return r.PR.Loaded && r.PR.State != statusrow.CINone && r.PR.State != ""
	case layout.Time:
		return r.Commit.Loaded
	case layout.Commit:
		return r.HeadSHA != ""
	case layout.Message:
		return r.Commit.Loaded && r.Commit.Subject != ""
	}
	return false
}

func idealWidthFallback(k layout.ColumnKind, rows []*statusrow.Row) int {
	switch k {
	case layout.Branch:
		return maxLen(rows, func(r *statusrow.Row) string { return r.Branch })
	case layout.Status:
		return 9
	case layout.Path:
		return maxLen(rows, func(r *statusrow.Row) string { return r.Path })
	case layout.Url:
		return maxLen(rows, func(r *statusrow.Row) string { return r.URL })
	case layout.CiStatus:
		return 12
	case layout.Time:
		return 6
	case layout.Commit:
		return 7
	case layout.WorkingDiff, layout.BranchDiff:
		return 9
	case layout.AheadBehind, layout.Upstream:
		return 7
	}
	return 4
}

func maxLen(rows []*statusrow.Row, f func(*statusrow.Row) string) int {
	m := 0
	for _, r := range rows {
		if n := ansi.StringWidth(f(r)); n > m {
			m = n
		}
	}
	return m
}

func renderHeaderLine(placements []layout.Placement) string {
	var b strings.Builder
	pos := 0
	for _, p := range placements {
		b.WriteString(strings.Repeat(" ", p.Start-pos))
		b.WriteString(padHeader(columnHeader(p.Kind), p.Width))
		pos = p.Start + p.Width
	}
	return b.String()
}

func columnHeader(k layout.ColumnKind) string {
	for _, c := range layout.Catalog {
		if c.Kind == k {
			return c.Header
		}
	}
	return ""
}

func padHeader(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func lineWidth(placements []layout.Placement) int {
	if len(placements) == 0 {
		return 0
	}
	last := placements[len(placements)-1]
	return last.Start + last.Width
}

func renderRowLine(r *statusrow.Row, placements []layout.Placement, commonPrefix string, now time.Time) string {
	var b strings.Builder
	pos := 0
	for _, p := range placements {
		b.WriteString(strings.Repeat(" ", p.Start-pos))
		b.WriteString(renderCell(r, p.Kind, p.Width, commonPrefix, now))
		pos = p.Start + p.Width
	}
	return b.String()
}

func renderCell(r *statusrow.Row, k layout.ColumnKind, width int, commonPrefix string, now time.Time) string {
	switch k {
	case layout.Branch:
		return rowfmt.BranchCell(r, width)
	case layout.Status:
		r.RLock()
		sym := r.Symbols
		r.RUnlock()
		return padHeader(symbols.Render(sym), width)
	case layout.WorkingDiff:
		r.RLock()
		d := r.WorkingTreeDiff
		r.RUnlock()
		return rowfmt.DiffCell(d, width)
	case layout.AheadBehind:
		r.RLock()
		c := r.Counts
		r.RUnlock()
		return rowfmt.CountCell(c.Ahead, c.Behind, c.Loaded, width)
	case layout.BranchDiff:
		r.RLock()
		d := r.BranchDiff
		r.RUnlock()
		return rowfmt.DiffCell(d, width)
	case layout.Path:
		return rowfmt.PathCell(r, commonPrefix, width)
	case layout.Upstream:
		r.RLock()
		u := r.Upstream
		r.RUnlock()
		return upstreamCell(u, width)
	case layout.Url:
		r.RLock()
		url, active, loaded := r.URL, r.URLActive, r.URLActiveLoaded
		r.RUnlock()
		return urlCell(url, active, loaded, width)
	case layout.CiStatus:
		r.RLock()
		pr := r.PR
		r.RUnlock()
		return ciCell(pr, width)
	case layout.Time:
		r.RLock()
		commit := r.Commit
		r.RUnlock()
		if !commit.Loaded {
			return rowfmt.LoadingStyle.Render(padHeader(rowfmt.SpinnerGlyph, width))
		}
		return padHeader(rowfmt.RelativeTime(time.Unix(commit.Timestamp, 0), now), width)
	case layout.Commit:
		return padHeader(r.ShortSHA(), width)
	case layout.Message:
		r.RLock()
		commit := r.Commit
		r.RUnlock()
		if !commit.Loaded {
			return rowfmt.LoadingStyle.Render(padHeader(rowfmt.SpinnerGlyph, width))
		}
		return padHeader(rowfmt.TruncateMessage(commit.Subject, width), width)
	}
	return strings.Repeat(" ", width)
}

func upstreamCell(u statusrow.Upstream, width int) string {
	if !u.Loaded {
		return rowfmt.LoadingStyle.Render(padHeader(rowfmt.SpinnerGlyph, width))
	}
	if !u.Active {
		return strings.Repeat(" ", width)
	}
	return rowfmt.CountCell(u.Ahead, u.Behind, true, width)
}

func urlCell(url string, active, loaded bool, width int) string {
	if url == "" {
		return strings.Repeat(" ", width)
	}
	if !loaded {
		return rowfmt.LoadingStyle.Render(padHeader(rowfmt.SpinnerGlyph, width))
	}
	glyph := "○"
	if active {
		glyph = "●"
	}
	return padHeader(glyph, width)
}

func ciCell(pr statusrow.PRStatus, width int) string {
	if !pr.Loaded {
		return rowfmt.LoadingStyle.Render(padHeader(rowfmt.SpinnerGlyph, width))
	}
	if pr.State == "" || pr.State == statusrow.CINone {
		return strings.Repeat(" ", width)
	}
	text := string(pr.State)
	if pr.URL != "" {
		return padHeader(ansi.SetHyperlink(pr.URL)+text+ansi.ResetHyperlink(), width)
	}
	return padHeader(text, width)
}

func buildFooter(result *collectResult, placed layout.Result) string {
	var parts []string
	if n := placed.HiddenNonemptyCount; n > 0 {
		parts = append(parts, fmt.Sprintf("%d column(s) hidden for width", n))
	}
	if msg := scheduler.FormatMissing(result.Missing); msg != "" {
		parts = append(parts, msg)
	}
	parts = append(parts, fmt.Sprintf("%d row(s)", len(result.Rows)))
	return strings.Join(parts, "; ")
}

func printMissingNotice(missing []scheduler.Missing) error {
	if msg := scheduler.FormatMissing(missing); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	return nil
}
