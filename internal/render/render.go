// Package render implements the progressive table renderer (spec.md §4.7):
// a TTY mode that prints a skeleton once and patches dirty lines in place
// as probes complete, and a non-TTY mode that buffers everything and
// writes the complete table once at finalize. The patch-in-place cursor
// math is hand-rolled ANSI (move up, clear, print, move back down) in the
// same "\r\x1b[2K" line-clear idiom the teacher's spinner/progress-bar
// components already use for single-line redraws, generalized here to an
// arbitrary line index within a multi-line block.
package render

import (
	"fmt"
	"io"
	"sync"
)

const (
	cursorUp   = "\x1b[%dA"
	cursorDown = "\x1b[%dB"
	clearLine  = "\r\x1b[2K"
	eraseDown  = "\x1b[0J"
)

// Renderer owns one render pass: a header line, rowCount data lines, a
// blank separator, and a footer line.
type Renderer struct {
	out    io.Writer
	tty    bool
	header string

	mu          sync.Mutex
	rowCount    int
	lines       []string
	footer      string
	visibleRows int
	truncated   bool
	started     bool
}

// New constructs a renderer and, in TTY mode, immediately prints the
// skeleton (spec.md §4.7 step 1). skeletonLine is the placeholder content
// for each not-yet-loaded row (typically a dim spinner glyph line from
// internal/rowfmt).
func New(out io.Writer, tty bool, header string, rowCount int, termHeight int, skeletonLine string) *Renderer {
	visible := rowCount
	truncated := false
	if tty && rowCount+4 > termHeight {
		visible = termHeight - 4
		if visible < 0 {
			visible = 0
		}
		truncated = true
	}

	lines := make([]string, rowCount)
	for i := range lines {
		lines[i] = skeletonLine
	}

	r := &Renderer{
		out:         out,
		tty:         tty,
		header:      header,
		rowCount:    rowCount,
		lines:       lines,
		visibleRows: visible,
		truncated:   truncated,
	}

	if tty {
		fmt.Fprintln(out, header)
		for i := 0; i < visible; i++ {
			fmt.Fprintln(out, skeletonLine)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "") // footer placeholder, patched at finalize
		r.started = true
	}

	return r
}

// totalLines is the full block height: header + data rows + blank + footer.
func (r *Renderer) totalLines() int {
	return 1 + r.visibleRows + 2
}

// UpdateRow applies new content to row i (spec.md §4.7 step 2). In TTY
// mode, a changed visible row is patched in place immediately; a row
// beyond the overflow-truncated visible window is a silent no-op. In
// non-TTY mode the content is only buffered for Finalize.
func (r *Renderer) UpdateRow(i int, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i < 0 || i >= r.rowCount {
		return
	}
	changed := r.lines[i] != content
	r.lines[i] = content

	if !r.tty || !r.started {
		return
	}
	if r.truncated && i >= r.visibleRows {
		return
	}
	if !changed {
		return
	}
	r.patchLine(1+i, content)
}

// patchLine moves the cursor up to lineIdx (0-based from the top of the
// block, header at 0), clears it, writes content, and returns the cursor
// to its resting place below the footer.
func (r *Renderer) patchLine(lineIdx int, content string) {
	up := r.totalLines() - lineIdx
	fmt.Fprintf(r.out, cursorUp, up)
	fmt.Fprint(r.out, clearLine)
	fmt.Fprint(r.out, content)
	fmt.Fprintf(r.out, cursorDown, up)
	fmt.Fprint(r.out, "\r")
}

// Finalize writes the footer (spec.md §4.7 step 4: "always updates the
// footer with the summary"). If the skeleton was truncated for overflow,
// it erases the skeleton and reprints the complete table so the extra
// rows scroll naturally; otherwise it patches the footer line in place.
// In non-TTY mode the whole buffered table is written for the first and
// only time.
func (r *Renderer) Finalize(footer string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.footer = footer

	if !r.tty || !r.started {
		fmt.Fprintln(r.out, r.header)
		for _, l := range r.lines {
			fmt.Fprintln(r.out, l)
		}
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, footer)
		return
	}

	if r.truncated {
		up := r.totalLines()
		fmt.Fprintf(r.out, cursorUp, up)
		fmt.Fprint(r.out, "\r")
		fmt.Fprint(r.out, eraseDown)
		fmt.Fprintln(r.out, r.header)
		for _, l := range r.lines {
			fmt.Fprintln(r.out, l)
		}
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, footer)
		return
	}

	r.patchLine(r.totalLines()-1, footer)
}
