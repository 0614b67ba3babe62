// Package termcap adapts terminal capability detection (is this a TTY, how
// wide/tall is it) for the progressive table renderer, grounded on the
// mattn/go-isatty + charmbracelet/x/term combination the teacher already
// depends on.
package termcap

import (
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// DefaultWidth and DefaultHeight are used when size detection fails (piped
// output, redirected to a file, or an unsupported platform).
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// Capabilities is a snapshot of what the output stream supports, taken once
// per render pass (spec.md: terminal capability detection is out of scope
// beyond the width/height/is-tty fields the renderer needs).
type Capabilities struct {
	IsTTY  bool
	Width  int
	Height int
}

// Detect inspects f (typically os.Stdout) and returns its capabilities.
// Non-TTY streams get DefaultWidth/DefaultHeight since there is no size to
// query.
func Detect(f *os.File) Capabilities {
	fd := f.Fd()
	isTTY := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	if !isTTY {
		return Capabilities{IsTTY: false, Width: DefaultWidth, Height: DefaultHeight}
	}

	w, h, err := term.GetSize(int(fd))
	if err != nil || w <= 0 || h <= 0 {
		return Capabilities{IsTTY: true, Width: DefaultWidth, Height: DefaultHeight}
	}
	return Capabilities{IsTTY: true, Width: w, Height: h}
}
