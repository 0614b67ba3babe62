package serialize

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/wtstatus/wtstatus/internal/statusrow"
)

// ClaudeCodeInput is the JSON payload the claude-code statusline variant
// reads from stdin (spec.md §4.8).
type ClaudeCodeInput struct {
	Workspace struct {
		CurrentDir string `json:"current_dir"`
	} `json:"workspace"`
	Model struct {
		DisplayName string `json:"display_name"`
	} `json:"model"`
	ContextWindow *struct {
		UsedPercent float64 `json:"used_percent"`
	} `json:"context_window,omitempty"`
}

// gaugeGlyphs runs full→empty (🌕 at 0% used, 🌑 at 100% used), spec.md
// §4.8's "context-usage gauge glyph (🌕 → 🌑 over 0 → 100%)".
var gaugeGlyphs = []rune("🌕🌔🌓🌒🌑")

// ReadClaudeCodeInput parses the stdin JSON payload. A missing or null
// context_window is not an error: the gauge is simply omitted. A payload
// that fails to decode, including a malformed context_window, is returned
// as an error.
func ReadClaudeCodeInput(r io.Reader) (ClaudeCodeInput, error) {
	var in ClaudeCodeInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return ClaudeCodeInput{}, err
	}
	return in, nil
}

// BuildClaudeCode renders the Claude-Code statusline: a shortened project
// path, the base worktree statusline, the model name, and a context-usage
// gauge glyph, in that order.
func BuildClaudeCode(row *statusrow.Row, in ClaudeCodeInput, width int) string {
	parts := []string{}

	if p := shortenProjectPath(in.Workspace.CurrentDir); p != "" {
		parts = append(parts, p)
	}

	base := Build(row, 0)
	if base != "" {
		parts = append(parts, base)
	}

	if in.Model.DisplayName != "" {
		parts = append(parts, in.Model.DisplayName)
	}

	if in.ContextWindow != nil {
		parts = append(parts, string(gaugeGlyph(in.ContextWindow.UsedPercent)))
	}

	joined := strings.Join(parts, "  ")
	if width > 0 && ansi.StringWidth(joined) > width {
		return ansi.Truncate(joined, width, "")
	}
	return joined
}

// gaugeGlyph maps a 0-100 used-percentage to one of five moon phases,
// full at 0% used and new at 100% used.
func gaugeGlyph(usedPercent float64) rune {
	idx := int(usedPercent / 100 * float64(len(gaugeGlyphs)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(gaugeGlyphs) {
		idx = len(gaugeGlyphs) - 1
	}
	return gaugeGlyphs[idx]
}

// shortenProjectPath collapses a workspace path to its last two segments,
// e.g. "/home/user/src/myproject" -> "src/myproject".
func shortenProjectPath(path string) string {
	if path == "" {
		return ""
	}
	parts := strings.Split(strings.TrimRight(path, "/"), "/")
	if len(parts) <= 2 {
		return strings.Join(parts, "/")
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
