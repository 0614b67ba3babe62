// Package worktree expands the placeholder templates used by the
// optional `url` field in configuration (spec.md §3's `url` (expanded
// template) row field, driven by internal/config.ListConfig.URL).
package worktree

import "strings"

// ExpandTemplate substitutes {repo} and {branch} placeholders in format,
// sanitizing the branch name the same way a worktree directory name would
// be (slashes become dashes) since the expanded value is typically used to
// build a URL path segment or hostname.
func ExpandTemplate(format, repoName, branch string) string {
	safeBranch := strings.ReplaceAll(branch, "/", "-")
	out := strings.ReplaceAll(format, "{repo}", repoName)
	out = strings.ReplaceAll(out, "{branch}", safeBranch)
	return out
}
