// Command wtstatus inspects a git repository's worktrees and renders a
// dense, column-aligned status table, JSON, or a single-line statusline.
package main

func main() {
	Execute()
}
