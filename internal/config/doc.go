// Package config loads wtstatus's TOML configuration.
//
// Configuration is read from $WORKTRUNK_CONFIG, or
// ~/.config/wtstatus/config.toml when that variable is unset. A missing
// file is not an error; Load returns Default().
//
// # Fields consumed by the status engine
//
//   - [list].url: per-project URL template used by the UrlStatus probe
//
// # Ambient fields (carried for a coherent CLI, not read by the core)
//
//   - worktree-path: template shared with the worktree-creation collaborator
//   - [projects."<host>/<ns>/<repo>"].approved-commands: shell-integration allowlist
//   - [commit].command: external commit-message generator
//   - skip-shell-integration-prompt, skip-commit-generation-prompt
//   - [theme]: name/mode/nerdfont, overridable by WTSTATUS_THEME and
//     WTSTATUS_THEME_MODE
package config
