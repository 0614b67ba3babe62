// Package config loads wtstatus's TOML configuration and exposes it through
// the context, the way the rest of the ambient stack is threaded.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type cfgKey struct{}
type workDirKey struct{}

// WithConfig returns a new context with the config stored in it.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, cfgKey{}, cfg)
}

// FromContext returns the config from context, or Default() if none is stored.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(cfgKey{}).(*Config); ok {
		return cfg
	}
	d := Default()
	return &d
}

// WithWorkDir returns a new context with the working directory stored in it.
func WithWorkDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, workDirKey{}, dir)
}

// WorkDirFromContext returns the working directory from context, falling
// back to os.Getwd().
func WorkDirFromContext(ctx context.Context) string {
	if dir, ok := ctx.Value(workDirKey{}).(string); ok && dir != "" {
		return dir
	}
	wd, _ := os.Getwd()
	return wd
}

// ListConfig holds the fields the core's UrlStatus probe and column
// allocator consume.
type ListConfig struct {
	URL string `toml:"url"` // per-project URL template, e.g. "https://ci.example.com/{branch}"
}

// ProjectConfig is keyed by "<host>/<namespace>/<repo>" in the config file.
// ApprovedCommands is carried for ambient-stack completeness (shell
// integration scripts consume it); the core never reads it.
type ProjectConfig struct {
	ApprovedCommands []string `toml:"approved-commands"`
}

// CommitGenerationConfig configures an external commit-message generator
// invoked by shell integration; the core does not call it.
type CommitGenerationConfig struct {
	Command string `toml:"command"`
}

// ThemeConfig holds color/symbol preferences for the status-symbol engine
// and progressive renderer.
type ThemeConfig struct {
	Name     string `toml:"name"`     // preset: "none", "default", "dracula", "nord", "gruvbox", "catppuccin"
	Mode     string `toml:"mode"`     // "auto", "light", "dark"
	Nerdfont bool   `toml:"nerdfont"` // use nerd-font glyph variants
}

// Config holds wtstatus's configuration. Only WorktreePath, List.URL,
// Projects, and CommitGeneration are named in the external interface;
// Theme is ambient (carried regardless of the spec's Non-goals on
// observability/styling layers).
type Config struct {
	WorktreePath                string                    `toml:"worktree-path"` // not consumed by the core
	List                        ListConfig                `toml:"list"`
	Projects                    map[string]ProjectConfig   `toml:"projects"`
	CommitGeneration            CommitGenerationConfig     `toml:"commit"`
	SkipShellIntegrationPrompt  bool                       `toml:"skip-shell-integration-prompt"`
	SkipCommitGenerationPrompt  bool                       `toml:"skip-commit-generation-prompt"`
	Theme                       ThemeConfig                `toml:"theme"`
}

// Default returns the zero-value configuration with its documented defaults.
func Default() Config {
	return Config{
		Theme: ThemeConfig{Mode: "auto"},
	}
}

// EnvConfigPath is the environment variable that overrides the config file
// location, per the external-interface environment table.
const EnvConfigPath = "WORKTRUNK_CONFIG"

// configPath resolves the config file location: $WORKTRUNK_CONFIG if set,
// otherwise ~/.config/wtstatus/config.toml.
func configPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wtstatus", "config.toml"), nil
}

// rawConfig mirrors Config for initial TOML decoding, before validation and
// env-var overrides are applied.
type rawConfig struct {
	WorktreePath               string                   `toml:"worktree-path"`
	List                       ListConfig               `toml:"list"`
	Projects                   map[string]ProjectConfig `toml:"projects"`
	CommitGeneration           CommitGenerationConfig   `toml:"commit"`
	SkipShellIntegrationPrompt bool                     `toml:"skip-shell-integration-prompt"`
	SkipCommitGenerationPrompt bool                     `toml:"skip-commit-generation-prompt"`
	Theme                      ThemeConfig              `toml:"theme"`
}

// Load reads config from $WORKTRUNK_CONFIG or the default path.
// Returns Default() if the file does not exist; returns an error only if
// the file exists but fails to parse or fails enum validation.
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Config{
		WorktreePath:                raw.WorktreePath,
		List:                        raw.List,
		Projects:                    raw.Projects,
		CommitGeneration:            raw.CommitGeneration,
		SkipShellIntegrationPrompt:  raw.SkipShellIntegrationPrompt,
		SkipCommitGenerationPrompt:  raw.SkipCommitGenerationPrompt,
		Theme:                       raw.Theme,
	}

	if err := validateEnum(cfg.Theme.Mode, "theme.mode", ValidThemeModes); err != nil {
		return Default(), err
	}
	if cfg.Theme.Mode == "" {
		cfg.Theme.Mode = "auto"
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// applyEnvOverrides applies WT_THEME/WT_THEME_MODE-style overrides, kept
// from the ambient stack's precedent for env-tunable display preferences.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WTSTATUS_THEME"); v != "" {
		cfg.Theme.Name = v
	}
	if v := os.Getenv("WTSTATUS_THEME_MODE"); v != "" {
		cfg.Theme.Mode = v
	}
}

// defaultConfig is the default config file template, written by `wtstatus
// config init`-style tooling in a full CLI (not part of the core; kept here
// as the canonical documented shape of every recognized key).
const defaultConfig = `# wtstatus configuration

# Worktree path template, shared with the worktree-creation collaborator.
# Not read by the status engine itself.
# worktree-path = "{repo}-{branch}"

[list]
# Per-project URL template probed by the UrlStatus probe, e.g. a preview
# deployment. Supports {branch} and {repo} placeholders.
# url = "https://{branch}.preview.example.com"

# Per-project approved-command allowlist, keyed by "<host>/<namespace>/<repo>".
# Consumed by shell integration, not by the status engine.
# [projects."github.com/example/repo"]
# approved-commands = ["npm install"]

[commit]
# External commit-message generator invoked by shell integration.
# command = "llm-commit-msg"

# skip-shell-integration-prompt = false
# skip-commit-generation-prompt = false

[theme]
# name = "catppuccin"
# mode = "auto"
# nerdfont = true
`

// DefaultConfig returns the default configuration file content.
func DefaultConfig() string {
	return defaultConfig
}
