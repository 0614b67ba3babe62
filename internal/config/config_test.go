package config

import (
	"context"
	"os"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Theme.Mode != "auto" {
		t.Errorf("Theme.Mode = %q, want %q", cfg.Theme.Mode, "auto")
	}
}

func TestLoadNonexistent(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file = %v, want nil", err)
	}
	if cfg.Theme.Mode != "auto" {
		t.Errorf("Theme.Mode = %q, want %q", cfg.Theme.Mode, "auto")
	}
}

func TestLoadFromEnvPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.toml"
	content := `[list]
url = "https://{branch}.preview.example.com"

[theme]
name = "nord"
mode = "dark"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}
	if cfg.List.URL != "https://{branch}.preview.example.com" {
		t.Errorf("List.URL = %q, want template", cfg.List.URL)
	}
	if cfg.Theme.Name != "nord" || cfg.Theme.Mode != "dark" {
		t.Errorf("Theme = %+v, want {nord dark}", cfg.Theme)
	}
}

func TestLoadRejectsInvalidThemeMode(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.toml"
	if err := os.WriteFile(path, []byte("[theme]\nmode = \"dim\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(EnvConfigPath, path)

	if _, err := Load(); err == nil {
		t.Error("Load() with invalid theme.mode = nil, want error")
	}
}

func TestDefaultConfigIsValidTOML(t *testing.T) {
	content := DefaultConfig()
	var raw rawConfig
	if _, err := toml.Decode(content, &raw); err != nil {
		t.Errorf("DefaultConfig() produces invalid TOML: %v\nContent:\n%s", err, content)
	}
}

func TestWithConfig_FromContext(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{WorktreePath: "{repo}-{branch}"}
		ctx := WithConfig(context.Background(), cfg)
		got := FromContext(ctx)
		if got != cfg {
			t.Error("FromContext did not return the stored config")
		}
	})

	t.Run("default when not set", func(t *testing.T) {
		t.Parallel()
		got := FromContext(context.Background())
		if got == nil || got.Theme.Mode != "auto" {
			t.Errorf("FromContext on empty context = %+v, want Default()", got)
		}
	})
}

func TestWithWorkDir_FromContext(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		ctx := WithWorkDir(context.Background(), "/custom/path")
		got := WorkDirFromContext(ctx)
		if got != "/custom/path" {
			t.Errorf("WorkDirFromContext = %q, want %q", got, "/custom/path")
		}
	})

	t.Run("fallback to getwd when not set", func(t *testing.T) {
		t.Parallel()
		got := WorkDirFromContext(context.Background())
		wd, _ := os.Getwd()
		if got != wd {
			t.Errorf("WorkDirFromContext = %q, want %q (os.Getwd)", got, wd)
		}
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Run("WTSTATUS_THEME overrides theme name", func(t *testing.T) {
		t.Setenv("WTSTATUS_THEME", "nord")
		cfg := Default()
		applyEnvOverrides(&cfg)
		if cfg.Theme.Name != "nord" {
			t.Errorf("Theme.Name = %q, want %q", cfg.Theme.Name, "nord")
		}
	})

	t.Run("WTSTATUS_THEME_MODE overrides theme mode", func(t *testing.T) {
		t.Setenv("WTSTATUS_THEME_MODE", "dark")
		cfg := Default()
		applyEnvOverrides(&cfg)
		if cfg.Theme.Mode != "dark" {
			t.Errorf("Theme.Mode = %q, want %q", cfg.Theme.Mode, "dark")
		}
	})

	t.Run("empty env vars leave config unchanged", func(t *testing.T) {
		t.Setenv("WTSTATUS_THEME", "")
		t.Setenv("WTSTATUS_THEME_MODE", "")
		cfg := Config{Theme: ThemeConfig{Name: "dracula", Mode: "light"}}
		applyEnvOverrides(&cfg)
		if cfg.Theme.Name != "dracula" || cfg.Theme.Mode != "light" {
			t.Errorf("Theme = %+v, want unchanged", cfg.Theme)
		}
	})
}

func TestValidateEnum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		field   string
		allowed []string
		wantErr bool
	}{
		{"empty value is ok", "", "test", []string{"a", "b"}, false},
		{"valid value", "a", "test", []string{"a", "b"}, false},
		{"invalid value", "c", "test", []string{"a", "b"}, true},
		{"case sensitive", "A", "test", []string{"a", "b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateEnum(tt.value, tt.field, tt.allowed)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateEnum(%q, %q, %v) error = %v, wantErr %v", tt.value, tt.field, tt.allowed, err, tt.wantErr)
			}
		})
	}
}

func TestFormatOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []string
		want string
	}{
		{"single option", []string{"a"}, `"a"`},
		{"two options", []string{"a", "b"}, `"a" or "b"`},
		{"three options", []string{"a", "b", "c"}, `"a", "b", or "c"`},
		{"four options", []string{"a", "b", "c", "d"}, `"a", "b", "c", or "d"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := formatOptions(tt.opts)
			if got != tt.want {
				t.Errorf("formatOptions(%v) = %q, want %q", tt.opts, got, tt.want)
			}
		})
	}
}
