package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeEmptyUsesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.REPL.Prompt != "> " {
		t.Errorf("prompt = %q, want %q", cfg.REPL.Prompt, "> ")
	}
	if !cfg.REPL.Color {
		t.Error("color should default to true")
	}
	if cfg.LogLevel() != slog.LevelWarn {
		t.Errorf("level = %v, want warn", cfg.LogLevel())
	}
}

func TestDecodeOverridesDefaults(t *testing.T) {
	src := `
repl:
  prompt: "lox> "
  color: false
  history_file: /tmp/hist
log:
  level: debug
`
	cfg, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.REPL.Prompt != "lox> " || cfg.REPL.Color || cfg.REPL.HistoryFile != "/tmp/hist" {
		t.Errorf("unexpected repl config: %+v", cfg.REPL)
	}
	if cfg.LogLevel() != slog.LevelDebug {
		t.Errorf("level = %v, want debug", cfg.LogLevel())
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := Decode(strings.NewReader("repl:\n  promt: \"> \"\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if !strings.Contains(err.Error(), "promt") {
		t.Errorf("error should name the field, got: %v", err)
	}
}

func TestDecodeValidation(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		contains string
	}{
		{"empty prompt", "repl:\n  prompt: \"\"\n", "repl.prompt"},
		{"bad level", "log:\n  level: loud\n", `log.level "loud"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lox.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.LogLevel() != slog.LevelError {
		t.Errorf("level = %v, want error", cfg.LogLevel())
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadMissingDefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
	if cfg.REPL.Prompt != "> " {
		t.Errorf("prompt = %q", cfg.REPL.Prompt)
	}
}
