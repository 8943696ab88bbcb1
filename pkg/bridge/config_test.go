package bridge

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("TMUXBRIDGE_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, path, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Fatalf("expected no path used, got %q", path)
	}
	if cfg.TimeoutMS != defaultTimeoutMS {
		t.Fatalf("expected default timeout, got %d", cfg.TimeoutMS)
	}
}

func TestLoadConfig_ExplicitPathWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("session_default: s1\nhost_default: h1\ntimeout_ms: 9000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, used, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if used != path {
		t.Fatalf("used = %q, want %q", used, path)
	}
	if cfg.SessionDefault != "s1" || cfg.HostDefault != "h1" || cfg.TimeoutMS != 9000 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("session_default: fromfile\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TMUXBRIDGE_SESSION_DEFAULT", "fromenv")
	cfg, _, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SessionDefault != "fromenv" {
		t.Fatalf("SessionDefault = %q, want fromenv", cfg.SessionDefault)
	}
}

func TestLoadConfig_MalformedFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("not: [valid: yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := LoadConfig(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestConfigPathCandidates_Order(t *testing.T) {
	t.Setenv("TMUXBRIDGE_CONFIG", "/env/path.yaml")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	got := ConfigPathCandidates("/explicit/path.yaml")
	if got[0] != "/explicit/path.yaml" {
		t.Fatalf("expected explicit path first, got %v", got)
	}
	if got[1] != "/env/path.yaml" {
		t.Fatalf("expected env path second, got %v", got)
	}
}
