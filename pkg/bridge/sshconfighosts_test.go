package bridge

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSSHConfigHostProfiles_LiteralAliasOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	doc := "Host *\n  ForwardAgent yes\n\nHost web-1\n  HostName 10.0.0.1\n  User deploy\n\nHost *.internal\n  User nobody\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	profiles, err := LoadSSHConfigHostProfiles(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := profiles["*"]; ok {
		t.Fatalf("wildcard pattern should be skipped")
	}
	if _, ok := profiles["*.internal"]; ok {
		t.Fatalf("wildcard pattern should be skipped")
	}
	if _, ok := profiles["web-1"]; !ok {
		t.Fatalf("expected literal alias web-1 to be present, got %v", profiles)
	}
}

func TestLoadSSHConfigHostProfiles_PathAddAnnotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	doc := "# tmuxbridge: pathAdd=/opt/tmux/bin:/usr/local/tmux\nHost jump\n  HostName 10.0.0.2\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	profiles, err := LoadSSHConfigHostProfiles(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	jump, ok := profiles["jump"]
	if !ok {
		t.Fatalf("expected jump profile, got %v", profiles)
	}
	if len(jump.PathAdd) != 2 || jump.PathAdd[0] != "/opt/tmux/bin" {
		t.Fatalf("jump.PathAdd = %v", jump.PathAdd)
	}
}

func TestLoadSSHConfigHostProfiles_SessionAliasConvention(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	doc := "Host deploy@box:release\n  HostName 10.0.0.3\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	profiles, err := LoadSSHConfigHostProfiles(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry, ok := profiles["deploy@box:release"]
	if !ok {
		t.Fatalf("expected entry, got %v", profiles)
	}
	if entry.DefaultSession != "release" {
		t.Fatalf("DefaultSession = %q, want release", entry.DefaultSession)
	}
}

func TestLoadSSHConfigHostProfiles_MissingFileIsEmptyNotError(t *testing.T) {
	profiles, err := LoadSSHConfigHostProfiles(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("expected empty map, got %v", profiles)
	}
}
