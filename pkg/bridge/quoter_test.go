package bridge

import (
	"encoding/base64"
	"os/exec"
	"strings"
	"testing"
)

func TestComposePath_DedupesAndPreservesOrder(t *testing.T) {
	got := ComposePath("/bin:/usr/bin", []string{"/usr/bin", "/opt/bin"})
	want := "/bin:/usr/bin:/opt/bin"
	if got != want {
		t.Fatalf("ComposePath() = %q, want %q", got, want)
	}
}

func TestComposePath_EmptyCurrent(t *testing.T) {
	got := ComposePath("", []string{"/opt/bin", "/opt/bin"})
	want := "/opt/bin"
	if got != want {
		t.Fatalf("ComposePath() = %q, want %q", got, want)
	}
}

func TestShellSingleQuote_RoundTrips(t *testing.T) {
	cases := []string{"", "plain", "has'quote", "'''", "#{session_name}", "spaces here"}
	for _, s := range cases {
		quoted := ShellSingleQuote(s)
		out, err := exec.Command("sh", "-c", "printf '%s' "+quoted).Output()
		if err != nil {
			t.Fatalf("sh -c failed for input %q: %v", s, err)
		}
		if string(out) != s {
			t.Fatalf("round trip mismatch: input %q, quoted %q, got %q", s, quoted, string(out))
		}
	}
}

func TestShellSingleQuote_Empty(t *testing.T) {
	if got := ShellSingleQuote(""); got != "''" {
		t.Fatalf("ShellSingleQuote(\"\") = %q, want ''", got)
	}
}

func TestBuildRemoteCommand_PreservesFormatTokens(t *testing.T) {
	remote := BuildRemoteCommand("/bin:/usr/bin", "tmux", []string{"list-windows", "-F", "#{session_name}"})
	if !strings.Contains(remote, "base64 -d") {
		t.Fatalf("expected base64 decode pipeline, got: %s", remote)
	}

	// Extract the single-quoted base64 payload and decode it directly,
	// rather than relying on a tmux binary being present to exercise it.
	end := strings.LastIndex(remote, "'")
	start := -1
	if end > 0 {
		start = strings.LastIndex(remote[:end], "'")
	}
	if start < 0 || end <= start {
		t.Fatalf("could not locate quoted payload in %q", remote)
	}
	payload := remote[start+1 : end]
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !strings.Contains(string(decoded), "#{session_name}") {
		t.Fatalf("decoded command lost format token: %s", decoded)
	}
}
