package bridge

import "testing"

func TestExtractRecentCommands_MatchesPromptLines(t *testing.T) {
	text := "user@host$ ls -la\nsome output\nuser@host$ cd /tmp\n"
	got := ExtractRecentCommands(text, 15)
	want := []string{"ls -la", "cd /tmp"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestExtractRecentCommands_BoundedByLimit(t *testing.T) {
	text := ""
	for i := 0; i < 30; i++ {
		text += "$ cmd\n"
	}
	got := ExtractRecentCommands(text, 15)
	if len(got) != 15 {
		t.Fatalf("expected 15 matches, got %d", len(got))
	}
}

func TestExtractRecentCommands_EmptyInputNoPanic(t *testing.T) {
	if got := ExtractRecentCommands("", 15); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := ExtractRecentCommands("no prompts here", 0); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}
