package bridge

import "regexp"

// recentcmd.go implements C14: the best-effort recent-command extractor
// (§4.14, Open Question 3). Explicitly non-contractual: no other component
// depends on its output for correctness.

var recentCommandLine = regexp.MustCompile(`[$#>] ([^\s].*)$`)

const defaultRecentCommandLimit = 15

// ExtractRecentCommands applies /[$#>] ([^\s].*)$/ per line and keeps at most
// limit matches (default 15 when limit <= 0), most-recent-last.
func ExtractRecentCommands(text string, limit int) []string {
	if limit <= 0 {
		limit = defaultRecentCommandLimit
	}
	if text == "" {
		return nil
	}

	var matches []string
	for _, line := range splitLinesKeepEmpty(text) {
		m := recentCommandLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		matches = append(matches, m[1])
	}

	if len(matches) > limit {
		matches = matches[len(matches)-limit:]
	}
	return matches
}

func splitLinesKeepEmpty(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
