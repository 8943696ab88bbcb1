package bridge

import (
	"encoding/base64"
	"strings"
)

// quoter.go builds the argv passed to the local transport, or the single
// remote command line passed to the remote-login transport, and composes the
// PATH the child process sees.
//
// Why base64: tmux format strings use "#{...}" tokens (e.g. "#{session_name}").
// A naive `ssh host sh -c "tmux ... -F '#{session_name}'"` re-interpretation by
// the remote login shell can mangle those bytes depending on quoting layers.
// Base64-encoding the whole remote command line and decoding it on the other
// end removes the remote shell from the quoting problem entirely; only the
// outer ssh argv needs a single shell-safe word.

// ComposePath returns a colon-separated PATH where each directory in cur
// appears at most once, in its original order, with adds appended in order
// and duplicates (against cur or already-appended adds) dropped.
func ComposePath(cur string, adds []string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range strings.Split(cur, ":") {
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	for _, d := range adds {
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return strings.Join(out, ":")
}

// ShellSingleQuote wraps s in single quotes, escaping embedded single quotes
// with the classic '\'' sequence. The result is a single valid POSIX shell
// word for any byte string, including one containing tmux format tokens.
func ShellSingleQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsRune(s, '\'') {
		return "'" + s + "'"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// BuildRemoteCommand composes "PATH=<path> exec <bin> <args...>", base64
// encodes it, and wraps it in the template the remote shell evaluates:
//
//	printf '%s' '<b64>' | base64 -d | sh
//
// The returned string is a shell pipeline, not a single word. A caller that
// passes it as the argument of `ssh host sh -c` must single-quote it once more
// (ShellSingleQuote), since ssh joins its arguments into one line that the
// remote login shell parses before sh -c runs.
func BuildRemoteCommand(path, bin string, args []string) string {
	var b strings.Builder
	b.WriteString("PATH=")
	b.WriteString(path)
	b.WriteString(" exec ")
	b.WriteString(ShellSingleQuote(bin))
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(ShellSingleQuote(a))
	}
	enc := base64.StdEncoding.EncodeToString([]byte(b.String()))
	return "printf '%s' " + ShellSingleQuote(enc) + " | base64 -d | sh"
}
