package bridge

import "regexp"

// ansistrip.go: optional post-processor removing CSI/OSC escape sequences
// from captured text, per §4.5's "ANSI stripping". Applied to deltas, not to
// raw chunks, so subsequent delta extraction still works against the
// un-stripped stream.

var ansiCSIOSC = regexp.MustCompile(`[\x1B\x9B][[\]()#;?]*(?:(?:[0-9]{1,4}(?:;[0-9]{0,4})*)?[0-9A-ORZcf-nqry=><~])`)

// StripANSI removes CSI/OSC escape sequences from s.
func StripANSI(s string) string {
	return ansiCSIOSC.ReplaceAllString(s, "")
}
