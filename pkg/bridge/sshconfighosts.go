package bridge

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sshconfighosts.go implements the SSH-config half of C12, adapted from the
// teacher's SSHHostEntry/LoadSSHConfig/parseSSHConfigRecursive
// (sshconfig.go), trimmed to what this module's HostProfile actually needs:
// no port/identity-file/proxy-jump editing support, just enough per-Host
// parsing to emit a HostProfile per literal alias and honor the
// "# tmuxbridge: pathAdd=..." annotation from SPEC_FULL.md §4.12.

type sshHostBlock struct {
	patterns []string
	settings map[string]string // last-wins
	pathAdd  []string
	tmuxBin  string
}

// LoadSSHConfigHostProfiles parses an OpenSSH client config file (walking
// Include directives, whose patterns are expanded with filepath.Glob relative
// to the including file's directory) and returns one HostProfile per literal
// (non-wildcard) Host alias.
func LoadSSHConfigHostProfiles(path string) (map[string]HostProfile, error) {
	visited := make(map[string]struct{})
	blocks, err := parseSSHConfigBlocksRecursive(path, visited)
	if err != nil {
		return nil, &Error{Kind: KindProfileLoadFailure, Message: fmt.Sprintf("parse ssh config %s: %v", path, err), Wrapped: err}
	}

	profiles := make(map[string]HostProfile)
	for _, b := range blocks {
		for _, pat := range b.patterns {
			if !isLiteralSSHPattern(pat) {
				continue
			}
			profile := HostProfile{PathAdd: b.pathAdd, TmuxBin: b.tmuxBin}
			if session, ok := sessionFromAliasConvention(pat); ok {
				profile.DefaultSession = session
			} else if pj, ok := b.settings["proxyjump"]; ok && looksLikeSessionHint(pj) {
				profile.DefaultSession = pj
			}
			profiles[pat] = profile
		}
	}
	return profiles, nil
}

// LoadSSHConfigHostProfilesDefault loads from ~/.ssh/config.
func LoadSSHConfigHostProfilesDefault() (map[string]HostProfile, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadSSHConfigHostProfiles(filepath.Join(home, ".ssh", "config"))
}

func parseSSHConfigBlocksRecursive(path string, visited map[string]struct{}) ([]sshHostBlock, error) {
	abs, err := filepath.Abs(expandUserPath(path))
	if err != nil {
		abs = path
	}
	if _, ok := visited[abs]; ok {
		return nil, nil
	}
	visited[abs] = struct{}{}

	f, err := os.Open(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var blocks []sshHostBlock
	var current *sshHostBlock
	// Annotation comments conventionally precede the Host line they describe;
	// buffer them until the next block opens.
	var pendingPathAdd []string
	var pendingTmuxBin string

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			if annotation, ok := parsePathAddAnnotation(trimmed); ok {
				if current != nil {
					current.pathAdd = append(current.pathAdd, annotation...)
				} else {
					pendingPathAdd = append(pendingPathAdd, annotation...)
				}
			}
			if bin, ok := parseTmuxBinAnnotation(trimmed); ok {
				if current != nil {
					current.tmuxBin = bin
				} else {
					pendingTmuxBin = bin
				}
			}
			continue
		}

		key, val, ok := splitSSHDirective(trimmed)
		if !ok {
			continue
		}
		lowerKey := strings.ToLower(key)

		switch lowerKey {
		case "host":
			if current != nil {
				blocks = append(blocks, *current)
			}
			current = &sshHostBlock{patterns: strings.Fields(val), settings: map[string]string{}}
			if len(pendingPathAdd) > 0 {
				current.pathAdd = append(current.pathAdd, pendingPathAdd...)
				pendingPathAdd = nil
			}
			if pendingTmuxBin != "" {
				current.tmuxBin = pendingTmuxBin
				pendingTmuxBin = ""
			}
		case "include":
			dir := filepath.Dir(abs)
			for _, pattern := range strings.Fields(val) {
				p := pattern
				if !filepath.IsAbs(p) {
					p = filepath.Join(dir, p)
				}
				matches, _ := filepath.Glob(p)
				for _, m := range matches {
					sub, err := parseSSHConfigBlocksRecursive(m, visited)
					if err != nil {
						return nil, err
					}
					blocks = append(blocks, sub...)
				}
			}
		default:
			if current != nil {
				current.settings[lowerKey] = val
			}
		}
	}
	if current != nil {
		blocks = append(blocks, *current)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}

func splitSSHDirective(line string) (key, value string, ok bool) {
	idx := strings.IndexAny(line, " \t=")
	if idx < 0 {
		return "", "", false
	}
	key = line[:idx]
	value = strings.TrimSpace(strings.TrimPrefix(line[idx:], "="))
	value = strings.TrimSpace(value)
	return key, value, true
}

func isLiteralSSHPattern(pat string) bool {
	if pat == "" || strings.HasPrefix(pat, "!") {
		return false
	}
	return !strings.ContainsAny(pat, "*?")
}

// sessionFromAliasConvention recognizes the "user@host:session" alias
// convention named in SPEC_FULL.md §4.12.
func sessionFromAliasConvention(alias string) (string, bool) {
	if idx := strings.LastIndex(alias, ":"); idx >= 0 && idx < len(alias)-1 {
		return alias[idx+1:], true
	}
	return "", false
}

func looksLikeSessionHint(s string) bool {
	return s != "" && !strings.Contains(s, ".") && !strings.Contains(s, "@")
}

// parsePathAddAnnotation recognizes "# tmuxbridge: pathAdd=dir1:dir2" comment
// lines attached to a Host block.
func parsePathAddAnnotation(comment string) ([]string, bool) {
	body := strings.TrimSpace(strings.TrimPrefix(comment, "#"))
	const prefix = "tmuxbridge:"
	if !strings.HasPrefix(body, prefix) {
		return nil, false
	}
	rest := strings.TrimSpace(body[len(prefix):])
	const pathAddPrefix = "pathAdd="
	if !strings.HasPrefix(rest, pathAddPrefix) {
		return nil, false
	}
	dirs := strings.Split(strings.TrimPrefix(rest, pathAddPrefix), ":")
	var out []string
	for _, d := range dirs {
		if d != "" {
			out = append(out, d)
		}
	}
	return out, len(out) > 0
}

// parseTmuxBinAnnotation recognizes "# tmuxbridge: tmuxBin=/path/to/tmux".
func parseTmuxBinAnnotation(comment string) (string, bool) {
	body := strings.TrimSpace(strings.TrimPrefix(comment, "#"))
	const prefix = "tmuxbridge:"
	if !strings.HasPrefix(body, prefix) {
		return "", false
	}
	rest := strings.TrimSpace(body[len(prefix):])
	const tmuxBinPrefix = "tmuxBin="
	if !strings.HasPrefix(rest, tmuxBinPrefix) {
		return "", false
	}
	v := strings.TrimSpace(strings.TrimPrefix(rest, tmuxBinPrefix))
	return v, v != ""
}

func expandUserPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			if p == "~" {
				return home
			}
			return filepath.Join(home, p[2:])
		}
	}
	return os.ExpandEnv(p)
}
