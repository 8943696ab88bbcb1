package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// config.go implements C11: the ambient BridgeConfig loader. Search-path
// convention adapted from the teacher's LoadConfig/ConfigPathCandidates
// (config.go), generalized to this module's own env var and file names.

// BridgeConfig is the process-wide ambient configuration record (§3, §6).
// Immutable after load.
type BridgeConfig struct {
	SessionDefault string `yaml:"session_default,omitempty"`
	HostDefault    string `yaml:"host_default,omitempty"`
	BinaryPath     string `yaml:"binary_path,omitempty"`
	TimeoutMS      int    `yaml:"timeout_ms,omitempty"`
	HostsFile      string `yaml:"hosts_file,omitempty"`
	LogDir         string `yaml:"log_dir,omitempty"`
	DefaultsFile   string `yaml:"defaults_file,omitempty"`
}

const (
	envConfigPath = "TMUXBRIDGE_CONFIG"
	configDirName = "tmux-agent-bridge"
	configFile    = "config.yaml"
)

// ConfigPathCandidates returns the ordered list of paths LoadConfig tries:
// explicit path, $TMUXBRIDGE_CONFIG, $XDG_CONFIG_HOME/tmux-agent-bridge/config.yaml,
// ~/.config/tmux-agent-bridge/config.yaml.
func ConfigPathCandidates(explicitPath string) []string {
	var out []string
	if explicitPath != "" {
		out = append(out, explicitPath)
	}
	if env := os.Getenv(envConfigPath); env != "" {
		out = append(out, env)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		out = append(out, filepath.Join(xdg, configDirName, configFile))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		out = append(out, filepath.Join(home, ".config", configDirName, configFile))
	}
	return out
}

// LoadConfig loads the first candidate path that exists, applying env-var
// overrides (§6) on top. A missing file at every candidate is not an error:
// the zero-value config plus overrides is returned. A present-but-malformed
// file is fatal (wrapped, not recovered) — unlike host/layout documents,
// whose ProfileLoadFailure is recovered locally per §7.
func LoadConfig(explicitPath string) (BridgeConfig, string, error) {
	var cfg BridgeConfig
	usedPath := ""
	for _, p := range ConfigPathCandidates(explicitPath) {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return BridgeConfig{}, p, fmt.Errorf("parse config %s: %w", p, err)
		}
		usedPath = p
		break
	}

	applyEnvOverrides(&cfg)
	if cfg.TimeoutMS <= 0 {
		cfg.TimeoutMS = defaultTimeoutMS
	}
	return cfg, usedPath, nil
}

// applyEnvOverrides lets each field in §6's configuration surface be set
// directly from the environment, taking precedence over the YAML file.
func applyEnvOverrides(cfg *BridgeConfig) {
	if v := os.Getenv("TMUXBRIDGE_SESSION_DEFAULT"); v != "" {
		cfg.SessionDefault = v
	}
	if v := os.Getenv("TMUXBRIDGE_HOST_DEFAULT"); v != "" {
		cfg.HostDefault = v
	}
	if v := os.Getenv("TMUXBRIDGE_BINARY_PATH"); v != "" {
		cfg.BinaryPath = v
	}
	if v := os.Getenv("TMUXBRIDGE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutMS = n
		}
	}
	if v := os.Getenv("TMUXBRIDGE_HOSTS_FILE"); v != "" {
		cfg.HostsFile = v
	}
	if v := os.Getenv("TMUXBRIDGE_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("TMUXBRIDGE_DEFAULTS_FILE"); v != "" {
		cfg.DefaultsFile = v
	}
}
