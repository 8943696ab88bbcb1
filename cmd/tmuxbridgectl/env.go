package main

import (
	"fmt"
	"os"
	"strings"

	"tmux-agent-bridge/pkg/bridge"
)

// env bundles the process-wide pieces every subcommand needs: ambient config,
// the host-profile-aware resolver, the default-target registry, and the
// safety gate with its file-backed audit/session sinks. Built once in main,
// mirroring the teacher's single manager.Config loaded at startup and handed
// to every subcommand.
type env struct {
	cfg      bridge.BridgeConfig
	hosts    map[string]bridge.HostProfile
	defaults *bridge.DefaultRegistry
	resolver bridge.Resolver
	gate     bridge.Gate
	sink     *bridge.FileSink
}

func loadEnv(configPath string) (*env, error) {
	cfg, _, err := bridge.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	hosts := map[string]bridge.HostProfile{}
	if cfg.HostsFile != "" {
		hosts = bridge.LoadHostProfilesRecovered(cfg.HostsFile)
	}

	defaultsPath := cfg.DefaultsFile
	reg := bridge.NewDefaultRegistry(defaultsPath)

	logDir := cfg.LogDir
	if logDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			logDir = home + "/.local/share/tmux-agent-bridge/logs"
		}
	}
	sink := bridge.NewFileSink(logDir)

	e := &env{
		cfg:      cfg,
		hosts:    hosts,
		defaults: reg,
		resolver: bridge.Resolver{Defaults: reg, HostProfiles: hosts},
		gate:     bridge.Gate{Audit: bridge.NewAuditEnablement(), Sink: sink},
		sink:     sink,
	}
	return e, nil
}

// prims builds the Primitives for host, honoring the host's PathAdd/TmuxBin
// profile and the ambient BinaryPath/TimeoutMS config.
func (e *env) prims(host string) bridge.Primitives {
	bin := e.cfg.BinaryPath
	var pathAdd []string
	if prof, ok := e.hosts[host]; ok {
		if prof.TmuxBin != "" {
			bin = prof.TmuxBin
		}
		pathAdd = prof.PathAdd
	}
	return bridge.Primitives{T: bridge.NewTransport(host, bin, pathAdd, e.cfg.TimeoutMS)}
}

func (e *env) assembler() bridge.Assembler {
	return bridge.Assembler{Resolver: e.resolver, NewPrims: e.prims}
}

func (e *env) coordinator() bridge.Coordinator {
	return bridge.Coordinator{Resolver: e.resolver, NewPrims: e.prims}
}

// suppliedFlags returns which flags named in names were explicitly passed in args,
// distinguishing "not supplied" from "supplied empty" for the `default set`
// subcommand's FieldUpdate semantics.
func suppliedFlags(args []string, names ...string) map[string]bool {
	set := map[string]struct{}{}
	for _, n := range names {
		set[n] = struct{}{}
	}
	out := map[string]bool{}
	for _, a := range args {
		if a == "--" {
			break
		}
		if !strings.HasPrefix(a, "-") {
			continue
		}
		a = strings.TrimPrefix(a, "-")
		a = strings.TrimPrefix(a, "-")
		if eq := strings.IndexByte(a, '='); eq >= 0 {
			a = a[:eq]
		}
		if _, ok := set[a]; ok {
			out[a] = true
		}
	}
	return out
}
