package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/jeff-dagenais/tklbam/src/chain"
	"github.com/jeff-dagenais/tklbam/src/conf"
	"github.com/jeff-dagenais/tklbam/src/engine"
	"github.com/jeff-dagenais/tklbam/src/hub"
	"github.com/jeff-dagenais/tklbam/src/logging"
	"github.com/jeff-dagenais/tklbam/src/overrides"
	"github.com/jeff-dagenais/tklbam/src/profile"
	"github.com/jeff-dagenais/tklbam/src/registry"
	"github.com/jeff-dagenais/tklbam/src/target"
	"github.com/jeff-dagenais/tklbam/src/transport"
	dir "github.com/jeff-dagenais/tklbam/src/transport/directory"
)

const versionFile = "/etc/turnkey_version"

// loadConf resolves configuration for the running command: its own flags
// and the inherited global flags layered over the config file and the
// built-in defaults.
func loadConf(cmd *cobra.Command) (conf.Conf, error) {
	confDir, _ := cmd.Root().PersistentFlags().GetString("conf-dir")
	v := conf.New(confDir)
	return conf.Load(v, cmd.Flags(), cmd.InheritedFlags())
}

// buildEngine assembles the engine from resolved configuration. The
// transport may be nil when withTransport is false; read-only commands
// (plan, resolve) work without a reachable target.
func buildEngine(cmd *cobra.Command, c conf.Conf, extra []overrides.Rule, withTransport bool) (*engine.Engine, *registry.Registry, error) {
	reg := registry.New(c.Registry)
	lockPath, _ := cmd.Root().PersistentFlags().GetString("lockfile")

	provider, err := baselineProvider(cmd, c, reg)
	if err != nil {
		return nil, nil, err
	}

	e := &engine.Engine{
		Profiles:      provider,
		Sessions:      chain.NewFileStore(reg.SessionsPath()),
		LoadOverrides: func() ([]overrides.Rule, error) { return overrides.Load(c.Overrides) },
		Extra:         extra,
		LockPath:      lockPath,
		MaxFullAge:    c.MaxFullAge(),
		SkipFiles:     c.SkipFiles,
		SkipDatabase:  c.SkipDatabase,
	}

	if withTransport {
		tr, err := buildTransport(c, reg)
		if err != nil {
			return nil, nil, err
		}
		e.Transport = tr
	}
	return e, reg, nil
}

// baselineProvider picks the profile source: a local file via --profile,
// or the hub with cache fallback.
func baselineProvider(cmd *cobra.Command, c conf.Conf, reg *registry.Registry) (profile.Provider, error) {
	local, _ := cmd.Root().PersistentFlags().GetString("profile")
	if local != "" {
		data, err := os.ReadFile(local)
		if err != nil {
			return nil, fmt.Errorf("read profile %s: %w", local, err)
		}
		var p profile.Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse profile %s: %w", local, err)
		}
		return profile.Static{B: p.Baseline, Src: profile.SourceRemote}, nil
	}
	return &profile.CachedProvider{
		Remote:  hub.New(c.HubURL, c.HubAPIKey),
		Cache:   reg,
		Version: applianceVersion(),
	}, nil
}

// resolveAddress returns the backup target address: --address / config
// first, then hub-provisioned credentials, then the cached credentials
// when the hub is down.
func resolveAddress(c conf.Conf, reg *registry.Registry) (string, error) {
	if c.Address != "" {
		return c.Address, nil
	}
	hb := hub.New(c.HubURL, c.HubAPIKey)
	creds, err := hb.GetCredentials()
	if err != nil {
		var notSub *hub.NotSubscribedError
		if errors.As(err, &notSub) {
			return "", err
		}
		cached, cerr := reg.LoadCredentials()
		if cerr != nil || cached == nil {
			return "", fmt.Errorf("no backup address: hub unreachable and no cached credentials: %w", err)
		}
		logging.Warn().Err(err).Msg("using cached credentials because of a hub error")
		return cached.Address, nil
	}
	if err := reg.SaveCredentials(&creds); err != nil {
		logging.Warn().Err(err).Msg("could not cache credentials")
	}
	return creds.Address, nil
}

func buildTransport(c conf.Conf, reg *registry.Registry) (transport.Transport, error) {
	addr, err := resolveAddress(c, reg)
	if err != nil {
		return nil, err
	}
	tgt, err := target.Parse(addr)
	if err != nil {
		return nil, err
	}
	switch tgt.Scheme {
	case "dir":
		if err := os.MkdirAll(tgt.Value, 0o755); err != nil {
			return nil, fmt.Errorf("create target dir: %w", err)
		}
		return dir.New(tgt.Value)
	default:
		return nil, fmt.Errorf("address scheme %q has no local transport; use --address dir:/path", tgt.Scheme)
	}
}

// parseExtraOverrides parses override arguments given on the command line,
// e.g. `tklbam backup /srv -mysql:drupal6/sessions`.
func parseExtraOverrides(args []string) ([]overrides.Rule, error) {
	var rules []overrides.Rule
	for _, a := range args {
		r, err := overrides.ParseRule(a)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func applianceVersion() string {
	data, err := os.ReadFile(versionFile)
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(data))
}
