// Package clicmd wires the subcommand surface SPEC_FULL.md §4.11
// describes onto the teacher's cli framework
// (originally oss.nandlabs.io/golly/cli), grounded in
// original_source/spotifreak/cli.py's subcommand layout. Every command
// shares one way of resolving the configuration root, loading/secret-
// resolving the global config, and constructing an authenticated Spotify
// client, so job commands (run/status/start/...) and the long-running
// serve command build their collaborators identically.
package clicmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spotifreak/spotifreak/cli"
	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/errs"
	"github.com/spotifreak/spotifreak/l3"
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/modules/cache"
	"github.com/spotifreak/spotifreak/modules/lastfm"
	"github.com/spotifreak/spotifreak/modules/mirror"
	"github.com/spotifreak/spotifreak/modules/presentation"
	"github.com/spotifreak/spotifreak/modules/retention"
	"github.com/spotifreak/spotifreak/rest"
	"github.com/spotifreak/spotifreak/secrets"
	"github.com/spotifreak/spotifreak/spotify"
)

// secretsKeyEnv names the environment variable the CLI reads the secrets
// store's master key from. Never accepted as a plain flag, so it never
// shows up in a shell history or process listing alongside --base-dir.
const secretsKeyEnv = "SPOTIFREAK_SECRETS_KEY"

// resolvePaths resolves -base-dir/--base-dir, falling back to
// config.DefaultConfigPaths (~/.spotifreak).
func resolvePaths(ctx *cli.Context) (config.ConfigPaths, error) {
	if base, ok := ctx.GetFlag("base-dir"); ok && base != "" {
		return config.ConfigPathsFromBaseDir(base), nil
	}
	return config.DefaultConfigPaths()
}

// newRegistry registers every shipped module type. Called once per command
// invocation; cheap, and keeps each command free-standing.
func newRegistry() *modules.Registry {
	r := modules.NewRegistry()
	r.Register(mirror.TypeName, mirror.NewFactory())
	r.Register(retention.TypeName, retention.NewFactory())
	r.Register(cache.TypeName, cache.NewFactory())
	r.Register(lastfm.TypeName, lastfm.NewFactory())
	r.Register(presentation.TypeName, presentation.NewFactory())
	return r
}

// loadGlobalConfig loads config.yml and the syncs directory, then overlays
// any blank/SET_ME credential field from the encrypted secrets store.
// Opening the store is a soft failure: a brand-new install has no store
// file yet, and plaintext config.yml credentials still work.
func loadGlobalConfig(paths config.ConfigPaths) (*config.GlobalConfig, []config.SyncConfig, error) {
	global, syncs, err := config.Load(paths)
	if err != nil {
		return nil, nil, err
	}

	if store, err := config.OpenSecretsStore(paths, os.Getenv(secretsKeyEnv)); err == nil {
		config.ResolveSecrets(global, store)
	}

	return global, syncs, nil
}

// buildLogger configures l3 from runtime.log_level and returns the
// package logger, mirroring SPEC_FULL.md §4.12.
func buildLogger(global *config.GlobalConfig) l3.Logger {
	level := "INFO"
	switch global.Runtime.LogLevel {
	case "error":
		level = "ERROR"
	case "warn":
		level = "WARN"
	case "debug":
		level = "DEBUG"
	case "trace":
		level = "TRACE"
	}
	l3.Configure(&l3.LogConfig{
		DefaultLvl: level,
		Writers: []*l3.WriterConfig{
			{Console: &l3.ConsoleConfig{}},
		},
	})
	return l3.Get()
}

// buildSpotifyClient constructs an authenticated spotify.Client from the
// cached OAuth2 token, refreshing/persisting it transparently via
// spotify.NewTokenSource. Fails with CredentialsMissing if `init` has not
// been run yet.
func buildSpotifyClient(ctx context.Context, global *config.GlobalConfig, paths config.ConfigPaths) (*spotify.Client, error) {
	settings, err := spotify.NewClientSettings(global, paths)
	if err != nil {
		return nil, err
	}
	source, err := spotify.NewTokenSource(ctx, settings, nil)
	if err != nil {
		return nil, err
	}

	builder := rest.CliOptsBuilder()
	builder.Auth(spotify.NewAuthProvider(source))
	rc := rest.NewClientWithOptions(builder.Build())
	return spotify.NewClient(rc), nil
}

// openSecretsStoreOrExit opens the local secrets store, failing loudly
// (unlike loadGlobalConfig's soft-fail) since init/doctor are the commands
// responsible for getting the store into a usable state.
func openSecretsStoreOrExit(paths config.ConfigPaths) (secrets.Store, error) {
	key := os.Getenv(secretsKeyEnv)
	if key == "" {
		return nil, errs.New(errs.CredentialsMissing,
			secretsKeyEnv+" is not set; export a master key before storing credentials")
	}
	return config.OpenSecretsStore(paths, key)
}

func printf(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format, args...)
}

func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}
