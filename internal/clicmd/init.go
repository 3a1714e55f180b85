package clicmd

import (
	"context"
	"fmt"

	"github.com/spotifreak/spotifreak/cli"
	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/spotify"
)

func newInitCommand() *cli.Command {
	cmd := cli.NewCommand("init", "Bootstrap the configuration directory", appVersion, runInit)
	cmd.Flags = []*cli.Flag{
		{Name: "base-dir", Usage: "Configuration root (default ~/.spotifreak)", Default: ""},
		{Name: "client-id", Usage: "Spotify app client id to store in the secrets store", Default: ""},
		{Name: "client-secret", Usage: "Spotify app client secret to store in the secrets store", Default: ""},
		{Name: "auth-code", Usage: "Authorization code from the Spotify consent screen, to exchange for a token", Default: ""},
	}
	return cmd
}

// runInit creates the directory tree and starter config.yml (if absent),
// then optionally stores credentials in the encrypted secrets store and
// exchanges an authorization code for the first cached OAuth2 token.
// Grounded in original_source/spotifreak/config.py's bootstrap() and
// cli.py's `init` subcommand.
func runInit(ctx *cli.Context) error {
	paths, err := resolvePaths(ctx)
	if err != nil {
		return err
	}

	report, err := config.Bootstrap(paths)
	if err != nil {
		return err
	}
	for _, dir := range report.CreatedDirs {
		printf("created directory %s\n", dir)
	}
	for _, file := range report.CreatedFiles {
		printf("wrote starter config %s\n", file)
	}

	clientID, _ := ctx.GetFlag("client-id")
	clientSecret, _ := ctx.GetFlag("client-secret")
	if clientID != "" || clientSecret != "" {
		store, err := openSecretsStoreOrExit(paths)
		if err != nil {
			return err
		}
		if clientID != "" {
			if err := config.WriteSecret(store, config.SecretSpotifyClientID, clientID); err != nil {
				return err
			}
		}
		if clientSecret != "" {
			if err := config.WriteSecret(store, config.SecretSpotifyClientSecret, clientSecret); err != nil {
				return err
			}
		}
		printf("stored spotify credentials in %s\n", paths.SecretsFile)
	}

	authCode, _ := ctx.GetFlag("auth-code")
	if authCode != "" {
		global, _, err := loadGlobalConfig(paths)
		if err != nil {
			return err
		}
		settings, err := spotify.NewClientSettings(global, paths)
		if err != nil {
			return err
		}
		tok, err := settings.OAuth2Config().Exchange(context.Background(), authCode)
		if err != nil {
			return fmt.Errorf("exchanging authorization code: %w", err)
		}
		if err := settings.SaveToken(tok); err != nil {
			return err
		}
		printf("cached spotify token at %s\n", settings.CachePath)
	} else if clientID != "" || clientSecret != "" {
		global, _, err := loadGlobalConfig(paths)
		if err == nil {
			if settings, err := spotify.NewClientSettings(global, paths); err == nil {
				printf("visit this URL to authorize spotifreak, then re-run init with --auth-code:\n%s\n",
					settings.OAuth2Config().AuthCodeURL("spotifreak-init"))
			}
		}
	}

	return nil
}
