package clicmd

import (
	"context"

	"github.com/spotifreak/spotifreak/cli"
	"github.com/spotifreak/spotifreak/errs"
)

func newDoctorCommand() *cli.Command {
	cmd := cli.NewCommand("doctor", "Check configuration and Spotify reachability", appVersion, runDoctor)
	cmd.Flags = []*cli.Flag{
		{Name: "base-dir", Usage: "Configuration root (default ~/.spotifreak)", Default: ""},
	}
	return cmd
}

// runDoctor performs the lightweight credential/reachability check
// SPEC_FULL.md §4.11 describes. A rate-limited probe is reported distinctly
// (exit code 2, via errs.RemoteRateLimited) from a hard failure (exit 1)
// so operators can tell "try again shortly" from "fix your config".
func runDoctor(ctx *cli.Context) error {
	paths, err := resolvePaths(ctx)
	if err != nil {
		return err
	}

	global, syncs, err := loadGlobalConfig(paths)
	if err != nil {
		printf("config: FAIL (%v)\n", err)
		return err
	}
	printf("config: OK (%d sync job(s) loaded)\n", len(syncs))

	client, err := buildSpotifyClient(context.Background(), global, paths)
	if err != nil {
		printf("spotify credentials: FAIL (%v)\n", err)
		return err
	}
	printf("spotify credentials: OK\n")

	user, err := client.CurrentUser()
	if err != nil {
		if e, ok := errs.As(err); ok && e.Kind == errs.RemoteRateLimited {
			printf("spotify reachability: RATE LIMITED (%v)\n", err)
			return err
		}
		printf("spotify reachability: FAIL (%v)\n", err)
		return err
	}
	printf("spotify reachability: OK (authenticated as %s)\n", user.ID)

	return nil
}
