package clicmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spotifreak/spotifreak/cli"
	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/ipc"
	"github.com/spotifreak/spotifreak/rest"
	"github.com/spotifreak/spotifreak/supervisor"
	"github.com/spotifreak/spotifreak/webapi"
)

func newServeCommand() *cli.Command {
	cmd := cli.NewCommand("serve", "Run the supervisor: scheduler, IPC server, and HTTP control plane", appVersion, runServe)
	cmd.Flags = []*cli.Flag{
		{Name: "base-dir", Usage: "Configuration root (default ~/.spotifreak)", Default: ""},
	}
	return cmd
}

// runServe starts the long-running process: it builds the Supervisor, the
// IPC server, and (if configured) the HTTP control plane, registers all
// three on the Supervisor's lifecycle.ComponentManager (spec.md §4.3.5), and
// blocks on SIGINT/SIGTERM.
func runServe(ctx *cli.Context) error {
	paths, err := resolvePaths(ctx)
	if err != nil {
		return err
	}
	global, _, err := loadGlobalConfig(paths)
	if err != nil {
		return err
	}
	logger := buildLogger(global)

	spotifyClient, err := buildSpotifyClient(context.Background(), global, paths)
	if err != nil {
		return err
	}

	sv := supervisor.New(paths, global, newRegistry(), spotifyClient, logger)

	ipcServer := ipc.NewServer(paths.IPCSocketPath, sv, logger)
	sv.Manager().Register(ipcServer)

	if global.Supervisor.HTTPListenPort > 0 {
		opts := rest.DefaultSrvOptions()
		opts.Id = "webapi"
		opts.ListenHost = global.Supervisor.HTTPListenHost
		if opts.ListenHost == "" {
			opts.ListenHost = "127.0.0.1"
		}
		opts.ListenPort = global.Supervisor.HTTPListenPort

		jobsFn := func() []config.SyncConfig {
			_, syncs, err := config.Load(paths)
			if err != nil {
				logger.WarnF("webapi: reloading sync list: %v", err)
				return nil
			}
			return syncs
		}

		webapiServer, err := webapi.New(opts, paths, paths.IPCSocketPath, jobsFn, logger)
		if err != nil {
			return err
		}
		sv.Manager().Register(webapiServer)
	}

	if err := sv.Start(); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("serve: shutdown signal received")
		_ = sv.Stop()
	}()

	sv.Wait()
	return nil
}
