package clicmd

import (
	"context"
	"strconv"
	"time"

	"github.com/spotifreak/spotifreak/cli"
	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/errs"
	"github.com/spotifreak/spotifreak/ipc"
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/sharedcache"
	"github.com/spotifreak/spotifreak/state"
)

func newListCommand() *cli.Command {
	cmd := cli.NewCommand("list", "List configured sync jobs", appVersion, runList)
	cmd.Flags = []*cli.Flag{{Name: "base-dir", Usage: "Configuration root", Default: ""}}
	return cmd
}

func runList(ctx *cli.Context) error {
	paths, err := resolvePaths(ctx)
	if err != nil {
		return err
	}
	_, syncs, err := loadGlobalConfig(paths)
	if err != nil {
		return err
	}
	for _, sc := range syncs {
		printf("%-24s %-22s %s\n", sc.ID, sc.Type, sc.Description)
	}
	return nil
}

func newRunCommand() *cli.Command {
	cmd := cli.NewCommand("run", "Run a single sync job once, outside the scheduler", appVersion, runRun)
	cmd.Flags = []*cli.Flag{{Name: "base-dir", Usage: "Configuration root", Default: ""}}
	return cmd
}

// runRun executes one job's Run() directly, mirroring the per-fire
// sequence supervisor.Supervisor.executeFire follows (load state, run
// module, save state), without registering the job with the scheduler.
func runRun(ctx *cli.Context) error {
	id, ok := ctx.Arg(0)
	if !ok {
		return errs.New(errs.ConfigInvalid, "usage: spotifreak run <id>")
	}

	paths, err := resolvePaths(ctx)
	if err != nil {
		return err
	}
	global, syncs, err := loadGlobalConfig(paths)
	if err != nil {
		return err
	}

	var sc config.SyncConfig
	found := false
	for _, candidate := range syncs {
		if candidate.ID == id {
			sc, found = candidate, true
			break
		}
	}
	if !found {
		return errs.Newf(errs.ConfigInvalid, "unknown sync id %q", id)
	}

	registry := newRegistry()
	module, err := registry.Build(sc)
	if err != nil {
		return err
	}

	spotifyClient, err := buildSpotifyClient(context.Background(), global, paths)
	if err != nil {
		return err
	}
	logger := buildLogger(global)

	statePath := state.PathFor(paths.StateDir, sc.ID, sc.StateFile)
	st, err := state.Load(statePath)
	if err != nil {
		return err
	}

	runID := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	st.BeginRun(runID, time.Now())

	sc2 := &modules.SyncContext{
		Logger:       logger,
		Spotify:      spotifyClient,
		State:        st,
		GlobalConfig: global,
		Paths:        paths,
		SharedCache:  sharedcache.New(),
	}
	runErr := module.Run(context.Background(), sc2)
	completedAt := time.Now()
	if runErr != nil {
		st.CompleteRun(runID, state.StatusFailed, &completedAt, runErr, nil)
	} else {
		st.CompleteRun(runID, state.StatusSuccess, &completedAt, nil, nil)
	}
	if err := st.Save(time.Now()); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	printf("%s: completed\n", id)
	return nil
}

func newStatusCommand() *cli.Command {
	cmd := cli.NewCommand("status", "Show every registered job's next run and pause state", appVersion, runStatus)
	cmd.Flags = []*cli.Flag{{Name: "base-dir", Usage: "Configuration root", Default: ""}}
	return cmd
}

func runStatus(ctx *cli.Context) error {
	paths, err := resolvePaths(ctx)
	if err != nil {
		return err
	}
	client := ipc.NewClient(paths.IPCSocketPath)
	jobs, err := client.Status()
	if err != nil {
		return err
	}
	for _, j := range jobs {
		printf("%-24s next=%-24s missed=%-5t paused=%t\n", j.ID, j.NextRun, j.Missed, j.Paused)
	}
	return nil
}

func newJobCommandCommand(name, usage, ipcCommand string) *cli.Command {
	return cli.NewCommand(name, usage, appVersion, func(ctx *cli.Context) error {
		id, ok := ctx.Arg(0)
		if !ok {
			return errs.Newf(errs.ConfigInvalid, "usage: spotifreak %s <id>", name)
		}
		paths, err := resolvePaths(ctx)
		if err != nil {
			return err
		}
		client := ipc.NewClient(paths.IPCSocketPath)
		message, err := client.Command(ipcCommand, id)
		if err != nil {
			return err
		}
		printf("%s: %s\n", id, message)
		return nil
	})
}

func newLogsCommand() *cli.Command {
	cmd := cli.NewCommand("logs", "Show a job's run history", appVersion, runLogs)
	cmd.Flags = []*cli.Flag{
		{Name: "base-dir", Usage: "Configuration root", Default: ""},
		{Name: "n", Usage: "Number of most recent runs to show", Default: "20"},
	}
	return cmd
}

func runLogs(ctx *cli.Context) error {
	id, ok := ctx.Arg(0)
	if !ok {
		return errs.New(errs.ConfigInvalid, "usage: spotifreak logs <id> [-n N]")
	}
	paths, err := resolvePaths(ctx)
	if err != nil {
		return err
	}
	_, syncs, err := loadGlobalConfig(paths)
	if err != nil {
		return err
	}
	var sc config.SyncConfig
	found := false
	for _, candidate := range syncs {
		if candidate.ID == id {
			sc, found = candidate, true
			break
		}
	}
	if !found {
		return errs.Newf(errs.ConfigInvalid, "unknown sync id %q", id)
	}

	st, err := state.Load(state.PathFor(paths.StateDir, sc.ID, sc.StateFile))
	if err != nil {
		return err
	}
	history := st.RunHistory()

	n := 20
	if raw, ok := ctx.GetFlag("n"); ok && raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			n = parsed
		}
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	for _, rec := range history {
		errMsg := ""
		if rec.Error != nil {
			errMsg = " error=" + *rec.Error
		}
		printf("%s %-10s started=%s%s\n", rec.ID, rec.Status, rec.StartedAt.Format(time.RFC3339), errMsg)
	}
	return nil
}

func newStateCommand() *cli.Command {
	cmd := cli.NewCommand("state", "Inspect or mutate a job's persisted state", appVersion, nil)
	setLastTrack := cli.NewCommand("set-last-track", "Set a job's last_processed_track_id cursor", appVersion, runStateSetLastTrack)
	setLastTrack.Flags = []*cli.Flag{{Name: "base-dir", Usage: "Configuration root", Default: ""}}
	cmd.AddSubCommand(setLastTrack)
	return cmd
}

func runStateSetLastTrack(ctx *cli.Context) error {
	id, ok := ctx.Arg(0)
	if !ok {
		return errs.New(errs.ConfigInvalid, "usage: spotifreak state set-last-track <id> <track-id>")
	}
	trackID, ok := ctx.Arg(1)
	if !ok {
		return errs.New(errs.ConfigInvalid, "usage: spotifreak state set-last-track <id> <track-id>")
	}

	paths, err := resolvePaths(ctx)
	if err != nil {
		return err
	}
	_, syncs, err := loadGlobalConfig(paths)
	if err != nil {
		return err
	}
	var sc config.SyncConfig
	found := false
	for _, candidate := range syncs {
		if candidate.ID == id {
			sc, found = candidate, true
			break
		}
	}
	if !found {
		return errs.Newf(errs.ConfigInvalid, "unknown sync id %q", id)
	}

	statePath := state.PathFor(paths.StateDir, sc.ID, sc.StateFile)
	st, err := state.Load(statePath)
	if err != nil {
		return err
	}
	st.SetLastProcessedTrackID(&trackID, time.Now())
	if err := st.Save(time.Now()); err != nil {
		return err
	}
	printf("%s: last_processed_track_id set to %s\n", id, trackID)
	return nil
}
