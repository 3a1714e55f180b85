// Package supervisor implements the scheduler core (C4): trigger
// construction from JobConfig schedules, idempotent registration, a
// single-worker serialized executor, hot reload of the syncs directory and
// global config, and signal-driven shutdown. chrono.Scheduler supplies the
// underlying triggers, overlap coalescing, pause/resume and due-job
// bookkeeping; the Supervisor wires it to the rest of the system per
// spec.md §4.3.
package supervisor

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spotifreak/spotifreak/chrono"
	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/errs"
	"github.com/spotifreak/spotifreak/l3"
	"github.com/spotifreak/spotifreak/lifecycle"
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/sharedcache"
	"github.com/spotifreak/spotifreak/spotify"
	"github.com/spotifreak/spotifreak/state"
)

const (
	schedulerComponentID = "scheduler"
	watcherComponentID   = "hot_reload_watcher"
)

// Supervisor owns the scheduler, the job index, the shared cache, and the
// Spotify client, and exposes the control-plane operations the IPC server
// (C5) and CLI drive.
type Supervisor struct {
	paths    config.ConfigPaths
	global   *config.GlobalConfig
	registry *modules.Registry
	spotify  *spotify.Client
	cache    *sharedcache.Cache
	logger   l3.Logger
	location *time.Location

	scheduler chrono.Scheduler
	manager   lifecycle.ComponentManager

	jobsLock   sync.Mutex
	jobs       map[string]*jobEntry
	fireLocks  map[string]*sync.Mutex
	reloadLock sync.Mutex

	watcher *hotReloadWatcher
}

// New builds a Supervisor for the given configuration root. It does not
// start anything; call Start to load jobs and begin scheduling.
func New(paths config.ConfigPaths, global *config.GlobalConfig, registry *modules.Registry, spotifyClient *spotify.Client, logger l3.Logger) *Supervisor {
	loc, err := time.LoadLocation(global.Runtime.Timezone)
	if err != nil {
		logger.WarnF("unknown timezone %q, falling back to UTC: %v", global.Runtime.Timezone, err)
		loc = time.UTC
	} else {
		logger.InfoF("supervisor timezone resolved to %s", loc.String())
	}

	return &Supervisor{
		paths:     paths,
		global:    global,
		registry:  registry,
		spotify:   spotifyClient,
		cache:     sharedcache.New(),
		logger:    logger,
		location:  loc,
		scheduler: chrono.New(chrono.WithInstanceID("spotifreak-supervisor")),
		manager:   lifecycle.NewSimpleComponentManager(),
		jobs:      make(map[string]*jobEntry),
		fireLocks: make(map[string]*sync.Mutex),
	}
}

// Manager exposes the lifecycle.ComponentManager so the IPC server and any
// other collaborator can register alongside the scheduler and watcher and
// share one signal-driven shutdown sequence (spec.md §4.3.5).
func (sv *Supervisor) Manager() lifecycle.ComponentManager { return sv.manager }

// Start loads the current configuration, registers every job, and starts
// the scheduler plus (if enabled) the hot-reload watcher.
func (sv *Supervisor) Start() error {
	global, syncs, err := config.Load(sv.paths)
	if err != nil {
		return err
	}
	sv.global = global

	sv.cache.SetSources(cacheSources(sv.paths, syncs))

	sv.manager.Register(&lifecycle.SimpleComponent{
		CompId: schedulerComponentID,
		StartFunc: func() error {
			if err := sv.scheduler.Start(); err != nil {
				return err
			}
			for _, sc := range syncs {
				if err := sv.registerJob(sc, false); err != nil {
					sv.logger.ErrorF("registering sync %q: %v", sc.ID, err)
				}
			}
			return nil
		},
		StopFunc: sv.scheduler.Stop,
	})

	if global.Supervisor.HotReload {
		watcher, err := newHotReloadWatcher(sv)
		if err != nil {
			return err
		}
		sv.watcher = watcher
		sv.manager.Register(&lifecycle.SimpleComponent{
			CompId:    watcherComponentID,
			StartFunc: watcher.start,
			StopFunc:  watcher.stop,
		})
	}

	return sv.manager.StartAll()
}

// Stop runs the shutdown sequence: stop the scheduler (no new dispatches;
// running jobs finish on their own), then the watcher, then anything else
// registered (e.g. the IPC server). lifecycle.SimpleComponentManager stops
// components in reverse registration order.
func (sv *Supervisor) Stop() error {
	return sv.manager.StopAll()
}

// Wait blocks until shutdown has been triggered (signal or explicit Stop).
func (sv *Supervisor) Wait() { sv.manager.Wait() }

func cacheSources(paths config.ConfigPaths, syncs []config.SyncConfig) []sharedcache.Source {
	var sources []sharedcache.Source
	for _, sc := range syncs {
		if sc.Type != "playlist_cache" {
			continue
		}
		sources = append(sources, sharedcache.Source{JobID: sc.ID, Path: stateFilePath(paths, sc)})
	}
	return sources
}

func stateFilePath(paths config.ConfigPaths, sc config.SyncConfig) string {
	if sc.StateFile != "" {
		if filepath.IsAbs(sc.StateFile) {
			return sc.StateFile
		}
		return filepath.Join(paths.StateDir, sc.StateFile)
	}
	return filepath.Join(paths.StateDir, sc.ID+".json")
}

// registerJob builds the job's trigger from its schedule (§4.3.1) and
// (re)registers it with the scheduler (§4.3.2). Re-registering an id that
// is already known first removes the prior trigger, matching "re-
// registering an id replaces the prior trigger". immediate schedules an
// extra out-of-band fire at now without disturbing the recurring trigger.
func (sv *Supervisor) registerJob(sc config.SyncConfig, immediate bool) error {
	if !config.ValidIdentifier(sc.ID) {
		return errs.Newf(errs.ScheduleInvalid, "sync %q has an invalid id", sc.ID)
	}

	sv.jobsLock.Lock()
	_, known := sv.jobs[sc.ID]
	if known {
		sv.jobs[sc.ID].config = sc
		sv.jobs[sc.ID].state = JobScheduled
	} else {
		sv.jobs[sc.ID] = &jobEntry{config: sc, state: JobScheduled}
		sv.fireLocks[sc.ID] = &sync.Mutex{}
	}
	sv.jobsLock.Unlock()

	if known {
		if err := sv.scheduler.RemoveJob(sc.ID); err != nil && err != chrono.ErrJobNotFound {
			return errs.Newf(errs.InternalError, "removing prior trigger for %q: %v", sc.ID, err)
		}
	}

	fn := sv.makeJobFunc(sc.ID)
	var err error
	switch {
	case sc.Schedule.Interval != nil:
		seconds, parseErr := ParseInterval(*sc.Schedule.Interval)
		if parseErr != nil {
			return parseErr
		}
		err = sv.scheduler.AddIntervalJob(sc.ID, sc.ID, fn, time.Duration(seconds)*time.Second)
	case sc.Schedule.Cron != nil:
		err = sv.scheduler.AddCronJob(sc.ID, sc.ID, fn, *sc.Schedule.Cron)
	default:
		return errs.Newf(errs.ScheduleInvalid, "sync %q has neither interval nor cron", sc.ID)
	}
	if err != nil {
		return errs.Newf(errs.ScheduleInvalid, "registering trigger for %q: %v", sc.ID, err)
	}

	if immediate {
		sv.fireNow(sc.ID)
	}
	return nil
}

// fireNow runs a job's fire sequence out of band (hot reload's
// immediate=true, or an IPC "start" command), independent of the
// scheduler's own timer. Dropped (never queued) if a fire for the same id
// is already in flight, mirroring the "second fire while first is still
// running is dropped" coalescing policy across both dispatch paths.
func (sv *Supervisor) fireNow(id string) {
	go func() {
		_ = sv.executeFire(context.Background(), id)
	}()
}

// makeJobFunc adapts the per-fire execution sequence into a chrono.JobFunc.
func (sv *Supervisor) makeJobFunc(id string) chrono.JobFunc {
	return func(ctx context.Context) error {
		return sv.executeFire(ctx, id)
	}
}

// executeFire runs spec.md §4.3.3's eleven-step sequence for one fire of
// job id. Steps 2-3 and the shared-cache refresh in step 11 are best-
// effort: a missing cache source never fails the fire.
func (sv *Supervisor) executeFire(ctx context.Context, id string) error {
	lock := sv.fireLock(id)
	if !lock.TryLock() {
		sv.logger.DebugF("fire for %q already in flight, dropping this one", id)
		return nil
	}
	defer lock.Unlock()

	// Step 1: resolve JobConfig, racing a concurrent delete.
	sv.jobsLock.Lock()
	entry, ok := sv.jobs[id]
	var sc config.SyncConfig
	if ok {
		sc = entry.config
		entry.state = JobRunning
	}
	sv.jobsLock.Unlock()
	if !ok {
		sv.logger.WarnF("fire for %q skipped: job no longer registered", id)
		return nil
	}
	defer sv.markIdle(id)

	statePath := stateFilePath(sv.paths, sc)
	st, err := state.Load(statePath)
	if err != nil {
		sv.logger.ErrorF("loading state for %q: %v", id, err)
		return err
	}

	// Step 3: ensure shared cache is current.
	if sv.cache.Current() == nil {
		sv.cache.Refresh(false)
	}

	runID := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	st.BeginRun(runID, time.Now())

	factory, found := sv.registry.Get(sc.Type)
	if !found {
		sv.completeFailed(st, runID, "module_lookup", errs.Newf(errs.ModuleMissing, "no module registered for type %q", sc.Type))
		sv.saveState(st)
		return nil
	}
	module, err := factory(sc)
	if err != nil {
		sv.completeFailed(st, runID, "module_lookup", err)
		sv.saveState(st)
		return nil
	}

	if sv.spotify == nil {
		sv.completeFailed(st, runID, "spotify_init", errs.New(errs.CredentialsMissing, "spotify client unavailable"))
		sv.saveState(st)
		return nil
	}
	sv.spotify.SetSharedCache(sv.cache)

	sc2 := &modules.SyncContext{
		Logger:       bindLogger(sv.logger, sc.ID, sc.Type),
		Spotify:      sv.spotify,
		State:        st,
		GlobalConfig: sv.global,
		Paths:        sv.paths,
		SharedCache:  sv.cache,
	}

	runErr := module.Run(ctx, sc2)
	completedAt := time.Now()
	if runErr != nil {
		st.CompleteRun(runID, state.StatusFailed, &completedAt, runErr, map[string]any{"stage": "module_execution"})
	} else {
		st.CompleteRun(runID, state.StatusSuccess, &completedAt, nil, nil)
	}
	sv.saveState(st)

	if sc.Type == "playlist_cache" {
		sv.cache.Refresh(true)
	}
	return runErr
}

func (sv *Supervisor) completeFailed(st *state.State, runID, stage string, err error) {
	completedAt := time.Now()
	st.CompleteRun(runID, state.StatusFailed, &completedAt, err, map[string]any{"stage": stage})
}

func (sv *Supervisor) saveState(st *state.State) {
	if err := st.Save(time.Now()); err != nil {
		sv.logger.ErrorF("saving state to %s: %v", st.Path(), err)
	}
}

func (sv *Supervisor) markIdle(id string) {
	sv.jobsLock.Lock()
	defer sv.jobsLock.Unlock()
	if entry, ok := sv.jobs[id]; ok && entry.state != JobPaused {
		entry.state = JobScheduled
	}
}

func (sv *Supervisor) fireLock(id string) *sync.Mutex {
	sv.jobsLock.Lock()
	defer sv.jobsLock.Unlock()
	lock, ok := sv.fireLocks[id]
	if !ok {
		lock = &sync.Mutex{}
		sv.fireLocks[id] = lock
	}
	return lock
}

// JobStatus is one entry of Status()'s response, shaped for the IPC
// "status" command (spec.md §4.4).
type JobStatus struct {
	ID      string
	NextRun time.Time
	Missed  bool
	Paused  bool
}

// Status reports every registered job's next fire and pause/missed flags.
func (sv *Supervisor) Status() []JobStatus {
	sv.jobsLock.Lock()
	ids := make([]string, 0, len(sv.jobs))
	paused := make(map[string]bool, len(sv.jobs))
	for id, entry := range sv.jobs {
		ids = append(ids, id)
		paused[id] = entry.state == JobPaused
	}
	sv.jobsLock.Unlock()
	sort.Strings(ids)

	now := time.Now()
	out := make([]JobStatus, 0, len(ids))
	for _, id := range ids {
		info, err := sv.scheduler.GetJob(id)
		if err != nil {
			continue
		}
		out = append(out, JobStatus{
			ID:      id,
			NextRun: info.NextRun,
			Missed:  !info.NextRun.IsZero() && info.NextRun.Before(now),
			Paused:  paused[id] || info.NextRun.IsZero(),
		})
	}
	return out
}

// StartJob schedules an immediate fire for id, per the IPC "start" command.
func (sv *Supervisor) StartJob(id string) error {
	if !sv.knownJob(id) {
		return errs.Newf(errs.ConfigInvalid, "unknown sync id %q", id)
	}
	sv.fireNow(id)
	return nil
}

// PauseJob defers id's next scheduled dispatch until ResumeJob.
func (sv *Supervisor) PauseJob(id string) error {
	if !sv.knownJob(id) {
		return errs.Newf(errs.ConfigInvalid, "unknown sync id %q", id)
	}
	if err := sv.scheduler.PauseJob(id); err != nil {
		return errs.Newf(errs.InternalError, "pausing %q: %v", id, err)
	}
	sv.jobsLock.Lock()
	sv.jobs[id].state = JobPaused
	sv.jobsLock.Unlock()
	return nil
}

// ResumeJob re-enables id's scheduled dispatch.
func (sv *Supervisor) ResumeJob(id string) error {
	if !sv.knownJob(id) {
		return errs.Newf(errs.ConfigInvalid, "unknown sync id %q", id)
	}
	if err := sv.scheduler.ResumeJob(id); err != nil {
		return errs.Newf(errs.InternalError, "resuming %q: %v", id, err)
	}
	sv.jobsLock.Lock()
	sv.jobs[id].state = JobScheduled
	sv.jobsLock.Unlock()
	return nil
}

// DeleteJob removes id's trigger. A RUNNING fire in flight is not
// interrupted; it finishes and saves its own state, but the job entry is
// gone so it will not be re-scheduled.
func (sv *Supervisor) DeleteJob(id string) error {
	if !sv.knownJob(id) {
		return errs.Newf(errs.ConfigInvalid, "unknown sync id %q", id)
	}
	if err := sv.scheduler.RemoveJob(id); err != nil && err != chrono.ErrJobNotFound {
		return errs.Newf(errs.InternalError, "removing %q: %v", id, err)
	}
	sv.jobsLock.Lock()
	delete(sv.jobs, id)
	sv.jobsLock.Unlock()
	return nil
}

func (sv *Supervisor) knownJob(id string) bool {
	sv.jobsLock.Lock()
	defer sv.jobsLock.Unlock()
	_, ok := sv.jobs[id]
	return ok
}
