package supervisor

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spotifreak/spotifreak/config"
)

// debounce absorbs the burst of events a single `cp`/editor save typically
// produces (write + chmod + rename) into one reload.
const debounce = 300 * time.Millisecond

// hotReloadWatcher observes the syncs directory and the global config file
// and drives spec.md §4.3.4's reload-and-diff sequence.
type hotReloadWatcher struct {
	sv     *Supervisor
	fsw    *fsnotify.Watcher
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newHotReloadWatcher(sv *Supervisor) (*hotReloadWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(sv.paths.SyncsDir); err != nil {
		fsw.Close()
		return nil, err
	}
	if err := fsw.Add(sv.paths.GlobalConfig); err != nil {
		fsw.Close()
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &hotReloadWatcher{sv: sv, fsw: fsw, ctx: ctx, cancel: cancel, done: make(chan struct{})}, nil
}

func (w *hotReloadWatcher) start() error {
	go w.run()
	return nil
}

func (w *hotReloadWatcher) stop() error {
	w.cancel()
	<-w.done
	return w.fsw.Close()
}

func (w *hotReloadWatcher) run() {
	defer close(w.done)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.ctx.Done():
			return
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.sv.logger.ErrorF("hot reload watcher error: %v", err)
		case <-timerC:
			timerC = nil
			w.reload()
		}
	}
}

// reload implements §4.3.4 steps 1-5, serialized by sv.reloadLock so two
// bursts of filesystem events never interleave their diff application.
func (w *hotReloadWatcher) reload() {
	sv := w.sv
	sv.reloadLock.Lock()
	defer sv.reloadLock.Unlock()

	global, syncs, err := config.Load(sv.paths)
	if err != nil {
		sv.logger.ErrorF("hot reload: failed to load configuration, keeping previous JobIndex: %v", err)
		return
	}

	sv.jobsLock.Lock()
	previous := make(config.JobIndex, len(sv.jobs))
	for id, entry := range sv.jobs {
		previous[id] = entry.config
	}
	sv.jobsLock.Unlock()

	next := config.NewJobIndex(syncs)
	diff := previous.Diff(next)

	sv.global = global
	sv.cache.SetSources(cacheSources(sv.paths, syncs))

	for _, id := range diff.Removed {
		if err := sv.DeleteJob(id); err != nil {
			sv.logger.ErrorF("hot reload: removing %q: %v", id, err)
		} else {
			sv.logger.InfoF("hot reload: removed sync %q", id)
		}
	}
	for _, id := range diff.CommonChanged {
		if err := sv.registerJob(next[id], true); err != nil {
			sv.logger.ErrorF("hot reload: re-registering %q: %v", id, err)
		} else {
			sv.logger.InfoF("hot reload: re-registered changed sync %q", id)
		}
	}
	for _, id := range diff.Added {
		if err := sv.registerJob(next[id], true); err != nil {
			sv.logger.ErrorF("hot reload: registering new sync %q: %v", id, err)
		} else {
			sv.logger.InfoF("hot reload: registered new sync %q", id)
		}
	}
}
