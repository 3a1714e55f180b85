package supervisor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/l3"
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/rest"
	"github.com/spotifreak/spotifreak/spotify"
)

type stubModule struct {
	err error
}

func (m *stubModule) Run(ctx context.Context, sc *modules.SyncContext) error {
	sc.State.Set("ran", true)
	return m.err
}

func newTestSupervisor(t *testing.T, registry *modules.Registry) (*Supervisor, config.ConfigPaths) {
	t.Helper()
	base := t.TempDir()
	paths := config.ConfigPathsFromBaseDir(base)
	if _, err := config.Bootstrap(paths); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	global := &config.GlobalConfig{Runtime: config.RuntimeSettings{Timezone: "UTC"}}

	sc := spotify.NewClientWithBaseURL(rest.NewClient(), "http://unused.invalid")

	sv := New(paths, global, registry, sc, l3.Get())
	return sv, paths
}

func TestRegisterJobAndImmediateFireSucceeds(t *testing.T) {
	registry := modules.NewRegistry()
	registry.Register("noop", func(cfg config.SyncConfig) (modules.Module, error) {
		return &stubModule{}, nil
	})
	sv, paths := newTestSupervisor(t, registry)
	if err := sv.scheduler.Start(); err != nil {
		t.Fatalf("scheduler.Start: %v", err)
	}
	defer sv.scheduler.Stop()

	interval := "1h"
	cfg := config.SyncConfig{ID: "job-a", Type: "noop", Schedule: config.SyncSchedule{Interval: &interval}}
	if err := sv.registerJob(cfg, true); err != nil {
		t.Fatalf("registerJob: %v", err)
	}

	waitForFile(t, filepath.Join(paths.StateDir, "job-a.json"))

	raw, err := os.ReadFile(filepath.Join(paths.StateDir, "job-a.json"))
	if err != nil {
		t.Fatalf("reading state: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	history, ok := doc["run_history"].([]any)
	if !ok || len(history) != 1 {
		t.Fatalf("unexpected run_history: %v", doc["run_history"])
	}
	rec := history[0].(map[string]any)
	if rec["status"] != "success" {
		t.Fatalf("status = %v, want success", rec["status"])
	}
}

func TestExecuteFireModuleMissingRecordsFailure(t *testing.T) {
	registry := modules.NewRegistry()
	sv, _ := newTestSupervisor(t, registry)

	interval := "30s"
	cfg := config.SyncConfig{ID: "job-b", Type: "missing_type", Schedule: config.SyncSchedule{Interval: &interval}}
	sv.jobsLock.Lock()
	sv.jobs[cfg.ID] = &jobEntry{config: cfg, state: JobScheduled}
	sv.fireLocks[cfg.ID] = &sync.Mutex{}
	sv.jobsLock.Unlock()

	if err := sv.executeFire(context.Background(), cfg.ID); err != nil {
		t.Fatalf("executeFire returned unexpected error: %v", err)
	}

	raw, err := os.ReadFile(stateFilePath(sv.paths, cfg))
	if err != nil {
		t.Fatalf("reading state: %v", err)
	}
	var doc map[string]any
	json.Unmarshal(raw, &doc)
	history := doc["run_history"].([]any)
	rec := history[0].(map[string]any)
	if rec["status"] != "failed" {
		t.Fatalf("status = %v, want failed", rec["status"])
	}
	details := rec["details"].(map[string]any)
	if details["stage"] != "module_lookup" {
		t.Fatalf("stage = %v, want module_lookup", details["stage"])
	}
}

func TestConcurrentFiresCoalesce(t *testing.T) {
	registry := modules.NewRegistry()
	sv, _ := newTestSupervisor(t, registry)

	cfg := config.SyncConfig{ID: "job-c", Type: "noop"}
	sv.jobsLock.Lock()
	sv.jobs[cfg.ID] = &jobEntry{config: cfg, state: JobScheduled}
	sv.fireLocks[cfg.ID] = &sync.Mutex{}
	sv.jobsLock.Unlock()

	lock := sv.fireLock(cfg.ID)
	if !lock.TryLock() {
		t.Fatal("expected to acquire fresh lock")
	}
	defer lock.Unlock()

	if err := sv.executeFire(context.Background(), cfg.ID); err != nil {
		t.Fatalf("executeFire: %v", err)
	}
	// With the lock held, executeFire must drop the fire rather than block
	// or error (coalescing policy: dropped, never queued).
}

func TestPauseResumeReflectedInStatus(t *testing.T) {
	registry := modules.NewRegistry()
	registry.Register("noop", func(cfg config.SyncConfig) (modules.Module, error) {
		return &stubModule{}, nil
	})
	sv, _ := newTestSupervisor(t, registry)
	if err := sv.scheduler.Start(); err != nil {
		t.Fatalf("scheduler.Start: %v", err)
	}
	defer sv.scheduler.Stop()

	interval := "1h"
	cfg := config.SyncConfig{ID: "job-d", Type: "noop", Schedule: config.SyncSchedule{Interval: &interval}}
	if err := sv.registerJob(cfg, false); err != nil {
		t.Fatalf("registerJob: %v", err)
	}

	if err := sv.PauseJob(cfg.ID); err != nil {
		t.Fatalf("PauseJob: %v", err)
	}
	found := false
	for _, s := range sv.Status() {
		if s.ID == cfg.ID {
			found = true
			if !s.Paused {
				t.Fatal("expected job to report paused")
			}
		}
	}
	if !found {
		t.Fatal("job not present in Status()")
	}

	if err := sv.ResumeJob(cfg.ID); err != nil {
		t.Fatalf("ResumeJob: %v", err)
	}
	for _, s := range sv.Status() {
		if s.ID == cfg.ID && s.Paused {
			t.Fatal("expected job to report resumed")
		}
	}
}

func TestDeleteUnknownJobErrors(t *testing.T) {
	sv, _ := newTestSupervisor(t, modules.NewRegistry())
	if err := sv.DeleteJob("does-not-exist"); err == nil {
		t.Fatal("expected error deleting unknown job")
	}
}

func waitForFile(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", path)
}
