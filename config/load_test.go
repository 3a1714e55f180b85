package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadValidConfig(t *testing.T) {
	base := t.TempDir()
	paths := ConfigPathsFromBaseDir(base)

	writeFile(t, paths.GlobalConfig, `
spotify:
  client_id: abc
  client_secret: def
  redirect_uri: "http://localhost/callback"
  scopes: ["playlist-modify-public"]
runtime:
  timezone: "UTC"
  storage_dir: "state"
  log_level: "info"
supervisor:
  ipc_socket: "ipc.sock"
  hot_reload: true
`)
	writeFile(t, filepath.Join(paths.SyncsDir, "mirror.yml"), `
id: mirror-main
type: playlist_mirror
schedule:
  interval: "1h"
options:
  source: "Discover Weekly"
  target: "Mirror: Discover Weekly"
`)

	global, syncs, err := Load(paths)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if global.Spotify.ClientID != "abc" {
		t.Fatalf("unexpected client id: %q", global.Spotify.ClientID)
	}
	if len(syncs) != 1 || syncs[0].ID != "mirror-main" {
		t.Fatalf("unexpected syncs: %+v", syncs)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	base := t.TempDir()
	paths := ConfigPathsFromBaseDir(base)
	writeFile(t, paths.GlobalConfig, `
spotify:
  client_id: abc
  client_secret: def
  redirect_uri: "http://localhost/callback"
  unexpected_field: true
runtime:
  timezone: "UTC"
  storage_dir: "state"
  log_level: "info"
supervisor:
  ipc_socket: "ipc.sock"
  hot_reload: true
`)

	if _, _, err := Load(paths); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadRejectsAmbiguousSchedule(t *testing.T) {
	base := t.TempDir()
	paths := ConfigPathsFromBaseDir(base)
	writeFile(t, paths.GlobalConfig, defaultGlobalConfigYAML)
	writeFile(t, filepath.Join(paths.SyncsDir, "bad.yml"), `
id: bad-job
type: playlist_mirror
schedule:
  interval: "1h"
  cron: "0 * * * *"
`)

	if _, _, err := Load(paths); err == nil {
		t.Fatal("expected error for ambiguous schedule")
	}
}

func TestLoadRejectsDuplicateID(t *testing.T) {
	base := t.TempDir()
	paths := ConfigPathsFromBaseDir(base)
	writeFile(t, paths.GlobalConfig, defaultGlobalConfigYAML)
	writeFile(t, filepath.Join(paths.SyncsDir, "a.yml"), "id: dup\ntype: playlist_mirror\nschedule:\n  interval: \"1h\"\n")
	writeFile(t, filepath.Join(paths.SyncsDir, "b.yml"), "id: dup\ntype: playlist_mirror\nschedule:\n  interval: \"2h\"\n")

	if _, _, err := Load(paths); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestJobIndexDiff(t *testing.T) {
	interval1h := "1h"
	interval2h := "2h"
	prev := NewJobIndex([]SyncConfig{
		{ID: "keep", Type: "playlist_mirror", Schedule: SyncSchedule{Interval: &interval1h}},
		{ID: "drop", Type: "playlist_mirror", Schedule: SyncSchedule{Interval: &interval1h}},
	})
	next := NewJobIndex([]SyncConfig{
		{ID: "keep", Type: "playlist_mirror", Schedule: SyncSchedule{Interval: &interval2h}},
		{ID: "new", Type: "playlist_retention", Schedule: SyncSchedule{Interval: &interval1h}},
	})

	diff := prev.Diff(next)
	if len(diff.Added) != 1 || diff.Added[0] != "new" {
		t.Fatalf("unexpected added: %+v", diff.Added)
	}
	if len(diff.Removed) != 1 || diff.Removed[0] != "drop" {
		t.Fatalf("unexpected removed: %+v", diff.Removed)
	}
	if len(diff.CommonChanged) != 1 || diff.CommonChanged[0] != "keep" {
		t.Fatalf("unexpected changed: %+v", diff.CommonChanged)
	}
}

func TestBootstrapCreatesLayout(t *testing.T) {
	base := filepath.Join(t.TempDir(), "spotifreak")
	paths := ConfigPathsFromBaseDir(base)

	report, err := Bootstrap(paths)
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(report.CreatedDirs) == 0 {
		t.Fatal("expected directories to be created")
	}
	if _, err := os.Stat(paths.GlobalConfig); err != nil {
		t.Fatalf("expected config.yml to exist: %v", err)
	}

	// Second call is idempotent: nothing new is created.
	report2, err := Bootstrap(paths)
	if err != nil {
		t.Fatalf("second Bootstrap: %v", err)
	}
	if len(report2.CreatedDirs) != 0 || len(report2.CreatedFiles) != 0 {
		t.Fatalf("expected no-op on second bootstrap, got %+v", report2)
	}
}
