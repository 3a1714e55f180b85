package sharedcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCacheState(t *testing.T, path string, refreshedAt string, playlists []Playlist) {
	t.Helper()
	doc := map[string]any{
		"playlist_cache": map[string]any{
			"last_refreshed": refreshedAt,
			"playlists":      playlists,
		},
	}
	buf, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestRefreshPicksFreshestCandidate(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.json")
	newPath := filepath.Join(dir, "new.json")

	writeCacheState(t, oldPath, "2024-01-01T00:00:00Z", []Playlist{{ID: "1", Name: "Old Mix"}})
	writeCacheState(t, newPath, "2024-06-01T00:00:00Z", []Playlist{{ID: "2", Name: "New Mix"}})

	c := New()
	c.SetSources([]Source{{JobID: "a", Path: oldPath}, {JobID: "b", Path: newPath}})

	snap := c.Refresh(false)
	if snap == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if _, ok := snap.ByID("2"); !ok {
		t.Fatal("expected snapshot from freshest source")
	}
	if _, ok := snap.ByName("New Mix"); !ok {
		t.Fatal("expected name index populated")
	}
}

func TestRefreshSkipsUnchangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	writeCacheState(t, path, "2024-01-01T00:00:00Z", []Playlist{{ID: "1", Name: "A"}})

	c := New()
	c.SetSources([]Source{{JobID: "a", Path: path}})
	first := c.Refresh(false)
	if first == nil {
		t.Fatal("expected snapshot on first refresh")
	}

	// Without changing the file, a non-forced refresh should return the
	// same cached snapshot rather than re-reading.
	second := c.Refresh(false)
	if second != first {
		t.Fatal("expected unchanged snapshot to be reused, not rebuilt")
	}
}

func TestByNameIsCaseAndWhitespaceInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	writeCacheState(t, path, time.Now().UTC().Format("2006-01-02T15:04:05Z"), []Playlist{{ID: "1", Name: "  Road Trip  "}})

	c := New()
	c.SetSources([]Source{{JobID: "a", Path: path}})
	snap := c.Refresh(false)

	if _, ok := snap.ByName("road trip"); !ok {
		t.Fatal("expected case/whitespace-insensitive lookup to match")
	}
}
