package cache

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/l3"
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/rest"
	"github.com/spotifreak/spotifreak/sharedcache"
	"github.com/spotifreak/spotifreak/spotify"
	"github.com/spotifreak/spotifreak/state"
)

func newTestContext(t *testing.T, handler http.HandlerFunc) *modules.SyncContext {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	base := t.TempDir()
	paths := config.ConfigPathsFromBaseDir(base)
	if _, err := config.Bootstrap(paths); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	st, err := state.Load(filepath.Join(paths.StateDir, "job.json"))
	if err != nil {
		t.Fatalf("state.Load: %v", err)
	}

	sc := spotify.NewClientWithBaseURL(rest.NewClient(), srv.URL)
	return &modules.SyncContext{
		Logger:       l3.Get(),
		Spotify:      sc,
		State:        st,
		GlobalConfig: &config.GlobalConfig{},
		Paths:        paths,
		SharedCache:  sharedcache.New(),
	}
}

func playlistsHandler(items []map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"items": items, "next": nil})
	}
}

func TestRunFiltersByIncludeFlags(t *testing.T) {
	items := []map[string]any{
		{"id": "1", "name": "Public Mix", "public": true, "collaborative": false},
		{"id": "2", "name": "Private Mix", "public": false, "collaborative": false},
		{"id": "3", "name": "Collab Mix", "public": true, "collaborative": true},
	}
	sc := newTestContext(t, playlistsHandler(items))

	mod, err := NewFactory()(config.SyncConfig{
		ID:   "cache",
		Type: TypeName,
		Options: map[string]any{
			"include_collaborative": false,
		},
	})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if err := mod.Run(context.Background(), sc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	raw, ok := sc.State.Get("playlist_cache")
	if !ok {
		t.Fatal("expected playlist_cache state key to be set")
	}
	payload, ok := raw.(map[string]any)
	if !ok {
		t.Fatalf("playlist_cache payload has unexpected type %T", raw)
	}
	entries, ok := payload["playlists"].([]sharedcache.Playlist)
	if !ok {
		t.Fatalf("playlists has unexpected type %T", payload["playlists"])
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (collaborative excluded)", len(entries))
	}
	for _, e := range entries {
		if e.Collaborative {
			t.Fatalf("collaborative playlist %q leaked through filter", e.Name)
		}
	}
	if !sc.State.Dirty() {
		t.Fatal("state should be dirty after Run")
	}
}

func TestRunDefaultsIncludeEverything(t *testing.T) {
	items := []map[string]any{
		{"id": "1", "name": "A", "public": true},
		{"id": "2", "name": "B", "public": false},
	}
	sc := newTestContext(t, playlistsHandler(items))

	mod, err := NewFactory()(config.SyncConfig{ID: "cache", Type: TypeName})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if err := mod.Run(context.Background(), sc); err != nil {
		t.Fatalf("Run: %v", err)
	}

	raw, _ := sc.State.Get("playlist_cache")
	payload := raw.(map[string]any)
	entries := payload["playlists"].([]sharedcache.Playlist)
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
}
