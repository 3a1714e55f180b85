// Package sharedcache implements the cross-job snapshot of remote
// playlists produced by playlist_cache jobs and consumed by every other
// job to avoid repeat catalog lookups.
package sharedcache

import (
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/spotifreak/spotifreak/errs"
)

// Playlist is one entry of the cached catalog.
type Playlist struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	URI           string `json:"uri"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
	OwnerID       string `json:"owner_id"`
	SnapshotID    string `json:"snapshot_id"`
}

// Snapshot is the current in-memory cache. Consumers must treat it as
// read-only; all writes go through Cache.Refresh.
type Snapshot struct {
	LastRefreshed time.Time
	Playlists     []Playlist
	byName        map[string]Playlist
	byID          map[string]Playlist
}

// ByName looks up a playlist by its lowercased, trimmed display name.
func (s *Snapshot) ByName(name string) (Playlist, bool) {
	if s == nil {
		return Playlist{}, false
	}
	p, ok := s.byName[normalizeName(name)]
	return p, ok
}

// ByID looks up a playlist by id.
func (s *Snapshot) ByID(id string) (Playlist, bool) {
	if s == nil {
		return Playlist{}, false
	}
	p, ok := s.byID[id]
	return p, ok
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Source describes one playlist_cache job's state file, as supplied by the
// Supervisor when it registers/reloads jobs.
type Source struct {
	JobID string
	Path  string
}

// Cache maintains the current Snapshot plus the remembered mtimes used to
// decide whether a refresh is necessary.
type Cache struct {
	sources       []Source
	seenModTimes  map[string]time.Time
	current       *Snapshot
}

func New() *Cache {
	return &Cache{seenModTimes: make(map[string]time.Time)}
}

// SetSources replaces the set of playlist_cache job state files considered
// during Refresh. Called by the Supervisor on load and on every hot reload.
func (c *Cache) SetSources(sources []Source) {
	c.sources = sources
}

// Current returns the in-memory snapshot without refreshing it. May be nil
// before the first Refresh.
func (c *Cache) Current() *Snapshot {
	return c.current
}

type cachePayload struct {
	LastRefreshed string              `json:"last_refreshed"`
	Playlists     []Playlist          `json:"playlists"`
}

type stateDocument struct {
	PlaylistCache *cachePayload `json:"playlist_cache"`
}

// Refresh rebuilds the snapshot from the freshest eligible cache-producing
// job, per spec.md §4.2. Returns the current (possibly stale, possibly
// unchanged) snapshot; never errors on a missing/malformed source — those
// are simply skipped, mirroring the "best effort, never blocks a fire"
// contract.
func (c *Cache) Refresh(force bool) *Snapshot {
	var bestPayload *cachePayload
	var bestRefreshedAt time.Time

	for _, src := range c.sources {
		info, err := os.Stat(src.Path)
		if err != nil {
			continue
		}
		mtime := info.ModTime()
		if !force {
			if seen, ok := c.seenModTimes[src.Path]; ok && !mtime.After(seen) {
				continue
			}
		}

		raw, err := os.ReadFile(src.Path)
		if err != nil {
			continue
		}
		var doc stateDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if doc.PlaylistCache == nil {
			c.seenModTimes[src.Path] = mtime
			continue
		}

		refreshedAt := mtime
		if doc.PlaylistCache.LastRefreshed != "" {
			if t, err := time.Parse("2006-01-02T15:04:05Z", doc.PlaylistCache.LastRefreshed); err == nil {
				refreshedAt = t
			}
		}

		c.seenModTimes[src.Path] = mtime

		if bestPayload == nil || refreshedAt.After(bestRefreshedAt) {
			bestPayload = doc.PlaylistCache
			bestRefreshedAt = refreshedAt
		}
	}

	if bestPayload == nil {
		return c.current
	}

	snap := &Snapshot{
		LastRefreshed: bestRefreshedAt,
		Playlists:     bestPayload.Playlists,
		byName:        make(map[string]Playlist, len(bestPayload.Playlists)),
		byID:          make(map[string]Playlist, len(bestPayload.Playlists)),
	}
	for _, p := range bestPayload.Playlists {
		snap.byName[normalizeName(p.Name)] = p
		snap.byID[p.ID] = p
	}
	c.current = snap
	return snap
}

// Validate reports whether a raw scratch payload looks like a well-formed
// playlist_cache document, used by modules/cache when writing it.
func Validate(playlists any) error {
	if _, ok := playlists.([]Playlist); ok {
		return nil
	}
	if _, ok := playlists.([]any); ok {
		return nil
	}
	return errs.New(errs.StateCorrupt, "playlist_cache.playlists is not a list")
}
