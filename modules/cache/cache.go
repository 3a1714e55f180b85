package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/sharedcache"
)

const timeLayout = "2006-01-02T15:04:05Z"

// Module lists every playlist the authenticated user can see and writes a
// filtered snapshot into the job's own state file, under the nested
// "playlist_cache" key sharedcache.Cache.Refresh expects.
type Module struct {
	opts Options
}

// NewFactory returns the modules.Factory to register under TypeName.
func NewFactory() modules.Factory {
	return func(cfg config.SyncConfig) (modules.Module, error) {
		opts, err := decodeOptions(cfg.Options)
		if err != nil {
			return nil, fmt.Errorf("playlist_cache %s: %w", cfg.ID, err)
		}
		return &Module{opts: opts}, nil
	}
}

// Run lists all playlists, applies the include_* filters, and persists the
// result. Run never errors on an empty result; a failed listing propagates
// the underlying Spotify error.
func (m *Module) Run(ctx context.Context, sc *modules.SyncContext) error {
	playlists, err := sc.Spotify.ListAllPlaylists()
	if err != nil {
		return err
	}

	includePublic := boolOr(m.opts.IncludePublic, true)
	includePrivate := boolOr(m.opts.IncludePrivate, true)
	includeCollaborative := boolOr(m.opts.IncludeCollaborative, true)

	entries := make([]sharedcache.Playlist, 0, len(playlists))
	for _, p := range playlists {
		if !includePublic && p.Public {
			continue
		}
		if !includePrivate && !p.Public {
			continue
		}
		if !includeCollaborative && p.Collaborative {
			continue
		}
		entries = append(entries, p)
	}

	if err := sharedcache.Validate(entries); err != nil {
		return err
	}

	now := time.Now().UTC()
	sc.State.Set("playlist_cache", map[string]any{
		"last_refreshed": now.Format(timeLayout),
		"playlists":      entries,
	})

	sc.Logger.InfoF("playlist_cache: cached %d of %d playlists (public=%t private=%t collaborative=%t)",
		len(entries), len(playlists), includePublic, includePrivate, includeCollaborative)
	return nil
}
