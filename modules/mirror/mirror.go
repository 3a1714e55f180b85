package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/modules/playlistresolve"
	"github.com/spotifreak/spotifreak/spotify"
)

// Module copies new source tracks into one or more target playlists.
type Module struct {
	cfg  config.SyncConfig
	opts Options
}

// NewFactory returns the modules.Factory to register under TypeName.
func NewFactory() modules.Factory {
	return func(cfg config.SyncConfig) (modules.Module, error) {
		opts, err := decodeOptions(cfg.Options)
		if err != nil {
			return nil, fmt.Errorf("playlist_mirror %s: %w", cfg.ID, err)
		}
		if len(opts.Targets) == 0 {
			return nil, fmt.Errorf("playlist_mirror %s: at least one target is required", cfg.ID)
		}
		return &Module{cfg: cfg, opts: opts}, nil
	}
}

// Run fetches new source tracks since the last cursor, resolves every
// target, and appends the new tracks to each (deduping against existing
// target contents only on the first pass, before a cursor exists).
func (m *Module) Run(ctx context.Context, sc *modules.SyncContext) error {
	cursor, hadCursor := sc.State.LastProcessedTrackID()

	sourceIDs, err := m.fetchSourceTracks(sc, cursor)
	if err != nil {
		return err
	}

	direction := normalizedDirection(m.opts.Source.ScanDirection)
	newTracks := filterNewTracks(sourceIDs, cursor, direction)
	if m.opts.MaxTracks != nil && len(newTracks) > *m.opts.MaxTracks {
		newTracks = newTracks[:*m.opts.MaxTracks]
	}

	if len(newTracks) == 0 {
		sc.Logger.Info("playlist_mirror: no new tracks to mirror")
		return nil
	}

	for _, target := range m.opts.Targets {
		targetID, err := playlistresolve.Resolve(sc.Spotify, target)
		if err != nil {
			return err
		}

		toAdd := newTracks
		if !hadCursor && m.opts.deduplicate() {
			existing, err := sc.Spotify.GetPlaylistTrackIDs(targetID)
			if err != nil {
				return err
			}
			toAdd = excludeExisting(newTracks, existing)
		}
		if len(toAdd) == 0 {
			continue
		}

		added, err := sc.Spotify.AddTracks(targetID, toAdd)
		if err != nil {
			return err
		}
		sc.Logger.InfoF("playlist_mirror: added %d track(s) to %s", added, targetID)
	}

	advanced := sourceIDs[0]
	if direction != "newest" {
		advanced = sourceIDs[len(sourceIDs)-1]
	}
	sc.State.SetLastProcessedTrackID(&advanced, time.Now())

	return nil
}

func (m *Module) fetchSourceTracks(sc *modules.SyncContext, cursor string) ([]string, error) {
	src := m.opts.Source
	maxTracks := 0
	if src.MaxTracks != nil {
		maxTracks = *src.MaxTracks
	}
	lookbackCount := 0
	if src.LookbackCount != nil {
		lookbackCount = *src.LookbackCount
	}
	lookbackDays := 0
	if src.LookbackDays != nil {
		lookbackDays = *src.LookbackDays
	}

	switch src.Kind {
	case "", "saved_tracks":
		return sc.Spotify.GetSavedTrackIDs(spotify.SavedTracksOptions{
			MaxTracks:       maxTracks,
			LookbackCount:   lookbackCount,
			LookbackDays:    lookbackDays,
			FullScan:        src.FullScan,
			LastProcessedID: cursor,
			Direction:       src.ScanDirection,
		})
	case "playlist_id", "playlist_name":
		playlistID, err := playlistresolve.Resolve(sc.Spotify, src)
		if err != nil {
			return nil, err
		}
		return sc.Spotify.GetPlaylistTrackIDs(playlistID)
	default:
		return nil, fmt.Errorf("playlist_mirror: unsupported source kind %q", src.Kind)
	}
}

func normalizedDirection(direction string) string {
	if direction == "newest" {
		return "newest"
	}
	return "oldest"
}

// filterNewTracks drops everything at or before the cursor, honoring
// direction: "newest"-ordered lists keep everything ahead of the cursor,
// "oldest"-ordered lists keep everything after it. An empty or unmatched
// cursor means every fetched track is new.
func filterNewTracks(ids []string, cursor string, direction string) []string {
	if cursor == "" || len(ids) == 0 {
		return ids
	}
	idx := -1
	for i, id := range ids {
		if id == cursor {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ids
	}
	if direction == "newest" {
		return ids[:idx]
	}
	return ids[idx+1:]
}

func excludeExisting(candidates, existing []string) []string {
	present := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		present[id] = struct{}{}
	}
	out := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if _, ok := present[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
