package retention

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/modules/playlistresolve"
	"github.com/spotifreak/spotifreak/spotify"
)

// Module prunes a source playlist by age and/or size, archiving removed
// tracks first when an archive target is configured.
type Module struct {
	opts Options
}

// NewFactory returns the modules.Factory to register under TypeName.
func NewFactory() modules.Factory {
	return func(cfg config.SyncConfig) (modules.Module, error) {
		opts, err := decodeOptions(cfg.Options)
		if err != nil {
			return nil, fmt.Errorf("playlist_retention %s: %w", cfg.ID, err)
		}
		return &Module{opts: opts}, nil
	}
}

// Run computes the removal set and applies it: archive-then-prune.
func (m *Module) Run(ctx context.Context, sc *modules.SyncContext) error {
	sourceID, err := playlistresolve.Resolve(sc.Spotify, m.opts.Source)
	if err != nil {
		return err
	}

	items, err := sc.Spotify.GetPlaylistItemsWithAddedAt(sourceID)
	if err != nil {
		return err
	}

	toRemove := determineTracksToRemove(items, m.opts.RetentionDays, m.opts.MaxTracks, m.opts.MinTracks, time.Now().UTC())
	if len(toRemove) == 0 {
		sc.Logger.Info("playlist_retention: nothing to remove")
		return nil
	}

	ids := make([]string, len(toRemove))
	for i, item := range toRemove {
		ids[i] = item.ID
	}

	if m.opts.Archive != nil {
		archiveID, err := playlistresolve.Resolve(sc.Spotify, *m.opts.Archive)
		if err != nil {
			return err
		}
		if _, err := sc.Spotify.AddTracks(archiveID, ids); err != nil {
			return err
		}
	}

	removed, err := sc.Spotify.RemoveTracks(sourceID, ids)
	if err != nil {
		return err
	}
	sc.Logger.InfoF("playlist_retention: removed %d track(s) from %s", removed, sourceID)
	return nil
}

// determineTracksToRemove runs the three-phase removal algorithm: age
// cutoff, then a max_tracks trim (oldest-first), then a min_tracks floor
// that restores the oldest-marked entries until the floor is met. The
// returned slice is deduped by id and sorted by added_at ascending.
func determineTracksToRemove(items []spotify.TrackItem, retentionDays, maxTracks, minTracks *int, now time.Time) []spotify.TrackItem {
	marked := map[string]spotify.TrackItem{}

	if retentionDays != nil {
		cutoff := now.AddDate(0, 0, -*retentionDays)
		for _, item := range items {
			addedAt := parseAddedAt(item.AddedAt)
			if !addedAt.IsZero() && addedAt.Before(cutoff) {
				marked[item.ID] = item
			}
		}
	}

	if maxTracks != nil {
		remaining := len(items) - len(marked)
		if remaining > *maxTracks {
			sorted := sortedByAddedAt(items)
			extra := remaining - *maxTracks
			for _, item := range sorted {
				if extra <= 0 {
					break
				}
				if _, already := marked[item.ID]; already {
					continue
				}
				marked[item.ID] = item
				extra--
			}
		}
	}

	if minTracks != nil {
		remaining := len(items) - len(marked)
		if remaining < *minTracks {
			removalList := sortedByAddedAt(mapValues(marked))
			need := *minTracks - remaining
			for i := 0; i < need && i < len(removalList); i++ {
				delete(marked, removalList[i].ID)
			}
		}
	}

	out := sortedByAddedAt(mapValues(marked))
	return out
}

func mapValues(m map[string]spotify.TrackItem) []spotify.TrackItem {
	out := make([]spotify.TrackItem, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func sortedByAddedAt(items []spotify.TrackItem) []spotify.TrackItem {
	out := append([]spotify.TrackItem(nil), items...)
	sort.Slice(out, func(i, j int) bool {
		return parseAddedAt(out[i].AddedAt).Before(parseAddedAt(out[j].AddedAt))
	})
	return out
}

func parseAddedAt(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05Z", value); err == nil {
		return t
	}
	return time.Time{}
}
