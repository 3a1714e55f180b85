// Package retention implements the playlist_retention module: it prunes a
// source playlist down by age and/or size, optionally archiving whatever
// it removes first. Grounded in
// original_source/spotifreak/modules/playlist_retention.py.
package retention

import (
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/modules/playlistresolve"
)

// TypeName is the sync job "type" this module registers under.
const TypeName = "playlist_retention"

// Options mirrors PlaylistRetentionOptions.
type Options struct {
	Source        playlistresolve.Config  `yaml:"source"`
	Archive       *playlistresolve.Config `yaml:"archive,omitempty"`
	RetentionDays *int                    `yaml:"retention_days,omitempty"`
	MaxTracks     *int                    `yaml:"max_tracks,omitempty"`
	MinTracks     *int                    `yaml:"min_tracks,omitempty"`
}

func decodeOptions(raw map[string]any) (Options, error) {
	var opts Options
	if err := modules.DecodeOptions(raw, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
