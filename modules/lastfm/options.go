// Package lastfm implements the lastfm_top_tracks module: it resolves a
// Last.fm user's top tracks for a period onto Spotify track ids and syncs
// them into a target playlist. Grounded in
// original_source/spotifreak/modules/lastfm_top_tracks.py.
package lastfm

import (
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/modules/playlistresolve"
)

// TypeName is the sync job "type" this module registers under.
const TypeName = "lastfm_top_tracks"

// Options mirrors LastFmTopTracksOptions.
type Options struct {
	Playlist        playlistresolve.Config `yaml:"playlist"`
	Limit           int                    `yaml:"limit,omitempty"`
	Period          string                 `yaml:"period,omitempty"`
	ClearBeforeAdd  *bool                  `yaml:"clear_before_add,omitempty"`
}

func (o Options) clearBeforeAdd() bool {
	if o.ClearBeforeAdd == nil {
		return true
	}
	return *o.ClearBeforeAdd
}

func decodeOptions(raw map[string]any) (Options, error) {
	var opts Options
	if err := modules.DecodeOptions(raw, &opts); err != nil {
		return Options{}, err
	}
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.Period == "" {
		opts.Period = "7day"
	}
	return opts, nil
}
