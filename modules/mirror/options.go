// Package mirror implements the playlist_mirror module: it copies newly
// added tracks from one source (saved tracks or a playlist) into one or
// more target playlists, tracking progress with a cursor so repeat runs
// only append what's new. Grounded in
// original_source/spotifreak/modules/playlist_mirror.py.
package mirror

import (
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/modules/playlistresolve"
)

// TypeName is the sync job "type" this module registers under.
const TypeName = "playlist_mirror"

// SourceConfig names where tracks are pulled from. Kind "saved_tracks"
// reads the user's Liked Songs; "playlist_id"/"playlist_name" read an
// existing playlist. It reuses playlistresolve.Config's scan-bound fields
// so the same lookback/full_scan/scan_direction vocabulary applies
// regardless of source kind.
type SourceConfig = playlistresolve.Config

// Options mirrors PlaylistMirrorOptions.
type Options struct {
	Source       SourceConfig            `yaml:"source"`
	Targets      []playlistresolve.Config `yaml:"targets"`
	Deduplicate  *bool                    `yaml:"deduplicate,omitempty"`
	MaxTracks    *int                     `yaml:"max_tracks,omitempty"`
}

func (o Options) deduplicate() bool {
	if o.Deduplicate == nil {
		return true
	}
	return *o.Deduplicate
}

func decodeOptions(raw map[string]any) (Options, error) {
	var opts Options
	if err := modules.DecodeOptions(raw, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
