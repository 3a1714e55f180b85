// Package cache implements the playlist_cache module (C2's sole producer):
// it snapshots the user's playlist catalog into this job's state file so
// sharedcache.Cache can serve FindPlaylistByName lookups for every other
// job without a network round trip. Grounded in
// original_source/spotifreak/modules/playlist_cache.py.
package cache

import (
	"github.com/spotifreak/spotifreak/modules"
)

// TypeName is the sync job "type" this module registers under.
const TypeName = "playlist_cache"

// Options mirrors PlaylistCacheOptions; all three filters default true.
type Options struct {
	IncludePublic        *bool `yaml:"include_public,omitempty"`
	IncludePrivate       *bool `yaml:"include_private,omitempty"`
	IncludeCollaborative *bool `yaml:"include_collaborative,omitempty"`
}

func boolOr(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

func decodeOptions(raw map[string]any) (Options, error) {
	var opts Options
	if err := modules.DecodeOptions(raw, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}
