// Package playlistresolve resolves the playlist_id/playlist_name/
// playlist_pattern resolver shape shared by the mirror, retention, and
// presentation module options.
package playlistresolve

import (
	"fmt"
	"strings"
	"time"

	"github.com/spotifreak/spotifreak/spotify"
)

// Config is the resolver block embedded in a sync job's module options.
type Config struct {
	Kind          string `yaml:"kind"`
	Pattern       string `yaml:"pattern,omitempty"`
	Name          string `yaml:"name,omitempty"`
	PlaylistID    string `yaml:"id,omitempty"`
	Public        bool   `yaml:"public,omitempty"`
	Description   string `yaml:"description,omitempty"`
	MaxTracks     *int   `yaml:"max_tracks,omitempty"`
	LookbackCount *int   `yaml:"lookback_count,omitempty"`
	LookbackDays  *int   `yaml:"lookback_days,omitempty"`
	FullScan      bool   `yaml:"full_scan,omitempty"`
	ScanDirection string `yaml:"scan_direction,omitempty"`
}

// Resolve returns the target playlist's ID, creating it when Kind is
// playlist_pattern and it does not yet exist.
func Resolve(client *spotify.Client, cfg Config) (string, error) {
	switch cfg.Kind {
	case "playlist_id":
		if cfg.PlaylistID == "" {
			return "", fmt.Errorf("playlist resolver: kind=playlist_id requires id")
		}
		return cfg.PlaylistID, nil

	case "playlist_name":
		if cfg.Name == "" {
			return "", fmt.Errorf("playlist resolver: kind=playlist_name requires name")
		}
		playlist, err := client.FindPlaylistByName(cfg.Name)
		if err != nil {
			return "", fmt.Errorf("playlist resolver: %w", err)
		}
		if playlist == nil {
			return "", fmt.Errorf("playlist resolver: playlist %q not found", cfg.Name)
		}
		return playlist.ID, nil

	case "playlist_pattern":
		if cfg.Pattern == "" {
			return "", fmt.Errorf("playlist resolver: kind=playlist_pattern requires pattern")
		}
		name := FormatPattern(cfg.Pattern, time.Now())
		playlist, err := client.EnsurePlaylist(name, cfg.Public, cfg.Description)
		if err != nil {
			return "", fmt.Errorf("playlist resolver: %w", err)
		}
		return playlist.ID, nil

	default:
		return "", fmt.Errorf("playlist resolver: unsupported kind %q", cfg.Kind)
	}
}

// FormatPattern expands the ${...} placeholders a playlist_pattern resolver
// accepts, evaluated against now.
func FormatPattern(pattern string, now time.Time) string {
	replacer := strings.NewReplacer(
		"${month_abbr}", strings.ToUpper(now.Format("Jan")),
		"${month_full}", now.Format("January"),
		"${year_short}", now.Format("06"),
		"${year_full}", now.Format("2006"),
		"${weekday}", now.Format("Monday"),
	)
	return replacer.Replace(pattern)
}
