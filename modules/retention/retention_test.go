package retention

import (
	"testing"
	"time"

	"github.com/spotifreak/spotifreak/spotify"
)

func trackAt(id string, daysAgo int, now time.Time) spotify.TrackItem {
	return spotify.TrackItem{ID: id, AddedAt: now.AddDate(0, 0, -daysAgo).Format("2006-01-02T15:04:05Z")}
}

func ids(items []spotify.TrackItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestDetermineTracksToRemoveAgeCutoff(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []spotify.TrackItem{
		trackAt("old", 100, now),
		trackAt("new", 1, now),
	}
	days := 30
	got := determineTracksToRemove(items, &days, nil, nil, now)
	if got := ids(got); len(got) != 1 || got[0] != "old" {
		t.Fatalf("got %v, want [old]", got)
	}
}

func TestDetermineTracksToRemoveMaxTracksTrim(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []spotify.TrackItem{
		trackAt("oldest", 10, now),
		trackAt("middle", 5, now),
		trackAt("newest", 1, now),
	}
	maxTracks := 1
	got := determineTracksToRemove(items, nil, &maxTracks, nil, now)
	gotIDs := ids(got)
	if len(gotIDs) != 2 {
		t.Fatalf("got %v, want 2 removed (keep only newest)", gotIDs)
	}
	for _, id := range gotIDs {
		if id == "newest" {
			t.Fatalf("newest track should survive a max_tracks trim, got %v", gotIDs)
		}
	}
}

func TestDetermineTracksToRemoveMinTracksFloorRestoresOldest(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []spotify.TrackItem{
		trackAt("a", 100, now),
		trackAt("b", 90, now),
		trackAt("c", 1, now),
	}
	days := 30
	minTracks := 2
	got := determineTracksToRemove(items, &days, nil, &minTracks, now)
	gotIDs := ids(got)
	if len(gotIDs) != 1 {
		t.Fatalf("got %v, want exactly 1 removed to respect min_tracks=2", gotIDs)
	}
	if gotIDs[0] != "b" {
		t.Fatalf("expected the newer of the two age-marked tracks (b) to remain removed, got %v", gotIDs)
	}
}

func TestDetermineTracksToRemoveNoneMarked(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []spotify.TrackItem{trackAt("a", 1, now)}
	got := determineTracksToRemove(items, nil, nil, nil, now)
	if len(got) != 0 {
		t.Fatalf("got %v, want none removed", got)
	}
}
