package mirror

import "testing"

func TestFilterNewTracksOldestDirection(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	got := filterNewTracks(ids, "b", "oldest")
	want := []string{"c", "d"}
	if !equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFilterNewTracksNewestDirection(t *testing.T) {
	ids := []string{"d", "c", "b", "a"}
	got := filterNewTracks(ids, "b", "newest")
	want := []string{"d", "c"}
	if !equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFilterNewTracksNoCursorReturnsAll(t *testing.T) {
	ids := []string{"a", "b"}
	got := filterNewTracks(ids, "", "oldest")
	if !equal(got, ids) {
		t.Fatalf("got %v, want %v", got, ids)
	}
}

func TestFilterNewTracksStaleCursorReturnsAll(t *testing.T) {
	ids := []string{"a", "b"}
	got := filterNewTracks(ids, "zzz", "oldest")
	if !equal(got, ids) {
		t.Fatalf("got %v, want %v", got, ids)
	}
}

func TestExcludeExisting(t *testing.T) {
	got := excludeExisting([]string{"a", "b", "c"}, []string{"b"})
	want := []string{"a", "c"}
	if !equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
