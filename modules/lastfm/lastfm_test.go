package lastfm

import "testing"

func TestSameTrackListAnySlice(t *testing.T) {
	previous := []any{"a", "b"}
	if !sameTrackList(previous, []string{"a", "b"}) {
		t.Fatal("expected equal track lists to match")
	}
	if sameTrackList(previous, []string{"a", "c"}) {
		t.Fatal("expected differing track lists to not match")
	}
}

func TestSameTrackListStringSlice(t *testing.T) {
	previous := []string{"x", "y"}
	if !sameTrackList(previous, []string{"x", "y"}) {
		t.Fatal("expected equal track lists to match")
	}
}

func TestSameTrackListLengthMismatch(t *testing.T) {
	if sameTrackList([]any{"a"}, []string{"a", "b"}) {
		t.Fatal("expected length mismatch to not match")
	}
}

func TestDecodeOptionsDefaults(t *testing.T) {
	opts, err := decodeOptions(map[string]any{
		"playlist": map[string]any{"kind": "playlist_id", "id": "abc"},
	})
	if err != nil {
		t.Fatalf("decodeOptions: %v", err)
	}
	if opts.Limit != 10 {
		t.Fatalf("Limit = %d, want 10", opts.Limit)
	}
	if opts.Period != "7day" {
		t.Fatalf("Period = %q, want 7day", opts.Period)
	}
	if !opts.clearBeforeAdd() {
		t.Fatal("clearBeforeAdd should default true")
	}
}
