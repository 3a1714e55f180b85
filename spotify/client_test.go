package spotify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spotifreak/spotifreak/rest"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)

	rc := rest.NewClient()
	c := NewClientWithBaseURL(rc, srv.URL)
	return c, srv
}

func TestFormatPattern(t *testing.T) {
	now := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	got := FormatPattern("${month_abbr} ${year_full} (${weekday})", now)
	want := "MAR 2024 (Tuesday)"
	if got != want {
		t.Fatalf("FormatPattern = %q, want %q", got, want)
	}
}

func TestBatchesSplitsIntoHundreds(t *testing.T) {
	ids := make([]string, 250)
	for i := range ids {
		ids[i] = "id"
	}
	got := batches(ids, batchSize)
	if len(got) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(got))
	}
	if len(got[0]) != 100 || len(got[1]) != 100 || len(got[2]) != 50 {
		t.Fatalf("unexpected batch sizes: %v", []int{len(got[0]), len(got[1]), len(got[2])})
	}
}

func TestTrackURIs(t *testing.T) {
	got := trackURIs([]string{"abc", "def"})
	want := []string{"spotify:track:abc", "spotify:track:def"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("trackURIs[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNextPathStripsAPIPrefix(t *testing.T) {
	got := nextPath("https://api.spotify.com/v1/me/tracks?offset=50&limit=50")
	if !strings.HasPrefix(got, "/me/tracks") {
		t.Fatalf("unexpected next path: %q", got)
	}
}

func TestCurrentUserCachesResult(t *testing.T) {
	calls := 0
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(User{ID: "u1", DisplayName: "Tester"})
	})
	defer srv.Close()

	for i := 0; i < 2; i++ {
		u, err := c.CurrentUser()
		if err != nil {
			t.Fatalf("CurrentUser: %v", err)
		}
		if u.ID != "u1" {
			t.Fatalf("unexpected user id %q", u.ID)
		}
	}
	if calls != 1 {
		t.Fatalf("expected CurrentUser to hit the network once, got %d calls", calls)
	}
}

func TestRateLimitTranslation(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := c.CurrentUser()
	if err == nil {
		t.Fatal("expected rate limit error")
	}
}
