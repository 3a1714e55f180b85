// Package spotify is a thin collaborator around the Spotify Web API,
// grounded in the teacher's rest.Client for transport and
// golang.org/x/oauth2 for the authorization-code + refresh-token flow.
package spotify

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spotifreak/spotifreak/errs"
	"github.com/spotifreak/spotifreak/rest"
	"github.com/spotifreak/spotifreak/sharedcache"
)

const defaultBaseURL = "https://api.spotify.com/v1"

const batchSize = 100

// Playlist is the Spotify playlist shape. It is an alias of
// sharedcache.Playlist so results from a live fetch and the shared cache
// are interchangeable.
type Playlist = sharedcache.Playlist

// User is the subset of the Spotify user object this collaborator needs.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// TrackItem is one playlist entry with its addition timestamp, used by the
// presentation and retention modules.
type TrackItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists string `json:"artists"`
	AddedAt string `json:"added_at"`
}

// Client wraps rest.Client with Spotify-specific helpers. Safe for
// concurrent use: the supervisor runs exactly one job at a time (spec.md
// §5), but the IPC/HTTP control plane may read cached fields concurrently.
//
// Requests are built from absolute URLs (baseURL+path) rather than
// leaning on rest.Client's own BaseUrl-relative resolution, so a test can
// point Client at an httptest.Server without touching rest.Client's
// internals.
type Client struct {
	rc      *rest.Client
	baseURL string

	mu             sync.Mutex
	currentUser    *User
	playlistsCache []Playlist
	sharedCache    *sharedcache.Cache
}

// NewClient wraps an already-configured rest.Client (auth provider, retry
// policy, and circuit breaker are set up by the caller via
// rest.CliOptsBuilder, per DESIGN.md) pointed at the real Spotify Web API.
func NewClient(rc *rest.Client) *Client {
	return &Client{rc: rc, baseURL: defaultBaseURL}
}

// NewClientWithBaseURL is NewClient with an overridable base URL, used by
// tests to point Client at an httptest.Server.
func NewClientWithBaseURL(rc *rest.Client, baseURL string) *Client {
	return &Client{rc: rc, baseURL: baseURL}
}

// SetSharedCache injects the cross-job playlist cache consulted by
// FindPlaylistByName before hitting the network.
func (c *Client) SetSharedCache(cache *sharedcache.Cache) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sharedCache = cache
}

// InvalidateCaches drops the cached user/playlists, forcing the next call
// to refetch. Called after mutations that can change the playlist list
// (e.g. EnsurePlaylist creating a new one).
func (c *Client) InvalidateCaches() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playlistsCache = nil
}

// execute runs fn and translates a 429 response into errs.RemoteRateLimited
// via errs.RateLimited, and any other non-2xx response into
// errs.RemoteTransient. Mirrors SpotifyService._execute's single choke
// point for rate-limit translation.
func (c *Client) execute(req *rest.Request) (*rest.Response, error) {
	res, err := c.rc.Execute(req)
	if err != nil {
		return nil, errs.Newf(errs.RemoteTransient, "spotify request failed: %v", err)
	}
	if res.StatusCode() == http.StatusTooManyRequests {
		var retryAfter *int
		if raw := res.Raw().Header.Get("Retry-After"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				retryAfter = &n
			}
		}
		return nil, errs.RateLimited(retryAfter, "spotify rate limit exceeded")
	}
	if !res.IsSuccess() {
		return nil, errs.Newf(errs.RemoteTransient, "spotify responded with status %s", res.Status())
	}
	return res, nil
}

// newRequest builds a request against baseURL+path.
func (c *Client) newRequest(method, path string) (*rest.Request, error) {
	req, err := c.rc.NewRequest(c.baseURL+path, method)
	if err != nil {
		return nil, errs.Newf(errs.InternalError, "building request: %v", err)
	}
	return req, nil
}

func (c *Client) get(path string) (*rest.Response, error) {
	req, err := c.newRequest(http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	return c.execute(req)
}

// CurrentUser returns the authenticated user, fetched once and cached for
// the lifetime of the Client.
func (c *Client) CurrentUser() (*User, error) {
	c.mu.Lock()
	if c.currentUser != nil {
		u := *c.currentUser
		c.mu.Unlock()
		return &u, nil
	}
	c.mu.Unlock()

	res, err := c.get("/me")
	if err != nil {
		return nil, err
	}
	var u User
	if err := res.Decode(&u); err != nil {
		return nil, errs.Newf(errs.RemoteTransient, "decoding current user: %v", err)
	}

	c.mu.Lock()
	c.currentUser = &u
	c.mu.Unlock()
	return &u, nil
}

type pagingPlaylists struct {
	Items []Playlist `json:"items"`
	Next  string     `json:"next"`
}

// ListAllPlaylists fetches a fresh, complete list of the user's playlists,
// following pagination.
func (c *Client) ListAllPlaylists() ([]Playlist, error) {
	var all []Playlist
	path := "/me/playlists?limit=50"
	for path != "" {
		res, err := c.get(path)
		if err != nil {
			return nil, err
		}
		var page pagingPlaylists
		if err := res.Decode(&page); err != nil {
			return nil, errs.Newf(errs.RemoteTransient, "decoding playlists page: %v", err)
		}
		all = append(all, page.Items...)
		path = nextPath(page.Next)
	}
	return all, nil
}

func nextPath(next string) string {
	if next == "" {
		return ""
	}
	if idx := strings.Index(next, "/v1"); idx >= 0 {
		return next[idx+3:]
	}
	return next
}

// FindPlaylistByName consults the shared cache first (matching on
// normalized name), falling back to a cached-then-fetched full playlist
// list when the shared cache misses. Returns (nil, nil) when no match
// exists anywhere.
func (c *Client) FindPlaylistByName(name string) (*Playlist, error) {
	needle := strings.ToLower(strings.TrimSpace(name))

	c.mu.Lock()
	cache := c.sharedCache
	c.mu.Unlock()

	if cache != nil {
		if snap := cache.Current(); snap != nil {
			if p, ok := snap.ByName(needle); ok {
				return &p, nil
			}
		}
	}

	c.mu.Lock()
	cached := c.playlistsCache
	c.mu.Unlock()

	if cached == nil {
		fetched, err := c.ListAllPlaylists()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.playlistsCache = fetched
		cached = fetched
		c.mu.Unlock()
	}

	for _, p := range cached {
		if strings.ToLower(strings.TrimSpace(p.Name)) == needle {
			return &p, nil
		}
	}
	return nil, nil
}

// EnsurePlaylist returns the playlist named name, creating it (under the
// current user) if it does not already exist.
func (c *Client) EnsurePlaylist(name string, public bool, description string) (*Playlist, error) {
	if existing, err := c.FindPlaylistByName(name); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	user, err := c.CurrentUser()
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(http.MethodPost, fmt.Sprintf("/users/%s/playlists", user.ID))
	if err != nil {
		return nil, err
	}
	req.SetBody(map[string]any{
		"name":        name,
		"public":      public,
		"description": description,
	})
	res, err := c.execute(req)
	if err != nil {
		return nil, err
	}
	var p Playlist
	if err := res.Decode(&p); err != nil {
		return nil, errs.Newf(errs.RemoteTransient, "decoding created playlist: %v", err)
	}
	c.InvalidateCaches()
	return &p, nil
}

// FormatPattern expands the ${month_abbr}/${month_full}/${year_short}/
// ${year_full}/${weekday} tokens in pattern against now, mirroring
// SpotifyService.format_pattern.
func FormatPattern(pattern string, now time.Time) string {
	replacements := map[string]string{
		"${month_abbr}": strings.ToUpper(now.Format("Jan")),
		"${month_full}": now.Format("January"),
		"${year_short}": now.Format("06"),
		"${year_full}":  now.Format("2006"),
		"${weekday}":    now.Format("Monday"),
	}
	out := pattern
	for token, value := range replacements {
		out = strings.ReplaceAll(out, token, value)
	}
	return out
}

// base64EncodeImage is a small helper used by the cover-upload flow when
// callers hold raw image bytes instead of an already-encoded string.
func base64EncodeImage(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}
