package spotify

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spotifreak/spotifreak/errs"
)

// SavedTracksOptions bounds a GetSavedTrackIDs scan, mirroring
// SpotifyService.get_saved_tracks's keyword arguments.
type SavedTracksOptions struct {
	MaxTracks       int    // 0 means unbounded
	LookbackCount   int    // 0 means unbounded
	LookbackDays    int    // 0 disables the cutoff
	FullScan        bool   // ignore LastProcessedID entirely
	LastProcessedID string // scan halts once this id is seen again, unless FullScan
	Direction       string // "oldest" (default) or "newest"
}

type savedTrackEntry struct {
	AddedAt string `json:"added_at"`
	Track   *struct {
		ID string `json:"id"`
	} `json:"track"`
}

type pagingSavedTracks struct {
	Items []savedTrackEntry `json:"items"`
	Next  string            `json:"next"`
}

// GetSavedTrackIDs returns the user's saved ("Liked Songs") track ids
// honoring the scan bounds in opts, in the requested direction. Grounded in
// SpotifyService.get_saved_tracks; see SPEC_FULL.md §9 Open Question 1 for
// the exact cursor semantics callers must persist.
func (c *Client) GetSavedTrackIDs(opts SavedTracksOptions) ([]string, error) {
	maxItems := opts.MaxTracks
	if opts.LookbackCount > 0 {
		if maxItems == 0 || opts.LookbackCount < maxItems {
			maxItems = opts.LookbackCount
		}
	}

	pageLimit := 50
	if maxItems > 0 && maxItems < pageLimit {
		pageLimit = maxItems
	} else if opts.LookbackCount > 0 && opts.LookbackCount < pageLimit {
		pageLimit = opts.LookbackCount
	}
	if pageLimit < 1 {
		pageLimit = 1
	}

	var cutoff time.Time
	hasCutoff := opts.LookbackDays > 0
	if hasCutoff {
		cutoff = time.Now().UTC().AddDate(0, 0, -opts.LookbackDays)
	}

	type collected struct {
		id      string
		addedAt time.Time
	}
	var out []collected

	path := fmt.Sprintf("/me/tracks?limit=%d", pageLimit)
	halt := false
	for path != "" && !halt {
		res, err := c.get(path)
		if err != nil {
			return nil, err
		}
		var page pagingSavedTracks
		if err := res.Decode(&page); err != nil {
			return nil, errs.Newf(errs.RemoteTransient, "decoding saved tracks page: %v", err)
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.ID == "" {
				continue
			}
			trackID := item.Track.ID

			if !opts.FullScan && opts.LastProcessedID != "" && trackID == opts.LastProcessedID {
				halt = true
				break
			}

			addedAt := parseSpotifyTimestamp(item.AddedAt)
			if hasCutoff && !addedAt.IsZero() && addedAt.Before(cutoff) {
				halt = true
				break
			}

			out = append(out, collected{id: trackID, addedAt: addedAt})

			if opts.LookbackCount > 0 && len(out) >= opts.LookbackCount {
				halt = true
				break
			}
			if opts.MaxTracks > 0 && len(out) >= opts.MaxTracks {
				halt = true
				break
			}
		}

		if halt {
			break
		}
		path = nextPath(page.Next)
	}

	direction := strings.ToLower(strings.TrimSpace(opts.Direction))
	if direction != "oldest" && direction != "newest" {
		direction = "oldest"
	}
	if direction == "oldest" {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	ids := make([]string, len(out))
	for i, e := range out {
		ids[i] = e.id
	}
	return ids, nil
}

func parseSpotifyTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05Z", value); err == nil {
		return t
	}
	return time.Time{}
}

type playlistItemEntry struct {
	AddedAt string `json:"added_at"`
	Track   *struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
	} `json:"track"`
}

type pagingPlaylistItems struct {
	Items []playlistItemEntry `json:"items"`
	Next  string              `json:"next"`
}

// GetPlaylistTrackIDs returns every track id in playlistID, in playlist
// order.
func (c *Client) GetPlaylistTrackIDs(playlistID string) ([]string, error) {
	items, err := c.GetPlaylistItemsWithAddedAt(playlistID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids, nil
}

// GetPlaylistItemsWithAddedAt returns every track in playlistID along with
// its display name, comma-joined artist names, and addition timestamp.
func (c *Client) GetPlaylistItemsWithAddedAt(playlistID string) ([]TrackItem, error) {
	var out []TrackItem
	path := fmt.Sprintf("/playlists/%s/tracks?fields=items(added_at,track(id,name,artists(name))),next", playlistID)
	for path != "" {
		res, err := c.get(path)
		if err != nil {
			return nil, err
		}
		var page pagingPlaylistItems
		if err := res.Decode(&page); err != nil {
			return nil, errs.Newf(errs.RemoteTransient, "decoding playlist items page: %v", err)
		}
		for _, entry := range page.Items {
			if entry.Track == nil || entry.Track.ID == "" {
				continue
			}
			names := make([]string, 0, len(entry.Track.Artists))
			for _, a := range entry.Track.Artists {
				if a.Name != "" {
					names = append(names, a.Name)
				}
			}
			out = append(out, TrackItem{
				ID:      entry.Track.ID,
				Name:    entry.Track.Name,
				Artists: strings.Join(names, ", "),
				AddedAt: entry.AddedAt,
			})
		}
		path = nextPath(page.Next)
	}
	return out, nil
}

func batches(ids []string, size int) [][]string {
	var out [][]string
	for offset := 0; offset < len(ids); offset += size {
		end := offset + size
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[offset:end])
	}
	return out
}

func trackURIs(ids []string) []string {
	uris := make([]string, len(ids))
	for i, id := range ids {
		uris[i] = "spotify:track:" + id
	}
	return uris
}

// AddTracks appends trackIDs to playlistID in batches of 100, returning the
// number of tracks added.
func (c *Client) AddTracks(playlistID string, trackIDs []string) (int, error) {
	if len(trackIDs) == 0 {
		return 0, nil
	}
	total := 0
	for _, batch := range batches(trackIDs, batchSize) {
		req, err := c.newRequest(http.MethodPost, fmt.Sprintf("/playlists/%s/tracks", playlistID))
		if err != nil {
			return total, err
		}
		req.SetBody(map[string]any{"uris": trackURIs(batch)})
		if _, err := c.execute(req); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}

// RemoveTracks removes every occurrence of trackIDs from playlistID in
// batches of 100, returning the number of tracks removed.
func (c *Client) RemoveTracks(playlistID string, trackIDs []string) (int, error) {
	if len(trackIDs) == 0 {
		return 0, nil
	}
	total := 0
	for _, batch := range batches(trackIDs, batchSize) {
		req, err := c.newRequest(http.MethodDelete, fmt.Sprintf("/playlists/%s/tracks", playlistID))
		if err != nil {
			return total, err
		}
		tracks := make([]map[string]string, len(batch))
		for i, id := range batch {
			tracks[i] = map[string]string{"uri": "spotify:track:" + id}
		}
		req.SetBody(map[string]any{"tracks": tracks})
		if _, err := c.execute(req); err != nil {
			return total, err
		}
		total += len(batch)
	}
	return total, nil
}

// ReplaceTracks replaces playlistID's contents with trackIDs: the first 100
// replace the playlist outright, and any remainder is appended, mirroring
// SpotifyService.replace_tracks.
func (c *Client) ReplaceTracks(playlistID string, trackIDs []string) error {
	first := trackIDs
	var remaining []string
	if len(trackIDs) > batchSize {
		first = trackIDs[:batchSize]
		remaining = trackIDs[batchSize:]
	}

	req, err := c.newRequest(http.MethodPut, fmt.Sprintf("/playlists/%s/tracks", playlistID))
	if err != nil {
		return err
	}
	req.SetBody(map[string]any{"uris": trackURIs(first)})
	if _, err := c.execute(req); err != nil {
		return err
	}

	if len(remaining) > 0 {
		if _, err := c.AddTracks(playlistID, remaining); err != nil {
			return err
		}
	}
	return nil
}

type searchResponse struct {
	Tracks struct {
		Items []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"items"`
	} `json:"tracks"`
}

func (c *Client) search(query string, limit int) (*searchResponse, error) {
	path := fmt.Sprintf("/search?q=%s&type=track&limit=%d", urlQueryEscape(query), limit)
	res, err := c.get(path)
	if err != nil {
		return nil, err
	}
	var body searchResponse
	if err := res.Decode(&body); err != nil {
		return nil, errs.Newf(errs.RemoteTransient, "decoding search response: %v", err)
	}
	return &body, nil
}

// SearchTrack finds the best-match track id for name/artist: an exact
// field-scoped query first, falling back to a relaxed free-text query
// scored by substring match, mirroring SpotifyService.search_track.
func (c *Client) SearchTrack(name, artist string) (string, error) {
	query := "track:" + name
	if artist != "" {
		query += " artist:" + artist
	}
	exact, err := c.search(query, 1)
	if err != nil {
		return "", err
	}
	if len(exact.Tracks.Items) > 0 {
		return exact.Tracks.Items[0].ID, nil
	}

	relaxed := name
	if artist != "" {
		relaxed = name + " " + artist
	}
	results, err := c.search(relaxed, 5)
	if err != nil {
		return "", err
	}
	items := results.Tracks.Items
	if len(items) == 0 {
		return "", nil
	}

	needleName := strings.ToLower(name)
	needleArtist := strings.ToLower(artist)
	for _, item := range items {
		itemName := strings.ToLower(item.Name)
		var artistNames []string
		for _, a := range item.Artists {
			artistNames = append(artistNames, a.Name)
		}
		itemArtists := strings.ToLower(strings.Join(artistNames, ", "))
		if needleName != "" && strings.Contains(itemName, needleName) {
			if needleArtist == "" || strings.Contains(itemArtists, needleArtist) {
				return item.ID, nil
			}
		}
	}
	return items[0].ID, nil
}

func urlQueryEscape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, " ", "%20"), "\"", "%22")
}

// UpdatePlaylistDetails patches name/description/public fields; a nil
// pointer leaves the corresponding field untouched.
func (c *Client) UpdatePlaylistDetails(playlistID string, name, description *string, public *bool) error {
	payload := map[string]any{}
	if name != nil {
		payload["name"] = *name
	}
	if description != nil {
		payload["description"] = *description
	}
	if public != nil {
		payload["public"] = *public
	}
	if len(payload) == 0 {
		return nil
	}

	req, err := c.newRequest(http.MethodPut, fmt.Sprintf("/playlists/%s", playlistID))
	if err != nil {
		return err
	}
	req.SetBody(payload)
	_, err = c.execute(req)
	return err
}

// UploadPlaylistCover uploads a base64-encoded JPEG as playlistID's cover
// image.
func (c *Client) UploadPlaylistCover(playlistID, imageBase64 string) error {
	req, err := c.newRequest(http.MethodPut, fmt.Sprintf("/playlists/%s/images", playlistID))
	if err != nil {
		return err
	}
	req.SetContentType("image/jpeg")
	req.SeBodyReader(strings.NewReader(imageBase64))
	_, err = c.execute(req)
	return err
}

// UploadPlaylistCoverImage base64-encodes raw JPEG bytes and uploads them
// as playlistID's cover image.
func (c *Client) UploadPlaylistCoverImage(playlistID string, raw []byte) error {
	return c.UploadPlaylistCover(playlistID, base64EncodeImage(raw))
}
