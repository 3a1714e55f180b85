package lastfm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/errs"
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/modules/playlistresolve"
	"github.com/spotifreak/spotifreak/rest"
)

const lastfmBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Module resolves a Last.fm user's top tracks onto Spotify and replaces (or
// appends to) a target playlist with them.
type Module struct {
	opts Options
	rc   *rest.Client
}

// NewFactory returns the modules.Factory to register under TypeName.
func NewFactory() modules.Factory {
	return func(cfg config.SyncConfig) (modules.Module, error) {
		opts, err := decodeOptions(cfg.Options)
		if err != nil {
			return nil, fmt.Errorf("lastfm_top_tracks %s: %w", cfg.ID, err)
		}
		return &Module{opts: opts, rc: rest.NewClient()}, nil
	}
}

type topTracksResponse struct {
	TopTracks struct {
		Track []struct {
			Name   string `json:"name"`
			Artist struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"track"`
	} `json:"toptracks"`
}

// Run fetches the configured Last.fm user's top tracks, resolves each onto
// a Spotify track id, and syncs the target playlist unless the resolved
// list is unchanged since the last run.
func (m *Module) Run(ctx context.Context, sc *modules.SyncContext) error {
	if sc.GlobalConfig.LastFM == nil || sc.GlobalConfig.LastFM.APIKey == "" || sc.GlobalConfig.LastFM.Username == "" {
		return errs.New(errs.CredentialsMissing, "lastfm_top_tracks: global lastfm.api_key and lastfm.username are required")
	}
	lastfmCfg := sc.GlobalConfig.LastFM

	top, err := m.fetchTopTracks(lastfmCfg.APIKey, lastfmCfg.Username)
	if err != nil {
		return err
	}

	trackIDs := make([]string, 0, len(top.TopTracks.Track))
	for _, t := range top.TopTracks.Track {
		id, err := sc.Spotify.SearchTrack(t.Name, t.Artist.Name)
		if err != nil {
			return err
		}
		if id == "" {
			sc.Logger.WarnF("lastfm_top_tracks: no Spotify match for %q by %q, skipping", t.Name, t.Artist.Name)
			continue
		}
		trackIDs = append(trackIDs, id)
	}

	if previous, ok := sc.State.Get("last_tracks"); ok {
		if sameTrackList(previous, trackIDs) {
			sc.Logger.Info("lastfm_top_tracks: resolved track list unchanged, skipping playlist update")
			return nil
		}
	}

	playlistID, err := playlistresolve.Resolve(sc.Spotify, m.opts.Playlist)
	if err != nil {
		return err
	}

	if m.opts.clearBeforeAdd() {
		if err := sc.Spotify.ReplaceTracks(playlistID, trackIDs); err != nil {
			return err
		}
	} else {
		if _, err := sc.Spotify.AddTracks(playlistID, trackIDs); err != nil {
			return err
		}
	}

	sc.State.Set("last_tracks", trackIDs)
	sc.Logger.InfoF("lastfm_top_tracks: synced %d track(s) to %s", len(trackIDs), playlistID)
	return nil
}

func (m *Module) fetchTopTracks(apiKey, username string) (*topTracksResponse, error) {
	req, err := m.rc.NewRequest(lastfmBaseURL, http.MethodGet)
	if err != nil {
		return nil, errs.Newf(errs.InternalError, "building lastfm request: %v", err)
	}
	req.AddQueryParam("method", "user.gettoptracks")
	req.AddQueryParam("user", username)
	req.AddQueryParam("period", m.opts.Period)
	req.AddQueryParam("limit", fmt.Sprintf("%d", m.opts.Limit))
	req.AddQueryParam("api_key", apiKey)
	req.AddQueryParam("format", "json")

	res, err := m.rc.Execute(req)
	if err != nil {
		return nil, errs.Newf(errs.RemoteTransient, "lastfm request failed: %v", err)
	}
	if !res.IsSuccess() {
		return nil, errs.Newf(errs.RemoteTransient, "lastfm responded with status %s", res.Status())
	}

	var body topTracksResponse
	if err := res.Decode(&body); err != nil {
		return nil, errs.Newf(errs.RemoteTransient, "decoding lastfm response: %v", err)
	}
	return &body, nil
}

func sameTrackList(previous any, current []string) bool {
	list, ok := previous.([]any)
	if ok {
		if len(list) != len(current) {
			return false
		}
		for i, v := range list {
			s, ok := v.(string)
			if !ok || s != current[i] {
				return false
			}
		}
		return true
	}
	strs, ok := previous.([]string)
	if !ok {
		return false
	}
	if len(strs) != len(current) {
		return false
	}
	for i := range strs {
		if strs[i] != current[i] {
			return false
		}
	}
	return true
}
