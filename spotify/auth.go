package spotify

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/oauth2"

	"github.com/spotifreak/spotifreak/clients"
	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/errs"
)

const (
	authURL  = "https://accounts.spotify.com/authorize"
	tokenURL = "https://accounts.spotify.com/api/token"
)

var defaultScopes = []string{
	"playlist-read-private",
	"playlist-modify-private",
	"playlist-modify-public",
}

// ClientSettings is the resolved, validated set of OAuth2 app credentials
// this collaborator needs, grounded in SpotifyClientFactory.
type ClientSettings struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string
	CachePath    string
}

// NewClientSettings validates global's Spotify credentials and resolves the
// on-disk token cache path under <storage_dir>/auth_cache/token.json.
func NewClientSettings(global *config.GlobalConfig, paths config.ConfigPaths) (ClientSettings, error) {
	s := global.Spotify
	if s.ClientID == "" || s.ClientID == "SET_ME" || s.ClientSecret == "" || s.ClientSecret == "SET_ME" {
		return ClientSettings{}, errs.New(errs.CredentialsMissing,
			"spotify credentials are not configured; update config.yml with real client_id/client_secret")
	}

	scopes := s.Scopes
	if len(scopes) == 0 {
		scopes = defaultScopes
	}
	unique := make(map[string]struct{}, len(scopes))
	for _, sc := range scopes {
		unique[sc] = struct{}{}
	}
	merged := make([]string, 0, len(unique))
	for sc := range unique {
		merged = append(merged, sc)
	}
	sort.Strings(merged)

	cacheDir := filepath.Join(global.Runtime.StorageDir, "auth_cache")
	if paths.BaseDir != "" && !filepath.IsAbs(cacheDir) {
		cacheDir = filepath.Join(paths.BaseDir, cacheDir)
	}

	return ClientSettings{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURI:  s.RedirectURI,
		Scope:        strings.Join(merged, " "),
		CachePath:    filepath.Join(cacheDir, "token.json"),
	}, nil
}

// OAuth2Config returns the golang.org/x/oauth2 configuration for the
// authorization-code flow against settings.
func (s ClientSettings) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.ClientID,
		ClientSecret: s.ClientSecret,
		RedirectURL:  s.RedirectURI,
		Scopes:       strings.Fields(s.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}
}

// LoadCachedToken reads a previously persisted token from settings'
// CachePath. Returns (nil, nil) when no cache file exists yet.
func (s ClientSettings) LoadCachedToken() (*oauth2.Token, error) {
	raw, err := os.ReadFile(s.CachePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Newf(errs.InternalError, "reading token cache: %v", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, errs.Newf(errs.StateCorrupt, "parsing cached token: %v", err)
	}
	return &tok, nil
}

// SaveToken persists tok to settings' CachePath, creating the containing
// directory if needed.
func (s ClientSettings) SaveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.CachePath), 0o700); err != nil {
		return errs.Newf(errs.InternalError, "creating auth cache dir: %v", err)
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return errs.Newf(errs.InternalError, "marshaling token: %v", err)
	}
	if err := os.WriteFile(s.CachePath, raw, 0o600); err != nil {
		return errs.Newf(errs.InternalError, "writing token cache: %v", err)
	}
	return nil
}

// persistingTokenSource wraps an oauth2.TokenSource and writes every token
// it hands out back to the on-disk cache, so refreshed tokens survive
// process restarts.
type persistingTokenSource struct {
	inner    oauth2.TokenSource
	settings ClientSettings
	last     *oauth2.Token
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.inner.Token()
	if err != nil {
		return nil, errs.Newf(errs.RemoteAuthFailed, "refreshing spotify token: %v", err)
	}
	if p.last == nil || p.last.AccessToken != tok.AccessToken {
		if err := p.settings.SaveToken(tok); err != nil {
			return tok, err
		}
		p.last = tok
	}
	return tok, nil
}

// NewTokenSource builds a refreshing, cache-persisting oauth2.TokenSource
// seeded from the token on disk (or seed, when the cache is empty and
// seed is supplied by an interactive `init` flow).
func NewTokenSource(ctx context.Context, settings ClientSettings, seed *oauth2.Token) (oauth2.TokenSource, error) {
	tok := seed
	if tok == nil {
		cached, err := settings.LoadCachedToken()
		if err != nil {
			return nil, err
		}
		tok = cached
	}
	if tok == nil {
		return nil, errs.New(errs.CredentialsMissing,
			"no cached spotify token; run the interactive authorization flow first")
	}

	base := settings.OAuth2Config().TokenSource(ctx, tok)
	return &persistingTokenSource{inner: oauth2.ReuseTokenSource(tok, base), settings: settings}, nil
}

// tokenSourceAuthProvider adapts an oauth2.TokenSource to
// clients.AuthProvider so it can be plugged into rest.ClientOptsBuilder's
// bearer auth handler.
type tokenSourceAuthProvider struct {
	source oauth2.TokenSource
}

// NewAuthProvider returns a clients.AuthProvider backed by source.
func NewAuthProvider(source oauth2.TokenSource) clients.AuthProvider {
	return &tokenSourceAuthProvider{source: source}
}

func (a *tokenSourceAuthProvider) Type() clients.AuthType {
	return clients.AuthTypeBearer
}

func (a *tokenSourceAuthProvider) User() (string, error) {
	return "", nil
}

func (a *tokenSourceAuthProvider) Pass() (string, error) {
	return "", nil
}

func (a *tokenSourceAuthProvider) Token() (string, error) {
	tok, err := a.source.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
