package config

import (
	"context"

	"github.com/spotifreak/spotifreak/secrets"
)

// Secret keys used to look up individual credential fields in a
// secrets.Store, keyed the way OpenSecretsStore's localStore persists them.
const (
	SecretSpotifyClientID     = "spotify_client_id"
	SecretSpotifyClientSecret = "spotify_client_secret"
	SecretLastFMAPIKey        = "lastfm_api_key"
	SecretLastFMAPISecret     = "lastfm_api_secret"
)

// placeholderValue marks a config.yml field as "not set inline, look in the
// secrets store instead".
const placeholderValue = "SET_ME"

// OpenSecretsStore opens the encrypted local credential store at
// paths.SecretsFile, creating it on first use. masterKey is normally read
// from the SPOTIFREAK_SECRETS_KEY environment variable by the CLI; an empty
// store file is created lazily by the first Write.
func OpenSecretsStore(paths ConfigPaths, masterKey string) (secrets.Store, error) {
	return secrets.NewLocalStore(paths.SecretsFile, masterKey)
}

// ResolveSecrets overlays any blank or placeholder credential field in
// global with the matching entry from store. A store miss on a field that
// is already set inline is not an error; a miss on a field that is blank
// is left blank so the caller's own CredentialsMissing check fires with a
// clear message.
func ResolveSecrets(global *GlobalConfig, store secrets.Store) {
	ctx := context.Background()

	if needsSecret(global.Spotify.ClientID) {
		if cred, err := store.Get(SecretSpotifyClientID, ctx); err == nil {
			global.Spotify.ClientID = cred.Str()
		}
	}
	if needsSecret(global.Spotify.ClientSecret) {
		if cred, err := store.Get(SecretSpotifyClientSecret, ctx); err == nil {
			global.Spotify.ClientSecret = cred.Str()
		}
	}
	if global.LastFM != nil {
		if needsSecret(global.LastFM.APIKey) {
			if cred, err := store.Get(SecretLastFMAPIKey, ctx); err == nil {
				global.LastFM.APIKey = cred.Str()
			}
		}
		if needsSecret(global.LastFM.APISecret) {
			if cred, err := store.Get(SecretLastFMAPISecret, ctx); err == nil {
				global.LastFM.APISecret = cred.Str()
			}
		}
	}
}

func needsSecret(value string) bool {
	return value == "" || value == placeholderValue
}

// WriteSecret stores a single credential field, used by the interactive
// init/doctor flows so real credentials never need to sit in plaintext
// config.yml.
func WriteSecret(store secrets.Store, key, value string) error {
	return store.Write(key, &secrets.Credential{Value: []byte(value)}, context.Background())
}
