package config

import "regexp"

// RetryPolicy bounds Spotify HTTP retries; mirrors clients.RetryInfo but is
// expressed at the config layer so it can be loaded from YAML.
type RetryPolicy struct {
	MaxRetries int `yaml:"max_retries"`
	WaitMs     int `yaml:"wait_ms"`
}

// SpotifySettings are the OAuth2 app credentials and default scopes.
type SpotifySettings struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURI  string   `yaml:"redirect_uri"`
	Scopes       []string `yaml:"scopes"`
}

// LastFMSettings are optional; nil when the lastfm_top_tracks module is
// unused.
type LastFMSettings struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Username  string `yaml:"username"`
}

// RuntimeSettings control the process-wide knobs: timezone, storage
// location, log level, and the default HTTP retry policy.
type RuntimeSettings struct {
	Timezone     string       `yaml:"timezone"`
	StorageDir   string       `yaml:"storage_dir"`
	LogLevel     string       `yaml:"log_level"`
	DefaultRetry *RetryPolicy `yaml:"default_retry,omitempty"`
}

// SupervisorSettings configure the IPC socket, hot-reload watcher, and the
// optional HTTP control plane (SPEC_FULL.md §4.10). HTTPListenPort of 0
// leaves the control plane disabled.
type SupervisorSettings struct {
	IPCSocket      string `yaml:"ipc_socket"`
	HotReload      bool   `yaml:"hot_reload"`
	HTTPListenHost string `yaml:"http_listen_host,omitempty"`
	HTTPListenPort int16  `yaml:"http_listen_port,omitempty"`
}

// GlobalConfig is config.yml, decoded strictly (unknown keys are an error).
type GlobalConfig struct {
	Spotify    SpotifySettings    `yaml:"spotify"`
	LastFM     *LastFMSettings    `yaml:"lastfm,omitempty"`
	Runtime    RuntimeSettings    `yaml:"runtime"`
	Supervisor SupervisorSettings `yaml:"supervisor"`
}

// SyncSchedule is exactly one of Interval or Cron.
type SyncSchedule struct {
	Interval *string `yaml:"interval,omitempty"`
	Cron     *string `yaml:"cron,omitempty"`
}

// SyncConfig is one syncs/*.yml file.
type SyncConfig struct {
	ID          string         `yaml:"id"`
	Type        string         `yaml:"type"`
	Schedule    SyncSchedule   `yaml:"schedule"`
	StateFile   string         `yaml:"state_file,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Options     map[string]any `yaml:"options,omitempty"`
}

// TemplateDefinition names a reusable cover/title/description bundle that
// playlist_presentation jobs can reference by name instead of repeating
// asset lists inline (supplemented feature, see SPEC_FULL.md §3).
type TemplateDefinition struct {
	Name        string   `yaml:"name"`
	Cover       []string `yaml:"cover,omitempty"`
	Title       []string `yaml:"title,omitempty"`
	Description []string `yaml:"description,omitempty"`
}

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidIdentifier reports whether id is filesystem-safe, per spec.md §3's
// JobConfig.id invariant.
func ValidIdentifier(id string) bool {
	return id != "" && identifierPattern.MatchString(id)
}
