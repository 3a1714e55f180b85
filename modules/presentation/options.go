package presentation

import (
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/modules/playlistresolve"
)

// FeatureSelection controls how a candidate is picked from a feature's
// assembled candidate list (spec.md §4.5.5).
type FeatureSelection struct {
	Mode          string `yaml:"mode"`
	DedupeWindow  int    `yaml:"dedupe_window"`
	RestartPolicy string `yaml:"restart_policy"`
	GroupKey      string `yaml:"group_key,omitempty"`
}

// FeatureCadence gates how often a feature is eligible to change, on top of
// the module-level interval gate (spec.md §4.5.4).
type FeatureCadence struct {
	Multiplier     int            `yaml:"multiplier"`
	PhaseOverrides map[string]int `yaml:"phase_overrides,omitempty"`
}

// AssetSource is one entry of a feature's per-phase source list
// (spec.md §4.5.3).
type AssetSource struct {
	Type            string   `yaml:"type"`
	Items           []string `yaml:"items,omitempty"`
	Path            string   `yaml:"path,omitempty"`
	Pattern         string   `yaml:"pattern,omitempty"`
	Recursive       bool     `yaml:"recursive,omitempty"`
	ShuffleOnLoad   bool     `yaml:"shuffle_on_load,omitempty"`
	MaxItems        *int     `yaml:"max_items,omitempty"`
	Weight          float64  `yaml:"weight,omitempty"`
	CacheTTLSeconds *int     `yaml:"cache_ttl_seconds,omitempty"`
}

// FeatureOptions configures one of cover/title/description.
type FeatureOptions struct {
	Enabled       bool                     `yaml:"enabled"`
	Selection     FeatureSelection         `yaml:"selection,omitempty"`
	Sources       map[string][]AssetSource `yaml:"sources,omitempty"`
	FallbackAsset string                   `yaml:"fallback_asset,omitempty"`
	FailureMode   string                   `yaml:"failure_mode,omitempty"`
	Cadence       FeatureCadence           `yaml:"cadence,omitempty"`

	// description-only fields, harmless on cover/title.
	UseDynamic       bool     `yaml:"use_dynamic,omitempty"`
	DynamicTemplates []string `yaml:"dynamic_templates,omitempty"`
}

func (f FeatureOptions) normalized() FeatureOptions {
	if f.Selection.Mode == "" {
		f.Selection.Mode = "sequential"
	}
	if f.Selection.RestartPolicy == "" {
		f.Selection.RestartPolicy = "loop"
	}
	if f.Cadence.Multiplier < 1 {
		f.Cadence.Multiplier = 1
	}
	if f.FailureMode == "" {
		f.FailureMode = "skip"
	}
	return f
}

// CustomPhase is one named phase boundary in "custom" phase mode.
type CustomPhase struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
}

// SunriseOptions parameterizes "sunrise_sunset" phase mode.
type SunriseOptions struct {
	Latitude             float64 `yaml:"latitude"`
	Longitude            float64 `yaml:"longitude"`
	MorningDurationHours float64 `yaml:"morning_duration_hours"`
	EveningDurationHours float64 `yaml:"evening_duration_hours"`
	NightOffsetHours     float64 `yaml:"night_offset_hours"`
}

// PhasesOptions selects the phase-determination mode (spec.md §4.5.2).
type PhasesOptions struct {
	Mode    string          `yaml:"mode"`
	Sunrise *SunriseOptions `yaml:"sunrise,omitempty"`
	Custom  []CustomPhase   `yaml:"custom,omitempty"`
}

// Options is the playlist_presentation module's full options block.
type Options struct {
	Playlist        playlistresolve.Config `yaml:"playlist"`
	IntervalSeconds *int                   `yaml:"interval_seconds,omitempty"`
	Phases          *PhasesOptions         `yaml:"phases,omitempty"`
	Cover           FeatureOptions         `yaml:"cover,omitempty"`
	Title           FeatureOptions         `yaml:"title,omitempty"`
	Description     FeatureOptions         `yaml:"description,omitempty"`
	RandomSeed      string                 `yaml:"random_seed,omitempty"`
}

func decodeOptions(raw map[string]any) (Options, error) {
	var opts Options
	if err := modules.DecodeOptions(raw, &opts); err != nil {
		return Options{}, err
	}
	opts.Cover = opts.Cover.normalized()
	opts.Title = opts.Title.normalized()
	opts.Description = opts.Description.normalized()
	if opts.Phases == nil {
		opts.Phases = &PhasesOptions{Mode: "none"}
	}
	if opts.Phases.Mode == "" {
		opts.Phases.Mode = "none"
	}
	return opts, nil
}
