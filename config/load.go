package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/spotifreak/spotifreak/errs"
)

// Load reads and strictly decodes config.yml plus every YAML file under
// syncs/. Sync files are returned sorted by id for deterministic iteration;
// duplicate ids are a ConfigInvalid error (JobConfig.id uniqueness
// invariant, spec.md §3).
func Load(paths ConfigPaths) (*GlobalConfig, []SyncConfig, error) {
	global, err := loadGlobalConfig(paths.GlobalConfig)
	if err != nil {
		return nil, nil, err
	}

	syncs, err := loadSyncConfigs(paths.SyncsDir)
	if err != nil {
		return nil, nil, err
	}

	return global, syncs, nil
}

func loadGlobalConfig(path string) (*GlobalConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Newf(errs.ConfigInvalid, "reading global config %s: %v", path, err)
	}

	var cfg GlobalConfig
	dec := yaml.NewDecoder(bytes.NewReader(raw), yaml.DisallowUnknownField())
	if err := dec.Decode(&cfg); err != nil {
		return nil, errs.Newf(errs.ConfigInvalid, "parsing global config %s: %v", path, err)
	}
	if cfg.Runtime.LogLevel == "" {
		cfg.Runtime.LogLevel = "info"
	}
	return &cfg, nil
}

func loadSyncConfigs(dir string) ([]SyncConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Newf(errs.ConfigInvalid, "reading syncs dir %s: %v", dir, err)
	}

	seen := make(map[string]string)
	var syncs []SyncConfig
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yml") && !strings.HasSuffix(name, ".yaml") {
			continue
		}

		path := filepath.Join(dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Newf(errs.ConfigInvalid, "reading sync file %s: %v", path, err)
		}

		var sc SyncConfig
		dec := yaml.NewDecoder(bytes.NewReader(raw), yaml.DisallowUnknownField())
		if err := dec.Decode(&sc); err != nil {
			return nil, errs.Newf(errs.ConfigInvalid, "parsing sync file %s: %v", path, err)
		}

		if err := validateSyncConfig(sc, path); err != nil {
			return nil, err
		}

		if prior, ok := seen[sc.ID]; ok {
			return nil, errs.Newf(errs.ConfigInvalid, "duplicate sync id %q in %s and %s", sc.ID, prior, path)
		}
		seen[sc.ID] = path
		syncs = append(syncs, sc)
	}

	sort.Slice(syncs, func(i, j int) bool { return syncs[i].ID < syncs[j].ID })
	return syncs, nil
}

func validateSyncConfig(sc SyncConfig, path string) error {
	if !ValidIdentifier(sc.ID) {
		return errs.Newf(errs.ConfigInvalid, "sync file %s has an invalid id %q", path, sc.ID)
	}
	if sc.Type == "" {
		return errs.Newf(errs.ConfigInvalid, "sync file %s is missing type", path)
	}
	hasInterval := sc.Schedule.Interval != nil
	hasCron := sc.Schedule.Cron != nil
	if hasInterval == hasCron {
		return errs.Newf(errs.ScheduleInvalid, "sync %s must set exactly one of schedule.interval or schedule.cron", sc.ID)
	}
	return nil
}

// BootstrapReport summarizes what Bootstrap created.
type BootstrapReport struct {
	CreatedDirs  []string
	CreatedFiles []string
}

// Bootstrap creates the base directory tree and a starter config.yml if
// absent, grounded in original_source/spotifreak/config.py's bootstrap().
func Bootstrap(paths ConfigPaths) (*BootstrapReport, error) {
	report := &BootstrapReport{}

	dirs := []string{paths.BaseDir, paths.SyncsDir, paths.StateDir, paths.TemplatesDir, paths.AssetsDir}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return report, errs.Newf(errs.InternalError, "creating %s: %v", dir, err)
			}
			report.CreatedDirs = append(report.CreatedDirs, dir)
		}
	}

	if _, err := os.Stat(paths.GlobalConfig); os.IsNotExist(err) {
		if err := os.WriteFile(paths.GlobalConfig, []byte(defaultGlobalConfigYAML), 0o600); err != nil {
			return report, errs.Newf(errs.InternalError, "writing default config.yml: %v", err)
		}
		report.CreatedFiles = append(report.CreatedFiles, paths.GlobalConfig)
	}

	return report, nil
}

const defaultGlobalConfigYAML = `spotify:
  client_id: ""
  client_secret: ""
  redirect_uri: "http://127.0.0.1:8888/callback"
  scopes:
    - playlist-modify-public
    - playlist-modify-private
    - playlist-read-private
    - user-library-read
runtime:
  timezone: "UTC"
  storage_dir: "state"
  log_level: "info"
supervisor:
  ipc_socket: "ipc.sock"
  hot_reload: true
`

// JobIndex is the in-memory id -> SyncConfig map rebuilt on every load.
type JobIndex map[string]SyncConfig

// NewJobIndex builds an index from a slice of sync configs.
func NewJobIndex(syncs []SyncConfig) JobIndex {
	idx := make(JobIndex, len(syncs))
	for _, sc := range syncs {
		idx[sc.ID] = sc
	}
	return idx
}

// Diff computes added/removed/common ids between the previous and next
// JobIndex, per spec.md §4.3.4. "common" further distinguishes structural
// equality so the Supervisor only re-registers jobs that actually changed.
type Diff struct {
	Added           []string
	Removed         []string
	CommonChanged   []string
	CommonUnchanged []string
}

func (idx JobIndex) Diff(next JobIndex) Diff {
	var d Diff
	for id := range idx {
		if _, ok := next[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	for id, nextCfg := range next {
		prevCfg, ok := idx[id]
		if !ok {
			d.Added = append(d.Added, id)
			continue
		}
		if syncConfigsEqual(prevCfg, nextCfg) {
			d.CommonUnchanged = append(d.CommonUnchanged, id)
		} else {
			d.CommonChanged = append(d.CommonChanged, id)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.CommonChanged)
	sort.Strings(d.CommonUnchanged)
	return d
}

func syncConfigsEqual(a, b SyncConfig) bool {
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}
