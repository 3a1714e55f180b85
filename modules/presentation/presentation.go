// Package presentation implements the rotating cover/title/description
// state machine (C6): gating, phase determination, candidate assembly,
// cadence, and the four selection strategies spec.md §4.5 describes.
package presentation

import (
	"context"
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spotifreak/spotifreak/config"
	"github.com/spotifreak/spotifreak/modules"
	"github.com/spotifreak/spotifreak/modules/playlistresolve"
	"github.com/spotifreak/spotifreak/supervisor"
)

// TypeName is the sync job "type" this module registers under.
const TypeName = "playlist_presentation"

// Module rotates a playlist's cover, title, and description on a schedule.
type Module struct {
	cfg  config.SyncConfig
	opts Options
}

// NewFactory returns the modules.Factory to register under TypeName.
func NewFactory() modules.Factory {
	return func(cfg config.SyncConfig) (modules.Module, error) {
		opts, err := decodeOptions(cfg.Options)
		if err != nil {
			return nil, fmt.Errorf("playlist_presentation %s: %w", cfg.ID, err)
		}
		return &Module{cfg: cfg, opts: opts}, nil
	}
}

// Run executes one presentation cycle (spec.md §4.5).
func (m *Module) Run(ctx context.Context, sc *modules.SyncContext) error {
	if !m.opts.Cover.Enabled && !m.opts.Title.Enabled && !m.opts.Description.Enabled {
		sc.Logger.Info("presentation: no features enabled, nothing to do")
		return nil
	}

	playlistID, err := playlistresolve.Resolve(sc.Spotify, m.opts.Playlist)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	doc := loadDocState(sc.State)

	effectiveInterval := m.effectiveIntervalSeconds()
	if !shouldExecuteNow(doc.LastUpdatedAt, now, effectiveInterval) {
		remaining := remainingInterval(doc.LastUpdatedAt, now, effectiveInterval)
		sc.Logger.InfoF("presentation: skipping, %ds remain of %ds interval", remaining, effectiveInterval)
		return nil
	}

	phase := determinePhase(m.opts.Phases, now, doc, sc.Logger, nil)
	doc.LastPhase = phase
	doc.GlobalRunCount++

	rng := seedRNG(m.opts.RandomSeed, doc.GlobalRunCount)
	baseDir := sc.Paths.AssetsDir

	updatesApplied := false
	var appliedFields []string

	coverValue, coverApply := m.resolveFeature("cover", m.opts.Cover, doc, phase, now, baseDir, rng, false)
	if coverApply && coverValue != "" {
		if err := m.applyCover(sc, playlistID, coverValue); err != nil {
			if !m.handleFailure(m.opts.Cover.FailureMode, "cover", doc, phase, err, sc) {
				return err
			}
		} else {
			updatesApplied = true
			appliedFields = append(appliedFields, "cover")
			sc.Logger.InfoF("presentation: cover updated to %q (phase=%s)", coverValue, phase)
		}
	}

	titleValue, titleApply := m.resolveFeature("title", m.opts.Title, doc, phase, now, baseDir, rng, false)
	descriptionValue, descriptionApply := m.resolveFeature("description", m.opts.Description, doc, phase, now, baseDir, rng, true)

	details := map[string]string{}
	if doc.Details == nil {
		doc.Details = map[string]string{}
	}
	if titleApply && titleValue != "" && titleValue != doc.Details["title"] {
		details["name"] = titleValue
		doc.Details["title"] = titleValue
	}
	if descriptionApply && descriptionValue != "" && descriptionValue != doc.Details["description"] {
		details["description"] = descriptionValue
		doc.Details["description"] = descriptionValue
	}

	if len(details) > 0 {
		var namePtr, descPtr *string
		if v, ok := details["name"]; ok {
			namePtr = &v
		}
		if v, ok := details["description"]; ok {
			descPtr = &v
		}
		if err := sc.Spotify.UpdatePlaylistDetails(playlistID, namePtr, descPtr, nil); err != nil {
			// The combined name+description call is governed by title's
			// failure_mode even when only description changed, matching
			// the original module's behavior (it never split the two).
			if !m.handleFailure(m.opts.Title.FailureMode, "title", doc, phase, err, sc) {
				sc.Logger.ErrorF("presentation: updating playlist details failed: %v", err)
			}
		} else {
			updatesApplied = true
			for field := range details {
				appliedFields = append(appliedFields, field)
			}
			sc.Logger.InfoF("presentation: details updated %v (phase=%s)", appliedFields, phase)
		}
	}

	if updatesApplied {
		doc.LastUpdatedAt = now.Format(timeLayout)
	}
	saveDocState(sc.State, doc)
	sc.State.MarkDirty()

	return nil
}

func (m *Module) effectiveIntervalSeconds() int {
	if m.opts.IntervalSeconds != nil {
		return *m.opts.IntervalSeconds
	}
	if m.cfg.Schedule.Interval != nil {
		if seconds, err := supervisor.ParseInterval(*m.cfg.Schedule.Interval); err == nil {
			return seconds
		}
	}
	return 300
}

func shouldExecuteNow(lastUpdatedAt string, now time.Time, intervalSeconds int) bool {
	if lastUpdatedAt == "" {
		return true
	}
	last, err := time.Parse(timeLayout, lastUpdatedAt)
	if err != nil {
		return true
	}
	return now.Sub(last).Seconds() >= float64(intervalSeconds)
}

func remainingInterval(lastUpdatedAt string, now time.Time, intervalSeconds int) int {
	if lastUpdatedAt == "" {
		return 0
	}
	last, err := time.Parse(timeLayout, lastUpdatedAt)
	if err != nil {
		return 0
	}
	remaining := float64(intervalSeconds) - now.Sub(last).Seconds()
	if remaining < 0 {
		return 0
	}
	return int(remaining)
}

// seedRNG derives a per-fire deterministic source from randomSeed and the
// module's running fire count (SPEC_FULL.md §9's supplemented reproducible
// presentation RNG). An empty seed falls back to process entropy.
func seedRNG(randomSeed string, globalRunCount int) *rand.Rand {
	if randomSeed == "" {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	h := fnv.New64a()
	h.Write([]byte(fmt.Sprintf("%s:%d", randomSeed, globalRunCount)))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// resolveFeature runs the full per-feature pipeline: cadence gate,
// candidate assembly, dynamic description templates, selection, and
// history bookkeeping. Returns (value, shouldApply).
func (m *Module) resolveFeature(name string, opts FeatureOptions, doc *docState, phase string, now time.Time, baseDir string, rng *rand.Rand, isDescription bool) (string, bool) {
	if !opts.Enabled {
		return "", false
	}

	fs := doc.featureState(name, opts.Selection.GroupKey)
	fs.RunCount++

	if !withinCadence(opts.Cadence, fs, phase, now) {
		return "", false
	}

	candidates, buckets := collectCandidates(name, opts, phase, baseDir, doc, rng)

	if isDescription && opts.UseDynamic {
		templates := opts.DynamicTemplates
		if len(templates) == 0 {
			templates = defaultDescriptionTemplates
		}
		for _, text := range renderDynamicDescriptions(templates, now) {
			candidates = append(candidates, candidate{value: text, weight: 1, sourceID: "dynamic"})
		}
	}

	if len(candidates) == 0 {
		if opts.FallbackAsset != "" {
			return opts.FallbackAsset, true
		}
		return "", false
	}

	value := selectCandidate(name, opts, fs, doc, candidates, buckets, phase, rng)
	if value == "" {
		if opts.FallbackAsset != "" {
			return opts.FallbackAsset, true
		}
		return "", false
	}

	fs.LastValue = value
	fs.History = trimHistory(append(fs.History, value), opts.Selection.DedupeWindow)
	fs.LastValueAt = now.Format(timeLayout)

	return value, true
}

func withinCadence(cadence FeatureCadence, fs *featureDoc, phase string, now time.Time) bool {
	if cadence.Multiplier > 1 && fs.RunCount%cadence.Multiplier != 0 {
		return false
	}
	if seconds, ok := cadence.PhaseOverrides[phase]; ok && fs.LastValueAt != "" {
		last, err := time.Parse(timeLayout, fs.LastValueAt)
		if err == nil && now.Sub(last).Seconds() < float64(seconds) {
			return false
		}
	}
	return true
}

var defaultDescriptionTemplates = []string{
	"Updated at {time} on {weekday}",
	"Current vibe as of {date}",
	"Live update - {time}",
}

func renderDynamicDescriptions(templates []string, now time.Time) []string {
	local := now.Local()
	replacer := strings.NewReplacer(
		"{time}", local.Format("15:04"),
		"{date}", local.Format("January 2, 2006"),
		"{weekday}", local.Format("Monday"),
	)
	out := make([]string, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, replacer.Replace(tpl))
	}
	return out
}

func (m *Module) applyCover(sc *modules.SyncContext, playlistID, assetPath string) error {
	path := assetPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(sc.Paths.BaseDir, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading cover asset %s: %w", path, err)
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	return sc.Spotify.UploadPlaylistCover(playlistID, encoded)
}

// handleFailure applies a feature's failure_mode policy. Returns true if
// the error was absorbed (skip/reuse_last), false if it should propagate
// (stop).
func (m *Module) handleFailure(mode, featureName string, doc *docState, phase string, err error, sc *modules.SyncContext) bool {
	switch mode {
	case "reuse_last":
		fs, ok := doc.Features[featureName]
		if ok && fs.LastValue != "" {
			sc.Logger.WarnF("presentation: %s update failed, reusing last value (phase=%s): %v", featureName, phase, err)
			return true
		}
		fallthrough
	case "skip", "":
		sc.Logger.WarnF("presentation: %s update failed, skipping (phase=%s): %v", featureName, phase, err)
		return true
	default: // stop
		return false
	}
}
