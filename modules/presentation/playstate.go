package presentation

import (
	"encoding/json"
	"time"

	"github.com/spotifreak/spotifreak/state"
)

const timeLayout = time.RFC3339

// docState is the "playlist_presentation" scratch document, round-tripped
// through state.State's duck-typed map the same way state.decodeRunRecord
// round-trips run_history entries.
type docState struct {
	LastUpdatedAt  string                  `json:"last_updated_at,omitempty"`
	LastPhase      string                  `json:"last_phase,omitempty"`
	GlobalRunCount int                     `json:"global_run_count,omitempty"`
	Features       map[string]*featureDoc  `json:"features,omitempty"`
	Groups         map[string]*groupDoc    `json:"groups,omitempty"`
	SourceCache    map[string]sourceCache  `json:"source_cache,omitempty"`
	PhaseSchedule  phaseScheduleDoc        `json:"phase_schedule,omitempty"`
	Details        map[string]string       `json:"details,omitempty"`
}

type featureDoc struct {
	RunCount          int            `json:"run_count,omitempty"`
	Cursor            int            `json:"cursor"`
	Direction         int            `json:"direction,omitempty"`
	LastValue         string         `json:"last_value,omitempty"`
	LastValueAt       string         `json:"last_value_at,omitempty"`
	History           []string       `json:"history,omitempty"`
	RoundRobinCycle   []string       `json:"round_robin_cycle,omitempty"`
	RoundRobinPointer int            `json:"round_robin_pointer,omitempty"`
	RoundRobinIndices map[string]int `json:"round_robin_indices,omitempty"`
}

type groupDoc struct {
	Feature *featureDoc       `json:"feature,omitempty"`
	Cache   map[string]string `json:"cache,omitempty"`
}

type sourceCache struct {
	Timestamp int64    `json:"timestamp"`
	Items     []string `json:"items"`
}

type phaseScheduleDoc struct {
	Date  string            `json:"date,omitempty"`
	Times map[string]string `json:"times,omitempty"`
}

const stateKey = "playlist_presentation"

func loadDocState(st *state.State) *docState {
	raw, ok := st.Get(stateKey)
	if !ok {
		return &docState{Features: map[string]*featureDoc{}, Groups: map[string]*groupDoc{}, SourceCache: map[string]sourceCache{}}
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return &docState{Features: map[string]*featureDoc{}, Groups: map[string]*groupDoc{}, SourceCache: map[string]sourceCache{}}
	}
	var doc docState
	if err := json.Unmarshal(buf, &doc); err != nil {
		return &docState{Features: map[string]*featureDoc{}, Groups: map[string]*groupDoc{}, SourceCache: map[string]sourceCache{}}
	}
	if doc.Features == nil {
		doc.Features = map[string]*featureDoc{}
	}
	if doc.Groups == nil {
		doc.Groups = map[string]*groupDoc{}
	}
	if doc.SourceCache == nil {
		doc.SourceCache = map[string]sourceCache{}
	}
	return &doc
}

func saveDocState(st *state.State, doc *docState) {
	st.Set(stateKey, doc)
}

func (d *docState) featureState(name string, groupKey string) *featureDoc {
	if groupKey == "" {
		fs, ok := d.Features[name]
		if !ok {
			fs = &featureDoc{}
			d.Features[name] = fs
		}
		return fs
	}
	g, ok := d.Groups[groupKey]
	if !ok {
		g = &groupDoc{Feature: &featureDoc{}, Cache: map[string]string{}}
		d.Groups[groupKey] = g
	}
	if g.Feature == nil {
		g.Feature = &featureDoc{}
	}
	d.Features[name] = g.Feature
	return g.Feature
}

func trimHistory(history []string, window int) []string {
	if window <= 0 {
		return nil
	}
	max := window * 2
	if len(history) > max {
		return append([]string(nil), history[len(history)-max:]...)
	}
	return history
}
