// Package state implements the per-job persisted JSON document: cursors,
// run history, and module scratch space. Saves are dirty-gated and written
// atomically via a temp file + rename so a crash mid-write never leaves a
// corrupt file in place.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spotifreak/spotifreak/errs"
)

// CurrentVersion is the SyncState schema version written on every save.
const CurrentVersion = 1

// MaxRunHistory bounds run_history; BeginRun/CompleteRun trim to this after
// every mutation.
const MaxRunHistory = 20

// Status is a RunRecord's lifecycle status.
type Status string

const (
	StatusRunning         Status = "running"
	StatusSuccess         Status = "success"
	StatusFailed          Status = "failed"
	StatusNoop            Status = "noop"
	StatusIdle            Status = "idle"
	StatusUnchanged       Status = "unchanged"
	StatusUpToDate        Status = "up_to_date"
	StatusRateLimited     Status = "rate_limited"
	StatusSkippedInterval Status = "skipped_interval"
	StatusUpdated         Status = "updated"
)

const timeLayout = "2006-01-02T15:04:05Z"

// RunRecord is one entry in run_history.
type RunRecord struct {
	ID          string         `json:"id"`
	Status      Status         `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Error       *string        `json:"error,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// State is one job's persisted document. It is not safe for concurrent
// use; the Supervisor guarantees single-owner access within a fire (§5).
type State struct {
	path  string
	dirty bool

	data map[string]any
}

// Load reads path if it exists, or returns a blank in-memory state
// anchored at path otherwise. A malformed file yields StateCorrupt.
func Load(path string) (*State, error) {
	s := &State{path: path, data: make(map[string]any)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errs.Newf(errs.InternalError, "reading state file %s: %v", path, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errs.Newf(errs.StateCorrupt, "parsing state file %s: %v", path, err)
	}

	delete(doc, "version")
	delete(doc, "updated_at")
	s.data = doc
	return s, nil
}

// Path returns the file this state will be saved to.
func (s *State) Path() string { return s.path }

// Dirty reports whether there are unsaved changes.
func (s *State) Dirty() bool { return s.dirty }

// Data exposes the mutable duck-typed document. Callers that mutate it
// directly (module scratch space) must call MarkDirty.
func (s *State) Data() map[string]any { return s.data }

// MarkDirty flags the state as having unsaved changes.
func (s *State) MarkDirty() { s.dirty = true }

// Get returns a scratch value by key.
func (s *State) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Set writes a scratch value and marks the state dirty.
func (s *State) Set(key string, value any) {
	s.data[key] = value
	s.dirty = true
}

// LastProcessedTrackID returns the persisted cursor, if any.
func (s *State) LastProcessedTrackID() (string, bool) {
	v, ok := s.data["last_processed_track_id"]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// SetLastProcessedTrackID sets or clears the cursor. A nil id clears both
// cursor fields. Idempotent when the value is unchanged.
func (s *State) SetLastProcessedTrackID(id *string, now time.Time) {
	if id == nil {
		if _, ok := s.data["last_processed_track_id"]; ok {
			delete(s.data, "last_processed_track_id")
			delete(s.data, "last_processed_at")
			s.dirty = true
		}
		return
	}
	if existing, ok := s.LastProcessedTrackID(); ok && existing == *id {
		return
	}
	s.data["last_processed_track_id"] = *id
	s.data["last_processed_at"] = now.UTC().Format(timeLayout)
	s.dirty = true
}

func (s *State) runHistory() []RunRecord {
	raw, ok := s.data["run_history"]
	if !ok {
		return nil
	}
	// run_history round-trips through JSON-shaped any values (loaded from
	// disk as []any of map[string]any) as well as native []RunRecord
	// (produced by BeginRun within the same process). Normalize both.
	if records, ok := raw.([]RunRecord); ok {
		return records
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]RunRecord, 0, len(list))
	for _, item := range list {
		rec, err := decodeRunRecord(item)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func decodeRunRecord(item any) (RunRecord, error) {
	buf, err := json.Marshal(item)
	if err != nil {
		return RunRecord{}, err
	}
	var rec RunRecord
	if err := json.Unmarshal(buf, &rec); err != nil {
		return RunRecord{}, err
	}
	return rec, nil
}

func (s *State) setRunHistory(records []RunRecord) {
	if len(records) > MaxRunHistory {
		records = records[len(records)-MaxRunHistory:]
	}
	s.data["run_history"] = records
	s.dirty = true
}

// RunHistory returns a copy of the run history, newest last.
func (s *State) RunHistory() []RunRecord {
	records := s.runHistory()
	out := make([]RunRecord, len(records))
	copy(out, records)
	return out
}

// BeginRun appends a running RunRecord with the given id and trims history
// to MaxRunHistory.
func (s *State) BeginRun(runID string, startedAt time.Time) {
	records := s.runHistory()
	records = append(records, RunRecord{ID: runID, Status: StatusRunning, StartedAt: startedAt.UTC()})
	s.setRunHistory(records)
}

// CompleteRun mutates the youngest RunRecord with a matching id, or appends
// a synthetic record if none is found. Passing a nil error/details clears
// those fields explicitly.
func (s *State) CompleteRun(runID string, status Status, completedAt *time.Time, runErr error, details map[string]any) {
	records := s.runHistory()

	idx := -1
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].ID == runID {
			idx = i
			break
		}
	}

	rec := RunRecord{ID: runID, StartedAt: time.Now().UTC()}
	if idx >= 0 {
		rec = records[idx]
	}
	rec.Status = status
	rec.CompletedAt = completedAt
	if runErr != nil {
		msg := runErr.Error()
		rec.Error = &msg
	} else {
		rec.Error = nil
	}
	rec.Details = details

	if idx >= 0 {
		records[idx] = rec
	} else {
		records = append(records, rec)
	}
	s.setRunHistory(records)
}

// Save writes the document atomically if dirty. No-op otherwise.
func (s *State) Save(now time.Time) error {
	if !s.dirty {
		return nil
	}

	doc := make(map[string]any, len(s.data)+2)
	for k, v := range s.data {
		doc[k] = v
	}
	doc["version"] = CurrentVersion
	doc["updated_at"] = now.UTC().Format(timeLayout)

	buf, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errs.Newf(errs.InternalError, "encoding state for %s: %v", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Newf(errs.InternalError, "creating state dir %s: %v", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return errs.Newf(errs.InternalError, "creating temp state file in %s: %v", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return errs.Newf(errs.InternalError, "writing temp state file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return errs.Newf(errs.InternalError, "closing temp state file: %v", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return errs.Newf(errs.InternalError, "renaming state file into place: %v", err)
	}

	s.dirty = false
	return nil
}

// PathFor resolves the on-disk path for a job, honoring an explicit
// override (absolute or relative to storageDir) or defaulting to
// "<storageDir>/<id>.json".
func PathFor(storageDir, id string, override string) string {
	if override != "" {
		if filepath.IsAbs(override) {
			return override
		}
		return filepath.Join(storageDir, override)
	}
	return filepath.Join(storageDir, fmt.Sprintf("%s.json", id))
}

// SortByName is used by callers that need a stable iteration order over a
// set of job ids (e.g. hot-reload diff logging).
func SortByName(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}
