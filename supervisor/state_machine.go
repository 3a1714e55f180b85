package supervisor

import "github.com/spotifreak/spotifreak/config"

// JobState is the per-job state machine described in spec.md §4.3.6:
// IDLE -> SCHEDULED -> RUNNING -> IDLE, with side transitions
// SCHEDULED <-> PAUSED (via IPC) and SCHEDULED -> REMOVED.
type JobState string

const (
	JobIdle      JobState = "idle"
	JobScheduled JobState = "scheduled"
	JobRunning   JobState = "running"
	JobPaused    JobState = "paused"
	JobRemoved   JobState = "removed"
)

// jobEntry is the Supervisor's own bookkeeping for one registered job,
// separate from chrono's JobRecord. Config is the most recently registered
// SyncConfig; State is advisory (used for Status()/IPC reporting) and is
// updated around every fire.
type jobEntry struct {
	config config.SyncConfig
	state  JobState
}
