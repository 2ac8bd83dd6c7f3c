// Package state persists resolution history using SQLite.
// It tracks runs and the per-definition-file resolutions they produced.
package state

import "time"

// RunStatus is the lifecycle state of a resolution run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ResolutionStatus is the outcome of one resolver over one definition file.
type ResolutionStatus string

const (
	ResolutionStatusSuccess ResolutionStatus = "success"
	ResolutionStatusFailed  ResolutionStatus = "failed"
)

// Run is one recorded invocation of the analyzer over a project.
type Run struct {
	ID          string
	ProjectDir  string
	Status      RunStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string
}

// Resolution is the recorded outcome of resolving one definition file.
type Resolution struct {
	ID             string
	RunID          string
	Resolver       string
	DefinitionFile string
	Status         ResolutionStatus
	Packages       int64
	Edges          int64
	Error          string
	DurationMS     int64
	ResolvedAt     time.Time
}

// Store persists runs and resolutions.
type Store interface {
	CreateRun(projectDir string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)

	RecordResolution(res *Resolution) error
	GetResolutionsForRun(runID string) ([]*Resolution, error)

	Close() error
}
