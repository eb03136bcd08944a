// Package store persists pipeline runs and their feature tables so
// results can be re-exported and inspected without recomputing.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/covariate-cli/internal/stack"
)

// RunStatus tracks a pipeline run through its lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunParams records the inputs that produced a run.
type RunParams struct {
	Boundary string  `json:"boundary"`
	Proj4    string  `json:"proj4"`
	CellSize float64 `json:"cell_size"`
}

// Run is one execution of the covariate pipeline.
type Run struct {
	ID        string
	Status    RunStatus
	Params    RunParams
	Columns   []string
	RowCount  int
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RunFilter narrows ListRuns results.
type RunFilter struct {
	Status RunStatus
	Limit  int
	Offset int
}

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = eris.New("store: run not found")

// Store persists runs and feature rows.
type Store interface {
	Migrate(ctx context.Context) error
	CreateRun(ctx context.Context, params RunParams) (*Run, error)
	CompleteRun(ctx context.Context, runID string, columns []string, rowCount int) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	InsertFeatures(ctx context.Context, runID string, table *stack.FeatureTable) error
	FeaturePreview(ctx context.Context, runID string, limit int) (*stack.FeatureTable, error)
	Close() error
}
