package store

import (
	"context"

	"github.com/sells-group/insider-sync/internal/model"
)

// RunFilter specifies criteria for listing sync runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Ticker string          `json:"ticker,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// RowFilter specifies criteria for listing stored transactions. A Limit of
// zero or less returns every matching row.
type RowFilter struct {
	Ticker string `json:"ticker,omitempty"`
	Type   string `json:"type,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// Store defines the persistence interface for the sync pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, ticker, cik, indexURL string) (*model.SyncRun, error)
	CompleteRun(ctx context.Context, runID string, discovered, kept int) error
	FailRun(ctx context.Context, runID string, message string) error
	GetRun(ctx context.Context, runID string) (*model.SyncRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.SyncRun, error)

	// Transactions. SaveRows replaces the ticker's stored rows with the
	// given batch so a re-sync never duplicates filings.
	SaveRows(ctx context.Context, runID, ticker string, rows []model.CleanRow) (int, error)
	ListRows(ctx context.Context, filter RowFilter) ([]model.CleanRow, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
