package model

import "time"

// RunStatus tracks the lifecycle of a sync run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// SyncRun records one ticker sync: what was requested, where the filings
// index lived, and how many rows came out of each stage.
type SyncRun struct {
	ID         string     `json:"id"`
	Ticker     string     `json:"ticker"`
	CIK        string     `json:"cik"`
	IndexURL   string     `json:"index_url"`
	Status     RunStatus  `json:"status"`
	Discovered int        `json:"discovered"`
	Kept       int        `json:"kept"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
