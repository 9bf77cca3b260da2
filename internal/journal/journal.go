// Package journal keeps a persistent record of completed builds.
package journal

import (
	"context"
	"time"
)

// Outcome values of a recorded build.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Build is one journal row.
type Build struct {
	ID           int64
	BuildID      string
	Command      string
	Started      time.Time
	Duration     time.Duration
	Outcome      string
	Pages        int
	Assets       int
	ManifestHash string
	Error        string
	// Stages maps stage name to its duration.
	Stages map[string]time.Duration
}

// Store persists build records.
type Store interface {
	Record(ctx context.Context, b Build) error
	Recent(ctx context.Context, limit int) ([]Build, error)
	Close() error
}
