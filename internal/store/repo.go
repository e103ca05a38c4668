package store

import (
	"context"
	"time"

	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/level"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	UserID string    // only events for this user ("" = all)
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// PredictionEvent records one scoring call: its inputs and its outcome.
type PredictionEvent struct {
	ID         string
	Sequence   int64
	Timestamp  time.Time
	UserID     string
	Features   features.Vector
	Level      level.Level
	Confidence float64
}

// PredictionRepo provides append and query access to prediction events.
type PredictionRepo interface {
	// Append stores a new event. ID, Sequence and Timestamp are assigned
	// when zero and written back to ev.
	Append(ctx context.Context, ev *PredictionEvent) error

	// Recent returns matching events, newest first.
	Recent(ctx context.Context, opts QueryOpts) ([]PredictionEvent, error)

	// LatestForUser returns the newest event for userID, or nil if none exist.
	LatestForUser(ctx context.Context, userID string) (*PredictionEvent, error)

	// Count returns the number of stored events.
	Count(ctx context.Context) (int, error)

	// Clear deletes every event.
	Clear(ctx context.Context) error
}
