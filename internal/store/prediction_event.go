package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/level"
)

// predictionRow is the column layout of prediction_events.
type predictionRow struct {
	ID                  string  `db:"id"`
	Sequence            int64   `db:"sequence"`
	TimestampMs         int64   `db:"timestamp_ms"`
	UserID              string  `db:"user_id"`
	QuizScore           float64 `db:"quiz_score"`
	AvgTimeSec          float64 `db:"avg_time_sec"`
	TimeStdSec          float64 `db:"time_std_sec"`
	VideoReplays        float64 `db:"video_replays"`
	PerceivedDifficulty float64 `db:"perceived_difficulty"`
	Level               string  `db:"level"`
	Confidence          float64 `db:"confidence"`
}

const predictionColumns = `id, sequence, timestamp_ms, user_id, quiz_score, avg_time_sec,
	time_std_sec, video_replays, perceived_difficulty, level, confidence`

// predictionRepo implements PredictionRepo on SQLite.
type predictionRepo struct {
	db  *sqlx.DB
	seq *sequenceCounter
}

func (r *predictionRepo) Append(ctx context.Context, ev *PredictionEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	seq, err := r.seq.Next(ctx, tx)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO prediction_events (`+predictionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, seq, ev.Timestamp.UnixMilli(), ev.UserID,
		ev.Features.Score, ev.Features.AvgTime, ev.Features.TimeStd,
		ev.Features.Replays, ev.Features.Difficulty,
		ev.Level.String(), ev.Confidence,
	)
	if err != nil {
		return fmt.Errorf("insert prediction event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	ev.Sequence = seq
	return nil
}

func (r *predictionRepo) Recent(ctx context.Context, opts QueryOpts) ([]PredictionEvent, error) {
	var (
		where []string
		args  []any
	)
	if opts.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, opts.UserID)
	}
	if !opts.From.IsZero() {
		where = append(where, "timestamp_ms >= ?")
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		where = append(where, "timestamp_ms <= ?")
		args = append(args, opts.To.UnixMilli())
	}

	q := `SELECT ` + predictionColumns + ` FROM prediction_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY sequence DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var rows []predictionRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("query prediction events: %w", err)
	}

	events := make([]PredictionEvent, 0, len(rows))
	for _, row := range rows {
		ev, err := row.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (r *predictionRepo) LatestForUser(ctx context.Context, userID string) (*PredictionEvent, error) {
	var row predictionRow
	err := r.db.GetContext(ctx, &row,
		`SELECT `+predictionColumns+` FROM prediction_events
		 WHERE user_id = ? ORDER BY sequence DESC LIMIT 1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest prediction: %w", err)
	}
	ev, err := row.toEvent()
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *predictionRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM prediction_events`); err != nil {
		return 0, fmt.Errorf("count prediction events: %w", err)
	}
	return n, nil
}

func (r *predictionRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM prediction_events`); err != nil {
		return fmt.Errorf("clear prediction events: %w", err)
	}
	return nil
}

func (row predictionRow) toEvent() (PredictionEvent, error) {
	lvl, err := level.Parse(row.Level)
	if err != nil {
		return PredictionEvent{}, fmt.Errorf("event %s: %w", row.ID, err)
	}
	return PredictionEvent{
		ID:        row.ID,
		Sequence:  row.Sequence,
		Timestamp: time.UnixMilli(row.TimestampMs).UTC(),
		UserID:    row.UserID,
		Features: features.Vector{
			Score:      row.QuizScore,
			AvgTime:    row.AvgTimeSec,
			TimeStd:    row.TimeStdSec,
			Replays:    row.VideoReplays,
			Difficulty: row.PerceivedDifficulty,
		},
		Level:      lvl,
		Confidence: row.Confidence,
	}, nil
}
