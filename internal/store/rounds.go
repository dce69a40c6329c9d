package store

import (
	"context"
	"fmt"
	"time"

	"github.com/xonecas/pnw-recruiter/internal/constants"
)

// Round is the stored outcome of one recruitment round.
type Round struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Fetched    int       `json:"fetched"`
	Eligible   int       `json:"eligible"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

type roundRow struct {
	ID         string     `db:"id"`
	StartedAt  ledgerTime `db:"started_at"`
	FinishedAt ledgerTime `db:"finished_at"`
	Fetched    int        `db:"fetched"`
	Eligible   int        `db:"eligible"`
	Sent       int        `db:"sent"`
	Failed     int        `db:"failed"`
	Error      string     `db:"error"`
}

// RecordRound stores a finished or aborted round.
func (s *Store) RecordRound(ctx context.Context, r Round) error {
	row := roundRow{
		ID:         r.ID,
		StartedAt:  ledgerTime{r.StartedAt},
		FinishedAt: ledgerTime{r.FinishedAt},
		Fetched:    r.Fetched,
		Eligible:   r.Eligible,
		Sent:       r.Sent,
		Failed:     r.Failed,
		Error:      r.Error,
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO rounds (id, started_at, finished_at, fetched, eligible, sent, failed, error)
		VALUES (:id, :started_at, :finished_at, :fetched, :eligible, :sent, :failed, :error)
	`, row)
	if err != nil {
		return fmt.Errorf("record round %s: %w", r.ID, err)
	}
	return nil
}

// ListRounds returns the most recent rounds, newest first.
func (s *Store) ListRounds(ctx context.Context, limit int) ([]Round, error) {
	if limit <= 0 {
		limit = constants.DefaultListLimit
	}

	var rows []roundRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, started_at, finished_at, fetched, eligible, sent, failed, error
		FROM rounds
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query rounds: %w", err)
	}

	rounds := make([]Round, len(rows))
	for i, r := range rows {
		rounds[i] = Round{
			ID:         r.ID,
			StartedAt:  r.StartedAt.Time,
			FinishedAt: r.FinishedAt.Time,
			Fetched:    r.Fetched,
			Eligible:   r.Eligible,
			Sent:       r.Sent,
			Failed:     r.Failed,
			Error:      r.Error,
		}
	}
	return rounds, nil
}
