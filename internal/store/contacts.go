package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xonecas/pnw-recruiter/internal/constants"
)

// Contact is one row of the ledger: the last time a nation was messaged.
type Contact struct {
	NationID int64     `json:"nation_id"`
	TimeSent time.Time `json:"time_sent"`
}

// RecordContact marks nationID as contacted now, replacing any earlier record.
// Each call commits on its own.
func (s *Store) RecordContact(ctx context.Context, nationID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO nations_contacted (nation_id, time_sent)
		VALUES (?, ?)
	`, nationID, formatTime(s.Now()))
	if err != nil {
		return fmt.Errorf("record contact %d: %w", nationID, err)
	}
	return nil
}

// LastContactTime returns when nationID was last contacted.
// The bool is false when the nation has never been contacted.
func (s *Store) LastContactTime(ctx context.Context, nationID int64) (time.Time, bool, error) {
	var sent ledgerTime
	err := s.db.GetContext(ctx, &sent, `
		SELECT time_sent FROM nations_contacted WHERE nation_id = ?
	`, nationID)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query contact %d: %w", nationID, err)
	}
	return sent.Time, true, nil
}

// ContactedWithin reports whether nationID was contacted less than window ago.
func (s *Store) ContactedWithin(ctx context.Context, nationID int64, window time.Duration) (bool, error) {
	last, ok, err := s.LastContactTime(ctx, nationID)
	if err != nil || !ok {
		return false, err
	}
	return s.Now().Sub(last) < window, nil
}

type contactRow struct {
	NationID int64      `db:"nation_id"`
	TimeSent ledgerTime `db:"time_sent"`
}

// ListContacts returns the most recently contacted nations, newest first.
func (s *Store) ListContacts(ctx context.Context, limit int) ([]Contact, error) {
	if limit <= 0 {
		limit = constants.DefaultListLimit
	}

	var rows []contactRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT nation_id, time_sent
		FROM nations_contacted
		ORDER BY time_sent DESC, nation_id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}

	contacts := make([]Contact, len(rows))
	for i, r := range rows {
		contacts[i] = Contact{NationID: r.NationID, TimeSent: r.TimeSent.Time}
	}
	return contacts, nil
}

// CountContacts returns the number of nations in the ledger.
func (s *Store) CountContacts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM nations_contacted"); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return count, nil
}
