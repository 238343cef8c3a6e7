package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// AddRoll stores r and returns its ID. RolledAt defaults to now.
func (s *SQLiteStore) AddRoll(ctx context.Context, r *Roll) (int64, error) {
	if r.DiceValue < 1 || r.DiceValue > 6 {
		return 0, fmt.Errorf("dice value %d out of range", r.DiceValue)
	}
	factsJSON, err := json.Marshal(r.Facts)
	if err != nil {
		return 0, fmt.Errorf("encoding facts: %w", err)
	}
	if r.RolledAt.IsZero() {
		r.RolledAt = time.Now().UTC()
	}

	var reason sql.NullString
	if r.Reason != "" {
		reason = sql.NullString{String: r.Reason, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rolls (dice_value, topic, facts, source, reason, rolled_at) VALUES (?, ?, ?, ?, ?, ?)`,
		r.DiceValue, r.Topic, string(factsJSON), r.Source, reason, r.RolledAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting roll: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading roll id: %w", err)
	}
	r.ID = id
	return id, nil
}

// ListRolls returns rolls newest first.
func (s *SQLiteStore) ListRolls(ctx context.Context, opts ListOpts) ([]*Roll, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := "SELECT id, dice_value, topic, facts, source, reason, rolled_at FROM rolls"
	args := []any{}
	if opts.Topic != "" {
		query += " WHERE topic = ?"
		args = append(args, opts.Topic)
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing rolls: %w", err)
	}
	defer rows.Close()

	var out []*Roll
	for rows.Next() {
		r, err := scanRoll(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LastRoll returns the most recent roll, or nil when there is none.
func (s *SQLiteStore) LastRoll(ctx context.Context) (*Roll, error) {
	rolls, err := s.ListRolls(ctx, ListOpts{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rolls) == 0 {
		return nil, nil
	}
	return rolls[0], nil
}

// ClearRolls deletes the roll history and returns how many rows went.
func (s *SQLiteStore) ClearRolls(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM rolls")
	if err != nil {
		return 0, fmt.Errorf("clearing rolls: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoll(row rowScanner) (*Roll, error) {
	var (
		r         Roll
		factsJSON string
		reason    sql.NullString
	)
	if err := row.Scan(&r.ID, &r.DiceValue, &r.Topic, &factsJSON, &r.Source, &reason, &r.RolledAt); err != nil {
		return nil, fmt.Errorf("scanning roll: %w", err)
	}
	if err := json.Unmarshal([]byte(factsJSON), &r.Facts); err != nil {
		return nil, fmt.Errorf("decoding facts for roll %d: %w", r.ID, err)
	}
	r.Reason = reason.String
	return &r, nil
}
