// internal/database/matches.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ratedrps/ratedrps-service/internal/models"
)

const insertMatchQ = `
	INSERT INTO matches (
		id, player1_id, player2_id, player1_username, player2_username,
		player1_move, player2_move, winner_id, player1_elo_delta, player2_elo_delta, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11)
	ON CONFLICT (id) DO NOTHING
`

// InsertMatches writes a batch of match records in one transaction. Records already
// present are skipped, so redelivered batches are harmless.
func (s *Store) InsertMatches(ctx context.Context, recs []models.MatchRecord) error {
	if len(recs) == 0 {
		return nil
	}
	err := beginTxFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, r := range recs {
			batch.Queue(insertMatchQ,
				r.ID, r.Player1ID, r.Player2ID, r.Player1Username, r.Player2Username,
				string(r.Player1Move), string(r.Player2Move), r.WinnerID,
				r.Player1EloDelta, r.Player2EloDelta, r.CreatedAt,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("failed to insert %d matches: %w", len(recs), err)
	}
	return nil
}

// RecordMatch archives a single match synchronously. It lets the server run without a
// Redis queue in front of the database.
func (s *Store) RecordMatch(ctx context.Context, rec models.MatchRecord) error {
	return s.InsertMatches(ctx, []models.MatchRecord{rec})
}

const matchColumns = `
	id, player1_id, player2_id, player1_username, player2_username,
	player1_move, player2_move, COALESCE(winner_id, ''), player1_elo_delta, player2_elo_delta, created_at
`

func scanMatch(row pgx.Row) (models.MatchRecord, error) {
	var r models.MatchRecord
	var m1, m2 string
	err := row.Scan(
		&r.ID, &r.Player1ID, &r.Player2ID, &r.Player1Username, &r.Player2Username,
		&m1, &m2, &r.WinnerID, &r.Player1EloDelta, &r.Player2EloDelta, &r.CreatedAt,
	)
	r.Player1Move, r.Player2Move = models.Move(m1), models.Move(m2)
	return r, err
}

// MatchesForPlayer returns the player's most recent matches, newest first.
func (s *Store) MatchesForPlayer(ctx context.Context, playerID string, limit int) ([]models.MatchRecord, error) {
	q := `SELECT ` + matchColumns + ` FROM matches
		WHERE player1_id = $1 OR player2_id = $1
		ORDER BY created_at DESC LIMIT $2`
	return s.queryMatches(ctx, q, playerID, limit)
}

// RecentMatches returns the latest matches across all players.
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]models.MatchRecord, error) {
	q := `SELECT ` + matchColumns + ` FROM matches ORDER BY created_at DESC LIMIT $1`
	return s.queryMatches(ctx, q, limit)
}

func (s *Store) queryMatches(ctx context.Context, q string, args ...any) ([]models.MatchRecord, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var out []models.MatchRecord
	for rows.Next() {
		r, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
