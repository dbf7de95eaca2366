// internal/database/store.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ratedrps/ratedrps-service/internal/models"
)

var ErrPlayerNotFound = errors.New("player not found")

// Store is the Postgres-backed statistics store and match archive.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const userColumns = `id, username, elo, wins, losses, draws, COALESCE(avatar_url, '')`

func scanStats(row pgx.Row) (models.Stats, error) {
	var s models.Stats
	err := row.Scan(&s.ID, &s.Username, &s.Rating, &s.Wins, &s.Losses, &s.Draws, &s.AvatarURL)
	return s, err
}

// GetUser returns the stored row for playerID, or ErrPlayerNotFound.
func (s *Store) GetUser(ctx context.Context, playerID string) (models.Stats, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	st, err := scanStats(s.pool.QueryRow(ctx, q, playerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Stats{}, ErrPlayerNotFound
	}
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to get user %s: %w", playerID, err)
	}
	return st, nil
}

// GetStats is GetUser for rating purposes: a player with no row yet rates at
// models.DefaultRating with an empty record.
func (s *Store) GetStats(ctx context.Context, playerID string) (models.Stats, error) {
	st, err := s.GetUser(ctx, playerID)
	if errors.Is(err, ErrPlayerNotFound) {
		return models.Stats{ID: playerID, Rating: models.DefaultRating}, nil
	}
	return st, err
}

// IncrementStats adds the given deltas to the player's record, creating it if needed.
func (s *Store) IncrementStats(ctx context.Context, playerID string, win, loss, draw, ratingDelta int) error {
	q := `
		INSERT INTO users (id, wins, losses, draws, elo)
		VALUES ($1, $2, $3, $4, $6 + $5)
		ON CONFLICT (id) DO UPDATE SET
			wins   = users.wins + EXCLUDED.wins,
			losses = users.losses + EXCLUDED.losses,
			draws  = users.draws + EXCLUDED.draws,
			elo    = users.elo + $5
	`
	err := beginTxFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, playerID, win, loss, draw, ratingDelta, models.DefaultRating)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to increment stats for %s: %w", playerID, err)
	}
	return nil
}

// UpsertUsername records the display name a player last joined with.
func (s *Store) UpsertUsername(ctx context.Context, playerID, username string) error {
	q := `
		INSERT INTO users (id, username) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username
	`
	if _, err := s.pool.Exec(ctx, q, playerID, username); err != nil {
		return fmt.Errorf("failed to upsert username for %s: %w", playerID, err)
	}
	return nil
}

// UpdateAvatarURL points the player's profile at a new avatar.
func (s *Store) UpdateAvatarURL(ctx context.Context, playerID, url string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET avatar_url = $1 WHERE id = $2`, url, playerID)
	if err != nil {
		return fmt.Errorf("failed to update avatar for %s: %w", playerID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

// TopPlayers returns up to limit players ordered by rating, highest first.
func (s *Store) TopPlayers(ctx context.Context, limit int) ([]models.Stats, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY elo DESC, id LIMIT $1`
	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]models.Stats, 0, limit)
	for rows.Next() {
		st, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
