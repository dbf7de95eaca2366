package models

import "time"

// MatchRecord is the archived form of a resolved match. WinnerID is empty for a draw.
type MatchRecord struct {
	ID              string    `json:"id"`
	Player1ID       string    `json:"player1_id"`
	Player2ID       string    `json:"player2_id"`
	Player1Username string    `json:"player1_username"`
	Player2Username string    `json:"player2_username"`
	Player1Move     Move      `json:"player1_move"`
	Player2Move     Move      `json:"player2_move"`
	WinnerID        string    `json:"winner_id,omitempty"`
	Player1EloDelta int       `json:"player1_elo_delta"`
	Player2EloDelta int       `json:"player2_elo_delta"`
	CreatedAt       time.Time `json:"created_at"`
}
