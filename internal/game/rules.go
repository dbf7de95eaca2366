// internal/game/rules.go
package game

import (
	"github.com/ratedrps/ratedrps-service/internal/models"
)

// DetermineOutcome decides a completed pair of moves.
func DetermineOutcome(p1, p2 models.Player, m1, m2 models.Move) models.Outcome {
	switch {
	case m1 == m2:
		return models.Draw()
	case m1.Beats(m2):
		return models.Won(p1.ID)
	default:
		return models.Won(p2.ID)
	}
}

// resultLabel buckets an outcome for metrics.
func resultLabel(outcome models.Outcome) string {
	if outcome.Draw {
		return "draw"
	}
	return "win"
}

// statIncrements is the per-player win/loss/draw tally an outcome adds.
func statIncrements(outcome models.Outcome, playerID string) (win, loss, draw int) {
	switch {
	case outcome.Draw:
		return 0, 0, 1
	case outcome.WinnerID == playerID:
		return 1, 0, 0
	default:
		return 0, 1, 0
	}
}
