// internal/rating/elo.go
package rating

import (
	"math"

	"github.com/ratedrps/ratedrps-service/internal/models"
)

// KFactor is the maximum rating change a single match can produce.
const KFactor = 32

// Scores for the first party of a match.
const (
	ScoreWin  = 1.0
	ScoreDraw = 0.5
	ScoreLoss = 0.0
)

// ExpectedScore is the logistic expectation of a player rated ratingA against ratingB.
func ExpectedScore(ratingA, ratingB int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(ratingB-ratingA)/400.0))
}

// UpdatedRatings returns both players' new ratings after a match where the first party
// scored scoreA (1 win, 0.5 draw, 0 loss).
//
// Ratings are rounded with math.Round, i.e. half away from zero. For the positive ratings
// this service deals in that is the same as rounding half up.
func UpdatedRatings(ratingA, ratingB int, scoreA float64) (int, int) {
	expectedA := ExpectedScore(ratingA, ratingB)
	expectedB := 1.0 - expectedA
	scoreB := 1.0 - scoreA

	newA := int(math.Round(float64(ratingA) + KFactor*(scoreA-expectedA)))
	newB := int(math.Round(float64(ratingB) + KFactor*(scoreB-expectedB)))
	return newA, newB
}

// Deltas is UpdatedRatings expressed as signed changes.
func Deltas(ratingA, ratingB int, scoreA float64) (int, int) {
	newA, newB := UpdatedRatings(ratingA, ratingB, scoreA)
	return newA - ratingA, newB - ratingB
}

// ScoreFor maps a match outcome to the score of the player with id player1ID.
func ScoreFor(outcome models.Outcome, player1ID string) float64 {
	switch {
	case outcome.Draw:
		return ScoreDraw
	case outcome.WinnerID == player1ID:
		return ScoreWin
	default:
		return ScoreLoss
	}
}
