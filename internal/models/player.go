package models

// Player is a participant's identity. Two players are the same player iff their IDs match;
// per-match state such as the submitted move lives on the match, not here.
type Player struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Move is one of the three hand shapes. The zero value means no move has been submitted.
type Move string

const (
	MoveNone     Move = ""
	MoveRock     Move = "rock"
	MovePaper    Move = "paper"
	MoveScissors Move = "scissors"
)

// ParseMove validates a raw move string from the wire.
func ParseMove(s string) (Move, bool) {
	switch m := Move(s); m {
	case MoveRock, MovePaper, MoveScissors:
		return m, true
	}
	return MoveNone, false
}

// Beats reports whether m defeats other under rock > scissors > paper > rock.
func (m Move) Beats(other Move) bool {
	switch m {
	case MoveRock:
		return other == MoveScissors
	case MoveScissors:
		return other == MovePaper
	case MovePaper:
		return other == MoveRock
	}
	return false
}

// OutcomeDraw is the GAME_UPDATE result of a tied match; otherwise the result is the winner's id.
const OutcomeDraw = "draw"

// Outcome is how a match ended. A draw carries no winner, so no player id can be mistaken
// for one.
type Outcome struct {
	WinnerID string
	Draw     bool
}

// Draw is the outcome of a tied match.
func Draw() Outcome { return Outcome{Draw: true} }

// Won is the outcome of a match playerID won.
func Won(playerID string) Outcome { return Outcome{WinnerID: playerID} }

// Result is the outcome's GAME_UPDATE form.
func (o Outcome) Result() string {
	if o.Draw {
		return OutcomeDraw
	}
	return o.WinnerID
}
