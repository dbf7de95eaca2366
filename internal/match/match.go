// internal/match/match.go
package match

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ratedrps/ratedrps-service/internal/models"
)

var (
	ErrNotParticipant       = errors.New("player is not part of this match")
	ErrMoveAlreadySubmitted = errors.New("move already submitted")
	ErrMatchClosed          = errors.New("match already finished")
)

// Match is one live game between two players.
//
// Per-side moves and the room are guarded by mu. The terminal transition is a separate
// one-way claim: whichever of resolution, abandonment or expiry claims the match first owns
// it, and the others back off.
type Match struct {
	ID        string
	Player1   models.Player
	Player2   models.Player
	CreatedAt time.Time

	claimed atomic.Bool

	mu       sync.Mutex
	moves    [2]models.Move
	room     map[models.Conn]string // conn -> player id
	resolved bool
	outcome  models.Outcome
	delta1   int
	delta2   int
}

// Snapshot is a consistent copy of a match's mutable state.
type Snapshot struct {
	Player1Move  models.Move
	Player2Move  models.Move
	Resolved     bool
	Outcome      models.Outcome
	Player1Delta int
	Player2Delta int
}

func NewMatch(id string, p1, p2 models.Player, createdAt time.Time) *Match {
	return &Match{
		ID:        id,
		Player1:   p1,
		Player2:   p2,
		CreatedAt: createdAt,
		room:      make(map[models.Conn]string),
	}
}

// Side returns 0 for Player1, 1 for Player2.
func (m *Match) Side(playerID string) (int, bool) {
	switch playerID {
	case m.Player1.ID:
		return 0, true
	case m.Player2.ID:
		return 1, true
	}
	return -1, false
}

// HasPlayer reports whether playerID is one of the two participants.
func (m *Match) HasPlayer(playerID string) bool {
	_, ok := m.Side(playerID)
	return ok
}

// Opponent returns the other participant.
func (m *Match) Opponent(playerID string) models.Player {
	if playerID == m.Player1.ID {
		return m.Player2
	}
	return m.Player1
}

// SubmitMove records a participant's move. A player may move once per match.
// bothMoved is true for exactly one caller: the one whose move completed the pair and who
// therefore owns resolution.
func (m *Match) SubmitMove(playerID string, move models.Move) (bothMoved bool, err error) {
	side, ok := m.Side(playerID)
	if !ok {
		return false, ErrNotParticipant
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimed.Load() {
		return false, ErrMatchClosed
	}
	if m.moves[side] != models.MoveNone {
		return false, ErrMoveAlreadySubmitted
	}
	m.moves[side] = move

	if m.moves[0] == models.MoveNone || m.moves[1] == models.MoveNone {
		return false, nil
	}
	if !m.claimed.CompareAndSwap(false, true) {
		// Lost to abandonment or expiry after the check above.
		return false, ErrMatchClosed
	}
	return true, nil
}

// Claim takes ownership of the terminal transition. It reports false if something else
// already did.
func (m *Match) Claim() bool {
	return m.claimed.CompareAndSwap(false, true)
}

func (m *Match) Claimed() bool {
	return m.claimed.Load()
}

// Resolve stores the outcome and both deltas. Only the first call has any effect.
func (m *Match) Resolve(outcome models.Outcome, delta1, delta2 int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resolved {
		return false
	}
	m.resolved = true
	m.outcome = outcome
	m.delta1 = delta1
	m.delta2 = delta2
	return true
}

func (m *Match) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Player1Move:  m.moves[0],
		Player2Move:  m.moves[1],
		Resolved:     m.resolved,
		Outcome:      m.outcome,
		Player1Delta: m.delta1,
		Player2Delta: m.delta2,
	}
}

// AddConn puts conn in the room on behalf of playerID.
func (m *Match) AddConn(conn models.Conn, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.room[conn] = playerID
}

func (m *Match) HasConn(conn models.Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.room[conn]
	return ok
}

// RemoveConn drops conn, along with any other closed connections, and reports whether the
// room is now empty.
func (m *Match) RemoveConn(conn models.Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.room, conn)
	for c := range m.room {
		if c.Closed() {
			delete(m.room, c)
		}
	}
	return len(m.room) == 0
}

// Present reports whether playerID has an open connection in the room.
func (m *Match) Present(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c, id := range m.room {
		if id == playerID && !c.Closed() {
			return true
		}
	}
	return false
}

// Room returns a copy of the room, conn -> player id.
func (m *Match) Room() map[models.Conn]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[models.Conn]string, len(m.room))
	for c, id := range m.room {
		out[c] = id
	}
	return out
}

// Record builds the archived form of a resolved match.
func (m *Match) Record() models.MatchRecord {
	s := m.Snapshot()
	rec := models.MatchRecord{
		ID:              m.ID,
		Player1ID:       m.Player1.ID,
		Player2ID:       m.Player2.ID,
		Player1Username: m.Player1.Username,
		Player2Username: m.Player2.Username,
		Player1Move:     s.Player1Move,
		Player2Move:     s.Player2Move,
		Player1EloDelta: s.Player1Delta,
		Player2EloDelta: s.Player2Delta,
		CreatedAt:       m.CreatedAt,
	}
	if !s.Outcome.Draw {
		rec.WinnerID = s.Outcome.WinnerID
	}
	return rec
}
