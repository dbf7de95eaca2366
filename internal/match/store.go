// internal/match/store.go
package match

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ratedrps/ratedrps-service/internal/models"
)

var ErrPlayerInMatch = errors.New("player is already in a match")

// Store indexes live matches by id and by participant.
type Store struct {
	matches sync.Map // match id -> *Match
	players sync.Map // player id -> match id
	count   atomic.Int64
}

func NewStore() *Store {
	return &Store{}
}

// Register indexes m under both participants. It fails, leaving the store unchanged, if
// either player is already in a match.
func (s *Store) Register(m *Match) error {
	if _, loaded := s.players.LoadOrStore(m.Player1.ID, m.ID); loaded {
		return ErrPlayerInMatch
	}
	if _, loaded := s.players.LoadOrStore(m.Player2.ID, m.ID); loaded {
		s.players.CompareAndDelete(m.Player1.ID, m.ID)
		return ErrPlayerInMatch
	}
	s.matches.Store(m.ID, m)
	s.count.Add(1)
	return nil
}

func (s *Store) Get(matchID string) (*Match, bool) {
	v, ok := s.matches.Load(matchID)
	if !ok {
		return nil, false
	}
	return v.(*Match), true
}

// MatchOf returns the match the player is currently in.
func (s *Store) MatchOf(playerID string) (*Match, bool) {
	id, ok := s.players.Load(playerID)
	if !ok {
		return nil, false
	}
	return s.Get(id.(string))
}

func (s *Store) InMatch(playerID string) bool {
	_, ok := s.players.Load(playerID)
	return ok
}

// Delete removes the match and its participant index entries. Only the first call for a
// given id reports true.
func (s *Store) Delete(matchID string) bool {
	v, ok := s.matches.LoadAndDelete(matchID)
	if !ok {
		return false
	}
	m := v.(*Match)
	s.players.CompareAndDelete(m.Player1.ID, matchID)
	s.players.CompareAndDelete(m.Player2.ID, matchID)
	s.count.Add(-1)
	return true
}

// Leave takes conn out of the room of the player's current match. It returns the match and
// whether its room is now empty; m is nil if conn was not in any room. A player left with no
// open connection in the room is no longer indexed under the match, so they may queue again.
func (s *Store) Leave(playerID string, conn models.Conn) (m *Match, emptied bool) {
	m, ok := s.MatchOf(playerID)
	if !ok || !m.HasConn(conn) {
		return nil, false
	}
	emptied = m.RemoveConn(conn)
	if !m.Present(playerID) {
		s.players.CompareAndDelete(playerID, m.ID)
	}
	return m, emptied
}

// Rejoin indexes a participant of m under it again. It fails with ErrPlayerInMatch if the
// player has since entered another match, and with ErrMatchClosed once m is gone.
func (s *Store) Rejoin(m *Match, playerID string) error {
	if v, loaded := s.players.LoadOrStore(playerID, m.ID); loaded && v.(string) != m.ID {
		return ErrPlayerInMatch
	}
	if _, live := s.matches.Load(m.ID); !live {
		s.players.CompareAndDelete(playerID, m.ID)
		return ErrMatchClosed
	}
	return nil
}

func (s *Store) Len() int {
	return int(s.count.Load())
}

// Range calls fn for each live match until fn returns false.
func (s *Store) Range(fn func(*Match) bool) {
	s.matches.Range(func(_, v any) bool {
		return fn(v.(*Match))
	})
}
