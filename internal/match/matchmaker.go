// internal/match/matchmaker.go
package match

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ratedrps/ratedrps-service/internal/lobby"
	"github.com/ratedrps/ratedrps-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Matchmaker pairs waiting lobby players in arrival order.
type Matchmaker struct {
	lobby  *lobby.Registry
	store  *Store
	logger *logrus.Logger

	// Now is overridable in tests.
	Now func() time.Time
	// OnMatch, if set, is called for every match created.
	OnMatch func(*Match)
}

func NewMatchmaker(l *lobby.Registry, s *Store, logger *logrus.Logger) *Matchmaker {
	return &Matchmaker{
		lobby:  l,
		store:  s,
		logger: logger,
		Now:    time.Now,
	}
}

// AttemptPairing creates matches from the head of the queue until fewer than two players
// are waiting, and returns the matches it created.
//
// A dequeued player whose connection has gone away is dropped and the other, if still
// connected, goes back to the tail. Concurrent callers are safe: each pair is removed from
// the queue atomically, so no player is handed to two matches.
func (mm *Matchmaker) AttemptPairing(ctx context.Context) []*Match {
	var created []*Match
	for {
		p1, p2, ok := mm.lobby.DequeuePair()
		if !ok {
			return created
		}

		c1, live1 := mm.lobby.Conn(p1.ID)
		c2, live2 := mm.lobby.Conn(p2.ID)
		if !live1 || !live2 {
			if live1 {
				mm.lobby.Requeue(p1)
			}
			if live2 {
				mm.lobby.Requeue(p2)
			}
			mm.logger.Debugf("matchmaker: dropped vanished player(s) from pair %s/%s", p1.ID, p2.ID)
			continue
		}

		m := NewMatch(uuid.NewString(), p1, p2, mm.Now())
		m.AddConn(c1, p1.ID)
		m.AddConn(c2, p2.ID)
		if err := mm.store.Register(m); err != nil {
			if errors.Is(err, ErrPlayerInMatch) {
				for _, p := range []models.Player{p1, p2} {
					if !mm.store.InMatch(p.ID) {
						mm.lobby.Requeue(p)
					}
				}
			}
			mm.logger.Warnf("matchmaker: could not register match for %s/%s: %v", p1.ID, p2.ID, err)
			continue
		}
		mm.lobby.Leave(p1.ID)
		mm.lobby.Leave(p2.ID)

		mm.logger.Infof("match %s created: %s vs %s", m.ID, p1.ID, p2.ID)
		if mm.OnMatch != nil {
			mm.OnMatch(m)
		}

		if err := c1.Send(ctx, models.NewMatchFound(m.ID, p2)); err != nil {
			mm.logger.Debugf("matchmaker: MATCH_FOUND to %s: %v", p1.ID, err)
		}
		if err := c2.Send(ctx, models.NewMatchFound(m.ID, p1)); err != nil {
			mm.logger.Debugf("matchmaker: MATCH_FOUND to %s: %v", p2.ID, err)
		}
		created = append(created, m)
	}
}
