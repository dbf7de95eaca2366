// internal/game/coordinator.go
package game

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ratedrps/ratedrps-service/internal/lobby"
	"github.com/ratedrps/ratedrps-service/internal/match"
	"github.com/ratedrps/ratedrps-service/internal/models"
	"github.com/ratedrps/ratedrps-service/internal/monitor"
	"github.com/ratedrps/ratedrps-service/internal/rating"
	"github.com/sirupsen/logrus"
)

// StatsStore reads and updates persistent per-player statistics.
type StatsStore interface {
	GetStats(ctx context.Context, playerID string) (models.Stats, error)
	IncrementStats(ctx context.Context, playerID string, win, loss, draw, ratingDelta int) error
}

// UsernameRecorder is implemented by stats stores that also keep display names.
type UsernameRecorder interface {
	UpsertUsername(ctx context.Context, playerID, username string) error
}

// MatchArchive receives a record of every resolved match.
type MatchArchive interface {
	RecordMatch(ctx context.Context, rec models.MatchRecord) error
}

// DefaultCallTimeout bounds each call to the stats store or archive.
const DefaultCallTimeout = 5 * time.Second

// Coordinator turns client messages into lobby, matchmaking and match transitions, and
// produces the outbound messages for them.
//
// It holds no lock of its own. Collaborator calls are made with no registry or match lock held.
type Coordinator struct {
	Lobby      *lobby.Registry
	Matches    *match.Store
	Matchmaker *match.Matchmaker

	Stats   StatsStore
	Archive MatchArchive
	Metrics *monitor.Metrics

	CallTimeout time.Duration
	Now         func() time.Time

	logger  *logrus.Logger
	pending sync.WaitGroup
}

// NewCoordinator wires a fresh lobby, session index and matchmaker. stats, archive and
// metrics may be nil.
func NewCoordinator(logger *logrus.Logger, stats StatsStore, archive MatchArchive, metrics *monitor.Metrics) *Coordinator {
	l := lobby.NewRegistry()
	s := match.NewStore()
	mm := match.NewMatchmaker(l, s, logger)
	mm.OnMatch = func(*match.Match) { metrics.MatchCreated() }

	return &Coordinator{
		Lobby:       l,
		Matches:     s,
		Matchmaker:  mm,
		Stats:       stats,
		Archive:     archive,
		Metrics:     metrics,
		CallTimeout: DefaultCallTimeout,
		Now:         time.Now,
		logger:      logger,
	}
}

// HandleMessage processes one raw client frame. Protocol violations are reported to the
// sender as ERROR messages; the connection stays open.
func (c *Coordinator) HandleMessage(ctx context.Context, client *Client, raw []byte) {
	var msg models.ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.Metrics.MessageReceived("invalid")
		c.sendError(ctx, client.Conn, "Invalid message format")
		return
	}

	if client.PlayerID == "" {
		c.sendError(ctx, client.Conn, "Not authenticated")
		return
	}

	switch msg.Type {
	case models.TypeJoinLobby:
		c.Metrics.MessageReceived(msg.Type)
		c.handleJoin(ctx, client, msg)
	case models.TypeLeaveLobby:
		c.Metrics.MessageReceived(msg.Type)
		c.handleLeave(ctx, client, msg)
	case models.TypeMakeMove:
		c.Metrics.MessageReceived(msg.Type)
		c.handleMove(ctx, client, msg)
	default:
		c.Metrics.MessageReceived("unknown")
		c.sendError(ctx, client.Conn, "Unknown message type: "+msg.Type)
	}
}

func (c *Coordinator) handleJoin(ctx context.Context, client *Client, msg models.ClientMessage) {
	playerID := msg.Player()
	if playerID == "" || strings.TrimSpace(msg.Username) == "" {
		c.sendError(ctx, client.Conn, "playerId and username are required")
		return
	}
	if playerID != client.PlayerID {
		c.sendError(ctx, client.Conn, "Player id does not match the authenticated user")
		return
	}

	// A match can claim the player between the first check and the enqueue, so check again
	// once queued. A player the matchmaker has just paired is no longer queued.
	p := models.Player{ID: playerID, Username: msg.Username}
	if !c.Lobby.Join(p, client.Conn, c.Matches.InMatch(playerID)) ||
		(c.Matches.InMatch(playerID) && c.Lobby.Queued(playerID)) {
		c.Lobby.LeaveConn(playerID, client.Conn)
		c.sendError(ctx, client.Conn, "Already in a game")
		c.RefreshMetrics()
		return
	}

	client.Username = msg.Username
	c.logger.Debugf("player %s joined the lobby (%d waiting)", playerID, c.Lobby.Size())
	c.broadcastLobby(ctx)

	if created := c.Matchmaker.AttemptPairing(ctx); len(created) > 0 {
		c.broadcastLobby(ctx)
	}
	c.RefreshMetrics()
}

func (c *Coordinator) handleLeave(ctx context.Context, client *Client, msg models.ClientMessage) {
	playerID := msg.Player()
	if playerID == "" {
		c.sendError(ctx, client.Conn, "playerId is required")
		return
	}
	if playerID != client.PlayerID {
		c.sendError(ctx, client.Conn, "Player id does not match the authenticated user")
		return
	}

	c.Lobby.Leave(playerID)
	c.broadcastLobby(ctx)
	// The leaver is out of the broadcast set by now.
	c.send(ctx, client.Conn, models.NewLobbyUpdate(c.Lobby.Size()))
	c.RefreshMetrics()
}

func (c *Coordinator) handleMove(ctx context.Context, client *Client, msg models.ClientMessage) {
	playerID := msg.Player()
	if playerID == "" || msg.GameID == "" || msg.Move == "" {
		c.sendError(ctx, client.Conn, "playerId, gameId and move are required")
		return
	}
	if playerID != client.PlayerID {
		c.sendError(ctx, client.Conn, "Player id does not match the authenticated user")
		return
	}
	move, ok := models.ParseMove(strings.ToLower(msg.Move))
	if !ok {
		c.sendError(ctx, client.Conn, "Invalid move: "+msg.Move)
		return
	}

	m, ok := c.Matches.Get(msg.GameID)
	if !ok {
		c.sendError(ctx, client.Conn, "Game not found")
		return
	}
	if !m.HasPlayer(playerID) {
		c.sendError(ctx, client.Conn, "User not part of this game")
		return
	}
	// A player who reconnected mid-match rejoins the room by moving.
	if !m.HasConn(client.Conn) {
		switch err := c.Matches.Rejoin(m, playerID); {
		case errors.Is(err, match.ErrPlayerInMatch):
			c.sendError(ctx, client.Conn, "Already in a game")
			return
		case err != nil:
			c.sendError(ctx, client.Conn, "Game not found")
			return
		}
		m.AddConn(client.Conn, playerID)
	}

	bothMoved, err := m.SubmitMove(playerID, move)
	switch {
	case errors.Is(err, match.ErrMoveAlreadySubmitted):
		c.sendError(ctx, client.Conn, "Move already submitted")
		return
	case errors.Is(err, match.ErrMatchClosed):
		c.sendError(ctx, client.Conn, "Game is already over")
		return
	case err != nil:
		c.sendError(ctx, client.Conn, err.Error())
		return
	}

	if !bothMoved {
		c.broadcastPartial(ctx, m)
		return
	}
	c.resolve(ctx, m)
}

// resolve finishes a match whose second move has just landed. Only the goroutine that
// completed the pair gets here.
func (c *Coordinator) resolve(ctx context.Context, m *match.Match) {
	start := time.Now()
	snap := m.Snapshot()
	outcome := DetermineOutcome(m.Player1, m.Player2, snap.Player1Move, snap.Player2Move)
	delta1, delta2 := c.ratingDeltas(ctx, m, outcome)

	m.Resolve(outcome, delta1, delta2)
	c.broadcastFinal(ctx, m)
	c.Matches.Delete(m.ID)
	c.Metrics.MatchResolved(resultLabel(outcome), time.Since(start))
	c.logger.Infof("match %s resolved: %s (%+d/%+d)", m.ID, outcome.Result(), delta1, delta2)

	c.persist(m.Record())
	c.RefreshMetrics()
}

// ratingDeltas reads both ratings and computes the Elo change. Any read failure yields zero
// deltas so the match still resolves.
func (c *Coordinator) ratingDeltas(ctx context.Context, m *match.Match, outcome models.Outcome) (int, int) {
	if c.Stats == nil {
		return 0, 0
	}
	ctx, cancel := context.WithTimeout(ctx, c.CallTimeout)
	defer cancel()

	s1, err := c.Stats.GetStats(ctx, m.Player1.ID)
	if err != nil {
		c.collaboratorFailed("get_stats", m, err)
		return 0, 0
	}
	s2, err := c.Stats.GetStats(ctx, m.Player2.ID)
	if err != nil {
		c.collaboratorFailed("get_stats", m, err)
		return 0, 0
	}
	return rating.Deltas(s1.Rating, s2.Rating, rating.ScoreFor(outcome, m.Player1.ID))
}

// persist hands the record to the archive and applies both stat increments in the
// background. Wait blocks until every dispatched persist has returned.
func (c *Coordinator) persist(rec models.MatchRecord) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.CallTimeout)
		defer cancel()

		if c.Archive != nil {
			if err := c.Archive.RecordMatch(ctx, rec); err != nil {
				c.Metrics.CollaboratorError("record_match")
				c.logger.Errorf("match %s: archiving failed: %v", rec.ID, err)
			}
		}
		if c.Stats == nil {
			return
		}

		outcome := models.Draw()
		if rec.WinnerID != "" {
			outcome = models.Won(rec.WinnerID)
		}
		names, _ := c.Stats.(UsernameRecorder)
		for _, p := range []struct {
			id       string
			username string
			delta    int
		}{
			{rec.Player1ID, rec.Player1Username, rec.Player1EloDelta},
			{rec.Player2ID, rec.Player2Username, rec.Player2EloDelta},
		} {
			win, loss, draw := statIncrements(outcome, p.id)
			if err := c.Stats.IncrementStats(ctx, p.id, win, loss, draw, p.delta); err != nil {
				c.Metrics.CollaboratorError("increment_stats")
				c.logger.Errorf("match %s: updating stats for %s failed: %v", rec.ID, p.id, err)
				continue
			}
			if names != nil && p.username != "" {
				if err := names.UpsertUsername(ctx, p.id, p.username); err != nil {
					c.Metrics.CollaboratorError("upsert_username")
					c.logger.Warnf("match %s: recording username for %s failed: %v", rec.ID, p.id, err)
				}
			}
		}
	}()
}

// Wait blocks until all background persistence has finished.
func (c *Coordinator) Wait() {
	c.pending.Wait()
}

// Disconnect cleans up after a closed connection: the player leaves the lobby, and the
// connection leaves its match's room. A match whose room empties is discarded unscored.
func (c *Coordinator) Disconnect(ctx context.Context, client *Client) {
	if client.PlayerID == "" {
		return
	}

	if c.Lobby.LeaveConn(client.PlayerID, client.Conn) {
		c.broadcastLobby(ctx)
	}

	if m, emptied := c.Matches.Leave(client.PlayerID, client.Conn); m != nil && emptied && m.Claim() {
		if c.Matches.Delete(m.ID) {
			c.Metrics.MatchAbandoned("disconnect")
			c.logger.Infof("match %s abandoned: room empty", m.ID)
		}
	}
	c.RefreshMetrics()
}

// ExpireIdleMatches discards unresolved matches created more than maxAge ago. Their players
// are told with an ERROR and may join the lobby again. It returns how many were expired.
func (c *Coordinator) ExpireIdleMatches(ctx context.Context, maxAge time.Duration) int {
	now := c.Now()
	var expired []*match.Match
	c.Matches.Range(func(m *match.Match) bool {
		if now.Sub(m.CreatedAt) >= maxAge && m.Claim() {
			expired = append(expired, m)
		}
		return true
	})

	n := 0
	for _, m := range expired {
		if !c.Matches.Delete(m.ID) {
			continue
		}
		n++
		c.Metrics.MatchAbandoned("expired")
		c.logger.Infof("match %s expired after %s", m.ID, now.Sub(m.CreatedAt).Round(time.Second))
		for conn := range m.Room() {
			c.send(ctx, conn, models.NewError("Match expired"))
		}
	}
	if n > 0 {
		c.RefreshMetrics()
	}
	return n
}

// State reports where client is in the protocol.
func (c *Coordinator) State(client *Client) ConnState {
	switch {
	case client.Conn.Closed():
		return StateClosed
	case client.PlayerID == "":
		return StateUnauthenticated
	case c.Matches.InMatch(client.PlayerID):
		return StateInMatch
	case c.Lobby.Queued(client.PlayerID):
		return StateInLobby
	}
	return StateConnected
}

// RefreshMetrics updates the occupancy gauges.
func (c *Coordinator) RefreshMetrics() {
	c.Metrics.SetOccupancy(c.Lobby.Size(), c.Matches.Len())
}

func (c *Coordinator) collaboratorFailed(op string, m *match.Match, err error) {
	c.Metrics.CollaboratorError(op)
	c.logger.Errorf("match %s: %s failed, resolving without rating change: %v", m.ID, op, err)
}

func (c *Coordinator) broadcastLobby(ctx context.Context) {
	msg := models.NewLobbyUpdate(c.Lobby.Size())
	for _, conn := range c.Lobby.Conns() {
		c.send(ctx, conn, msg)
	}
}

// broadcastPartial tells the room that a move is in. Each recipient sees only their own move.
func (c *Coordinator) broadcastPartial(ctx context.Context, m *match.Match) {
	snap := m.Snapshot()
	for conn, playerID := range m.Room() {
		u := models.GameUpdate{
			GameID:    m.ID,
			Player1ID: m.Player1.ID,
			Player2ID: m.Player2.ID,
		}
		switch playerID {
		case m.Player1.ID:
			u.Player1Move = snap.Player1Move
		case m.Player2.ID:
			u.Player2Move = snap.Player2Move
		}
		c.send(ctx, conn, models.NewGameUpdate(u))
	}
}

func (c *Coordinator) broadcastFinal(ctx context.Context, m *match.Match) {
	snap := m.Snapshot()
	d1, d2 := snap.Player1Delta, snap.Player2Delta
	msg := models.NewGameUpdate(models.GameUpdate{
		GameID:          m.ID,
		Player1ID:       m.Player1.ID,
		Player2ID:       m.Player2.ID,
		Player1Move:     snap.Player1Move,
		Player2Move:     snap.Player2Move,
		Result:          snap.Outcome.Result(),
		IsFinal:         true,
		Player1EloDelta: &d1,
		Player2EloDelta: &d2,
	})
	for conn := range m.Room() {
		c.send(ctx, conn, msg)
	}
}

func (c *Coordinator) sendError(ctx context.Context, conn models.Conn, text string) {
	c.send(ctx, conn, models.NewError(text))
}

// send delivers msg unless conn has closed. Failures are dropped.
func (c *Coordinator) send(ctx context.Context, conn models.Conn, msg models.Message) {
	if conn.Closed() {
		return
	}
	if err := conn.Send(ctx, msg); err != nil {
		c.logger.Debugf("send %s to %s: %v", msg.Type, conn.ID(), err)
	}
}
