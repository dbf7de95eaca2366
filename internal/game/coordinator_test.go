// internal/game/coordinator_test.go
package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ratedrps/ratedrps-service/internal/match"
	"github.com/ratedrps/ratedrps-service/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockConn collects outbound messages instead of sending them over WS.
type mockConn struct {
	id     string
	closed atomic.Bool

	mu   sync.Mutex
	msgs []models.Message
}

func (c *mockConn) ID() string   { return c.id }
func (c *mockConn) Closed() bool { return c.closed.Load() }

func (c *mockConn) Send(_ context.Context, msg models.Message) error {
	if c.Closed() {
		return models.ErrConnClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *mockConn) all() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func (c *mockConn) ofType(t string) []models.Message {
	var out []models.Message
	for _, m := range c.all() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func (c *mockConn) last() models.Message {
	msgs := c.all()
	if len(msgs) == 0 {
		return models.Message{}
	}
	return msgs[len(msgs)-1]
}

func (c *mockConn) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = nil
}

// mockStats is an in-memory StatsStore.
type mockStats struct {
	mu       sync.Mutex
	ratings  map[string]int
	getErr   error
	incs     map[string][4]int // win, loss, draw, ratingDelta
	incCalls int
	names    map[string]string
}

func newMockStats() *mockStats {
	return &mockStats{ratings: map[string]int{}, incs: map[string][4]int{}, names: map[string]string{}}
}

func (s *mockStats) GetStats(_ context.Context, id string) (models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return models.Stats{}, s.getErr
	}
	r, ok := s.ratings[id]
	if !ok {
		r = models.DefaultRating
	}
	return models.Stats{ID: id, Rating: r}, nil
}

func (s *mockStats) IncrementStats(_ context.Context, id string, win, loss, draw, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.incs[id]
	s.incs[id] = [4]int{cur[0] + win, cur[1] + loss, cur[2] + draw, cur[3] + delta}
	s.incCalls++
	return nil
}

func (s *mockStats) UpsertUsername(_ context.Context, id, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[id] = username
	return nil
}

type mockArchive struct {
	mu      sync.Mutex
	records []models.MatchRecord
}

func (a *mockArchive) RecordMatch(_ context.Context, rec models.MatchRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func (a *mockArchive) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setupCoordinator(t *testing.T) (*Coordinator, *mockStats, *mockArchive) {
	t.Helper()
	stats := newMockStats()
	archive := &mockArchive{}
	return NewCoordinator(quietLogger(), stats, archive, nil), stats, archive
}

func newTestClient(id string) (*Client, *mockConn) {
	conn := &mockConn{id: "conn-" + id}
	return NewClient(conn, id), conn
}

func send(t *testing.T, c *Coordinator, client *Client, format string, args ...any) {
	t.Helper()
	c.HandleMessage(context.Background(), client, []byte(fmt.Sprintf(format, args...)))
}

func join(t *testing.T, c *Coordinator, client *Client) {
	t.Helper()
	send(t, c, client, `{"type":"JOIN_LOBBY","playerId":%q,"username":%q}`, client.PlayerID, "name-"+client.PlayerID)
}

func move(t *testing.T, c *Coordinator, client *Client, gameID, mv string) {
	t.Helper()
	send(t, c, client, `{"type":"MAKE_MOVE","playerId":%q,"gameId":%q,"move":%q}`, client.PlayerID, gameID, mv)
}

func errorText(t *testing.T, msg models.Message) string {
	t.Helper()
	require.Equal(t, models.TypeError, msg.Type)
	return msg.Data.(models.ErrorPayload).Message
}

// pairUp joins two clients and returns the match id both were told about.
func pairUp(t *testing.T, c *Coordinator, a, b *Client, ca, cb *mockConn) string {
	t.Helper()
	join(t, c, a)
	join(t, c, b)
	found := ca.ofType(models.TypeMatchFound)
	require.Len(t, found, 1)
	require.Len(t, cb.ofType(models.TypeMatchFound), 1)
	return found[0].Data.(models.MatchFound).GameID
}

func TestJoinBroadcastsLobbyUpdate(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	a, ca := newTestClient("alice")

	join(t, c, a)
	assert.Equal(t, models.NewLobbyUpdate(1), ca.last())
	assert.Equal(t, StateInLobby, c.State(a))

	// Joining twice keeps a single queue entry.
	join(t, c, a)
	assert.Equal(t, 1, c.Lobby.Size())
}

func TestJoinValidation(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	a, ca := newTestClient("alice")

	send(t, c, a, `{"type":"JOIN_LOBBY","playerId":"alice"}`)
	assert.Equal(t, "playerId and username are required", errorText(t, ca.last()))

	send(t, c, a, `{"type":"JOIN_LOBBY","playerId":"mallory","username":"M"}`)
	assert.Equal(t, "Player id does not match the authenticated user", errorText(t, ca.last()))
	assert.Equal(t, 0, c.Lobby.Size())
}

func TestJoinAcceptsUserIDAlias(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	a, ca := newTestClient("alice")

	send(t, c, a, `{"type":"JOIN_LOBBY","userId":"alice","username":"Alice"}`)
	assert.Equal(t, models.TypeLobbyUpdate, ca.last().Type)
	assert.True(t, c.Lobby.Queued("alice"))
}

func TestLeaveLobby(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	a, ca := newTestClient("alice")
	join(t, c, a)

	send(t, c, a, `{"type":"LEAVE_LOBBY","playerId":"alice"}`)
	assert.Equal(t, models.NewLobbyUpdate(0), ca.last())
	assert.Equal(t, StateConnected, c.State(a))

	// Leaving again is harmless.
	send(t, c, a, `{"type":"LEAVE_LOBBY","playerId":"alice"}`)
	assert.Equal(t, models.NewLobbyUpdate(0), ca.last())

	send(t, c, a, `{"type":"LEAVE_LOBBY"}`)
	assert.Equal(t, "playerId is required", errorText(t, ca.last()))
}

func TestProtocolErrors(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	a, ca := newTestClient("alice")

	c.HandleMessage(context.Background(), a, []byte(`{not json`))
	assert.Equal(t, "Invalid message format", errorText(t, ca.last()))

	send(t, c, a, `{"type":"DANCE"}`)
	assert.Equal(t, "Unknown message type: DANCE", errorText(t, ca.last()))

	anon := NewClient(&mockConn{id: "anon"}, "")
	c.HandleMessage(context.Background(), anon, []byte(`{"type":"JOIN_LOBBY","playerId":"x","username":"x"}`))
	assert.Equal(t, "Not authenticated", errorText(t, anon.Conn.(*mockConn).last()))
	assert.Equal(t, StateUnauthenticated, c.State(anon))
}

func TestFullMatchFlow(t *testing.T) {
	c, stats, archive := setupCoordinator(t)
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")

	gameID := pairUp(t, c, a, b, ca, cb)
	found := ca.ofType(models.TypeMatchFound)[0].Data.(models.MatchFound)
	assert.Equal(t, "bob", found.OpponentID)
	assert.Equal(t, "name-bob", found.OpponentUsername)
	assert.Equal(t, StateInMatch, c.State(a))
	assert.Equal(t, StateInMatch, c.State(b))
	assert.Equal(t, 0, c.Lobby.Size())

	ca.clear()
	cb.clear()

	move(t, c, a, gameID, "rock")
	partialA := ca.last().Data.(models.GameUpdate)
	partialB := cb.last().Data.(models.GameUpdate)
	assert.False(t, partialA.IsFinal)
	assert.Equal(t, models.MoveRock, partialA.Player1Move)
	assert.Empty(t, partialB.Player1Move, "opponent's move stays hidden")
	assert.Empty(t, partialB.Player2Move)

	move(t, c, b, gameID, "scissors")
	for _, conn := range []*mockConn{ca, cb} {
		final := conn.last().Data.(models.GameUpdate)
		assert.True(t, final.IsFinal)
		assert.Equal(t, "alice", final.Result)
		assert.Equal(t, models.MoveRock, final.Player1Move)
		assert.Equal(t, models.MoveScissors, final.Player2Move)
		require.NotNil(t, final.Player1EloDelta)
		assert.Equal(t, 16, *final.Player1EloDelta)
		assert.Equal(t, -16, *final.Player2EloDelta)
	}

	_, ok := c.Matches.Get(gameID)
	assert.False(t, ok, "resolved match leaves the index")
	assert.Equal(t, StateConnected, c.State(a))

	c.Wait()
	require.Equal(t, 1, archive.count())
	rec := archive.records[0]
	assert.Equal(t, gameID, rec.ID)
	assert.Equal(t, "alice", rec.WinnerID)
	assert.Equal(t, [4]int{1, 0, 0, 16}, stats.incs["alice"])
	assert.Equal(t, "name-bob", stats.names["bob"])
	assert.Equal(t, [4]int{0, 1, 0, -16}, stats.incs["bob"])
}

func TestDrawFlow(t *testing.T) {
	c, stats, archive := setupCoordinator(t)
	stats.ratings["alice"] = 1200
	stats.ratings["bob"] = 800
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	gameID := pairUp(t, c, a, b, ca, cb)

	move(t, c, a, gameID, "PAPER")
	move(t, c, b, gameID, "paper")

	final := cb.last().Data.(models.GameUpdate)
	assert.Equal(t, models.OutcomeDraw, final.Result)
	assert.Equal(t, -13, *final.Player1EloDelta)
	assert.Equal(t, 13, *final.Player2EloDelta)

	c.Wait()
	assert.Empty(t, archive.records[0].WinnerID)
	assert.Equal(t, [4]int{0, 0, 1, -13}, stats.incs["alice"])
	assert.Equal(t, [4]int{0, 0, 1, 13}, stats.incs["bob"])
}

func TestMoveValidation(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	carol, cc := newTestClient("carol")
	gameID := pairUp(t, c, a, b, ca, cb)

	move(t, c, a, "", "rock")
	assert.Equal(t, "playerId, gameId and move are required", errorText(t, ca.last()))

	move(t, c, a, gameID, "lizard")
	assert.Equal(t, "Invalid move: lizard", errorText(t, ca.last()))

	move(t, c, a, "no-such-game", "rock")
	assert.Equal(t, "Game not found", errorText(t, ca.last()))

	move(t, c, carol, gameID, "rock")
	assert.Equal(t, "User not part of this game", errorText(t, cc.last()))

	send(t, c, a, `{"type":"MAKE_MOVE","playerId":"bob","gameId":%q,"move":"rock"}`, gameID)
	assert.Equal(t, "Player id does not match the authenticated user", errorText(t, ca.last()))

	move(t, c, a, gameID, "rock")
	move(t, c, a, gameID, "paper")
	assert.Equal(t, "Move already submitted", errorText(t, ca.last()))

	m, ok := c.Matches.Get(gameID)
	require.True(t, ok)
	assert.Equal(t, models.MoveRock, m.Snapshot().Player1Move)
}

func TestJoinWhileInMatch(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	pairUp(t, c, a, b, ca, cb)

	join(t, c, a)
	assert.Equal(t, "Already in a game", errorText(t, ca.last()))
	assert.Equal(t, 0, c.Lobby.Size())
}

func TestMoveAfterResolution(t *testing.T) {
	c, _, archive := setupCoordinator(t)
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	gameID := pairUp(t, c, a, b, ca, cb)
	move(t, c, a, gameID, "rock")
	move(t, c, b, gameID, "rock")

	move(t, c, a, gameID, "paper")
	assert.Equal(t, "Game not found", errorText(t, ca.last()))
	c.Wait()
	assert.Equal(t, 1, archive.count())
}

func TestStatsFailureStillResolves(t *testing.T) {
	c, stats, archive := setupCoordinator(t)
	stats.getErr = errors.New("db down")
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	gameID := pairUp(t, c, a, b, ca, cb)

	move(t, c, a, gameID, "scissors")
	move(t, c, b, gameID, "rock")

	final := ca.last().Data.(models.GameUpdate)
	assert.True(t, final.IsFinal)
	assert.Equal(t, "bob", final.Result)
	assert.Equal(t, 0, *final.Player1EloDelta)
	assert.Equal(t, 0, *final.Player2EloDelta)

	c.Wait()
	assert.Equal(t, 1, archive.count())
	assert.Equal(t, [4]int{1, 0, 0, 0}, stats.incs["bob"])
}

func TestConcurrentMovesResolveOnce(t *testing.T) {
	for i := 0; i < 20; i++ {
		c, stats, archive := setupCoordinator(t)
		a, ca := newTestClient("alice")
		b, cb := newTestClient("bob")
		gameID := pairUp(t, c, a, b, ca, cb)

		var wg sync.WaitGroup
		for _, cl := range []*Client{a, b} {
			wg.Add(1)
			go func(cl *Client) {
				defer wg.Done()
				move(t, c, cl, gameID, "paper")
			}(cl)
		}
		wg.Wait()
		c.Wait()

		assert.Equal(t, 1, archive.count())
		assert.Equal(t, 2, stats.incCalls)
		assert.Len(t, finals(ca), 1)
		assert.Len(t, finals(cb), 1)
	}
}

func finals(conn *mockConn) []models.GameUpdate {
	var out []models.GameUpdate
	for _, m := range conn.ofType(models.TypeGameUpdate) {
		if u := m.Data.(models.GameUpdate); u.IsFinal {
			out = append(out, u)
		}
	}
	return out
}

func TestDisconnectFromLobby(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	join(t, c, a)
	cb.clear()

	// Lobby broadcasts only reach queued players.
	ca.closed.Store(true)
	c.Disconnect(context.Background(), a)
	assert.Equal(t, 0, c.Lobby.Size())

	join(t, c, b)
	assert.Empty(t, cb.ofType(models.TypeMatchFound))
	assert.Equal(t, models.NewLobbyUpdate(1), cb.last())
}

func TestClosedLobbyPlayerNeverMatched(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	join(t, c, a)
	ca.closed.Store(true) // socket gone, close handler not yet run

	join(t, c, b)
	assert.Empty(t, cb.ofType(models.TypeMatchFound))
	assert.Equal(t, 0, c.Matches.Len())
	assert.True(t, c.Lobby.Queued("bob"))
}

func TestAbandonedMatchNotScored(t *testing.T) {
	c, stats, archive := setupCoordinator(t)
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	gameID := pairUp(t, c, a, b, ca, cb)
	move(t, c, a, gameID, "rock")

	ca.closed.Store(true)
	c.Disconnect(context.Background(), a)
	_, ok := c.Matches.Get(gameID)
	assert.True(t, ok, "match survives while one connection remains")

	cb.closed.Store(true)
	c.Disconnect(context.Background(), b)
	_, ok = c.Matches.Get(gameID)
	assert.False(t, ok)
	assert.False(t, c.Matches.InMatch("alice"))

	c.Wait()
	assert.Zero(t, archive.count())
	assert.Zero(t, stats.incCalls)
}

func TestReconnectedPlayerRejoinsRoomByMoving(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	gameID := pairUp(t, c, a, b, ca, cb)

	ca.closed.Store(true)
	c.Disconnect(context.Background(), a)

	a2, ca2 := newTestClient("alice")
	move(t, c, a2, gameID, "paper")
	move(t, c, b, gameID, "rock")

	assert.Len(t, finals(ca2), 1)
	assert.Len(t, finals(cb), 1)
	assert.Equal(t, "alice", finals(ca2)[0].Result)
}

func TestRejoinLobbyAfterMidMatchDisconnect(t *testing.T) {
	c, stats, archive := setupCoordinator(t)
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	gameID := pairUp(t, c, a, b, ca, cb)

	ca.closed.Store(true)
	c.Disconnect(context.Background(), a)
	assert.False(t, c.Matches.InMatch("alice"))
	assert.True(t, c.Matches.InMatch("bob"))
	_, ok := c.Matches.Get(gameID)
	assert.True(t, ok, "match stays up for bob")

	a2, ca2 := newTestClient("alice")
	join(t, c, a2)
	assert.Empty(t, ca2.ofType(models.TypeError))
	assert.Equal(t, StateInLobby, c.State(a2))

	d, cd := newTestClient("carol")
	join(t, c, d)
	found := ca2.ofType(models.TypeMatchFound)
	require.Len(t, found, 1)
	assert.Equal(t, "carol", found[0].Data.(models.MatchFound).OpponentID)
	require.Len(t, cd.ofType(models.TypeMatchFound), 1)
	assert.Equal(t, 2, c.Matches.Len())

	// The old match cannot pull alice back out of the match with carol.
	move(t, c, a2, gameID, "rock")
	assert.Equal(t, "Already in a game", errorText(t, ca2.last()))

	c.Wait()
	assert.Zero(t, archive.count())
	assert.Zero(t, stats.incCalls)
}

func TestRejoinByMovingRestoresMatchIndex(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	gameID := pairUp(t, c, a, b, ca, cb)

	ca.closed.Store(true)
	c.Disconnect(context.Background(), a)

	a2, ca2 := newTestClient("alice")
	move(t, c, a2, gameID, "rock")
	assert.True(t, c.Matches.InMatch("alice"))
	assert.Equal(t, StateInMatch, c.State(a2))

	join(t, c, a2)
	assert.Equal(t, "Already in a game", errorText(t, ca2.last()))

	// The reconnected room still empties and abandons the match.
	cb.closed.Store(true)
	c.Disconnect(context.Background(), b)
	ca2.closed.Store(true)
	c.Disconnect(context.Background(), a2)
	_, ok := c.Matches.Get(gameID)
	assert.False(t, ok)
}

func TestJoinRejectedWhileIndexedInMatch(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	require.NoError(t, c.Matches.Register(match.NewMatch("m1",
		models.Player{ID: "alice"}, models.Player{ID: "bob"}, time.Now())))
	a, ca := newTestClient("alice")

	join(t, c, a)
	assert.Equal(t, "Already in a game", errorText(t, ca.last()))
	_, ok := c.Lobby.Conn("alice")
	assert.False(t, ok)
	assert.False(t, c.Lobby.Queued("alice"))
	assert.Equal(t, 0, c.Lobby.Size())
}

func TestConcurrentJoinsNeverQueuedWhileInMatch(t *testing.T) {
	for i := 0; i < 20; i++ {
		c, _, _ := setupCoordinator(t)
		var clients []*Client
		for j := 0; j < 8; j++ {
			cl, _ := newTestClient(fmt.Sprintf("p%d", j))
			clients = append(clients, cl)
		}

		var wg sync.WaitGroup
		for _, cl := range clients {
			for k := 0; k < 3; k++ {
				wg.Add(1)
				go func(cl *Client) {
					defer wg.Done()
					join(t, c, cl)
				}(cl)
			}
		}
		wg.Wait()

		for _, cl := range clients {
			assert.False(t, c.Lobby.Queued(cl.PlayerID) && c.Matches.InMatch(cl.PlayerID),
				"%s is both queued and in a match", cl.PlayerID)
		}
		assert.Equal(t, 4, c.Matches.Len())
		assert.Equal(t, 0, c.Lobby.Size())
	}
}

func TestPlayerNamedDrawCanWin(t *testing.T) {
	c, stats, archive := setupCoordinator(t)
	a, ca := newTestClient(models.OutcomeDraw)
	b, cb := newTestClient("bob")
	gameID := pairUp(t, c, a, b, ca, cb)

	move(t, c, a, gameID, "paper")
	move(t, c, b, gameID, "rock")
	final := cb.last().Data.(models.GameUpdate)
	assert.True(t, final.IsFinal)
	assert.Equal(t, 16, *final.Player1EloDelta)
	assert.Equal(t, -16, *final.Player2EloDelta)

	c.Wait()
	require.Equal(t, 1, archive.count())
	assert.Equal(t, models.OutcomeDraw, archive.records[0].WinnerID)
	assert.Equal(t, [4]int{1, 0, 0, 16}, stats.incs[models.OutcomeDraw])
	assert.Equal(t, [4]int{0, 1, 0, -16}, stats.incs["bob"])
}

func TestDisconnectWithoutIdentity(t *testing.T) {
	c, _, _ := setupCoordinator(t)
	anon := NewClient(&mockConn{id: "anon"}, "")
	assert.NotPanics(t, func() { c.Disconnect(context.Background(), anon) })
}

func TestExpireIdleMatches(t *testing.T) {
	c, _, archive := setupCoordinator(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.Matchmaker.Now = func() time.Time { return start }
	a, ca := newTestClient("alice")
	b, cb := newTestClient("bob")
	gameID := pairUp(t, c, a, b, ca, cb)

	c.Now = func() time.Time { return start.Add(30 * time.Second) }
	assert.Zero(t, c.ExpireIdleMatches(context.Background(), time.Minute))

	c.Now = func() time.Time { return start.Add(2 * time.Minute) }
	assert.Equal(t, 1, c.ExpireIdleMatches(context.Background(), time.Minute))
	assert.Equal(t, "Match expired", errorText(t, ca.last()))
	assert.Equal(t, "Match expired", errorText(t, cb.last()))
	assert.Equal(t, StateConnected, c.State(a))

	move(t, c, a, gameID, "rock")
	assert.Equal(t, "Game not found", errorText(t, ca.last()))

	// Both players can queue again.
	join(t, c, a)
	join(t, c, b)
	assert.Equal(t, 1, c.Matches.Len())
	c.Wait()
	assert.Zero(t, archive.count())
}

func TestDetermineOutcome(t *testing.T) {
	p1 := models.Player{ID: "p1"}
	p2 := models.Player{ID: "p2"}
	tests := []struct {
		m1, m2 models.Move
		want   models.Outcome
	}{
		{models.MoveRock, models.MoveScissors, models.Won("p1")},
		{models.MoveScissors, models.MovePaper, models.Won("p1")},
		{models.MovePaper, models.MoveRock, models.Won("p1")},
		{models.MoveScissors, models.MoveRock, models.Won("p2")},
		{models.MovePaper, models.MoveScissors, models.Won("p2")},
		{models.MoveRock, models.MovePaper, models.Won("p2")},
		{models.MoveRock, models.MoveRock, models.Draw()},
		{models.MovePaper, models.MovePaper, models.Draw()},
		{models.MoveScissors, models.MoveScissors, models.Draw()},
	}
	for _, tt := range tests {
		t.Run(string(tt.m1)+"_vs_"+string(tt.m2), func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineOutcome(p1, p2, tt.m1, tt.m2))
		})
	}
}
