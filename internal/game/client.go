// internal/game/client.go
package game

import (
	"github.com/ratedrps/ratedrps-service/internal/models"
)

// ConnState is where a connection is in the protocol. It is derived from the registries
// rather than stored, so it can never disagree with them.
type ConnState int

const (
	StateUnauthenticated ConnState = iota
	StateConnected
	StateInLobby
	StateInMatch
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateConnected:
		return "connected"
	case StateInLobby:
		return "in_lobby"
	case StateInMatch:
		return "in_match"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Client is the coordinator's view of one websocket connection. PlayerID is the identity
// resolved at connect time and never changes; Username is the last one the client joined with.
type Client struct {
	Conn     models.Conn
	PlayerID string
	Username string
}

func NewClient(conn models.Conn, playerID string) *Client {
	return &Client{Conn: conn, PlayerID: playerID}
}
