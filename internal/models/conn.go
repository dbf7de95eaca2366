package models

import (
	"context"
	"errors"
)

// ErrConnClosed is returned by Conn.Send once the underlying socket has gone away.
var ErrConnClosed = errors.New("connection closed")

// Conn is an open client connection as seen by the lobby, matchmaker and coordinator.
// Send must not block on the network; implementations queue the message for their writer.
type Conn interface {
	ID() string
	Send(ctx context.Context, msg Message) error
	Closed() bool
}
