// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/ratedrps/ratedrps-service/internal/auth"
	"github.com/ratedrps/ratedrps-service/internal/game"
	"github.com/ratedrps/ratedrps-service/internal/middleware"
	"github.com/ratedrps/ratedrps-service/internal/models"
	"github.com/ratedrps/ratedrps-service/internal/monitor"
	"github.com/sirupsen/logrus"
)

const (
	sendBufferSize = 32
	readLimitBytes = 4096
	pingInterval   = 30 * time.Second
	writeTimeout   = 5 * time.Second
)

var errSendBufferFull = errors.New("send buffer full")

// wsConn is the coordinator-facing side of one socket. Send only enqueues; writePump owns
// the socket writes. A Send that finds the buffer full closes the connection, since the
// client has already missed a message.
type wsConn struct {
	id       string
	out      chan models.Message
	done     chan struct{}
	closed   atomic.Bool
	overflow atomic.Bool
	once     sync.Once
}

func newWSConn() *wsConn {
	return &wsConn{
		id:   uuid.NewString(),
		out:  make(chan models.Message, sendBufferSize),
		done: make(chan struct{}),
	}
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) Closed() bool { return c.closed.Load() }

func (c *wsConn) Send(_ context.Context, msg models.Message) error {
	if c.closed.Load() {
		return models.ErrConnClosed
	}
	select {
	case c.out <- msg:
		return nil
	case <-c.done:
		return models.ErrConnClosed
	default:
		c.overflow.Store(true)
		c.close()
		return errSendBufferFull
	}
}

func (c *wsConn) close() {
	c.once.Do(func() {
		c.closed.Store(true)
		close(c.done)
	})
}

// GameWSHandler upgrades the request to a websocket, resolves the player identity from
// the token and hands every frame to the coordinator until the socket closes.
func GameWSHandler(logger *logrus.Logger, coord *game.Coordinator, metrics *monitor.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		playerID, err := auth.AuthenticateJWT(tokenFromRequest(r))
		if err != nil {
			logger.Warnf("websocket auth failed from %s: %v", r.RemoteAddr, err)
			c.Close(InvalidAuthTokenError, "Authentication failed.")
			return
		}
		c.SetReadLimit(readLimitBytes)

		conn := newWSConn()
		client := game.NewClient(conn, playerID)
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		metrics.ConnOpened()

		ctx, cancel := context.WithCancel(r.Context())
		go writePump(ctx, c, conn, logger)

		err = readPump(ctx, c, coord, client, logger)

		conn.close()
		cancel()
		coord.Disconnect(context.Background(), client)
		metrics.ConnClosed()
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readPump feeds text frames to the coordinator. It returns nil on a normal close.
func readPump(ctx context.Context, c *websocket.Conn, coord *game.Coordinator, client *game.Client, logger *logrus.Logger) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			logger.Debugf("ignoring non-text frame from %s", client.PlayerID)
			continue
		}
		coord.HandleMessage(ctx, client, data)
	}
}

// writePump drains the connection's queue onto the socket and pings every pingInterval.
func writePump(ctx context.Context, c *websocket.Conn, conn *wsConn, logger *logrus.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.done:
			if conn.overflow.Load() {
				logger.Warnf("closing %s: send buffer overflow", conn.id)
				c.Close(SlowConsumerError, "send buffer overflow")
			}
			return
		case msg := <-conn.out:
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal %s for %s: %v", msg.Type, conn.id, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Debugf("write to %s failed: %v", conn.id, err)
				conn.close()
				c.CloseNow()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Debugf("ping to %s failed: %v", conn.id, err)
				conn.close()
				c.CloseNow()
				return
			}
		}
	}
}
