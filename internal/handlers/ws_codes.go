// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// InvalidAuthTokenError closes a game socket whose token is missing, invalid or expired.
const InvalidAuthTokenError websocket.StatusCode = 3001

// SlowConsumerError closes a game socket that fell a full send buffer behind.
const SlowConsumerError websocket.StatusCode = 3008
