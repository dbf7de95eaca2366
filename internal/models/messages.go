package models

// Inbound message types.
const (
	TypeJoinLobby  = "JOIN_LOBBY"
	TypeLeaveLobby = "LEAVE_LOBBY"
	TypeMakeMove   = "MAKE_MOVE"
)

// Outbound message types.
const (
	TypeLobbyUpdate = "LOBBY_UPDATE"
	TypeMatchFound  = "MATCH_FOUND"
	TypeGameUpdate  = "GAME_UPDATE"
	TypeError       = "ERROR"
)

// ClientMessage is the flat payload every client frame decodes into. UserID is the field name
// used by the web client and is treated as an alias of PlayerID.
type ClientMessage struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
	GameID   string `json:"gameId,omitempty"`
	Move     string `json:"move,omitempty"`
}

// Player returns the sender-declared player id, preferring playerId over userId.
func (m ClientMessage) Player() string {
	if m.PlayerID != "" {
		return m.PlayerID
	}
	return m.UserID
}

// Message is the outbound envelope.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type LobbyUpdate struct {
	PlayersWaiting int `json:"playersWaiting"`
}

type MatchFound struct {
	GameID           string `json:"gameId"`
	OpponentID       string `json:"opponentId"`
	OpponentUsername string `json:"opponentUsername"`
}

// GameUpdate fields tagged omitempty are only present once known.
type GameUpdate struct {
	GameID          string `json:"gameId"`
	Player1ID       string `json:"player1Id"`
	Player2ID       string `json:"player2Id"`
	Player1Move     Move   `json:"player1Move,omitempty"`
	Player2Move     Move   `json:"player2Move,omitempty"`
	Result          string `json:"result,omitempty"`
	IsFinal         bool   `json:"isFinal"`
	Player1EloDelta *int   `json:"player1EloDelta,omitempty"`
	Player2EloDelta *int   `json:"player2EloDelta,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewLobbyUpdate(waiting int) Message {
	return Message{Type: TypeLobbyUpdate, Data: LobbyUpdate{PlayersWaiting: waiting}}
}

func NewMatchFound(gameID string, opponent Player) Message {
	return Message{Type: TypeMatchFound, Data: MatchFound{
		GameID:           gameID,
		OpponentID:       opponent.ID,
		OpponentUsername: opponent.Username,
	}}
}

func NewGameUpdate(u GameUpdate) Message {
	return Message{Type: TypeGameUpdate, Data: u}
}

func NewError(msg string) Message {
	return Message{Type: TypeError, Data: ErrorPayload{Message: msg}}
}
