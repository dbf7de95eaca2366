package models

// Stats is a player's aggregate record as held by the statistics store.
type Stats struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Rating    int    `json:"elo"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	Draws     int    `json:"draws"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// DefaultRating is the rating a freshly registered player starts from.
const DefaultRating = 1000
