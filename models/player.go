package models

import "time"

// Player is a participant other than the host. The name is fixed for the
// life of the session and is how a dropped player is matched back to their
// seat on reconnection; the connection id changes across reconnects.
type Player struct {
	ConnID    string    `json:"-"`
	Name      string    `json:"name"`
	TeamIndex int       `json:"teamIndex"` // -1 until teams are assigned
	Score     int       `json:"score"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// Connected reports whether the player currently has a live connection.
func (p *Player) Connected() bool {
	return p.ConnID != ""
}
