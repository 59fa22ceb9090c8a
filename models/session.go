package models

import (
	"sync"
	"time"
)

// Phase is the coarse-grained stage of a session's lifecycle. Transitions
// only move forward: lobby -> playing -> finished.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Game modes.
const (
	ModeTeam       = "team"
	ModeIndividual = "individual"
)

// GameConfig is the host-chosen configuration captured at create time.
type GameConfig struct {
	TeamCount       int    `json:"teamCount"`
	QuestionCount   int    `json:"questionCount"`
	TimePerQuestion int    `json:"timePerQuestion"` // seconds
	GameMode        string `json:"gameMode"`
}

// Configuration bounds enforced at create time.
const (
	MinTeamCount       = 2
	MaxTeamCount       = 8
	MinQuestionCount   = 10
	MaxQuestionCount   = 30
	MinTimePerQuestion = 10
	MaxTimePerQuestion = 60
)

// Valid reports whether every knob is inside its allowed range.
func (c GameConfig) Valid() bool {
	if c.GameMode != ModeTeam && c.GameMode != ModeIndividual {
		return false
	}
	if c.GameMode == ModeTeam && (c.TeamCount < MinTeamCount || c.TeamCount > MaxTeamCount) {
		return false
	}
	if c.QuestionCount < MinQuestionCount || c.QuestionCount > MaxQuestionCount {
		return false
	}
	if c.TimePerQuestion < MinTimePerQuestion || c.TimePerQuestion > MaxTimePerQuestion {
		return false
	}
	return true
}

// GameSession is the root aggregate for one quiz game, identified by a
// 6-character shareable code. All mutation happens under Mu: every protocol
// handler reads, mutates, and broadcasts while holding the lock, which is
// what keeps two simultaneous answers from losing an update.
type GameSession struct {
	Mu sync.Mutex `json:"-"`

	Code       string     `json:"code"`
	HostConnID string     `json:"-"`
	HostName   string     `json:"hostName"`
	Config     GameConfig `json:"config"`
	Phase      Phase      `json:"phase"`

	Teams   []Team   `json:"teams"`
	Players []Player `json:"players"`

	Questions            []Question `json:"-"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`

	// Answered holds the player names that have submitted an answer for
	// the current question; cleared on every advance. Keyed by name, not
	// connection id, so the flag survives a disconnect-and-rejoin.
	Answered map[string]bool `json:"-"`

	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"-"`
}

// Touch records activity for the idle-session sweep.
func (g *GameSession) Touch() {
	g.LastActivity = time.Now()
}

// PlayerByName looks a player up by exact, case-sensitive name. Used by the
// reconnection path, where the connection id is no longer valid.
func (g *GameSession) PlayerByName(name string) *Player {
	for i := range g.Players {
		if g.Players[i].Name == name {
			return &g.Players[i]
		}
	}
	return nil
}

// PlayerByConn looks a player up by live connection id.
func (g *GameSession) PlayerByConn(connID string) *Player {
	if connID == "" {
		return nil
	}
	for i := range g.Players {
		if g.Players[i].ConnID == connID {
			return &g.Players[i]
		}
	}
	return nil
}

// IsHost reports whether the given connection currently holds the host seat.
func (g *GameSession) IsHost(connID string) bool {
	return connID != "" && g.HostConnID == connID
}

// RefreshTeamRosters rebuilds every team's denormalized player list from
// the authoritative player list and recomputes team scores from member
// scores, eliminating any drift before the rosters go out on the wire.
func (g *GameSession) RefreshTeamRosters() {
	for i := range g.Teams {
		g.Teams[i].Players = g.Teams[i].Players[:0]
		g.Teams[i].Score = 0
	}
	for _, p := range g.Players {
		if p.TeamIndex < 0 || p.TeamIndex >= len(g.Teams) {
			continue
		}
		g.Teams[p.TeamIndex].Players = append(g.Teams[p.TeamIndex].Players, p)
		g.Teams[p.TeamIndex].Score += p.Score
	}
}

// QuestionView is the client-facing shape of a question. The correct index
// and explanation are withheld; they are revealed per player in the
// answer-result reply after that player has answered.
type QuestionView struct {
	ID      uint      `json:"id"`
	Text    string    `json:"question"`
	Options [4]string `json:"options"`
}

// View strips the fields a client must not see before answering.
func (q Question) View() QuestionView {
	return QuestionView{ID: q.ID, Text: q.Text, Options: q.Options}
}

// GameView is the snapshot broadcast to the room. Questions are included
// only once the game has started.
type GameView struct {
	Code                 string         `json:"code"`
	HostName             string         `json:"hostName"`
	HostConnected        bool           `json:"hostConnected"`
	Phase                Phase          `json:"phase"`
	Config               GameConfig     `json:"config"`
	Teams                []Team         `json:"teams"`
	Players              []Player       `json:"players"`
	Questions            []QuestionView `json:"questions,omitempty"`
	CurrentQuestionIndex int            `json:"currentQuestionIndex"`
	TotalQuestions       int            `json:"totalQuestions"`
}

// Snapshot builds the broadcastable view of the session. Caller holds Mu.
func (g *GameSession) Snapshot() GameView {
	view := GameView{
		Code:                 g.Code,
		HostName:             g.HostName,
		HostConnected:        g.HostConnID != "",
		Phase:                g.Phase,
		Config:               g.Config,
		Teams:                g.Teams,
		Players:              g.Players,
		CurrentQuestionIndex: g.CurrentQuestionIndex,
		TotalQuestions:       len(g.Questions),
	}
	if g.Phase != PhaseLobby {
		view.Questions = make([]QuestionView, len(g.Questions))
		for i, q := range g.Questions {
			view.Questions[i] = q.View()
		}
	}
	return view
}
