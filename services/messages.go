package services

import (
	"encoding/json"

	"quizroom/models"
)

// Message is the envelope for both directions of the event channel. The
// payload stays raw until the event type selects its concrete schema, so a
// malformed payload is rejected before it reaches the lifecycle engine.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// OutMessage is the server-to-client envelope.
type OutMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Client -> server events.
const (
	EventCreateGame     = "create-game"
	EventJoinGame       = "join-game"
	EventDeleteGame     = "delete-game"
	EventStartGame      = "start-game"
	EventUpdateScore    = "update-score"
	EventRejoinAsHost   = "rejoin-as-host"
	EventRejoinAsPlayer = "rejoin-as-player"
	EventLeaveRoom      = "leave-room"
	EventNextQuestion   = "next-question"
	EventSubmitAnswer   = "submit-answer"
	EventPlayerFinished = "player-finished"
	EventEndGame        = "end-game"
	EventPing           = "ping"
)

// Server -> client events.
const (
	EventGameCreated     = "game-created"
	EventGameJoined      = "game-joined"
	EventGameUpdated     = "game-updated"
	EventGameStarted     = "game-started"
	EventQuestionChanged = "question-changed"
	EventScoresUpdated   = "scores-updated"
	EventAnswerResult    = "answer-result"
	EventGameFinished    = "game-finished"
	EventGameDeleted     = "game-deleted"
	EventRejoined        = "rejoined"
	EventError           = "error"
	EventPong            = "pong"
)

// Client payloads.

type CreateGamePayload struct {
	HostName string            `json:"hostName"`
	Config   models.GameConfig `json:"config"`
}

type JoinGamePayload struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
}

// GameIDPayload covers delete-game, start-game, leave-room, next-question
// and end-game, which carry nothing but the session code.
type GameIDPayload struct {
	GameID string `json:"gameId"`
}

type UpdateScorePayload struct {
	GameID    string `json:"gameId"`
	TeamIndex int    `json:"teamIndex"`
	Points    int    `json:"points"`
}

type RejoinPayload struct {
	GameID string `json:"gameId"`
	Name   string `json:"name"`
	Token  string `json:"token,omitempty"`
}

type SubmitAnswerPayload struct {
	GameID      string  `json:"gameId"`
	AnswerIndex int     `json:"answerIndex"` // position in the player's displayed order
	TimeTaken   float64 `json:"timeTaken"`   // seconds
}

type PlayerFinishedPayload struct {
	GameID     string `json:"gameId"`
	FinalScore int    `json:"finalScore"`
	TeamIndex  int    `json:"teamIndex"`
}

// Server payloads.

type GameCreatedPayload struct {
	Game  models.GameView `json:"game"`
	Token string          `json:"token"`
}

type GameJoinedPayload struct {
	Game  models.GameView `json:"game"`
	Token string          `json:"token"`
}

type QuestionChangedPayload struct {
	QuestionIndex int                 `json:"questionIndex"`
	Question      models.QuestionView `json:"question"`
	TotalQuestion int                 `json:"totalQuestions"`
}

type ScoresUpdatedPayload struct {
	Teams   []models.Team   `json:"teams"`
	Players []models.Player `json:"players"`
}

type AnswerResultPayload struct {
	Correct      bool   `json:"correct"`
	Points       int    `json:"points"`
	TotalScore   int    `json:"totalScore"`
	CorrectIndex int    `json:"correctIndex"` // canonical index
	Explanation  string `json:"explanation"`
}

type RejoinedPayload struct {
	Game  models.GameView `json:"game"`
	Role  string          `json:"role"` // "host" or "player"
	Token string          `json:"token"`
}

type GameDeletedPayload struct {
	GameID string `json:"gameId"`
	Reason string `json:"reason,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
