package handlers

import (
	"net/http"
	"strings"

	"quizroom/services"

	"github.com/gin-gonic/gin"
)

// GameHandler serves the read-only REST surface: session snapshots for a
// landing page to validate a code before opening the socket, and question
// bank status for operators.
type GameHandler struct {
	store *services.SessionStore
	bank  *services.QuestionBank
	hub   *services.Hub
}

func NewGameHandler(store *services.SessionStore, bank *services.QuestionBank, hub *services.Hub) *GameHandler {
	return &GameHandler{
		store: store,
		bank:  bank,
		hub:   hub,
	}
}

// GetGame returns the public snapshot of a session by code.
func (h *GameHandler) GetGame(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Game code required"})
		return
	}

	session, ok := h.store.Get(code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	session.Mu.Lock()
	snapshot := session.Snapshot()
	session.Mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"game":        snapshot,
		"connections": h.hub.RoomSize(code),
	})
}

// BankStatus reports the question pool size and its source.
func (h *GameHandler) BankStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"source":    h.bank.Source(),
		"questions": h.bank.Size(),
		"sessions":  h.store.Count(),
	})
}
