package routes

import (
	"log"
	"net/http"

	"quizroom/handlers"
	"quizroom/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(router *gin.Engine, gameHandler *handlers.GameHandler, hub *services.Hub) {
	api := router.Group("/api")
	{
		games := api.Group("/games")
		{
			games.GET("/:code", gameHandler.GetGame)
		}
		api.GET("/questions/status", gameHandler.BankStatus)
	}

	// The event channel: one connection per client. All game actions
	// (create, join, answer, ...) travel over this socket as tagged
	// messages; identity is established in-band via the session token.
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}
		hub.RegisterClient(conn)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
