package main

import (
	"context"
	"log"
	"time"

	"quizroom/config"
	"quizroom/handlers"
	"quizroom/middleware"
	"quizroom/models"
	"quizroom/routes"
	"quizroom/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database when the question bank reads from postgres. A
	// failed connection leaves the pool empty rather than crashing;
	// starting a game will then fail with a descriptive error.
	var db *gorm.DB
	if cfg.QuestionSource == "postgres" {
		var err error
		db, err = config.InitDB(cfg)
		if err != nil {
			log.Printf("Database unavailable, question pool will be empty: %v", err)
		} else if err := db.AutoMigrate(&models.QuestionRecord{}); err != nil {
			log.Printf("Failed to migrate question table: %v", err)
		}
	}

	// Initialize Redis (question pool cache)
	redisClient := config.InitRedis(cfg)

	// Load the question bank once at startup
	bank := services.NewQuestionBank(db, redisClient, cfg.QuestionSource, cfg.QuestionCSVURL)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := bank.Load(ctx); err != nil {
		log.Printf("Question bank unavailable: %v", err)
	}
	cancel()

	// Initialize session store and services
	store := services.NewSessionStore()
	tokens := services.NewTokenManager(cfg.JWTSecret)

	// Initialize WebSocket hub and lifecycle engine
	hub := services.NewHub()
	gameService := services.NewGameService(store, bank, tokens, hub)
	hub.SetGameService(gameService)
	go hub.Run()

	// Reap sessions abandoned for two hours
	gameService.StartJanitor(10*time.Minute, 2*time.Hour)

	// Initialize handlers
	gameHandler := handlers.NewGameHandler(store, bank, hub)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, gameHandler, hub)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.BindAddress + ":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
