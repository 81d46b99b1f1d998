package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/shauryapandit/tutor-api-gdg/internal/catalog"
	"github.com/shauryapandit/tutor-api-gdg/internal/config"
	"github.com/shauryapandit/tutor-api-gdg/internal/db"
	"github.com/shauryapandit/tutor-api-gdg/internal/event"
	"github.com/shauryapandit/tutor-api-gdg/internal/handlers"
	"github.com/shauryapandit/tutor-api-gdg/internal/llm"
	"github.com/shauryapandit/tutor-api-gdg/internal/repository"
	"github.com/shauryapandit/tutor-api-gdg/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()

	if cfg.MongoDB.URI == "" {
		log.Fatal("MONGO_URI is required")
	}
	db.InitMongo(cfg.MongoDB)
	defer db.Close(context.Background())

	// Topic catalog, loaded once at startup
	topicCatalog, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Failed to load topic catalog: %v", err)
	}
	log.Printf("Loaded %d finance topics from %s", topicCatalog.Size(), cfg.Catalog.Path)

	// Gemini gateway
	gemini, err := llm.NewGeminiClient(context.Background(), cfg.Gemini)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}

	// RabbitMQ event publisher (optional)
	var publisher *event.EventPublisher
	if cfg.RabbitMQ.URI != "" {
		publisher, err = event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, tutor events will not be published")
	}

	database := db.Client.Database(cfg.MongoDB.Database)

	// Quiz sessions
	sessionRepo := repository.NewSessionRepository(database)
	quizService := service.NewQuizService(sessionRepo, topicCatalog, gemini, publisher)
	quizHandler := handlers.NewQuizHandler(quizService)

	// Advice chat
	chatRepo := repository.NewChatRepository(database)
	chatService := service.NewChatService(chatRepo, gemini, publisher)
	chatHandler := handlers.NewChatHandler(chatService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/start", quizHandler.Start)
	r.POST("/answer", quizHandler.Answer)
	r.GET("/progress/:userId/:sessionId", quizHandler.Progress)
	r.POST("/chat", chatHandler.Chat)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	log.Printf("Finance tutor API listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
