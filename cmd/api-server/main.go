package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"animehub/database"
	"animehub/internal/config"
	"animehub/internal/http-api/handler"
	"animehub/internal/http-api/middleware"
	"animehub/internal/http-api/repository"
	"animehub/internal/http-api/service"
	"animehub/internal/websocket"
)

func main() {
	// 1️⃣ Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// 2️⃣ Connect to the database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// 3️⃣ Realtime hub (+ optional cross-instance bridge)
	hub := websocket.NewHub()
	if cfg.RedisURL != "" {
		bridge, err := websocket.NewRedisBridge(cfg.RedisURL, cfg.RedisPassword, hub)
		if err != nil {
			log.Fatalf("could not connect redis bridge: %v", err)
		}
		defer bridge.Close()
		go bridge.Run(context.Background())
	} else {
		logger.Warn("REDIS_URL not set, running without cross-instance fan-out")
	}

	// 4️⃣ Repositories, services, handlers
	userRepo := repository.NewUserRepository(db)
	animeRepo := repository.NewAnimeRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	authService := service.NewAuthService(userRepo, cfg)
	animeService := service.NewAnimeService(animeRepo)
	commentService := service.NewCommentService(commentRepo, animeRepo, hub)

	authHandler := handler.NewAuthHandler(authService)
	animeHandler := handler.NewAnimeHandler(animeService)
	commentHandler := handler.NewCommentHandler(commentService)

	// 5️⃣ Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/check-conn", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "API is alive and database connected ✅",
		})
	})

	public := r.Group("/api")
	authed := r.Group("/api", middleware.AuthMiddleware(authService))
	admin := r.Group("/api/admin", middleware.AuthMiddleware(authService), middleware.RequireAdmin())

	authHandler.RegisterRoutes(public)
	animeHandler.RegisterRoutes(public)
	commentHandler.RegisterRoutes(public, authed, admin)

	r.GET("/ws", middleware.AuthMiddleware(authService), websocket.WSHandler(hub))

	httpServer := fmt.Sprintf(":%d", cfg.HTTPPort)
	fmt.Println("🚀 Server running at", httpServer)
	if err := r.Run(httpServer); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
