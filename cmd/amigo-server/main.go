package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amigo-app/amigo/pkg/amigo/config"
	"github.com/amigo-app/amigo/pkg/amigo/database"
	"github.com/amigo-app/amigo/pkg/amigo/groups"
	"github.com/amigo-app/amigo/pkg/amigo/locking"
	"github.com/amigo-app/amigo/pkg/amigo/logging"
	"github.com/amigo-app/amigo/pkg/amigo/models"
	"github.com/amigo-app/amigo/pkg/amigo/participants"
	"github.com/amigo-app/amigo/pkg/amigo/realtime"
	"github.com/amigo-app/amigo/pkg/amigo/wishlist"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)

	// Connect to database
	if err := database.Connect(cfg.DBPath); err != nil {
		slog.Error("Failed to connect to database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	db := database.GetDB()

	// Run auto-migrations
	if err := models.AutoMigrate(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed", "path", cfg.DBPath)

	// One websocket hub and one lock table serve the whole process.
	hub := realtime.NewHub()
	locks := locking.New()

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Realtime subscriptions (public; events carry change hints only)
	r.GET("/ws", gin.WrapH(hub.Handler()))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "amigo",
			})
		})

		// Group lifecycle routes (create/join public, rest admin-gated)
		groupsHandler := groups.NewHandler(db, hub, locks)
		groupsHandler.RegisterRoutes(api.Group("/groups"))

		// Participant views (access-code gated)
		participantsHandler := participants.NewHandler(db)
		participantsHandler.RegisterRoutes(api.Group("/groups"))

		// Wishlist mutations (access-code gated)
		wishlistHandler := wishlist.NewHandler(db, hub, locks)
		wishlistHandler.RegisterRoutes(api.Group("/groups"))
	}

	slog.Info("Starting amigo server", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
