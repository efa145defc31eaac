package main

import (
	"log"

	"muschats/backend/config"
	"muschats/backend/middleware"
	"muschats/backend/routes"
	"muschats/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger("info")
	defer utils.SyncLogger()

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Uploaded avatars
	app.Static("/uploads", cfg.UploadDir)

	// Setup routes
	routes.SetupRoutes(app, db, cfg)

	// Start server
	utils.LogInfo("server starting", zap.String("port", cfg.ServerPort))
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
