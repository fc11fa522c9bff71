package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"deck-tracker-system/handlers"
	"deck-tracker-system/models"
	"deck-tracker-system/services"
	"deck-tracker-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // card batch payloads stay well under this
	})

	// CORS must allow credentials, the session token travels in a cookie
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	authServiceURL := os.Getenv("AUTH_SERVICE_URL")
	if authServiceURL == "" {
		log.Fatal("AUTH_SERVICE_URL environment variable not set")
	}

	// R2 is optional: without it card images are served from the scrape
	// source instead of being mirrored
	if err := utils.InitR2(); err != nil {
		log.Printf("⚠️  R2 not configured, card image mirroring disabled: %v", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Deck{},
		&models.Match{},
		&models.PokemonCard{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	redisClient := utils.NewRedisClient()
	if redisClient == nil {
		log.Println("⚠️  Redis unavailable, card lookups will skip caching")
	}

	authProvider := services.NewAuthProviderClient(authServiceURL)
	authService := services.NewAuthService(db, authProvider)
	deckService := services.NewDeckService(db)
	matchService := services.NewMatchService(db)
	cardService := services.NewCardService(db, redisClient)
	metaService := services.NewMetaService()

	authService.StartSessionSweeper()

	api := app.Group("/api")
	handlers.SetupAuthRoutes(api, authService)
	handlers.SetupDeckRoutes(api, deckService, matchService, authService)
	handlers.SetupCardRoutes(api, cardService, metaService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8001"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Session sweeper running (hourly)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
