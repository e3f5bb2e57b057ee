package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dentaheal/dentaheal-api/internal/config"
	"github.com/dentaheal/dentaheal-api/internal/handlers"
	"github.com/dentaheal/dentaheal-api/internal/middleware"
	"github.com/dentaheal/dentaheal-api/internal/services"
	"github.com/dentaheal/dentaheal-api/internal/stores"
	"github.com/dentaheal/dentaheal-api/internal/utils"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, relying on environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// --- Database Connection ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(ctx)
	db := client.Database(cfg.MongoDatabase)
	if err := stores.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to create indexes")
	}
	log.Info().Str("database", cfg.MongoDatabase).Msg("Successfully connected to MongoDB")

	// --- Stores ---
	accountStore := stores.NewMongoAccountStore(db)
	extensionStore := stores.NewMongoExtensionStore(db)
	sessionStore := stores.NewMongoSessionStore(db)
	appointmentStore := stores.NewMongoAppointmentStore(db)

	// --- Services ---
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	accountSvc := services.NewAccountService(
		accountStore, extensionStore, sessionStore, tokens,
		cfg.PasswordMinLength, cfg.BcryptCost, log)
	patientSvc := services.NewPatientDirectoryService(
		accountStore, extensionStore, accountSvc,
		cfg.PasswordMinLength, cfg.BcryptCost)
	appointmentSvc := services.NewAppointmentQueryService(
		appointmentStore, accountStore, extensionStore, accountSvc)

	h := handlers.NewHandler(accountSvc, patientSvc, appointmentSvc, cfg.SessionTTL, log)

	// --- Gin Router ---
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h.RegisterRoutes(r)

	log.Info().Str("port", cfg.Port).Msg("Starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
