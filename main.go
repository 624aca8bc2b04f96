package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sfrosal/portfolio-api/api"
	"github.com/sfrosal/portfolio-api/config"
	"github.com/sfrosal/portfolio-api/database"
	"github.com/sfrosal/portfolio-api/models"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, using process environment")
	}

	c := config.New()

	connStr := config.GetString(c, "DATABASE_URL", "")
	if connStr == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	gormLogger := logger.New(
		&zerologGormWriter{},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{Logger: gormLogger})
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// Bound the shared pool: 20 connections, 30s idle, 2s connect.
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("Error acquiring database pool")
	}
	sqlDB.SetMaxOpenConns(config.GetInt(c, "DB_MAX_OPEN_CONNS", 20))
	sqlDB.SetMaxIdleConns(config.GetInt(c, "DB_MAX_IDLE_CONNS", 5))
	sqlDB.SetConnMaxIdleTime(30 * time.Second)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Technology{},
		&models.ProjectImage{},
	); err != nil {
		log.Fatal().Err(err).Msg("Error migrating schema")
	}

	currentDB := database.New(db)

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(currentDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to
// the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}

// zerologGormWriter routes gorm diagnostics through the global logger.
type zerologGormWriter struct{}

func (zerologGormWriter) Printf(format string, args ...interface{}) {
	log.Warn().Msgf(format, args...)
}
