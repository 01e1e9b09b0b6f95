package db

import (
	"fmt"
	"time"

	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/db/migrations"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// New creates a new database connection.
func New(cfg *config.Config) (*gorm.DB, error) {
	database, err := connectToDatabaseWithRetry(cfg.EnvVars.DatabaseUrl, time.Minute, 5*time.Second)
	if err != nil {
		return nil, err
	}
	if err := Migrate(database); err != nil {
		return nil, err
	}
	return database, nil
}

// connectToDatabaseWithRetry connects to the database and retries until
// deadline has passed.
func connectToDatabaseWithRetry(databaseURL string, deadline, backoff time.Duration) (*gorm.DB, error) {
	logger.Get().Info("connecting to database")
	var database *gorm.DB
	var err error

	start := time.Now()
	for {
		database, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{TranslateError: true})
		if err == nil {
			break
		}
		if time.Since(start) > deadline {
			return nil, fmt.Errorf("could not connect to database after %s: %w", deadline, err)
		}
		logger.Get().Warn("could not connect to database, retrying...", zap.Error(err))
		time.Sleep(backoff)
	}
	return database, nil
}

// Migrate creates or updates the chef tables.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		&models.Recipe{},
		&models.RecipeDraft{},
		&models.ChatMessage{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := migrations.CreateChefIndexes(database); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
