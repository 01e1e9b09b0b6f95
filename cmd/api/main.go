package main

import (
	"context"
	"os"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/saltybytes-chef/internal/app"
	"github.com/windoze95/saltybytes-chef/internal/config"
	"github.com/windoze95/saltybytes-chef/internal/db"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"github.com/windoze95/saltybytes-chef/internal/repository"
	"github.com/windoze95/saltybytes-chef/internal/router"
	"go.uber.org/zap"
)

// init is called before the main function.
func init() {
	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)

	// Configure the runtime
	ConfigureRuntime()
}

// Entry point for the API.
func main() {
	defer logger.Sync()

	if err := config.LoadDotEnv(); err != nil {
		logger.Get().Fatal("failed to load .env", zap.Error(err))
	}

	// Load the config
	var cfg *config.Config
	if c, err := config.LoadConfig(); err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	} else {
		cfg = c
	}

	// Check that all ENV variables are set
	if err := cfg.CheckConfigEnvFields(); err != nil {
		logger.Get().Fatal("missing required config fields", zap.Error(err))
	}

	// Load prompts, falling back to the embedded defaults
	prompts, err := config.LoadPrompts(cfg.EnvVars.PromptsPath)
	if err != nil {
		logger.Get().Fatal("failed to load prompts", zap.Error(err))
	}
	cfg.Prompts = prompts

	// Build the suggestion pipeline
	pipeline, err := app.NewPipeline(context.Background(), cfg)
	if err != nil {
		logger.Get().Fatal("failed to build suggestion pipeline", zap.Error(err))
	}
	defer pipeline.Close()

	// Connect to the database
	database, err := db.New(cfg)
	if err != nil {
		logger.Get().Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := database.DB()
	if err != nil {
		logger.Get().Fatal("failed to get underlying sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()

	// Create a new gin router
	if !cfg.EnvVars.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.SetupRouter(cfg, repository.NewChefRepository(database), pipeline.Suggestions)

	// Run the server
	logger.Get().Info("starting server", zap.String("port", cfg.EnvVars.Port))
	if err := r.Run(":" + cfg.EnvVars.Port); err != nil {
		logger.Get().Error("server stopped", zap.Error(err))
	}
}

// ConfigureRuntime sets the number of operating system threads.
func ConfigureRuntime() {
	nuCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(nuCPU)
	logger.Get().Info("runtime configured", zap.Int("cpus", nuCPU))
}
