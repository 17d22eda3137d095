// Package main is the entry point for the scheduling engine's API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolscheduler/internal/httpapi"
	"schoolscheduler/internal/middleware"
	"schoolscheduler/internal/orchestrate"
	"schoolscheduler/internal/pkg/config"
	"schoolscheduler/internal/pkg/database"
	"schoolscheduler/internal/pkg/logger"
	"schoolscheduler/internal/pkg/response"
	"schoolscheduler/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	var repo *storage.Repository
	if db, err := connectDatabase(cfg); err != nil {
		log.Warn("running without a saved-schedule store", zap.Error(err))
	} else {
		repo = storage.NewRepository(db)
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	orchestrator := orchestrate.New(log, orchestrate.Defaults{
		Timeout:               cfg.Solver.DefaultTimeout,
		GeneticPopulationSize: cfg.Solver.GeneticPopulationSize,
		GeneticGenerations:    cfg.Solver.GeneticGenerations,
		GeneticMutationRate:   cfg.Solver.GeneticMutationRate,
	})
	router := setupRouter(cfg, log, orchestrator, repo)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed, forcing close", zap.Error(err))
			return srv.Close()
		}
		log.Info("server stopped")
	}

	return nil
}

func connectDatabase(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	conn, err := database.New(dbCfg)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(conn.DB()); err != nil {
		return nil, fmt.Errorf("migrate storage schema: %w", err)
	}
	return conn.DB(), nil
}

func setupRouter(cfg *config.Config, log *logger.Logger, orchestrator *orchestrate.Orchestrator, repo *storage.Repository) *gin.Engine {
	router := gin.New()

	if cfg.App.IsDevelopment() {
		router.Use(middleware.CORSDefault())
	} else {
		router.Use(middleware.CORS(middleware.ProductionCORSConfig([]string{})))
	}

	router.GET("/health", healthHandler)
	router.GET("/ready", readyHandler)
	router.GET("/ping", pingHandler)

	handlers := httpapi.NewHandlers(orchestrator, repo)
	httpapi.Register(router, log, handlers)

	return router
}

// HealthResponse is the /health response body.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func healthHandler(c *gin.Context) {
	response.OK(c, HealthResponse{Status: "healthy", Timestamp: time.Now().UTC().Format(time.RFC3339)})
}

func readyHandler(c *gin.Context) {
	response.OK(c, HealthResponse{Status: "ready", Timestamp: time.Now().UTC().Format(time.RFC3339)})
}

func pingHandler(c *gin.Context) {
	response.OK(c, gin.H{"message": "pong"})
}
