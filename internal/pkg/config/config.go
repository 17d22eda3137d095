// Package config provides application configuration management using Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration values.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Solver   SolverConfig
	Log      LogConfig
	App      AppConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration for the saved-schedule store.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// SolverConfig holds default parameters for the scheduling engine when a
// request does not override them.
type SolverConfig struct {
	DefaultStrategy        string
	DefaultTimeout         time.Duration
	StrictTimeout          time.Duration
	RelaxedTimeout         time.Duration
	GeneticPopulationSize  int
	GeneticGenerations     int
	GeneticMutationRate    float64
	GeneticMaxWorkers      int
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig holds general application configuration.
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
}

// IsDevelopment returns true if the application is running in development mode.
func (c AppConfig) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsProduction returns true if the application is running in production mode.
func (c AppConfig) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Load reads configuration from environment variables and returns a Config struct.
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind environment variables explicitly
	bindEnvVars(v)

	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Environment: v.GetString("APP_ENV"),
			Debug:       v.GetBool("APP_DEBUG"),
		},
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetDuration("SERVER_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Solver: SolverConfig{
			DefaultStrategy:       v.GetString("SOLVER_DEFAULT_STRATEGY"),
			DefaultTimeout:        v.GetDuration("SOLVER_DEFAULT_TIMEOUT"),
			StrictTimeout:         v.GetDuration("SOLVER_STRICT_TIMEOUT"),
			RelaxedTimeout:        v.GetDuration("SOLVER_RELAXED_TIMEOUT"),
			GeneticPopulationSize: v.GetInt("SOLVER_GENETIC_POPULATION_SIZE"),
			GeneticGenerations:    v.GetInt("SOLVER_GENETIC_GENERATIONS"),
			GeneticMutationRate:   v.GetFloat64("SOLVER_GENETIC_MUTATION_RATE"),
			GeneticMaxWorkers:     v.GetInt("SOLVER_GENETIC_MAX_WORKERS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("APP_NAME", "schoolscheduler")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_DEBUG", true)

	// Server defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "60s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")

	// Database defaults
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "scheduler")
	v.SetDefault("DB_PASSWORD", "scheduler_password")
	v.SetDefault("DB_NAME", "scheduler")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")

	// Solver defaults, mirroring the engine's own package-level timeout constants.
	v.SetDefault("SOLVER_DEFAULT_STRATEGY", "cp")
	v.SetDefault("SOLVER_DEFAULT_TIMEOUT", "30s")
	v.SetDefault("SOLVER_STRICT_TIMEOUT", "15s")
	v.SetDefault("SOLVER_RELAXED_TIMEOUT", "30s")
	v.SetDefault("SOLVER_GENETIC_POPULATION_SIZE", 8)
	v.SetDefault("SOLVER_GENETIC_GENERATIONS", 3)
	v.SetDefault("SOLVER_GENETIC_MUTATION_RATE", 0.4)
	v.SetDefault("SOLVER_GENETIC_MAX_WORKERS", 6)

	// Log defaults
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func bindEnvVars(v *viper.Viper) {
	envVars := []string{
		"APP_NAME", "APP_ENV", "APP_DEBUG",
		"SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME",
		"SOLVER_DEFAULT_STRATEGY", "SOLVER_DEFAULT_TIMEOUT", "SOLVER_STRICT_TIMEOUT", "SOLVER_RELAXED_TIMEOUT",
		"SOLVER_GENETIC_POPULATION_SIZE", "SOLVER_GENETIC_GENERATIONS", "SOLVER_GENETIC_MUTATION_RATE",
		"SOLVER_GENETIC_MAX_WORKERS",
		"LOG_LEVEL", "LOG_FORMAT",
	}

	for _, env := range envVars {
		_ = v.BindEnv(env)
	}
}
