package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Field & simulation defaults (overridable per session and via runtime_config)
	FieldWidth         float64
	FieldHeight        float64
	PaddleSpeed        float64
	StandCount         int
	SpectatorsPerStand int
	TickRate           int
	FrameRate          int

	// Presentation sequences
	GoalPauseMillis int
	MatchEndMillis  int

	// Sessions
	SessionMaxMinutes      int
	IdleTimeoutSeconds     int
	IdleWorkerPollInterval int
	MaxSessions            int

	// Observability
	SentryDSN string

	// Security
	JWTSecret string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/pong3d?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Field & simulation
		FieldWidth:         getEnvFloat("FIELD_WIDTH", 15),
		FieldHeight:        getEnvFloat("FIELD_HEIGHT", 25),
		PaddleSpeed:        getEnvFloat("PADDLE_SPEED", 0.3),
		StandCount:         getEnvInt("STAND_COUNT", 2),
		SpectatorsPerStand: getEnvInt("SPECTATORS_PER_STAND", 24),
		TickRate:           getEnvInt("TICK_RATE", 60),
		FrameRate:          getEnvInt("FRAME_RATE", 120),

		// Presentation sequences
		GoalPauseMillis: getEnvInt("GOAL_PAUSE_MS", 3000),
		MatchEndMillis:  getEnvInt("MATCH_END_MS", 9000),

		// Sessions
		SessionMaxMinutes:      getEnvInt("SESSION_MAX_MINUTES", 60),
		IdleTimeoutSeconds:     getEnvInt("IDLE_TIMEOUT_SECONDS", 300),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_SECONDS", 5),
		MaxSessions:            getEnvInt("MAX_SESSIONS", 200),

		// Observability
		SentryDSN: getEnv("SENTRY_DSN", ""),

		// Security
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
	}
}

// Validate rejects settings that must never reach the simulation.
func (c *Config) Validate() error {
	if c.FieldWidth <= 0 || c.FieldHeight <= 0 {
		return fmt.Errorf("field dimensions must be positive (width=%v height=%v)", c.FieldWidth, c.FieldHeight)
	}
	if c.PaddleSpeed <= 0 {
		return errors.New("paddle speed must be positive")
	}
	if c.TickRate <= 0 || c.FrameRate <= 0 {
		return errors.New("tick rate and frame rate must be positive")
	}
	if c.StandCount < 0 || c.SpectatorsPerStand < 0 {
		return errors.New("stand and spectator counts cannot be negative")
	}
	if c.GoalPauseMillis <= 0 || c.MatchEndMillis <= 0 {
		return errors.New("presentation sequence durations must be positive")
	}
	return nil
}

// TickInterval is the wall-clock duration of one simulation tick.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
