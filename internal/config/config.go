package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Face       FaceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// AttendanceConfig holds the token signing secret and scheduling
// defaults for the attendance engine.
type AttendanceConfig struct {
	TokenSecret     string
	DefaultTimezone string
}

// FaceConfig holds the face recognition provider settings and the
// verification thresholds applied to its answers.
type FaceConfig struct {
	APIURL            string
	APIKey            string
	Timeout           time.Duration
	MatchThreshold    float64
	MinSharpness      float64
	BrightnessMin     float64
	BrightnessMax     float64
	LivenessThreshold float64
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "skyhr-attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Attendance configuration
	config.Attendance = AttendanceConfig{
		TokenSecret:     getEnv("ATTENDANCE_TOKEN_SECRET", ""),
		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "UTC"),
	}

	// Face provider configuration
	faceTimeout, err := time.ParseDuration(getEnv("FACE_API_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FACE_API_TIMEOUT: %w", err)
	}
	matchThreshold, err := getEnvFloat("FACE_MATCH_THRESHOLD", 97.0)
	if err != nil {
		return nil, err
	}
	minSharpness, err := getEnvFloat("FACE_MIN_SHARPNESS", 50.0)
	if err != nil {
		return nil, err
	}
	brightnessMin, err := getEnvFloat("FACE_BRIGHTNESS_MIN", 20.0)
	if err != nil {
		return nil, err
	}
	brightnessMax, err := getEnvFloat("FACE_BRIGHTNESS_MAX", 90.0)
	if err != nil {
		return nil, err
	}
	livenessThreshold, err := getEnvFloat("LIVENESS_THRESHOLD", 50.0)
	if err != nil {
		return nil, err
	}

	config.Face = FaceConfig{
		APIURL:            getEnv("FACE_API_URL", ""),
		APIKey:            getEnv("FACE_API_KEY", ""),
		Timeout:           faceTimeout,
		MatchThreshold:    matchThreshold,
		MinSharpness:      minSharpness,
		BrightnessMin:     brightnessMin,
		BrightnessMax:     brightnessMax,
		LivenessThreshold: livenessThreshold,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.TokenSecret == "" {
		return fmt.Errorf("ATTENDANCE_TOKEN_SECRET is required")
	}
	if c.Face.APIURL == "" {
		return fmt.Errorf("FACE_API_URL is required")
	}
	if c.Face.APIKey == "" {
		return fmt.Errorf("FACE_API_KEY is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
