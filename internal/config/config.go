// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all configuration for the application
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	JWT      JWTConfig
	Security SecurityConfig
	SMTP     SMTPConfig
	Admin    AdminConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string
	Format string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration.
// Access and refresh tokens are signed with different secrets.
type JWTConfig struct {
	AccessSecret       string
	RefreshSecret      string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// SecurityConfig holds password hashing and two-factor settings
type SecurityConfig struct {
	BcryptCost int
	TOTPIssuer string
	TOTPSkew   uint
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// AdminConfig holds the account seeded at startup. Username is empty when seeding is disabled.
type AdminConfig struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	if cfg.Server.Port, err = intEnv("SERVER_PORT", 5000); err != nil {
		return nil, err
	}

	// Logging configuration
	cfg.Logging.Level = stringEnv("LOG_LEVEL", "info")
	cfg.Logging.Format = stringEnv("LOG_FORMAT", "json")
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "console" {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q", cfg.Logging.Format)
	}

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	if err := loadJWT(cfg); err != nil {
		return nil, err
	}

	// Security configuration
	if cfg.Security.BcryptCost, err = intEnv("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	if cfg.Security.BcryptCost < bcrypt.MinCost || cfg.Security.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("invalid BCRYPT_COST: must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	cfg.Security.TOTPIssuer = stringEnv("TOTP_ISSUER", "Portfolio")
	skew, err := intEnv("TOTP_SKEW", 1)
	if err != nil {
		return nil, err
	}
	if skew < 1 {
		return nil, fmt.Errorf("invalid TOTP_SKEW: must be at least 1")
	}
	cfg.Security.TOTPSkew = uint(skew)

	// Redis configuration
	cfg.Redis.Host = stringEnv("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = intEnv("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional
	if cfg.Redis.DB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}

	// SMTP configuration (used by the worker)
	cfg.SMTP.Host = stringEnv("SMTP_HOST", "localhost")
	if cfg.SMTP.Port, err = intEnv("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME") // optional
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD") // optional
	cfg.SMTP.From = stringEnv("SMTP_FROM", "noreply@portfolio.local")

	// Admin seed (optional)
	cfg.Admin.Username = os.Getenv("ADMIN_USERNAME")
	if cfg.Admin.Username != "" {
		cfg.Admin.Password = os.Getenv("ADMIN_PASSWORD")
		if cfg.Admin.Password == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD is required when ADMIN_USERNAME is set")
		}
		cfg.Admin.Email = os.Getenv("ADMIN_EMAIL")
		if cfg.Admin.Email == "" {
			return nil, fmt.Errorf("ADMIN_EMAIL is required when ADMIN_USERNAME is set")
		}
		cfg.Admin.FirstName = stringEnv("ADMIN_FIRSTNAME", "Admin")
		cfg.Admin.LastName = stringEnv("ADMIN_LASTNAME", "User")
	}

	return cfg, nil
}

func loadJWT(cfg *Config) error {
	accessSecret := os.Getenv("ACCESS_TOKEN_SECRET")
	if accessSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}
	refreshSecret := os.Getenv("REFRESH_TOKEN_SECRET")
	if refreshSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}
	if accessSecret == refreshSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	cfg.JWT.AccessSecret = accessSecret
	cfg.JWT.RefreshSecret = refreshSecret

	var err error
	if cfg.JWT.AccessTokenExpiry, err = durationEnv("JWT_ACCESS_TOKEN_EXPIRY", 15*time.Minute); err != nil {
		return err
	}
	if cfg.JWT.RefreshTokenExpiry, err = durationEnv("JWT_REFRESH_TOKEN_EXPIRY", 7*24*time.Hour); err != nil {
		return err
	}
	return nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// RedisAddr returns the Redis host:port address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// parseOrigins splits a comma-separated origin list, allowing all origins when none are given
func parseOrigins(raw string) []string {
	origins := make([]string, 0)
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
