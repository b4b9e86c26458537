package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests.
// If the TEST_DB_* variables are not set, the returned Config has an empty Database section
// which allows tests to use a fallback DSN.
func LoadTestConfig() (*Config, error) {
	// Try loading from project root
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.JWT.AccessSecret = stringEnv("TEST_ACCESS_TOKEN_SECRET", "integration-access-secret")
	cfg.JWT.RefreshSecret = stringEnv("TEST_REFRESH_TOKEN_SECRET", "integration-refresh-secret")
	cfg.JWT.AccessTokenExpiry = 15 * time.Minute
	cfg.JWT.RefreshTokenExpiry = time.Hour
	cfg.Security.BcryptCost = 4
	cfg.Security.TOTPIssuer = "Portfolio"
	cfg.Security.TOTPSkew = 1

	dbHost := os.Getenv("TEST_DB_HOST")
	dbPortStr := os.Getenv("TEST_DB_PORT")
	dbUser := os.Getenv("TEST_DB_USER")
	dbPassword := os.Getenv("TEST_DB_PASSWORD")
	dbName := os.Getenv("TEST_DB_NAME")
	if dbHost == "" || dbPortStr == "" || dbUser == "" || dbPassword == "" || dbName == "" {
		return cfg, nil
	}

	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}

	cfg.Database = DatabaseConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     dbUser,
		Password: dbPassword,
		DBName:   dbName,
	}
	return cfg, nil
}
