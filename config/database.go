package config

import (
	"fmt"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DBName   string `toml:"name"`
	SSLMode  string `toml:"ssl_mode"`
	MaxOpen  int    `toml:"max_open"`
	MaxIdle  int    `toml:"max_idle"`
}

func defaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:    "localhost",
		Port:    "5432",
		User:    "signage",
		DBName:  "signage",
		SSLMode: "disable",
		MaxOpen: 25,
		MaxIdle: 10,
	}
}

func (c *DatabaseConfig) loadEnv() {
	setString(&c.Host, "DB_HOST")
	setString(&c.Port, "DB_PORT")
	setString(&c.User, "DB_USER")
	setString(&c.Password, "DB_PASSWORD")
	setString(&c.DBName, "DB_NAME")
	setString(&c.SSLMode, "DB_SSL_MODE")
	setInt(&c.MaxOpen, "DB_MAX_OPEN")
	setInt(&c.MaxIdle, "DB_MAX_IDLE")
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetDatabaseConfig returns database configuration from environment variables
func GetDatabaseConfig() *DatabaseConfig {
	cfg := defaultDatabaseConfig()
	cfg.loadEnv()
	return &cfg
}
