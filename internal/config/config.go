// Package config handles application settings from the environment and
// the schema and mapping files the CLI reads and writes.
package config

import (
	"errors"
	"os"

	"github.com/BartekS5/fieldmap/pkg/logger"
)

const (
	DefaultMongoDatabase   = "fieldmap"
	DefaultMongoCollection = "mappings"
)

// Config holds all configuration for the application, typically loaded
// from environment variables (populated from .env in main.go).
type Config struct {
	SQLConnString   string
	MongoConnString string
	MongoDatabase   string
	MongoCollection string
	LogFile         string
	LogLevel        int
}

// LoadConfig reads settings from the environment. Connection strings are
// optional here; commands that need one call RequireSQL or RequireMongo.
func LoadConfig() (*Config, error) {
	level, err := logger.ParseLevel(os.Getenv("FIELDMAP_LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	return &Config{
		SQLConnString:   os.Getenv("FIELDMAP_SQL_CONNECTION_STRING"),
		MongoConnString: os.Getenv("FIELDMAP_MONGO_CONNECTION_STRING"),
		MongoDatabase:   getenvDefault("FIELDMAP_MONGO_DATABASE", DefaultMongoDatabase),
		MongoCollection: getenvDefault("FIELDMAP_MONGO_COLLECTION", DefaultMongoCollection),
		LogFile:         os.Getenv("FIELDMAP_LOG_FILE"),
		LogLevel:        level,
	}, nil
}

func (c *Config) RequireSQL() error {
	if c.SQLConnString == "" {
		return errors.New("FIELDMAP_SQL_CONNECTION_STRING environment variable not set")
	}
	return nil
}

func (c *Config) RequireMongo() error {
	if c.MongoConnString == "" {
		return errors.New("FIELDMAP_MONGO_CONNECTION_STRING environment variable not set")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
