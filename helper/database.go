package helper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection settings for PostgreSQL
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// Database wraps the sql connection with a name and a logger
type Database struct {
	Name     string
	Logger   *slog.Logger
	Instance *sql.DB
}

// NewDatabaseConfiguration reads the database configuration from the environment.
// A .env file in the working directory is loaded first if present.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, NewError("load .env", err)
	}

	config := &DatabaseConfiguration{
		Host:     os.Getenv("ANNOTATOR_DB_HOST"),
		Port:     os.Getenv("ANNOTATOR_DB_PORT"),
		Database: os.Getenv("ANNOTATOR_DB_DATABASE"),
		Username: os.Getenv("ANNOTATOR_DB_USERNAME"),
		Password: os.Getenv("ANNOTATOR_DB_PASSWORD"),
		Schema:   os.Getenv("ANNOTATOR_DB_SCHEMA"),
		SSLMode:  os.Getenv("ANNOTATOR_DB_SSLMODE"),
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	var missing []string
	if config.Host == "" {
		missing = append(missing, "ANNOTATOR_DB_HOST")
	}
	if config.Port == "" {
		missing = append(missing, "ANNOTATOR_DB_PORT")
	}
	if config.Database == "" {
		missing = append(missing, "ANNOTATOR_DB_DATABASE")
	}
	if config.Username == "" {
		missing = append(missing, "ANNOTATOR_DB_USERNAME")
	}
	if len(missing) > 0 {
		return nil, NewError("database configuration", fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", ")))
	}

	return config, nil
}

// ConnectionString returns the lib/pq connection string
func (c *DatabaseConfiguration) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&search_path=%s",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.SSLMode, c.Schema,
	)
}

// NewDatabase opens and pings the connection. It panics if the database
// cannot be reached after a few attempts.
func NewDatabase(name string, dbConfig *DatabaseConfiguration, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.Default()
	}

	instance, err := connect(dbConfig, 5, time.Second)
	if err != nil {
		log.Panicf("error connecting to database %s: %v", name, err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", dbConfig.Host))

	return &Database{
		Name:     name,
		Logger:   logger,
		Instance: instance,
	}
}

// NewTestDatabase connects with a silent logger
func NewTestDatabase(dbConfig *DatabaseConfiguration) *Database {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return NewDatabase("test", dbConfig, logger)
}

// Close closes the underlying connection
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}

func connect(dbConfig *DatabaseConfiguration, attempts int, wait time.Duration) (*sql.DB, error) {
	if dbConfig == nil {
		return nil, fmt.Errorf("database configuration is nil")
	}

	instance, err := sql.Open("postgres", dbConfig.ConnectionString())
	if err != nil {
		return nil, NewError("open", err)
	}

	for i := 0; i < attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = instance.PingContext(ctx)
		cancel()
		if err == nil {
			return instance, nil
		}
		time.Sleep(wait)
	}

	instance.Close()
	return nil, NewError("ping", err)
}
