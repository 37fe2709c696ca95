package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"library-catalog/library"
)

// Config holds all application configuration.
type Config struct {
	Storage StorageConfig
	Log     LogConfig
}

// StorageConfig selects where the catalog is persisted.
type StorageConfig struct {
	Format        string
	BooksFile     string
	PersonnelFile string
	DBFile        string
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level string
}

// Load reads .env (if present) and then the environment. Variables already
// set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from environment variables with defaults.
func FromEnv() *Config {
	return &Config{
		Storage: StorageConfig{
			Format:        getEnv("LIBRARY_FORMAT", string(library.FormatTagged)),
			BooksFile:     getEnv("LIBRARY_BOOKS_FILE", "books.txt"),
			PersonnelFile: getEnv("LIBRARY_PERSONNEL_FILE", "users.txt"),
			DBFile:        getEnv("LIBRARY_DB_FILE", "library.db"),
		},
		Log: LogConfig{
			Level: getEnv("LIBRARY_LOG_LEVEL", "info"),
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	format, err := library.ParseFormat(c.Storage.Format)
	if err != nil {
		errs = append(errs, fmt.Errorf("LIBRARY_FORMAT: %w", err))
	}
	switch format {
	case library.FormatLegacy, library.FormatTagged:
		if c.Storage.BooksFile == "" {
			errs = append(errs, errors.New("LIBRARY_BOOKS_FILE is required"))
		}
		if c.Storage.PersonnelFile == "" {
			errs = append(errs, errors.New("LIBRARY_PERSONNEL_FILE is required"))
		}
		if c.Storage.BooksFile != "" && c.Storage.BooksFile == c.Storage.PersonnelFile {
			errs = append(errs, errors.New("LIBRARY_BOOKS_FILE and LIBRARY_PERSONNEL_FILE must differ"))
		}
	case library.FormatSQLite:
		if c.Storage.DBFile == "" {
			errs = append(errs, errors.New("LIBRARY_DB_FILE is required for the sqlite format"))
		}
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("LIBRARY_LOG_LEVEL: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// StoreConfig converts the storage settings. Call Validate first.
func (c *Config) StoreConfig() library.StoreConfig {
	format, _ := library.ParseFormat(c.Storage.Format)
	return library.StoreConfig{
		Format:        format,
		BooksPath:     c.Storage.BooksFile,
		PersonnelPath: c.Storage.PersonnelFile,
		DBPath:        c.Storage.DBFile,
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
