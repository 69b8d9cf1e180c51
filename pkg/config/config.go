// Package config loads runtime settings from a .env file and SONA_* variables.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/justyntemme/sona/pkg/framework/debug"
)

type Config struct {
	// UI source
	DevMode      bool
	DevServerURL string
	Origin       string
	UIDir        string

	// Web view
	UserDataFolder string

	// Development host
	DevHostAddr string

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads the given .env files (or ./.env when none are named) and then
// the environment. Missing files are not an error. Variables already set in
// the environment take precedence over file values.
func Load(files ...string) *Config {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else {
		for _, f := range files {
			if err := godotenv.Load(f); err != nil {
				debug.Debug("skipping env file %s: %v", f, err)
			}
		}
	}

	return &Config{
		// UI source
		DevMode:      getEnvBool("SONA_DEV_MODE", false),
		DevServerURL: getEnv("SONA_DEV_SERVER_URL", "http://localhost:5173"),
		Origin:       strings.TrimSuffix(getEnv("SONA_ORIGIN", "http://sona.local"), "/"),
		UIDir:        getEnv("SONA_UI_DIR", "ui/dist"),

		// Web view
		UserDataFolder: getEnv("SONA_USER_DATA_FOLDER", ""),

		// Development host
		DevHostAddr: getEnv("SONA_DEVHOST_ADDR", "127.0.0.1:5180"),

		// Logging
		LogLevel: getEnv("SONA_LOG_LEVEL", "info"),
		LogFile:  getEnv("SONA_LOG_FILE", ""),
	}
}

// StartURL is the page the editor opens: the dev server in dev mode, the
// bundled index page otherwise.
func (c *Config) StartURL() string {
	if c.DevMode {
		return c.DevServerURL
	}
	return c.Origin + "/index.html"
}

// ConfigureLogger applies the log level and optional log file to l. The
// returned closer releases the file and is never nil.
func (c *Config) ConfigureLogger(l *debug.Logger) (io.Closer, error) {
	level, err := debug.ParseLevel(c.LogLevel)
	if err != nil {
		return io.NopCloser(nil), fmt.Errorf("SONA_LOG_LEVEL: %w", err)
	}
	l.SetLevel(level)
	l.SetEnabled(level != debug.LogLevelOff)

	if c.LogFile == "" {
		return io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.NopCloser(nil), fmt.Errorf("opening log file: %w", err)
	}
	l.SetOutput(f)
	return f, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		debug.Warn("failed to parse %s as bool, using default: %v", key, err)
		return defaultValue
	}
	return boolValue
}
