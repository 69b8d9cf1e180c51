package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sona/pkg/framework/debug"
)

var sonaVars = []string{
	"SONA_DEV_MODE",
	"SONA_DEV_SERVER_URL",
	"SONA_ORIGIN",
	"SONA_UI_DIR",
	"SONA_USER_DATA_FOLDER",
	"SONA_DEVHOST_ADDR",
	"SONA_LOG_LEVEL",
	"SONA_LOG_FILE",
}

// clearEnv blanks every SONA_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range sonaVars {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.False(t, cfg.DevMode)
	assert.Equal(t, "http://localhost:5173", cfg.DevServerURL)
	assert.Equal(t, "http://sona.local", cfg.Origin)
	assert.Equal(t, "ui/dist", cfg.UIDir)
	assert.Equal(t, "127.0.0.1:5180", cfg.DevHostAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, "http://sona.local/index.html", cfg.StartURL())
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SONA_DEV_MODE", "true")
	t.Setenv("SONA_DEV_SERVER_URL", "http://localhost:3000")
	t.Setenv("SONA_ORIGIN", "http://ui.test/")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.True(t, cfg.DevMode)
	assert.Equal(t, "http://ui.test", cfg.Origin)
	assert.Equal(t, "http://localhost:3000", cfg.StartURL())
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv only fills variables that are unset, so drop the blanks.
	for _, k := range sonaVars {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Cleanup(func() {
		for _, k := range sonaVars {
			_ = os.Unsetenv(k)
		}
	})

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SONA_DEV_MODE=1\nSONA_LOG_LEVEL=debug\n"), 0o600))

	cfg := Load(path)

	assert.True(t, cfg.DevMode)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestInvalidBoolFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SONA_DEV_MODE", "maybe")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.False(t, cfg.DevMode)
}

func TestConfigureLogger(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{LogLevel: "warn", LogFile: filepath.Join(dir, "sona.log")}

	l := debug.New(os.Stderr, "test", debug.DefaultFlags)
	closer, err := cfg.ConfigureLogger(l)
	require.NoError(t, err)

	assert.Equal(t, debug.LogLevelWarn, l.Level())
	l.Info("hidden")
	l.Warn("visible")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible")
	assert.NotContains(t, string(data), "hidden")

	_, err = (&Config{LogLevel: "loud"}).ConfigureLogger(l)
	assert.ErrorContains(t, err, "SONA_LOG_LEVEL")
}

func TestConfigureLoggerOff(t *testing.T) {
	var buf bytes.Buffer
	l := debug.New(&buf, "test", debug.DefaultFlags)

	_, err := (&Config{LogLevel: "off"}).ConfigureLogger(l)
	require.NoError(t, err)
	l.Error("silenced")
	assert.Zero(t, buf.Len())

	_, err = (&Config{LogLevel: "info"}).ConfigureLogger(l)
	require.NoError(t, err)
	l.Info("back on")
	assert.Contains(t, buf.String(), "back on")
}
