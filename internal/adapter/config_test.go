package adapter

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
)

func Test_LoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, CacheDriverBolt, cfg.Cache.Driver)
	assert.Equal(t, []string{"popular", "upcoming"}, cfg.Browse.Categories)
	assert.True(t, cfg.Browse.Shuffle)
	assert.False(t, cfg.IsConfigured())
}

func Test_LoadConfigFrom_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
tmdb:
  api_key: from-file
  language: de-DE
  timeout: 3s
cache:
  driver: sqlite
  dir: /tmp/marquee-test
browse:
  categories: [Top_Rated, " now_playing "]
  shuffle: false
viewer:
  command: feh
  args: ["--scale-down"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("MARQUEE_TMDB_API_KEY", "from-env")
	t.Setenv("MARQUEE_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.TMDB.APIKey, "environment wins over the file")
	assert.Equal(t, "de-DE", cfg.TMDB.Language)
	assert.Equal(t, 3*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, CacheDriverSQLite, cfg.Cache.Driver)
	assert.Equal(t, "/tmp/marquee-test", cfg.Cache.Dir)
	assert.Equal(t, []string{"top_rated", "now_playing"}, cfg.Browse.Categories)
	assert.False(t, cfg.Browse.Shuffle)
	assert.Equal(t, "feh", cfg.Viewer.Command)
	assert.Equal(t, []string{"--scale-down"}, cfg.Viewer.Args)
	assert.Equal(t, "debug", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func Test_LoadConfigFrom_BadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("tmdb: [unclosed"), 0644))

	_, err := LoadConfigFrom(dir)
	assert.Error(t, err)
}

func Test_SaveConfigTo_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.TMDB.APIKey = "secret"
	cfg.TMDB.Timeout = 7 * time.Second
	cfg.Cache.Driver = CacheDriverMemory
	cfg.Browse.Categories = []string{"top_rated"}

	require.NoError(t, SaveConfigTo(cfg, dir))
	loaded, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "secret", loaded.TMDB.APIKey)
	assert.Equal(t, 7*time.Second, loaded.TMDB.Timeout)
	assert.Equal(t, CacheDriverMemory, loaded.Cache.Driver)
	assert.Equal(t, []string{"top_rated"}, loaded.Browse.Categories)
}

func Test_Config_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.TMDB.APIKey = "key"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing_api_key", mutate: func(c *Config) { c.TMDB.APIKey = "" }, wantErr: true},
		{name: "unknown_driver", mutate: func(c *Config) { c.Cache.Driver = "redis" }, wantErr: true},
		{name: "no_categories", mutate: func(c *Config) { c.Browse.Categories = nil }, wantErr: true},
		{name: "blank_category", mutate: func(c *Config) { c.Browse.Categories = []string{"popular", "  "} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	cfg := valid()
	cfg.TMDB.APIKey = ""
	assert.ErrorIs(t, cfg.Validate(), domain.ErrMissingAPIKey)
}

func Test_ClearCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "movies.db"), []byte("x"), 0644))

	require.NoError(t, ClearCache(dir))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ClearCache(dir), "clearing twice is fine")
}

func Test_ParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" Warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), "level %q", in)
	}
}

func Test_NewJSONLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, "WARN")

	logger.Info("hidden")
	logger.Warn("shown", "category", "popular")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"category":"popular"`)
}

func Test_SetupLogger_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "marquee.log")

	logger, err := SetupLogger(&LoggingConfig{File: path, Level: "info"})
	require.NoError(t, err)
	logger.Info("started")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "started")
}
