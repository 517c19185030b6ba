package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mmcdole/marquee/internal/adapter/source/tmdb"
	"github.com/mmcdole/marquee/internal/domain"
)

// CacheDriver identifies the local store backend
type CacheDriver string

const (
	CacheDriverBolt   CacheDriver = "bolt"
	CacheDriverSQLite CacheDriver = "sqlite"
	CacheDriverMemory CacheDriver = "memory"
)

// Config holds all application configuration
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Browse  BrowseConfig  `mapstructure:"browse"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TMDBConfig holds catalog API configuration
type TMDBConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Language     string        `mapstructure:"language"` // e.g. "en-US"; empty uses the API default
	Timeout      time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds local store configuration
type CacheConfig struct {
	Driver CacheDriver `mapstructure:"driver"` // "bolt", "sqlite" or "memory"
	Dir    string      `mapstructure:"dir"`
}

// BrowseConfig holds listing preferences
type BrowseConfig struct {
	Categories []string `mapstructure:"categories"`
	Shuffle    bool     `mapstructure:"shuffle"` // Shuffle each fetched page before appending
}

// ViewerConfig holds image viewer preferences
type ViewerConfig struct {
	Command string   `mapstructure:"command"` // empty auto-detects
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:      tmdb.DefaultBaseURL,
			ImageBaseURL: tmdb.DefaultImageBaseURL,
			Timeout:      15 * time.Second,
		},
		Cache: CacheConfig{
			Driver: CacheDriverBolt,
			Dir:    defaultCachePath(),
		},
		Browse: BrowseConfig{
			Categories: []string{domain.CategoryPopular, domain.CategoryUpcoming},
			Shuffle:    true,
		},
		Viewer: ViewerConfig{
			Args: []string{},
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// Validate reports the first configuration problem that prevents browsing
func (c *Config) Validate() error {
	if c.TMDB.APIKey == "" {
		return domain.ErrMissingAPIKey
	}
	switch c.Cache.Driver {
	case CacheDriverBolt, CacheDriverSQLite, CacheDriverMemory:
	default:
		return fmt.Errorf("unknown cache driver %q (want bolt, sqlite or memory)", c.Cache.Driver)
	}
	if len(c.Browse.Categories) == 0 {
		return errors.New("browse.categories must name at least one category")
	}
	for _, cat := range c.Browse.Categories {
		if domain.NormalizeCategory(cat) == "" {
			return errors.New("browse.categories contains an empty category")
		}
	}
	return nil
}

// IsConfigured returns true if the API key is set
func (c *Config) IsConfigured() bool {
	return c.TMDB.APIKey != ""
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee", "marquee.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "marquee.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marquee")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "marquee", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "cache")
	}
}

// LoadConfig loads configuration from a local .env, config.yaml and
// MARQUEE_* environment variables (highest precedence)
func LoadConfig() (*Config, error) {
	// A missing .env is fine
	_ = godotenv.Load()
	return LoadConfigFrom(defaultConfigPath(), ".")
}

// LoadConfigFrom loads config.yaml from the first directory that has one
func LoadConfigFrom(dirs ...string) (*Config, error) {
	v := newViper(DefaultConfig())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	for i, cat := range cfg.Browse.Categories {
		cfg.Browse.Categories[i] = domain.NormalizeCategory(cat)
	}
	return cfg, nil
}

// newViper returns a viper instance seeded with cfg as defaults. Every key
// needs a default for AutomaticEnv to see its MARQUEE_* override.
func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range settings(cfg) {
		v.SetDefault(key, value)
	}
	return v
}

// settings flattens cfg into viper keys (snake_case)
func settings(cfg *Config) map[string]any {
	return map[string]any{
		"tmdb.api_key":        cfg.TMDB.APIKey,
		"tmdb.base_url":       cfg.TMDB.BaseURL,
		"tmdb.image_base_url": cfg.TMDB.ImageBaseURL,
		"tmdb.language":       cfg.TMDB.Language,
		"tmdb.timeout":        cfg.TMDB.Timeout,
		"cache.driver":        string(cfg.Cache.Driver),
		"cache.dir":           cfg.Cache.Dir,
		"browse.categories":   cfg.Browse.Categories,
		"browse.shuffle":      cfg.Browse.Shuffle,
		"viewer.command":      cfg.Viewer.Command,
		"viewer.args":         cfg.Viewer.Args,
		"logging.file":        cfg.Logging.File,
		"logging.level":       cfg.Logging.Level,
	}
}

// SaveConfig saves the configuration to config.yaml in the default config directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(cfg, defaultConfigPath())
}

// SaveConfigTo saves the configuration to config.yaml under dir
func SaveConfigTo(cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	for key, value := range settings(cfg) {
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		v.Set(key, value)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClearCache removes all cached data under dir
func ClearCache(dir string) error {
	if dir == "" {
		dir = defaultCachePath()
	}
	if err := os.RemoveAll(expandHome(dir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetCachePath returns the default cache directory path
func GetCachePath() string {
	return defaultCachePath()
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
