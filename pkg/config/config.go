// Package config loads settings from defaults, a YAML file, a .env file and
// the environment, in increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/angelospk/subsubs/internal/constants"
	"github.com/angelospk/subsubs/pkg/core/history"
	"github.com/angelospk/subsubs/pkg/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys
const (
	KeyOSAPIKey    = "opensubtitles.apikey"
	KeyOSToken     = "opensubtitles.token"
	KeyOSUserAgent = "opensubtitles.useragent"
	KeyOSBaseURL   = "opensubtitles.baseurl"
	KeyOSLanguages = "opensubtitles.languages"
	KeyOSTimeout   = "opensubtitles.timeout"

	// EnvPrefix prefixes every environment override, e.g. SUBSUBS_SERVER_PORT.
	EnvPrefix = "SUBSUBS"
	// LegacyAPIKeyEnv is also accepted for the API key.
	LegacyAPIKeyEnv = "OPENSUBTITLES_API_KEY"
)

// Config holds all application configuration.
type Config struct {
	OpenSubtitles OpenSubtitlesConfig `mapstructure:"opensubtitles"`
	Server        ServerConfig        `mapstructure:"server"`
	History       HistoryConfig       `mapstructure:"history"`
	Logging       logging.Config      `mapstructure:"logging"`
}

// OpenSubtitlesConfig holds upstream API settings. APIKey stays server-side.
type OpenSubtitlesConfig struct {
	APIKey    string        `mapstructure:"apikey"`
	Token     string        `mapstructure:"token"`
	UserAgent string        `mapstructure:"useragent"`
	BaseURL   string        `mapstructure:"baseurl"`
	Languages string        `mapstructure:"languages"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// HistoryConfig selects and configures the history store provider.
type HistoryConfig struct {
	Provider string      `mapstructure:"provider"`
	Path     string      `mapstructure:"path"`
	Redis    RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds settings for the "redis" history provider.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// Load reads configuration. configPath may be empty, in which case config.yaml is
// looked up in ., ./configs and $HOME/.subsubs. A .env file in the working
// directory is loaded first; variables already set in the environment win.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.subsubs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(KeyOSAPIKey, EnvPrefix+"_OPENSUBTITLES_APIKEY", LegacyAPIKeyEnv); err != nil {
		return nil, fmt.Errorf("failed to bind API key environment: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.OpenSubtitles.APIKey = strings.TrimSpace(cfg.OpenSubtitles.APIKey)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyOSAPIKey, "")
	v.SetDefault(KeyOSToken, "")
	v.SetDefault(KeyOSUserAgent, constants.DefaultUserAgent)
	v.SetDefault(KeyOSBaseURL, constants.DefaultBaseURL)
	v.SetDefault(KeyOSLanguages, "")
	v.SetDefault(KeyOSTimeout, constants.DefaultTimeout)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("history.provider", "sqlite")
	v.SetDefault("history.path", "./data/subsubs.db")
	v.SetDefault("history.redis.address", "")
	v.SetDefault("history.redis.password", "")
	v.SetDefault("history.redis.db", 0)
	v.SetDefault("history.redis.key", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ProviderConfig converts the history settings for history.New.
func (c *HistoryConfig) ProviderConfig() history.ProviderConfig {
	return history.ProviderConfig{
		Path:          c.Path,
		RedisAddress:  c.Redis.Address,
		RedisPassword: c.Redis.Password,
		RedisDB:       c.Redis.DB,
		RedisKey:      c.Redis.Key,
	}
}
