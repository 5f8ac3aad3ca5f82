package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FLIPCALC_BACKEND_URL.
const EnvPrefix = "FLIPCALC"

// Settings is the application configuration, read from an optional
// flipcalc.yaml, the environment and an optional .env file.
type Settings struct {
	Logging        LoggingSettings `mapstructure:"logging"`
	Backend        BackendSettings `mapstructure:"backend"`
	Cache          CacheSettings   `mapstructure:"cache"`
	Server         ServerSettings  `mapstructure:"server"`
	Engine         EngineSettings  `mapstructure:"engine"`
	ActiveAnalysis string          `mapstructure:"active_analysis"`

	// path the settings were read from, if any
	file string
}

// LoggingSettings configures the zap logger.
type LoggingSettings struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputFile string `mapstructure:"output_file"`
}

// BackendSettings locates the REST backend holding analyses and simulations.
type BackendSettings struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheSettings selects the backend response cache.
type CacheSettings struct {
	Type          string        `mapstructure:"type"`
	TTL           time.Duration `mapstructure:"ttl"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// EngineSettings tunes the calculation engine.
type EngineSettings struct {
	MaxMonthsToSell  int    `mapstructure:"max_months_to_sell"`
	SuggestionMethod string `mapstructure:"suggestion_method"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output_file", "")

	v.SetDefault("backend.url", "")
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.timeout", 10*time.Second)

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.max_body_bytes", int64(1<<20))

	v.SetDefault("engine.max_months_to_sell", 1200)
	v.SetDefault("engine.suggestion_method", "mean")

	v.SetDefault("active_analysis", "")
}

// LoadDotEnv loads .env from the working directory, then its parent. A
// missing file is not an error.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil {
		err = godotenv.Load(filepath.Join("..", ".env"))
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// LoadSettings reads settings from path, or from flipcalc.yaml in the
// working directory or ~/.flipcalc when path is empty. Environment
// variables (FLIPCALC_SECTION_KEY) override the file.
func LoadSettings(path string) (*Settings, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("flipcalc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := DefaultConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}
	s.file = v.ConfigFileUsed()

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DefaultConfigDir returns ~/.flipcalc.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".flipcalc"), nil
}

// File returns the settings file that was read, or "".
func (s *Settings) File() string { return s.file }

// Validate checks enumerated values and bounds.
func (s *Settings) Validate() error {
	switch strings.ToLower(s.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s", s.Logging.Format)
	}
	if _, err := ParseLevel(s.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(s.Cache.Type) {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("invalid cache type: %s (expected memory, redis or none)", s.Cache.Type)
	}
	switch strings.ToLower(s.Engine.SuggestionMethod) {
	case "mean", "median":
	default:
		return fmt.Errorf("invalid suggestion method: %s (expected mean or median)", s.Engine.SuggestionMethod)
	}
	if s.Engine.MaxMonthsToSell <= 0 {
		return fmt.Errorf("engine.max_months_to_sell must be positive")
	}
	if s.Server.RateLimit < 0 || s.Server.RateBurst < 0 {
		return fmt.Errorf("server rate limit settings cannot be negative")
	}
	return nil
}

// SaveActiveAnalysis records id as the active analysis in the settings file,
// creating ~/.flipcalc/flipcalc.yaml when no file was read.
func (s *Settings) SaveActiveAnalysis(id string) (string, error) {
	path := s.file
	if path == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return "", err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		path = filepath.Join(dir, "flipcalc.yaml")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}
	v.Set("active_analysis", id)
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	s.ActiveAnalysis = id
	s.file = path
	return path, nil
}
