package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingJWTSecret   = errors.New("auth.jwt_secret is required (set AKILI_JWT_SECRET)")
	ErrInvalidJWTTTL      = errors.New("auth.jwt_ttl_hours must be at least 1")
	ErrInvalidConcurrency = errors.New("ingest.concurrency must be at least 1")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidUploadLimit = errors.New("media.max_upload_bytes must be positive")
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	News       NewsConfig       `yaml:"news"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Media      MediaConfig      `yaml:"media"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	ReaderAddr     string   `yaml:"reader_addr"`
	AdminAddr      string   `yaml:"admin_addr"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret   string `yaml:"jwt_secret"`
	JWTIssuer   string `yaml:"jwt_issuer"`
	JWTTTLHours int    `yaml:"jwt_ttl_hours"`
}

func (a AuthConfig) JWTDuration() time.Duration {
	return time.Duration(a.JWTTTLHours) * time.Hour
}

// NewsConfig points at the RapidAPI news provider. APIKey has no default.
type NewsConfig struct {
	APIURL     string `yaml:"api_url"`
	APIHost    string `yaml:"api_host"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// ClassifierConfig configures the Gemini classifier. An empty APIKey disables
// it and ingestion uses keyword classification only.
type ClassifierConfig struct {
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

type IngestConfig struct {
	Concurrency      int    `yaml:"concurrency"`
	PlaceholderImage string `yaml:"placeholder_image"`
	ReadTime         string `yaml:"read_time"`
	SyncToken        string `yaml:"sync_token"`
}

type MediaConfig struct {
	Dir            string `yaml:"dir"`
	BaseURL        string `yaml:"base_url"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			ReaderAddr:     ":8080",
			AdminAddr:      ":8081",
			TrustedProxies: []string{"127.0.0.1"},
		},
		Auth: AuthConfig{
			JWTIssuer:   "akili",
			JWTTTLHours: 24,
		},
		News: NewsConfig{
			APIURL:     "https://newsnow.p.rapidapi.com/newsv2_top_news",
			APIHost:    "newsnow.p.rapidapi.com",
			TimeoutSec: 15,
		},
		Classifier: ClassifierConfig{
			Model:      "gemini-1.5-flash",
			TimeoutSec: 20,
		},
		Ingest: IngestConfig{
			Concurrency:      4,
			PlaceholderImage: "/api/placeholder/800/500",
			ReadTime:         "5 min read",
		},
		Media: MediaConfig{
			Dir:            "data/media",
			BaseURL:        "/media",
			MaxUploadBytes: 10 << 20,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (if path is non-empty) over the defaults,
// then applies environment overrides. It does not validate; callers pick the
// checks they need.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("AKILI_CONFIG")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&cfg.Database.Path, "AKILI_DB_PATH")
	setString(&cfg.Auth.JWTSecret, "AKILI_JWT_SECRET")
	setString(&cfg.Auth.JWTIssuer, "AKILI_JWT_ISSUER")
	setString(&cfg.News.APIKey, "RAPIDAPI_KEY")
	setString(&cfg.Classifier.APIKey, "GOOGLE_API_KEY")
	setString(&cfg.Ingest.SyncToken, "AKILI_SYNC_TOKEN")
	setString(&cfg.Logging.Level, "AKILI_LOG_LEVEL")
	setString(&cfg.Server.ReaderAddr, "AKILI_READER_ADDR")
	setString(&cfg.Server.AdminAddr, "AKILI_ADMIN_ADDR")
	setString(&cfg.Media.Dir, "AKILI_MEDIA_DIR")

	// if parse fails, keep whatever the file or defaults said
	if v := os.Getenv("AKILI_JWT_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Auth.JWTTTLHours = n
		}
	}
}

// Validate checks settings every binary depends on.
func (c Config) Validate() error {
	if c.Ingest.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	if c.Media.MaxUploadBytes <= 0 {
		return ErrInvalidUploadLimit
	}
	return nil
}

// ValidateAdmin adds the checks the admin server needs on top of Validate.
func (c Config) ValidateAdmin() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	if c.Auth.JWTTTLHours < 1 {
		return ErrInvalidJWTTTL
	}
	return nil
}
