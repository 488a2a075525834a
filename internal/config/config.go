package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
	BackendFS     = "fs"
	BackendRedis  = "redis"
)

type Config struct {
	LogLevel  string          `yaml:"log_level" env:"TELEGRAME_LOG_LEVEL"`
	Directory DirectoryConfig `yaml:"directory"`
	Blob      BlobConfig      `yaml:"blob"`
	Auth      AuthConfig      `yaml:"auth"`
	Search    SearchConfig    `yaml:"search"`
	Telegram  TelegramConfig  `yaml:"telegram"`
}

type DirectoryConfig struct {
	Backend       string `yaml:"backend" env:"TELEGRAME_DIRECTORY_BACKEND"`
	SQLitePath    string `yaml:"sqlite_path" env:"TELEGRAME_DIRECTORY_SQLITE_PATH"`
	MongoURI      string `yaml:"mongo_uri" env:"TELEGRAME_MONGO_URI"`
	MongoDatabase string `yaml:"mongo_database" env:"TELEGRAME_MONGO_DATABASE"`
}

type BlobConfig struct {
	Backend       string `yaml:"backend" env:"TELEGRAME_BLOB_BACKEND"`
	Dir           string `yaml:"dir" env:"TELEGRAME_BLOB_DIR"`
	RedisAddr     string `yaml:"redis_addr" env:"TELEGRAME_REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"TELEGRAME_REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"TELEGRAME_REDIS_DB"`
}

type AuthConfig struct {
	SQLitePath    string `yaml:"sqlite_path" env:"TELEGRAME_AUTH_SQLITE_PATH"`
	SessionPath   string `yaml:"session_path" env:"TELEGRAME_SESSION_PATH"`
	SessionSecret string `yaml:"session_secret" env:"TELEGRAME_SESSION_SECRET"`
	// Providers maps a sign-in provider to the secret its tokens are
	// signed with.
	Providers map[string]string `yaml:"providers" env:"TELEGRAME_AUTH_PROVIDERS"`
}

type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce" env:"TELEGRAME_SEARCH_DEBOUNCE"`
	PageSize int           `yaml:"page_size" env:"TELEGRAME_SEARCH_PAGE_SIZE"`
}

type TelegramConfig struct {
	APIID   int    `yaml:"api_id" env:"TELEGRAME_TELEGRAM_API_ID"`
	APIHash string `yaml:"api_hash" env:"TELEGRAME_TELEGRAM_API_HASH"`
}

func Dir() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		cfgDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(cfgDir, "telegrame")
}

// Load reads the config file at path, applies TELEGRAME_* environment
// overrides and fills defaults. Relative data paths live next to the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := finish(&cfg, filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file exists, still honouring
// environment overrides.
func Default(dir string) (*Config, error) {
	var cfg Config
	if err := finish(&cfg, dir); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func finish(cfg *Config, dir string) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults(dir)
	return cfg.Validate()
}

func (c *Config) applyDefaults(dir string) {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Directory.Backend == "" {
		c.Directory.Backend = BackendSQLite
	}
	c.Directory.SQLitePath = resolve(dir, c.Directory.SQLitePath, "directory.db")
	if c.Directory.MongoDatabase == "" {
		c.Directory.MongoDatabase = "telegrame"
	}
	if c.Blob.Backend == "" {
		c.Blob.Backend = BackendFS
	}
	c.Blob.Dir = resolve(dir, c.Blob.Dir, "blobs")
	c.Auth.SQLitePath = resolve(dir, c.Auth.SQLitePath, "accounts.db")
	c.Auth.SessionPath = resolve(dir, c.Auth.SessionPath, "session.jwt")
	if c.Search.Debounce == 0 {
		c.Search.Debounce = 500 * time.Millisecond
	}
	if c.Search.PageSize == 0 {
		c.Search.PageSize = 15
	}
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	switch c.Directory.Backend {
	case BackendMemory, BackendSQLite:
	case BackendMongo:
		if c.Directory.MongoURI == "" {
			errs = append(errs, errors.New("directory.mongo_uri is required for the mongo backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown directory backend %q", c.Directory.Backend))
	}
	switch c.Blob.Backend {
	case BackendFS:
	case BackendRedis:
		if c.Blob.RedisAddr == "" {
			errs = append(errs, errors.New("blob.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown blob backend %q", c.Blob.Backend))
	}
	if c.Search.Debounce < 0 {
		errs = append(errs, errors.New("search.debounce must not be negative"))
	}
	if c.Search.PageSize < 0 {
		errs = append(errs, errors.New("search.page_size must not be negative"))
	}
	return errors.Join(errs...)
}

// ProviderKeys returns the provider secrets as byte slices.
func (c AuthConfig) ProviderKeys() map[string][]byte {
	keys := make(map[string][]byte, len(c.Providers))
	for name, secret := range c.Providers {
		if secret != "" {
			keys[name] = []byte(secret)
		}
	}
	return keys
}

func resolve(dir, path, def string) string {
	if path == "" {
		path = def
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
