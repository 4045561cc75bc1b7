// Package config loads the proctree project configuration.
//
// Settings come from three layers, later ones winning: built-in defaults,
// the project's config.toml and PROCTREE_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// Dir is the per-project state directory.
	Dir = ".proctree"

	FileName = "config.toml"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Clipboard backends.
const (
	ClipboardFile   = "file"
	ClipboardRedis  = "redis"
	ClipboardMemory = "memory"
)

var (
	ErrUnknownDriver    = errors.New("config: unknown store driver")
	ErrUnknownClipboard = errors.New("config: unknown clipboard backend")
)

type Config struct {
	Store     StoreConfig     `toml:"store"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	Log       LogConfig       `toml:"log"`
	Lock      LockConfig      `toml:"lock"`
}

type StoreConfig struct {
	Driver string `toml:"driver"`
	// DSN is a file path for sqlite, a connection string for postgres, a
	// URI for mongo and host:port for redis.
	DSN        string `toml:"dsn"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type ClipboardConfig struct {
	Backend   string        `toml:"backend"`
	Path      string        `toml:"path"`
	RedisAddr string        `toml:"redis_addr"`
	RedisKey  string        `toml:"redis_key"`
	TTL       time.Duration `toml:"ttl"`
}

// LogConfig controls the CLI log output. An empty File logs to stderr.
type LogConfig struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
	MaxAge     int    `toml:"max_age"`
}

type LockConfig struct {
	Path    string        `toml:"path"`
	Timeout time.Duration `toml:"timeout"`
}

// Default returns the configuration for a project rooted at root.
func Default(root string) Config {
	state := filepath.Join(root, Dir)
	return Config{
		Store: StoreConfig{
			Driver:     DriverSQLite,
			DSN:        filepath.Join(state, "proctree.db"),
			Database:   "proctree",
			Collection: "process_groups",
		},
		Clipboard: ClipboardConfig{
			Backend:  ClipboardFile,
			Path:     filepath.Join(state, "clipboard"),
			RedisKey: "proctree:clipboard",
			TTL:      24 * time.Hour,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    1,
			MaxBackups: 2,
			MaxAge:     30,
		},
		Lock: LockConfig{
			Path:    filepath.Join(state, "proctree.lock"),
			Timeout: 5 * time.Second,
		},
	}
}

// Path returns the config file location for the project rooted at root.
func Path(root string) string {
	return filepath.Join(root, Dir, FileName)
}

// Load reads the project configuration rooted at root. A missing file yields
// the defaults. Environment overrides are applied last.
func Load(root string) (Config, error) {
	cfg := Default(root)

	data, err := os.ReadFile(Path(root))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading %s: %w", Path(root), err)
	default:
		var override Config
		if err := toml.Unmarshal(data, &override); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", Path(root), err)
		}
		merge(&cfg, override)
	}

	ApplyEnv(&cfg, os.Getenv)
	return cfg, cfg.Validate()
}

// Save writes cfg as the project configuration rooted at root.
func Save(root string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, Dir), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", Dir, err)
	}
	return os.WriteFile(Path(root), buf.Bytes(), 0o644)
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres, DriverMongo, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Store.Driver)
	}
	switch c.Clipboard.Backend {
	case ClipboardFile, ClipboardRedis, ClipboardMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownClipboard, c.Clipboard.Backend)
	}
	return nil
}

// merge applies the non-zero values of override onto base.
func merge(base *Config, override Config) {
	setString(&base.Store.Driver, override.Store.Driver)
	setString(&base.Store.DSN, override.Store.DSN)
	setString(&base.Store.Database, override.Store.Database)
	setString(&base.Store.Collection, override.Store.Collection)

	setString(&base.Clipboard.Backend, override.Clipboard.Backend)
	setString(&base.Clipboard.Path, override.Clipboard.Path)
	setString(&base.Clipboard.RedisAddr, override.Clipboard.RedisAddr)
	setString(&base.Clipboard.RedisKey, override.Clipboard.RedisKey)
	if override.Clipboard.TTL > 0 {
		base.Clipboard.TTL = override.Clipboard.TTL
	}

	setString(&base.Log.File, override.Log.File)
	setString(&base.Log.Level, override.Log.Level)
	if override.Log.MaxSize > 0 {
		base.Log.MaxSize = override.Log.MaxSize
	}
	if override.Log.MaxBackups > 0 {
		base.Log.MaxBackups = override.Log.MaxBackups
	}
	if override.Log.MaxAge > 0 {
		base.Log.MaxAge = override.Log.MaxAge
	}

	setString(&base.Lock.Path, override.Lock.Path)
	if override.Lock.Timeout > 0 {
		base.Lock.Timeout = override.Lock.Timeout
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ApplyEnv overrides cfg from PROCTREE_* variables looked up with getenv.
// Malformed numbers are ignored.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	setString(&cfg.Store.Driver, getenv("PROCTREE_STORE_DRIVER"))
	setString(&cfg.Store.DSN, getenv("PROCTREE_STORE_DSN"))
	setString(&cfg.Clipboard.Backend, getenv("PROCTREE_CLIPBOARD"))
	setString(&cfg.Clipboard.RedisAddr, getenv("PROCTREE_REDIS_ADDR"))
	setString(&cfg.Log.File, getenv("PROCTREE_LOG_FILE"))
	setString(&cfg.Log.Level, getenv("PROCTREE_LOG_LEVEL"))

	if n, err := strconv.Atoi(getenv("PROCTREE_LOG_MAX_SIZE")); err == nil && n > 0 {
		cfg.Log.MaxSize = n
	}
	if n, err := strconv.Atoi(getenv("PROCTREE_LOG_MAX_BACKUPS")); err == nil && n >= 0 {
		cfg.Log.MaxBackups = n
	}
	if n, err := strconv.Atoi(getenv("PROCTREE_LOG_MAX_AGE")); err == nil && n > 0 {
		cfg.Log.MaxAge = n
	}
}
