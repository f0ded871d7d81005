// Package config handles the XDG configuration directory, file paths and
// environment settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "todoboard"

	// TokenFile is the stored token filename (file token store).
	TokenFile = "token.json"

	// DatabaseFile is the SQLite settings database (sqlite token store).
	DatabaseFile = "todoboard.db"

	// EnvFile is the optional dotenv file inside the config directory.
	EnvFile = ".env"

	// DefaultAPIURL is used when TODOBOARD_API_URL is not set.
	DefaultAPIURL = "http://localhost:8000"
)

// Token store kinds.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Environment keys.
const (
	EnvAPIURL                  = "TODOBOARD_API_URL"
	EnvTokenStore              = "TODOBOARD_TOKEN_STORE"
	EnvTimeout                 = "TODOBOARD_TIMEOUT"
	EnvKeepTokenOnNetworkError = "TODOBOARD_KEEP_TOKEN_ON_NETWORK_ERROR"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// APIURL is the base URL of the REST backend.
	APIURL string

	// TokenStore selects where the bearer token is persisted.
	TokenStore string

	// Timeout bounds each HTTP request. Zero means transport defaults.
	Timeout time.Duration

	// KeepTokenOnNetworkError keeps the persisted token when the identity
	// check fails for a network reason instead of an auth rejection.
	KeepTokenOnNetworkError bool

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Stdin is read by commands that prompt (confirmations, passwords).
	Stdin io.Reader
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todoboard or $HOME/.config/todoboard.
// Settings come from the process environment, falling back to the .env file
// in the config directory.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:        dir,
		APIURL:     DefaultAPIURL,
		TokenStore: StoreFile,
	}

	fileEnv, err := readEnvFile(filepath.Join(dir, EnvFile))
	if err != nil {
		return nil, err
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(fileEnv[key])
	}

	if err := cfg.apply(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(lookup func(string) string) error {
	if v := lookup(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if err := validateAPIURL(c.APIURL); err != nil {
		return err
	}

	if v := lookup(EnvTokenStore); v != "" {
		c.TokenStore = strings.ToLower(v)
	}
	switch c.TokenStore {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("invalid %s: %s", EnvTokenStore, c.TokenStore)
	}

	if v := lookup(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid %s: %s", EnvTimeout, v)
		}
		c.Timeout = d
	}

	if v := lookup(EnvKeepTokenOnNetworkError); v != "" {
		b, ok := parseBool(v)
		if !ok {
			return fmt.Errorf("invalid %s: %s", EnvKeepTokenOnNetworkError, v)
		}
		c.KeepTokenOnNetworkError = b
	}
	return nil
}

// SetAPIURL overrides the backend URL (--api flag).
func (c *Config) SetAPIURL(raw string) error {
	if err := validateAPIURL(raw); err != nil {
		return err
	}
	c.APIURL = raw
	return nil
}

func validateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api url: %s", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api url: %s", raw)
	}
	return nil
}

// readEnvFile returns the key/value pairs of a dotenv file, or nil if it
// does not exist.
func readEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return env, nil
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the stored token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// DatabasePath returns the path to the SQLite settings database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Dir, DatabaseFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
