// Package config loads the infection configuration file.
//
// Configuration is TOML. Every field has a default, so a missing file is not
// an error; callers layer command-line flags on top of the loaded values.
//
//	[propagation]
//	policy    = "limited"
//	version   = 2.0
//	max_count = 15
//	tokens    = "counter"
//
//	[store]
//	backend = "file"
//
// The default location follows the XDG convention:
// $XDG_CONFIG_HOME/infection/config.toml, or ~/.config/infection/config.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/infection/pkg/errors"
	"github.com/matzehuels/infection/pkg/graph"
	"github.com/matzehuels/infection/pkg/propagate"
)

// appName is used for configuration and data directories.
const appName = "infection"

// Token source names.
const (
	TokensCounter = "counter"
	TokensRandom  = "random"
)

// Store backend names.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the root of the configuration file.
type Config struct {
	Propagation Propagation `toml:"propagation"`
	Store       Store       `toml:"store"`
	Server      Server      `toml:"server"`
}

// Propagation holds engine defaults.
type Propagation struct {
	Policy   string  `toml:"policy"`    // all, limited or atomic
	Version  float64 `toml:"version"`   // version written onto infected nodes
	MaxCount int     `toml:"max_count"` // negative means unlimited (not allowed for atomic)
	Tokens   string  `toml:"tokens"`    // counter or random
	Seed     uint64  `toml:"seed"`      // seed for the random token source
}

// Store selects and configures the snapshot backend.
type Store struct {
	Backend         string   `toml:"backend"`
	Path            string   `toml:"path"`
	RedisAddr       string   `toml:"redis_addr"`
	RedisPassword   string   `toml:"redis_password"`
	RedisDB         int      `toml:"redis_db"`
	RedisTTL        Duration `toml:"redis_ttl"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"` // serve Prometheus metrics at /metrics
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Propagation: Propagation{
			Policy:   string(propagate.PolicyAll),
			Version:  2.0,
			MaxCount: -1,
			Tokens:   TokensCounter,
			Seed:     42,
		},
		Store: Store{
			Backend:         BackendNone,
			RedisAddr:       "localhost:6379",
			RedisTTL:        Duration{24 * time.Hour},
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   appName,
			MongoCollection: "snapshots",
		},
		Server: Server{
			Addr:    ":8080",
			Metrics: true,
		},
	}
}

// DefaultPath returns the XDG configuration file location.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DataDir returns the XDG data directory used by the file store.
func DataDir() (string, error) {
	if home := os.Getenv("XDG_DATA_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// Load reads the file at path, or the default location when path is empty.
// A missing file at the default location yields Default(); a missing file
// that was named explicitly is an error.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	def, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(def); os.IsNotExist(err) {
		return Default(), nil
	}
	return LoadFile(def)
}

// LoadFile decodes path over the defaults and validates the result.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	p, err := propagate.ParsePolicy(c.Propagation.Policy)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPolicy, err, "propagation.policy")
	}
	c.Propagation.Policy = string(p)
	if p == propagate.PolicyAtomic && c.Propagation.MaxCount < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "propagation.max_count must be >= 0 for the atomic policy, got %d", c.Propagation.MaxCount)
	}
	if err := errors.ValidateVersion(c.Propagation.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "propagation.version")
	}

	switch c.Propagation.Tokens {
	case TokensCounter, TokensRandom:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "propagation.tokens must be %q or %q, got %q", TokensCounter, TokensRandom, c.Propagation.Tokens)
	}

	switch c.Store.Backend {
	case BackendNone, BackendFile, BackendBadger:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Store.MongoURI == "" || c.Store.MongoDatabase == "" || c.Store.MongoCollection == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri, mongo_database and mongo_collection are required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store.backend %q", c.Store.Backend)
	}
	return nil
}

// TokenSource builds the configured session token source for g. The
// counter setting uses g's session counter.
func (p Propagation) TokenSource(g *graph.Graph) propagate.TokenSource {
	if p.Tokens == TokensRandom {
		return propagate.NewRandom(p.Seed)
	}
	return propagate.NewSequence(g)
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
