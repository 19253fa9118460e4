// Package store persists propagation snapshots.
//
// A [Snapshot] records the outcome of one propagation session together with
// the state of every node afterwards. Snapshots are written by the CLI
// (run --save) and by the HTTP server after each POST /propagate.
//
// Backends:
//
//   - [NullStore]: discards everything (the default)
//   - [FileStore]: one JSON file per snapshot under a directory
//   - [BadgerStore]: an embedded BadgerDB database
//   - [RedisStore]: JSON values with a TTL, via go-redis
//   - [MongoStore]: one document per snapshot, via the MongoDB driver
//
// Use [Open] to build the backend named in the configuration.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/matzehuels/infection/pkg/config"
)

// ErrNotFound is returned by Get when no snapshot has the requested ID.
var ErrNotFound = errors.New("snapshot not found")

// Store saves and loads snapshots.
type Store interface {
	// Save writes s, replacing any snapshot with the same ID.
	Save(ctx context.Context, s *Snapshot) error
	// Get loads the snapshot with the given ID or returns ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	// Close releases backend resources.
	Close() error
}

// Open builds the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	switch cfg.Backend {
	case "", config.BackendNone:
		return NewNullStore(), nil
	case config.BackendFile:
		dir := cfg.Path
		if dir == "" {
			data, err := config.DataDir()
			if err != nil {
				return nil, fmt.Errorf("resolve data dir: %w", err)
			}
			dir = filepath.Join(data, "snapshots")
		}
		return NewFileStore(dir)
	case config.BackendBadger:
		dir := cfg.Path
		if dir == "" {
			data, err := config.DataDir()
			if err != nil {
				return nil, fmt.Errorf("resolve data dir: %w", err)
			}
			dir = filepath.Join(data, "badger")
		}
		return NewBadgerStore(dir)
	case config.BackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL.Duration,
		})
	case config.BackendMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
}
