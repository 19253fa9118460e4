package store

import (
	"context"

	"github.com/google/uuid"
)

// NullStore is a no-op store that never keeps anything.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// Save does nothing.
func (s *NullStore) Save(ctx context.Context, snap *Snapshot) error {
	return nil
}

// Get always returns ErrNotFound.
func (s *NullStore) Get(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	return nil, ErrNotFound
}

// Close does nothing.
func (s *NullStore) Close() error {
	return nil
}

var _ Store = (*NullStore)(nil)
