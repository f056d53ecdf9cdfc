// Package remote stores the clinic snapshot on a shared backend, one record
// per account, split into four parts.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/harentsoaR/dentist-sync/internal/auth"
	"github.com/harentsoaR/dentist-sync/internal/models"
)

// Backend persists snapshots keyed by user id.
type Backend interface {
	// Load returns nil, nil when the user has no record.
	Load(ctx context.Context, userID string) (*models.Snapshot, error)
	Save(ctx context.Context, userID string, snap *models.Snapshot) error
	Ping(ctx context.Context) error
}

// Users resolves the account of the current session.
type Users interface {
	UserID(ctx context.Context) (string, error)
}

// Store scopes a Backend to the signed-in user.
type Store struct {
	backend Backend
	users   Users
	logger  *log.Logger
}

// NewStore returns a Store over backend. If logger is nil, a default logger
// writing to stderr is used.
func NewStore(backend Backend, users Users, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(os.Stderr, "[remote] ", log.LstdFlags)
	}
	return &Store{backend: backend, users: users, logger: logger}
}

// Load returns the current user's snapshot. Without a session, or when the
// user has no record yet, it returns nil, nil.
func (s *Store) Load(ctx context.Context) (*models.Snapshot, error) {
	uid, err := s.users.UserID(ctx)
	if errors.Is(err, auth.ErrNotAuthenticated) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap, err := s.backend.Load(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load remote snapshot: %w", err)
	}
	return snap, nil
}

// Save writes snap as the current user's record.
func (s *Store) Save(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil {
		return errors.New("save: nil snapshot")
	}
	uid, err := s.users.UserID(ctx)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, uid, snap); err != nil {
		return fmt.Errorf("save remote snapshot: %w", err)
	}
	return nil
}

// Exists reports whether the current user already has a record.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return false, err
	}
	return snap != nil, nil
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// decodeJSONPart decodes a part stored as JSON text. Empty or unreadable
// input yields the zero value.
func decodeJSONPart[T any](logger *log.Logger, field string, data []byte) T {
	var v T
	if len(data) == 0 {
		return v
	}
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Printf("WARNING: unreadable %s, using defaults: %v", field, err)
		var zero T
		return zero
	}
	return v
}
