// Package storage provides abstractions for session storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tabsplit/internal/models"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Store defines the interface for session storage operations.
// Sessions are working state for one split and are not meant to outlive
// the process; implementations may keep them purely in memory.
type Store interface {
	// CreateSession persists a new session.
	// The session.ID field will be populated by the store if empty.
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves a session by its ID.
	// Returns an error wrapping ErrNotFound if the session does not exist.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// UpdateSession replaces the stored state of an existing session.
	// Returns an error wrapping ErrNotFound if the session does not exist.
	UpdateSession(ctx context.Context, session *models.Session) error

	// DeleteSession removes a session and everything attached to it.
	DeleteSession(ctx context.Context, sessionID string) error

	// PurgeSessionsBefore deletes sessions last updated before cutoff
	// (Unix seconds) and returns how many were removed.
	PurgeSessionsBefore(ctx context.Context, cutoff int64) (int64, error)

	// Close releases any resources held by the store.
	Close() error
}
