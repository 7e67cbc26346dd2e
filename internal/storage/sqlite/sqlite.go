// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
//
// By default the database lives in memory (MemoryDSN) so sessions vanish
// with the process. A file path can be given for local debugging.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tabsplit/internal/models"
	"github.com/mmynk/tabsplit/internal/storage"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given DSN (MemoryDSN or a file path).
// It creates parent directories for file databases and runs migrations automatically.
func New(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	if dsn != MemoryDSN {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession persists a new session to the database.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.Session) error {
	// Generate ID and timestamps if not set
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if session.CreatedAt == 0 {
		session.CreatedAt = now
	}
	if session.UpdatedAt == 0 {
		session.UpdatedAt = session.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, ocr_text, subtotal, tip_percentage, tip_amount, total, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.OCRText, session.Subtotal, session.TipPercentage,
		session.TipAmount, session.Total, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	if err := insertChildren(ctx, tx, session); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID, including items, people and assignments.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session := &models.Session{
		Items:       []models.LineItem{},
		People:      []models.Person{},
		Assignments: models.Assignments{},
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, ocr_text, subtotal, tip_percentage, tip_amount, total, created_at, updated_at
		 FROM sessions WHERE id = ?`,
		sessionID,
	).Scan(&session.ID, &session.OCRText, &session.Subtotal, &session.TipPercentage,
		&session.TipAmount, &session.Total, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	// Get items. Each query is drained before the next one starts because
	// the pool holds a single connection.
	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, quantity, name, price FROM items WHERE session_id = ? ORDER BY position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	for itemRows.Next() {
		var item models.LineItem
		if err := itemRows.Scan(&item.ID, &item.Quantity, &item.Name, &item.Price); err != nil {
			itemRows.Close()
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		session.Items = append(session.Items, item)
	}
	itemRows.Close()
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	// Get people
	peopleRows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM people WHERE session_id = ? ORDER BY position",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	for peopleRows.Next() {
		var person models.Person
		if err := peopleRows.Scan(&person.ID, &person.Name); err != nil {
			peopleRows.Close()
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		session.People = append(session.People, person)
	}
	peopleRows.Close()
	if err := peopleRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	// Get assignments
	assignRows, err := s.db.QueryContext(ctx,
		`SELECT a.item_id, a.person_id FROM item_assignments a
		 JOIN items i ON i.id = a.item_id
		 WHERE i.session_id = ?`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer assignRows.Close()

	sharers := make(map[string][]string)
	for assignRows.Next() {
		var itemID, personID string
		if err := assignRows.Scan(&itemID, &personID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		sharers[itemID] = append(sharers[itemID], personID)
	}
	if err := assignRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}
	for itemID, personIDs := range sharers {
		session.Assignments.Set(itemID, personIDs...)
	}

	return session, nil
}

// UpdateSession replaces a session's fields, items, people and assignments.
func (s *SQLiteStore) UpdateSession(ctx context.Context, session *models.Session) error {
	if session.UpdatedAt == 0 {
		session.UpdatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE sessions SET ocr_text = ?, subtotal = ?, tip_percentage = ?, tip_amount = ?, total = ?, updated_at = ?
		 WHERE id = ?`,
		session.OCRText, session.Subtotal, session.TipPercentage, session.TipAmount,
		session.Total, session.UpdatedAt, session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, session.ID)
	}

	// Replace children; assignments cascade with items and people.
	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE session_id = ?", session.ID); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM people WHERE session_id = ?", session.ID); err != nil {
		return fmt.Errorf("failed to delete people: %w", err)
	}
	if err := insertChildren(ctx, tx, session); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteSession removes a session; items, people and assignments cascade.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, sessionID)
	}
	return nil
}

// PurgeSessionsBefore deletes sessions not updated since cutoff.
func (s *SQLiteStore) PurgeSessionsBefore(ctx context.Context, cutoff int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE updated_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// insertChildren writes items, people and the assignments between them.
// Assignments that reference an item or person outside the session are skipped.
func insertChildren(ctx context.Context, tx *sql.Tx, session *models.Session) error {
	items := make(map[string]bool, len(session.Items))
	for i := range session.Items {
		item := &session.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO items (id, session_id, position, quantity, name, price) VALUES (?, ?, ?, ?, ?, ?)",
			item.ID, session.ID, i, item.Quantity, item.Name, item.Price,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		items[item.ID] = true
	}

	people := make(map[string]bool, len(session.People))
	for i := range session.People {
		person := &session.People[i]
		if person.ID == "" {
			person.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO people (id, session_id, position, name) VALUES (?, ?, ?, ?)",
			person.ID, session.ID, i, person.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
		people[person.ID] = true
	}

	for itemID := range session.Assignments {
		if !items[itemID] {
			continue
		}
		for _, personID := range session.Assignments.PersonIDs(itemID) {
			if !people[personID] {
				continue
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, person_id) VALUES (?, ?)",
				itemID, personID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}
	return nil
}
