// Package sqlite provides a sqlite-backed session store adapter. Each patch
// is applied inside a single transaction against the freshest row, and
// sqlite's single-writer connection serializes commits per session. Change
// notification is in-process: committed records are fanned out to
// subscribers opened on this store instance.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/scrumdeck/internal/deck"
	"github.com/abrezinsky/scrumdeck/internal/models"
	"github.com/abrezinsky/scrumdeck/internal/store"
)

// Store is the sqlite adapter.
type Store struct {
	db *sql.DB

	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

var _ store.Store = (*Store)(nil)

type subscriber struct {
	ch   chan *models.Session
	saw  atomic.Bool
	once sync.Once
}

func (s *subscriber) push(snap *models.Session) {
	if snap != nil {
		s.saw.Store(true)
	}
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// SQLite works best with a single connection; it also makes every
	// transaction a serialized commit point.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, subs: make(map[string]map[*subscriber]struct{})}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			selected_deck TEXT NOT NULL,
			users TEXT NOT NULL,
			votes TEXT NOT NULL,
			revealed INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	return err
}

// Create writes a brand new session record.
func (s *Store) Create(ctx context.Context, session *models.Session) error {
	rec := store.Normalize(session.Clone(), deck.Default)

	deckJSON, usersJSON, votesJSON, err := marshalFields(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, name, selected_deck, users, votes, revealed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Name, deckJSON, usersJSON, votesJSON, rec.Revealed, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	s.publish(rec.ID, rec)
	return nil
}

// Get returns the current record, or store.ErrNotFound.
func (s *Store) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, selected_deck, users, votes, revealed, created_at, updated_at
		FROM sessions WHERE id = ?
	`, sessionID)
	return scanSession(row)
}

// Apply commits a partial update in one transaction against the freshest
// row. Only fields present in the patch are written back.
func (s *Store) Apply(ctx context.Context, sessionID string, patch store.Patch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT id, name, selected_deck, users, votes, revealed, created_at, updated_at
		FROM sessions WHERE id = ?
	`, sessionID)
	rec, err := scanSession(row)
	if err != nil {
		return err
	}

	if patch.Users != nil {
		rec.Users = append([]models.User{}, *patch.Users...)
	}
	if patch.Votes != nil {
		rec.Votes = append([]models.Vote{}, *patch.Votes...)
	}
	if patch.Revealed != nil {
		rec.Revealed = *patch.Revealed
	}
	if patch.SelectedDeck != nil {
		rec.SelectedDeck = models.CloneDeck(*patch.SelectedDeck)
	}
	if patch.UpdatedAt > rec.UpdatedAt {
		rec.UpdatedAt = patch.UpdatedAt
	} else {
		rec.UpdatedAt++
	}

	deckJSON, usersJSON, votesJSON, err := marshalFields(rec)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE sessions
		SET selected_deck = ?, users = ?, votes = ?, revealed = ?, updated_at = ?
		WHERE id = ?
	`, deckJSON, usersJSON, votesJSON, rec.Revealed, rec.UpdatedAt, sessionID)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.publish(sessionID, rec)
	return nil
}

// Subscribe opens a live feed starting with the current record. Change
// delivery covers commits made through this store instance.
func (s *Store) Subscribe(ctx context.Context, sessionID string) (*store.Subscription, error) {
	sub := &subscriber{ch: make(chan *models.Session, 1)}

	// Registration, the initial read, and the initial push all happen under
	// the fan-out mutex. A commit racing this either lands before the read or
	// blocks in publish until the initial snapshot is delivered, so the
	// subscriber can never be seeded with a record older than a published
	// one it missed.
	s.mu.Lock()
	if s.subs[sessionID] == nil {
		s.subs[sessionID] = make(map[*subscriber]struct{})
	}
	s.subs[sessionID][sub] = struct{}{}

	current, err := s.Get(ctx, sessionID)
	if err != nil && err != store.ErrNotFound {
		delete(s.subs[sessionID], sub)
		if len(s.subs[sessionID]) == 0 {
			delete(s.subs, sessionID)
		}
		s.mu.Unlock()
		return nil, err
	}
	sub.push(current)
	s.mu.Unlock()

	cancel := func() {
		sub.once.Do(func() {
			s.mu.Lock()
			delete(s.subs[sessionID], sub)
			if len(s.subs[sessionID]) == 0 {
				delete(s.subs, sessionID)
			}
			s.mu.Unlock()
			close(sub.ch)
		})
	}
	return store.NewSubscription(sub.ch, &sub.saw, cancel), nil
}

// Delete removes the record permanently. Absent sessions are a no-op.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.publish(sessionID, nil)
	}
	return nil
}

func (s *Store) publish(sessionID string, rec *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs[sessionID] {
		sub.push(rec.Clone())
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSession decodes one row and normalizes missing optional fields to
// their documented defaults before the record reaches the engine.
func scanSession(row rowScanner) (*models.Session, error) {
	var (
		rec       models.Session
		deckJSON  string
		usersJSON string
		votesJSON string
	)
	err := row.Scan(&rec.ID, &rec.Name, &deckJSON, &usersJSON, &votesJSON, &rec.Revealed, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(deckJSON), &rec.SelectedDeck); err != nil {
		return nil, fmt.Errorf("decoding deck for session %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(usersJSON), &rec.Users); err != nil {
		return nil, fmt.Errorf("decoding users for session %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(votesJSON), &rec.Votes); err != nil {
		return nil, fmt.Errorf("decoding votes for session %s: %w", rec.ID, err)
	}

	return store.Normalize(&rec, deck.Default), nil
}

func marshalFields(rec *models.Session) (deckJSON, usersJSON, votesJSON []byte, err error) {
	if deckJSON, err = json.Marshal(rec.SelectedDeck); err != nil {
		return nil, nil, nil, err
	}
	if usersJSON, err = json.Marshal(rec.Users); err != nil {
		return nil, nil, nil, err
	}
	if votesJSON, err = json.Marshal(rec.Votes); err != nil {
		return nil, nil, nil, err
	}
	return deckJSON, usersJSON, votesJSON, nil
}

func isUniqueViolation(err error) bool {
	// mattn/go-sqlite3 reports constraint failures in the error text; match
	// loosely to avoid depending on driver error types.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
