package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// PersonaRecord is a stored persona override for one user.
type PersonaRecord struct {
	ID          string
	UserID      string
	Name        string
	Description string
	CreatedAt   time.Time
}

// SummaryRecord is the latest conversation summary row for one conversation.
type SummaryRecord struct {
	ID             string
	ConversationID string
	Summary        string
	TokensEstimate int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Store wraps a SQLite database holding personas and conversation summaries.
type Store struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS personas (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		name        TEXT NOT NULL,
		description TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_personas_user_name ON personas(user_id, name);

	CREATE TABLE IF NOT EXISTS conversation_summaries (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		summary         TEXT NOT NULL,
		tokens_estimate INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_conversation ON conversation_summaries(conversation_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SavePersona inserts a persona override row for a user.
func (s *Store) SavePersona(ctx context.Context, userID, name, description string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO personas (id, user_id, name, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), userID, name, description, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save persona: %w", err)
	}
	return nil
}

// Persona returns the stored override for (userID, name), or ErrNotFound.
func (s *Store) Persona(ctx context.Context, userID, name string) (*PersonaRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, created_at
		 FROM personas WHERE user_id = ? AND name = ?
		 ORDER BY created_at DESC LIMIT 1`, userID, name)

	var rec PersonaRecord
	var createdAt string
	var description sql.NullString
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Name, &description, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query persona: %w", err)
	}
	rec.Description = description.String
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &rec, nil
}

// SaveSummary upserts the conversation summary: the most recent row for the
// conversation is updated in place if one exists, otherwise a new row is
// inserted. Retrieval therefore always sees exactly the last saved text.
func (s *Store) SaveSummary(ctx context.Context, conversationID, summary string, tokensEstimate int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(ctx,
		`UPDATE conversation_summaries SET summary = ?, tokens_estimate = ?, updated_at = ?
		 WHERE id = (
			SELECT id FROM conversation_summaries
			WHERE conversation_id = ? ORDER BY created_at DESC LIMIT 1
		 )`,
		summary, tokensEstimate, now, conversationID)
	if err != nil {
		return fmt.Errorf("update summary: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversation_summaries (id, conversation_id, summary, tokens_estimate, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), conversationID, summary, tokensEstimate, now, now)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

// Summary returns the latest summary text for a conversation, or ErrNotFound.
func (s *Store) Summary(ctx context.Context, conversationID string) (string, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT summary FROM conversation_summaries
		 WHERE conversation_id = ? ORDER BY created_at DESC LIMIT 1`, conversationID)

	var summary string
	if err := row.Scan(&summary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query summary: %w", err)
	}
	return summary, nil
}

// SummaryRecordFor returns the full latest summary row for a conversation.
func (s *Store) SummaryRecordFor(ctx context.Context, conversationID string) (*SummaryRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, conversation_id, summary, tokens_estimate, created_at, updated_at
		 FROM conversation_summaries
		 WHERE conversation_id = ? ORDER BY created_at DESC LIMIT 1`, conversationID)

	var rec SummaryRecord
	var createdAt, updatedAt string
	if err := row.Scan(&rec.ID, &rec.ConversationID, &rec.Summary, &rec.TokensEstimate, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query summary: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &rec, nil
}
