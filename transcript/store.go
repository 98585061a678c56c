// Package transcript persists conversation turns to SQLite so a voice
// session leaves a reviewable record after the process exits.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	model TEXT NOT NULL,
	mode TEXT NOT NULL,
	started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS turns (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id INTEGER NOT NULL REFERENCES sessions(id),
	role TEXT NOT NULL,
	kind TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, created_at);
`

// Turn roles and kinds as stored in the turns table.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"

	KindText       = "text"
	KindTranscript = "transcript"
	KindToolCall   = "tool_call"
	KindToolResult = "tool_result"
)

// Turn is one utterance or tool exchange within a session.
type Turn struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	Role      string    `json:"role"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store wraps *sql.DB for transcript storage. The schema is owned here.
type Store struct {
	db *sql.DB
}

// Open opens the SQLite database at path, creating it and the schema if
// missing.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging transcript database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying transcript schema: %w", err)
	}
	return &Store{db: db}, nil
}

// BeginSession records a new session and returns its id.
func (s *Store) BeginSession(ctx context.Context, model, mode string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (model, mode) VALUES (?, ?)`, model, mode)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}
	return res.LastInsertId()
}

// AppendTurn records one turn in the given session.
func (s *Store) AppendTurn(ctx context.Context, sessionID int64, role, kind, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (session_id, role, kind, content) VALUES (?, ?, ?, ?)`,
		sessionID, role, kind, content)
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

// Turns returns the session's turns ordered by creation.
func (s *Store) Turns(ctx context.Context, sessionID int64) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, kind, content, created_at
		 FROM turns WHERE session_id = ? ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()
	var out []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Kind, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
