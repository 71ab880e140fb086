package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SearchIndex is a sqlite-backed full transcript index. Saving a
// session reindexes its messages; Search runs a substring match over
// every indexed session.
type SearchIndex struct {
	db *sql.DB
}

// SearchHit is one matching transcript message.
type SearchHit struct {
	SessionID string
	Title     string
	Role      string
	Content   string
}

// NewSearchIndex opens (or creates) the index database at dbPath.
func NewSearchIndex(ctx context.Context, dbPath string) (*SearchIndex, error) {
	// WAL mode allows a reader while the indexer writes.
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping search index: %w", err)
	}

	idx := &SearchIndex{db: db}
	if err := idx.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize search schema: %w", err)
	}
	return idx, nil
}

// Close closes the database connection.
func (idx *SearchIndex) Close() error {
	return idx.db.Close()
}

func (idx *SearchIndex) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		message_id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		position   INTEGER NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id);
	`
	_, err := idx.db.ExecContext(ctx, schema)
	return err
}

// Index replaces the indexed transcript of one session. Tool-call
// request messages with no text carry nothing searchable and are
// skipped.
func (idx *SearchIndex) Index(ctx context.Context, sess *Session) error {
	if sess.State == nil || sess.State.History == nil {
		return nil
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO sessions (session_id, title, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			title = excluded.title,
			updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, upsert, sess.ID, sess.Title, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to upsert session row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("failed to clear old messages: %w", err)
	}

	insert := `INSERT INTO messages (session_id, position, role, content) VALUES (?, ?, ?, ?)`
	for i, msg := range sess.State.History.All() {
		if msg.Content == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, insert, sess.ID, i, string(msg.Role), msg.Content); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}

	return tx.Commit()
}

// Remove drops a session from the index.
func (idx *SearchIndex) Remove(ctx context.Context, sessionID string) error {
	if _, err := idx.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	_, err := idx.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	return err
}

// Search returns up to limit messages containing the query, newest
// sessions first. Matching is case-insensitive.
func (idx *SearchIndex) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}

	q := `
		SELECT m.session_id, s.title, m.role, m.content
		FROM messages m
		JOIN sessions s ON s.session_id = m.session_id
		WHERE m.content LIKE ? COLLATE NOCASE
		ORDER BY s.updated_at DESC, m.position ASC
		LIMIT ?
	`
	rows, err := idx.db.QueryContext(ctx, q, "%"+query+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search index: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.SessionID, &h.Title, &h.Role, &h.Content); err != nil {
			return nil, fmt.Errorf("failed to scan search hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
