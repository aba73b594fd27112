package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ashureev/rasman/internal/domain"
	"github.com/ashureev/rasman/internal/shared"
	_ "modernc.org/sqlite"
)

const settingsRowID = 1

var messageColumns = []string{"id", "from_name", "to_name", "message", "result", "state", "sent_at"}

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	writeMu sync.Mutex // serializes writes to avoid SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS server_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		base_url TEXT NOT NULL,
		port TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sent_messages (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		from_name TEXT NOT NULL,
		to_name TEXT NOT NULL,
		message TEXT NOT NULL,
		result TEXT NOT NULL,
		state TEXT NOT NULL,
		sent_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// GetSettings returns the connection settings, or nil if none exist yet.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*domain.ServerSettings, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT base_url, port, updated_at FROM server_settings WHERE id = ?`, settingsRowID)

	var settings domain.ServerSettings
	var updatedAt int64
	err := row.Scan(&settings.BaseURL, &settings.Port, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan settings row: %w", err)
	}
	settings.UpdatedAt = time.Unix(updatedAt, 0)
	return &settings, nil
}

// EnsureSettings creates the settings row from seed if it does not exist.
func (s *SQLiteStore) EnsureSettings(ctx context.Context, seed domain.ServerSettings) (*domain.ServerSettings, error) {
	err := s.write(ctx, "ensure settings", func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO server_settings (id, base_url, port, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO NOTHING`,
			settingsRowID, seed.BaseURL, seed.Port, time.Now().Unix())
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetSettings(ctx)
}

// SaveSettings overwrites the single settings row.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings *domain.ServerSettings) error {
	now := time.Now()
	err := s.write(ctx, "save settings", func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO server_settings (id, base_url, port, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				base_url = excluded.base_url,
				port = excluded.port,
				updated_at = excluded.updated_at`,
			settingsRowID, settings.BaseURL, settings.Port, now.Unix())
		return err
	})
	if err != nil {
		return err
	}
	settings.UpdatedAt = time.Unix(now.Unix(), 0)
	return nil
}

// InsertSentMessage appends a record to the send history.
func (s *SQLiteStore) InsertSentMessage(ctx context.Context, msg *domain.SentMessage) error {
	query, args, err := sq.Insert("sent_messages").
		Columns(messageColumns...).
		Values(msg.ID, msg.From, msg.To, msg.Message, msg.Result, string(msg.State), msg.Timestamp.UnixMilli()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	return s.write(ctx, "insert sent message", func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// ResolveSentMessage moves a pending record to a terminal state. The update is
// keyed by ID and only applies while the row is still pending.
func (s *SQLiteStore) ResolveSentMessage(ctx context.Context, id string, state domain.SendState, result string) error {
	if state == domain.SendPending {
		return fmt.Errorf("resolve sent message %s: target state must be terminal", id)
	}

	query, args, err := sq.Update("sent_messages").
		Set("state", string(state)).
		Set("result", result).
		Where(sq.Eq{"id": id, "state": string(domain.SendPending)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	var rows int64
	err = s.write(ctx, "resolve sent message", func() error {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		rows, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	existing, err := s.GetSentMessage(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("resolve %s: %w", id, ErrMessageNotFound)
	}
	slog.Warn("ResolveSentMessage affected 0 rows", "id", id, "state", existing.State)
	return fmt.Errorf("resolve %s: %w", id, ErrMessageResolved)
}

// GetSentMessage retrieves a record by its ID, or nil if it does not exist.
func (s *SQLiteStore) GetSentMessage(ctx context.Context, id string) (*domain.SentMessage, error) {
	query, args, err := sq.Select(messageColumns...).
		From("sent_messages").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	msg, err := scanMessage(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan sent message: %w", err)
	}
	return msg, nil
}

// ListSentMessages returns up to limit of the most recent records in insertion order.
func (s *SQLiteStore) ListSentMessages(ctx context.Context, limit int) ([]*domain.SentMessage, error) {
	builder := sq.Select(messageColumns...).
		From("sent_messages").
		OrderBy("seq DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sent messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close sent messages rows", "error", closeErr)
		}
	}()

	var msgs []*domain.SentMessage
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sent message row: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sent messages: %w", err)
	}

	slices.Reverse(msgs)
	return msgs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*domain.SentMessage, error) {
	var msg domain.SentMessage
	var state string
	var sentAt int64
	if err := row.Scan(&msg.ID, &msg.From, &msg.To, &msg.Message, &msg.Result, &state, &sentAt); err != nil {
		return nil, err
	}
	msg.State = domain.SendState(state)
	msg.Timestamp = time.UnixMilli(sentAt)
	return &msg, nil
}

// write runs fn under the write lock, retrying with exponential backoff while
// SQLite reports the database as busy or locked.
func (s *SQLiteStore) write(ctx context.Context, op string, fn func() error) error {
	const maxRetries = 3
	baseDelay := 100 * time.Millisecond

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var err error
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || i == maxRetries-1 {
			break
		}

		delay := baseDelay * time.Duration(1<<i)
		slog.Debug("SQLite write busy, retrying", "op", op, "attempt", i+1, "delay", delay)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
