package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	coreErrors "github.com/angelospk/subsubs/pkg/core/errors"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func init() {
	Register("sqlite", func(cfg ProviderConfig) (Store, error) {
		return NewSQLiteStore(cfg.Path, cfg.logger())
	})
}

// SQLiteStore keeps the log in a SQLite database migrated with goose.
type SQLiteStore struct {
	conn   *sql.DB
	path   string
	logger logrus.FieldLogger
}

// NewSQLiteStore opens the database at path and runs pending migrations.
func NewSQLiteStore(path string, logger logrus.FieldLogger) (*SQLiteStore, error) {
	if path == "" {
		path = "./data/subsubs.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, coreErrors.NewStoreError("open", fmt.Errorf("failed to create database directory: %w", err))
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)", path)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, coreErrors.NewStoreError("open", fmt.Errorf("failed to open database: %w", err))
	}

	// SQLite only supports one writer
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(context.Background()); err != nil {
		conn.Close()
		return nil, coreErrors.NewStoreError("open", fmt.Errorf("failed to ping database: %w", err))
	}

	s := &SQLiteStore{conn: conn, path: path, logger: orDiscard(logger)}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, coreErrors.NewStoreError("migrate", err)
	}

	s.logger.WithField("path", path).Debug("History database ready")
	return s, nil
}

// migrate runs all pending migrations using the embedded SQL files.
func (s *SQLiteStore) migrate() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(s.logger)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(s.conn, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

const insertEntrySQL = `INSERT INTO subtitle_history
	(id, title, year, imdb_id, subtitle_id, language, download_url, file_name, downloaded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const listRecentSQL = `SELECT id, title, year, imdb_id, subtitle_id, language, download_url, file_name, downloaded_at
	FROM subtitle_history
	ORDER BY downloaded_at DESC, rowid DESC
	LIMIT ?`

func (s *SQLiteStore) Append(ctx context.Context, entry Entry) (Entry, error) {
	entry = prepare(entry)

	_, err := s.conn.ExecContext(ctx, insertEntrySQL,
		entry.ID,
		entry.Title,
		nullString(entry.Year),
		nullString(entry.IMDbID),
		entry.SubtitleID,
		entry.Language,
		entry.DownloadURL,
		entry.FileName,
		entry.DownloadedAt.UnixNano(),
	)
	if err != nil {
		return Entry{}, coreErrors.NewStoreError("append", err)
	}
	return entry, nil
}

func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx, listRecentSQL, ClampLimit(limit))
	if err != nil {
		return nil, coreErrors.NewStoreError("list", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e            Entry
			year, imdbID sql.NullString
			downloadedAt int64
		)
		if err := rows.Scan(&e.ID, &e.Title, &year, &imdbID, &e.SubtitleID, &e.Language, &e.DownloadURL, &e.FileName, &downloadedAt); err != nil {
			return nil, coreErrors.NewStoreError("list", err)
		}
		e.Year = year.String
		e.IMDbID = imdbID.String
		e.DownloadedAt = time.Unix(0, downloadedAt).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, coreErrors.NewStoreError("list", err)
	}
	return entries, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
