package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/shopaudit/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "shopaudit.db"

// AuditDB stores audits in a single SQLite file.
// The full result is kept as JSON next to the columns needed for listing.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

var _ Store = (*AuditDB)(nil)

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for concurrent readers.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the audit database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc creates it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Path returns the database file path.
func (adb *AuditDB) Path() string {
	return adb.dbPath
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

func (adb *AuditDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		audited_at TEXT NOT NULL,
		saved_at TEXT NOT NULL,
		score INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		critical INTEGER NOT NULL,
		optimizations INTEGER NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audits_url ON audits(url);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// Save inserts a copy of result.
func (adb *AuditDB) Save(ctx context.Context, result *model.AuditResult) (*model.StoredAudit, error) {
	if result == nil {
		return nil, ErrNilResult
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize audit: %w", err)
	}

	savedAt := time.Now().UTC()
	query := `
	INSERT INTO audits (url, audited_at, saved_at, score, passed, warnings, critical, optimizations, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := adb.db.ExecContext(ctx, query,
		result.URL,
		result.Timestamp.UTC().Format(time.RFC3339Nano),
		savedAt.Format(time.RFC3339Nano),
		result.Score,
		result.Summary.Passed,
		result.Summary.Warnings,
		result.Summary.Critical,
		result.Summary.Optimizations,
		string(resultJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save audit: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read audit id: %w", err)
	}

	return model.NewStoredAudit(id, savedAt, result), nil
}

// GetByID retrieves an audit by its database id.
func (adb *AuditDB) GetByID(ctx context.Context, id int64) (*model.StoredAudit, error) {
	row := adb.db.QueryRowContext(ctx, `SELECT id, saved_at, result_json FROM audits WHERE id = ?`, id)

	stored, err := scanAudit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit %d: %w", id, err)
	}
	return stored, nil
}

// GetRecent returns the newest audits first.
func (adb *AuditDB) GetRecent(ctx context.Context, limit int) ([]*model.StoredAudit, error) {
	query := `
	SELECT id, saved_at, result_json FROM audits
	ORDER BY id DESC
	LIMIT ?
	`
	return adb.queryAudits(ctx, query, normalizeLimit(limit))
}

// History returns the newest audits of url first.
func (adb *AuditDB) History(ctx context.Context, url string, limit int) ([]*model.StoredAudit, error) {
	query := `
	SELECT id, saved_at, result_json FROM audits
	WHERE url = ?
	ORDER BY id DESC
	LIMIT ?
	`
	return adb.queryAudits(ctx, query, url, normalizeLimit(limit))
}

// ListAuditedURLs returns every URL with at least one saved audit.
func (adb *AuditDB) ListAuditedURLs(ctx context.Context) ([]string, error) {
	rows, err := adb.db.QueryContext(ctx, `SELECT DISTINCT url FROM audits ORDER BY url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

func (adb *AuditDB) queryAudits(ctx context.Context, query string, args ...any) ([]*model.StoredAudit, error) {
	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audits: %w", err)
	}
	defer rows.Close()

	audits := make([]*model.StoredAudit, 0)
	for rows.Next() {
		stored, err := scanAudit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit: %w", err)
		}
		audits = append(audits, stored)
	}
	return audits, rows.Err()
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAudit(s scanner) (*model.StoredAudit, error) {
	var (
		stored     model.StoredAudit
		savedAt    string
		resultJSON string
	)
	if err := s.Scan(&stored.ID, &savedAt, &resultJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(resultJSON), &stored.AuditResult); err != nil {
		return nil, fmt.Errorf("failed to parse audit %d: %w", stored.ID, err)
	}
	stored.SavedAt = parseTimestamp(savedAt)
	return &stored, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp tries each known format and returns the zero time if none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
