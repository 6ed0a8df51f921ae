package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/UnknownOlympus/geoenrich/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteWriter replaces a table in an embedded SQLite database file.
type SQLiteWriter struct {
	db    *sql.DB
	table string
	log   *slog.Logger
}

// NewSQLiteWriter opens (creating if needed) the database file at path.
func NewSQLiteWriter(ctx context.Context, path, table string, log *slog.Logger) (*SQLiteWriter, error) {
	if path == "" {
		return nil, ErrEmptyTarget
	}
	if err := validateIdentifier(table); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite file %s: %w", path, err)
	}

	if _, err = db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite file %s: %w", path, err)
	}

	return &SQLiteWriter{db: db, table: table, log: log}, nil
}

// Write drops and recreates the table and inserts every result, in one
// transaction.
func (w *SQLiteWriter) Write(ctx context.Context, results []models.GeocodeResult) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = w.replace(ctx, tx, results); err != nil {
		if errRollback := tx.Rollback(); errRollback != nil {
			w.log.ErrorContext(ctx, "Failed to roll back sink transaction", "error", errRollback)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}

	w.log.InfoContext(ctx, "Results saved", "table", w.table, "rows", len(results))

	return nil
}

func (w *SQLiteWriter) replace(ctx context.Context, tx *sql.Tx, results []models.GeocodeResult) error {
	table := `"` + w.table + `"`

	statements := []string{
		"DROP TABLE IF EXISTS " + table,
		`CREATE TABLE ` + table + ` (
			original_address   TEXT,
			normalized_address TEXT,
			latitude           REAL,
			longitude          REAL
		)`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare table %s: %w", w.table, err)
		}
	}

	insert, err := tx.PrepareContext(ctx, `INSERT INTO `+table+
		` (original_address, normalized_address, latitude, longitude) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	for _, result := range results {
		if _, err = insert.ExecContext(ctx, toRow(result)...); err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	return nil
}

// Close closes the database file.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
