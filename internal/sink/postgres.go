package sink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/geoenrich/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of pgxpool.Pool the PostgreSQL writer needs.
type Database interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresWriter replaces a schema-qualified table inside one transaction.
type PostgresWriter struct {
	db     Database
	schema string
	table  string
	log    *slog.Logger
}

// NewDatabase creates a pgx connection pool and verifies it with a ping.
func NewDatabase(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, ErrEmptyTarget
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// NewPostgresWriter connects to dsn and returns a writer for schema.table.
func NewPostgresWriter(ctx context.Context, dsn, schema, table string, log *slog.Logger) (*PostgresWriter, error) {
	if err := validateIdentifier(schema); err != nil {
		return nil, err
	}
	if err := validateIdentifier(table); err != nil {
		return nil, err
	}

	pool, err := NewDatabase(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return NewPostgresWriterWithDB(pool, schema, table, log)
}

// NewPostgresWriterWithDB builds a writer on an existing pool.
func NewPostgresWriterWithDB(db Database, schema, table string, log *slog.Logger) (*PostgresWriter, error) {
	if err := validateIdentifier(schema); err != nil {
		return nil, err
	}
	if err := validateIdentifier(table); err != nil {
		return nil, err
	}

	return &PostgresWriter{db: db, schema: schema, table: table, log: log}, nil
}

// Write creates the schema if needed, drops and recreates the table and bulk
// copies the results into it. Either all of it is committed or nothing is.
func (w *PostgresWriter) Write(ctx context.Context, results []models.GeocodeResult) error {
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = w.replace(ctx, tx, results); err != nil {
		if errRollback := tx.Rollback(ctx); errRollback != nil {
			w.log.ErrorContext(ctx, "Failed to roll back sink transaction", "error", errRollback)
		}
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit results: %w", err)
	}

	w.log.InfoContext(ctx, "Results saved", "table", w.schema+"."+w.table, "rows", len(results))

	return nil
}

func (w *PostgresWriter) replace(ctx context.Context, tx pgx.Tx, results []models.GeocodeResult) error {
	schema := pgx.Identifier{w.schema}.Sanitize()
	table := pgx.Identifier{w.schema, w.table}.Sanitize()

	statements := []string{
		"CREATE SCHEMA IF NOT EXISTS " + schema,
		"DROP TABLE IF EXISTS " + table,
		`CREATE TABLE ` + table + ` (
			original_address   text,
			normalized_address text,
			latitude           double precision,
			longitude          double precision
		)`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare table %s: %w", table, err)
		}
	}

	if len(results) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(results))
	for _, result := range results {
		rows = append(rows, toRow(result))
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{w.schema, w.table}, Columns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("failed to copy results into %s: %w", table, err)
	}

	return nil
}

// Close releases the connection pool.
func (w *PostgresWriter) Close() error {
	w.db.Close()
	return nil
}
