package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/geoenrich/internal/models"
	_ "github.com/go-sql-driver/mysql" // registers the "mysql" database/sql driver
)

// Database is the subset of *sql.DB the repository needs.
type Database interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Repository struct {
	db        Database
	log       *slog.Logger
	dayOffset int
	now       func() time.Time
}

type Interface interface {
	FetchAddresses(ctx context.Context) ([]models.AddressRecord, error)
}

// Option customizes a Repository.
type Option func(*Repository)

// WithClock overrides the clock used to compute the date window.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// NewRepository creates a new instance of Repository with the provided Database.
// dayOffset selects the calendar day to read, counted back from today.
func NewRepository(db Database, log *slog.Logger, dayOffset int, opts ...Option) *Repository {
	repo := &Repository{db: db, log: log, dayOffset: dayOffset, now: time.Now}
	for _, opt := range opts {
		opt(repo)
	}

	return repo
}

// NewDatabase opens and verifies a connection to the source store.
// The caller owns the returned handle and must close it at the end of the run.
func NewDatabase(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	dtb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open source database: %w", err)
	}

	const pingTimeout = 10 * time.Second
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err = dtb.PingContext(pingCtx); err != nil {
		_ = dtb.Close()
		return nil, fmt.Errorf("failed to ping source database: %w", err)
	}

	return dtb, nil
}
