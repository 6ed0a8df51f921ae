// Package sink persists an enrichment run's result set to its destination.
// Every writer has full-replace semantics: the destination table or sheet is
// discarded and rebuilt from the given results, so repeated runs never
// accumulate rows.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/UnknownOlympus/geoenrich/internal/models"
)

// Mode selects the destination store.
type Mode string

const (
	// ModePostgres writes to a schema-qualified PostgreSQL table.
	ModePostgres Mode = "postgres"
	// ModeSQLite writes to an embedded SQLite database file.
	ModeSQLite Mode = "sqlite"
	// ModeSpreadsheet writes to the first worksheet of an XLSX workbook.
	ModeSpreadsheet Mode = "spreadsheet"
)

// Writer replaces the destination contents with a result set.
type Writer interface {
	Write(ctx context.Context, results []models.GeocodeResult) error
	Close() error
}

// Config describes the destination of a run.
type Config struct {
	Mode   Mode   // Mode selects the writer implementation.
	Target string // Target is a PostgreSQL DSN or a file path, depending on Mode.
	Schema string // Schema qualifies the PostgreSQL table, ignored otherwise.
	Table  string // Table is the table name, or the sheet name for spreadsheets.
}

var (
	ErrUnsupportedMode   = errors.New("unsupported sink mode")
	ErrInvalidIdentifier = errors.New("invalid sink identifier")
	ErrEmptyTarget       = errors.New("sink target is empty")
)

// Columns is the layout of every destination, in order.
var Columns = []string{"original_address", "normalized_address", "latitude", "longitude"}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,30}$`)

// New creates the writer selected by cfg.Mode. The caller must Close it.
func New(ctx context.Context, cfg Config, log *slog.Logger) (Writer, error) {
	var (
		writer Writer
		err    error
	)

	switch cfg.Mode {
	case ModePostgres:
		writer, err = NewPostgresWriter(ctx, cfg.Target, cfg.Schema, cfg.Table, log)
	case ModeSQLite:
		writer, err = NewSQLiteWriter(ctx, cfg.Target, cfg.Table, log)
	case ModeSpreadsheet:
		writer, err = NewSpreadsheetWriter(cfg.Target, cfg.Table, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, cfg.Mode)
	}
	if err != nil {
		return nil, err
	}

	return writer, nil
}

func validateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// toRow lays a result out in Columns order, nil coordinates stay nil.
func toRow(result models.GeocodeResult) []any {
	return []any{result.OriginalAddress, result.NormalizedAddress, result.Latitude, result.Longitude}
}
