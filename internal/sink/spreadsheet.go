package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/UnknownOlympus/geoenrich/internal/models"
	"github.com/xuri/excelize/v2"
)

// SharedFileMode leaves the workbook readable and writable by everyone.
const SharedFileMode os.FileMode = 0o666

var header = []any{"Endereço Original", "Endereço Normalizado", "Latitude", "Longitude"}

// SpreadsheetWriter replaces the first worksheet of an XLSX workbook.
type SpreadsheetWriter struct {
	path  string
	sheet string
	log   *slog.Logger
}

// NewSpreadsheetWriter returns a writer for the workbook at path. sheet names
// the worksheet when the workbook has to be created.
func NewSpreadsheetWriter(path, sheet string, log *slog.Logger) (*SpreadsheetWriter, error) {
	if path == "" {
		return nil, ErrEmptyTarget
	}
	if err := validateIdentifier(sheet); err != nil {
		return nil, err
	}

	return &SpreadsheetWriter{path: path, sheet: sheet, log: log}, nil
}

// Write clears the first worksheet and fills it with a header row followed by
// one row per result. Other worksheets are kept.
func (w *SpreadsheetWriter) Write(ctx context.Context, results []models.GeocodeResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := w.open()
	if err != nil {
		return err
	}
	defer func() {
		if errClose := file.Close(); errClose != nil {
			w.log.ErrorContext(ctx, "Failed to close workbook", "error", errClose)
		}
	}()

	sheet := file.GetSheetName(0)
	if err = clearSheet(file, sheet); err != nil {
		return err
	}

	if err = file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, result := range results {
		cell, errCell := excelize.CoordinatesToCellName(1, i+2)
		if errCell != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, errCell)
		}
		row := spreadsheetRow(result)
		if err = file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err = file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}

	if err = os.Chmod(w.path, SharedFileMode); err != nil {
		return fmt.Errorf("failed to share workbook %s: %w", w.path, err)
	}

	w.log.InfoContext(ctx, "Results saved", "workbook", w.path, "sheet", sheet, "rows", len(results))

	return nil
}

// Close is a no-op, the workbook is opened and closed on every Write.
func (w *SpreadsheetWriter) Close() error {
	return nil
}

func (w *SpreadsheetWriter) open() (*excelize.File, error) {
	file, err := excelize.OpenFile(w.path)
	if err == nil {
		return file, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to open workbook %s: %w", w.path, err)
	}

	file = excelize.NewFile()
	if err = file.SetSheetName(file.GetSheetName(0), w.sheet); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to name worksheet: %w", err)
	}

	return file, nil
}

func clearSheet(file *excelize.File, sheet string) error {
	rows, err := file.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("failed to read worksheet %s: %w", sheet, err)
	}

	for row := len(rows); row >= 1; row-- {
		if err = file.RemoveRow(sheet, row); err != nil {
			return fmt.Errorf("failed to clear worksheet %s: %w", sheet, err)
		}
	}

	return nil
}

// spreadsheetRow writes missing coordinates as empty cells.
func spreadsheetRow(result models.GeocodeResult) []any {
	row := []any{result.OriginalAddress, result.NormalizedAddress, "", ""}
	if result.Latitude != nil {
		row[2] = *result.Latitude
	}
	if result.Longitude != nil {
		row[3] = *result.Longitude
	}
	return row
}
