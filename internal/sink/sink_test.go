package sink_test

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/UnknownOlympus/geoenrich/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	logger := slog.Default()

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		writer, err := sink.New(t.Context(), sink.Config{
			Mode:   sink.ModeSQLite,
			Target: filepath.Join(t.TempDir(), "geo.db"),
			Table:  testTable,
		}, logger)
		require.NoError(t, err)
		defer writer.Close()
		assert.IsType(t, &sink.SQLiteWriter{}, writer)
	})

	t.Run("spreadsheet", func(t *testing.T) {
		t.Parallel()
		writer, err := sink.New(t.Context(), sink.Config{
			Mode:   sink.ModeSpreadsheet,
			Target: filepath.Join(t.TempDir(), "geo.xlsx"),
			Table:  testTable,
		}, logger)
		require.NoError(t, err)
		assert.IsType(t, &sink.SpreadsheetWriter{}, writer)
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Parallel()
		writer, err := sink.New(t.Context(), sink.Config{
			Mode:   sink.ModePostgres,
			Schema: "public",
			Table:  testTable,
		}, logger)
		require.ErrorIs(t, err, sink.ErrEmptyTarget)
		assert.Nil(t, writer)
	})

	t.Run("unsupported mode", func(t *testing.T) {
		t.Parallel()
		writer, err := sink.New(t.Context(), sink.Config{Mode: "csv", Target: "out.csv", Table: testTable}, logger)
		require.ErrorIs(t, err, sink.ErrUnsupportedMode)
		assert.Nil(t, writer)
	})
}
