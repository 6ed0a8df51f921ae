package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/UnknownOlympus/geoenrich/internal/models"
)

// dateLayout is the calendar-day format shared by MySQL and SQLite DATE().
const dateLayout = "2006-01-02"

const fetchAddressesQuery = `
		SELECT EnderecoObra
		FROM calendar
		WHERE
			EnderecoObra IS NOT NULL
			AND CodServico <> 0
			AND DATE(DataServico) = ?
		ORDER BY id DESC;
	`

// FetchAddresses retrieves the raw construction addresses scheduled for the
// configured day (today minus the day offset) with a non-zero service code,
// newest first.
//
// Returns:
// - A slice of models.AddressRecord in source order, empty when nothing matches.
// - An error if the query fails or if there is an issue scanning the results.
func (r *Repository) FetchAddresses(ctx context.Context) ([]models.AddressRecord, error) {
	day := r.now().AddDate(0, 0, -r.dayOffset).Format(dateLayout)

	rows, err := r.db.QueryContext(ctx, fetchAddressesQuery, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	records := []models.AddressRecord{}
	for rows.Next() {
		var address sql.NullString
		if errScan := rows.Scan(&address); errScan != nil {
			return nil, fmt.Errorf("failed to scan address: %w", errScan)
		}
		records = append(records, models.AddressRecord{RawAddress: address.String})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	r.log.InfoContext(ctx, "Addresses fetched from source", "day", day, "count", len(records))

	return records, nil
}
