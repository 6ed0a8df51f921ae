package models

// AddressRecord is a single row read from the source store.
type AddressRecord struct {
	RawAddress string // RawAddress is the free-text address exactly as stored in the source.
}

// GeocodeResult is the enriched form of an AddressRecord. Nil coordinates mean
// the address could not be resolved, which is a valid terminal state.
type GeocodeResult struct {
	OriginalAddress   string
	NormalizedAddress string
	Latitude          *float64
	Longitude         *float64
}

// HasCoordinates reports whether both latitude and longitude are set.
func (r GeocodeResult) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Summary reports the counters of one enrichment run.
type Summary struct {
	Total    int // Total is the number of records read from the source.
	Found    int // Found is the number of records resolved to coordinates.
	NotFound int // NotFound is the number of records the provider had no match for.
	Failed   int // Failed is the number of records that hit a transient provider error.
	Skipped  int // Skipped is the number of records whose normalized address was empty.
	Written  int // Written is the number of rows handed to the sink.
}
