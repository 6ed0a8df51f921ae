package models

// OutcomeKind enumerates the possible results of geocoding one address.
type OutcomeKind int

const (
	// OutcomeNotFound means every lookup completed but none matched.
	OutcomeNotFound OutcomeKind = iota
	// OutcomeFound means a lookup returned a coordinate pair.
	OutcomeFound
	// OutcomeTransientError means at least one lookup failed and none matched.
	OutcomeTransientError
)

// String returns the label used for logs and metrics.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransientError:
		return "transient_error"
	default:
		return "unknown"
	}
}

// GeocodeOutcome is the result of geocoding one address.
// Coordinates is set only for OutcomeFound, Reason only for OutcomeTransientError.
type GeocodeOutcome struct {
	Kind        OutcomeKind
	Coordinates Coordinates
	Reason      string
}

// Found builds an outcome carrying the resolved coordinates.
func Found(coords Coordinates) GeocodeOutcome {
	return GeocodeOutcome{Kind: OutcomeFound, Coordinates: coords}
}

// NotFound builds an outcome for an address without matches.
func NotFound() GeocodeOutcome {
	return GeocodeOutcome{Kind: OutcomeNotFound}
}

// TransientError builds an outcome for an address whose lookups failed.
func TransientError(reason string) GeocodeOutcome {
	return GeocodeOutcome{Kind: OutcomeTransientError, Reason: reason}
}
