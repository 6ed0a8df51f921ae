package geocoding

import (
	"context"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/geoenrich/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method performs a single lookup for the given query string and
// returns the coordinates of the first match. It returns ErrNoResults when the
// provider answered but found nothing, and any other error when the lookup failed.
type Provider interface {
	Geocode(ctx context.Context, query string) (*models.Coordinates, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrNoResults is returned by a Provider when the lookup succeeded with zero matches.
var ErrNoResults = errors.New("geocoding provider returned no results")
