package geocoding_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/geoenrich/internal/geocoding"
	"github.com/UnknownOlympus/geoenrich/internal/metrics"
	"github.com/UnknownOlympus/geoenrich/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider answers each query from a fixed table and records the calls.
type stubProvider struct {
	answers map[string]func() (*models.Coordinates, error)
	queries []string
}

func (s *stubProvider) Geocode(_ context.Context, query string) (*models.Coordinates, error) {
	s.queries = append(s.queries, query)
	if answer, ok := s.answers[query]; ok {
		return answer()
	}
	return nil, geocoding.ErrNoResults
}

// countingLimiter never blocks, it only counts the waits.
type countingLimiter struct {
	waits int
	err   error
}

func (c *countingLimiter) Wait(_ context.Context) error {
	c.waits++
	return c.err
}

func found(lat, lon float64) func() (*models.Coordinates, error) {
	return func() (*models.Coordinates, error) {
		return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
	}
}

func failing() (*models.Coordinates, error) {
	return nil, assert.AnError
}

func newTestClient(provider geocoding.Provider, limiter *countingLimiter) (*geocoding.Client, *metrics.Metrics) {
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	client := geocoding.NewClient(provider, "stub", limiter, "Brasil", appMetrics, slog.Default())
	return client, appMetrics
}

func TestClient_Geocode(t *testing.T) {
	ctx := t.Context()

	t.Run("first candidate matches", func(t *testing.T) {
		provider := &stubProvider{answers: map[string]func() (*models.Coordinates, error){
			"Av. Paulista, 1000, Brasil": found(-23.56, -46.65),
		}}
		limiter := &countingLimiter{}
		client, _ := newTestClient(provider, limiter)

		outcome := client.Geocode(ctx, "Av. Paulista, 1000")

		assert.Equal(t, models.OutcomeFound, outcome.Kind)
		assert.InEpsilon(t, -23.56, outcome.Coordinates.Latitude, 0.0001)
		assert.InEpsilon(t, -46.65, outcome.Coordinates.Longitude, 0.0001)
		assert.Equal(t, []string{"Av. Paulista, 1000, Brasil"}, provider.queries)
		assert.Zero(t, limiter.waits)
	})

	t.Run("abbreviation fallback matches and stops", func(t *testing.T) {
		provider := &stubProvider{answers: map[string]func() (*models.Coordinates, error){
			"Avenida Paulista, 1000, Brasil": found(-23.5613, -46.6565),
		}}
		limiter := &countingLimiter{}
		client, _ := newTestClient(provider, limiter)

		outcome := client.Geocode(ctx, "Av. Paulista, 1000")

		require.Equal(t, models.OutcomeFound, outcome.Kind)
		assert.InEpsilon(t, -23.5613, outcome.Coordinates.Latitude, 0.0001)
		assert.Equal(t, []string{
			"Av. Paulista, 1000, Brasil",
			"Avenida Paulista, 1000, Brasil",
		}, provider.queries, "no request after the first match")
		assert.Equal(t, 1, limiter.waits)
	})

	t.Run("all candidates empty", func(t *testing.T) {
		provider := &stubProvider{}
		limiter := &countingLimiter{}
		client, appMetrics := newTestClient(provider, limiter)

		outcome := client.Geocode(ctx, "Av. Nowhere, 999")

		assert.Equal(t, models.OutcomeNotFound, outcome.Kind)
		assert.Len(t, provider.queries, 3)
		assert.Equal(t, 2, limiter.waits, "one wait between each pair of candidates")
		assert.Zero(t, testutil.ToFloat64(appMetrics.APIErrors))
	})

	t.Run("failed request moves on to the next candidate", func(t *testing.T) {
		provider := &stubProvider{answers: map[string]func() (*models.Coordinates, error){
			"Rua Augusta, 10, Brasil": failing,
			"Rua Augusta, Brasil":     found(-23.55, -46.66),
		}}
		limiter := &countingLimiter{}
		client, appMetrics := newTestClient(provider, limiter)

		outcome := client.Geocode(ctx, "Rua Augusta, 10")

		assert.Equal(t, models.OutcomeFound, outcome.Kind)
		assert.Len(t, provider.queries, 2)
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.APIErrors), 0)
	})

	t.Run("failures without any match are transient", func(t *testing.T) {
		provider := &stubProvider{answers: map[string]func() (*models.Coordinates, error){
			"Rua Augusta, 10, Brasil": failing,
			"Rua Augusta, Brasil":     failing,
		}}
		limiter := &countingLimiter{}
		client, appMetrics := newTestClient(provider, limiter)

		outcome := client.Geocode(ctx, "Rua Augusta, 10")

		assert.Equal(t, models.OutcomeTransientError, outcome.Kind)
		assert.Contains(t, outcome.Reason, assert.AnError.Error())
		assert.InDelta(t, 2, testutil.ToFloat64(appMetrics.APIErrors), 0)
	})

	t.Run("empty address skips the provider", func(t *testing.T) {
		provider := &stubProvider{}
		limiter := &countingLimiter{}
		client, _ := newTestClient(provider, limiter)

		outcome := client.Geocode(ctx, "")

		assert.Equal(t, models.OutcomeNotFound, outcome.Kind)
		assert.Empty(t, provider.queries)
		assert.Zero(t, limiter.waits)
	})

	t.Run("limiter interrupted", func(t *testing.T) {
		provider := &stubProvider{}
		limiter := &countingLimiter{err: context.Canceled}
		client, _ := newTestClient(provider, limiter)

		outcome := client.Geocode(ctx, "Rua Augusta, 10")

		assert.Equal(t, models.OutcomeTransientError, outcome.Kind)
		assert.Len(t, provider.queries, 1)
	})
}
