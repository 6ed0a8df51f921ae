package geocoding

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/geoenrich/internal/metrics"
	"github.com/UnknownOlympus/geoenrich/internal/models"
	"github.com/UnknownOlympus/geoenrich/internal/ratelimit"
)

// Client resolves normalized addresses by trying progressively broader
// candidate queries against a Provider.
type Client struct {
	provider     Provider          // provider performs the single lookups
	providerName string            // providerName labels the request metrics
	limiter      ratelimit.Limiter // limiter paces consecutive lookups
	regionSuffix string            // regionSuffix is appended to every candidate
	metrics      *metrics.Metrics  // metrics tracks request latency and API errors
	log          *slog.Logger
}

// NewClient creates a geocoding client.
func NewClient(
	provider Provider,
	providerName string,
	limiter ratelimit.Limiter,
	regionSuffix string,
	metrics *metrics.Metrics,
	log *slog.Logger,
) *Client {
	return &Client{
		provider:     provider,
		providerName: providerName,
		limiter:      limiter,
		regionSuffix: regionSuffix,
		metrics:      metrics,
		log:          log,
	}
}

// Geocode resolves a normalized address. It never fails: lookup errors are
// logged and reported through the outcome. An empty address is NotFound
// without any provider call.
//
// Candidates are tried in order and the first match wins. After an empty or
// failed lookup the client waits on the limiter before the next candidate.
func (c *Client) Geocode(ctx context.Context, normalized string) models.GeocodeOutcome {
	candidates := BuildCandidates(normalized, c.regionSuffix)
	if len(candidates) == 0 {
		c.log.DebugContext(ctx, "Empty address, skipping geocoding")
		return models.NotFound()
	}

	var lastErr error
	for idx, query := range candidates {
		if idx > 0 {
			if err := c.limiter.Wait(ctx); err != nil {
				c.log.WarnContext(ctx, "Stopped waiting for the next geocoding slot", "error", err)
				return models.TransientError(err.Error())
			}
		}

		startTime := time.Now()
		coords, err := c.provider.Geocode(ctx, query)
		c.metrics.RequestSeconds.WithLabelValues(c.providerName).Observe(time.Since(startTime).Seconds())

		if err == nil {
			if idx > 0 {
				c.log.InfoContext(ctx, "Geocoded using fallback address",
					"original", normalized,
					"fallback", query,
					"fallback_level", idx)
			}
			return models.Found(*coords)
		}

		if errors.Is(err, ErrNoResults) {
			c.log.DebugContext(ctx, "Address variation returned no results", "query", query, "fallback_level", idx)
			continue
		}

		c.metrics.APIErrors.Inc()
		c.log.ErrorContext(ctx, "Failed to geocode address variation",
			"query", query,
			"fallback_level", idx,
			"error", err)
		lastErr = err
	}

	c.log.WarnContext(ctx, "All address fallbacks exhausted", "address", normalized, "variations_tried", len(candidates))

	if lastErr != nil {
		return models.TransientError(lastErr.Error())
	}

	return models.NotFound()
}
