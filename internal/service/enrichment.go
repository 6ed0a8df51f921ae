package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/geoenrich/internal/metrics"
	"github.com/UnknownOlympus/geoenrich/internal/models"
	"github.com/UnknownOlympus/geoenrich/internal/normalizer"
	"github.com/UnknownOlympus/geoenrich/internal/ratelimit"
	"github.com/UnknownOlympus/geoenrich/internal/repository"
	"github.com/UnknownOlympus/geoenrich/internal/sink"
)

const statusSkipped = "skipped"

// Geocoder resolves a normalized address into an outcome.
type Geocoder interface {
	Geocode(ctx context.Context, normalized string) models.GeocodeOutcome
}

// EnrichmentService runs one batch: read addresses, normalize and geocode
// each of them in order, then replace the destination with the results.
type EnrichmentService struct {
	log      *slog.Logger         // Logger for run progress
	repo     repository.Interface // Source of the day's addresses
	geocoder Geocoder             // Resolves normalized addresses
	sink     sink.Writer          // Destination of the result set
	sinkMode string               // Sink mode for metrics labeling
	metrics  *metrics.Metrics     // Metrics for tracking run progress
	limiter  ratelimit.Limiter    // Paces records, shared with the geocoder
}

// NewEnrichmentService creates a new instance of EnrichmentService.
// The limiter must be the same instance the geocoder waits on, so that the
// aggregate request rate to the provider stays bounded.
func NewEnrichmentService(
	log *slog.Logger,
	repo repository.Interface,
	geocoder Geocoder,
	writer sink.Writer,
	sinkMode string,
	metrics *metrics.Metrics,
	limiter ratelimit.Limiter,
) *EnrichmentService {
	return &EnrichmentService{
		log:      log,
		repo:     repo,
		geocoder: geocoder,
		sink:     writer,
		sinkMode: sinkMode,
		metrics:  metrics,
		limiter:  limiter,
	}
}

// Run executes the batch once. A source error aborts before anything is
// geocoded. Cancellation aborts without writing, so the destination keeps its
// previous contents. Per-record geocoding problems never fail the run.
func (es *EnrichmentService) Run(ctx context.Context) (models.Summary, error) {
	var summary models.Summary

	records, err := es.repo.FetchAddresses(ctx)
	if err != nil {
		es.log.ErrorContext(ctx, "Failed to fetch addresses", "error", err)
		return summary, fmt.Errorf("failed to fetch addresses: %w", err)
	}

	summary.Total = len(records)
	es.log.InfoContext(ctx, "Addresses fetched, starting geocoding", "total", summary.Total)

	results := make([]models.GeocodeResult, 0, len(records))
	for idx, record := range records {
		result := es.process(ctx, idx, record, &summary)
		results = append(results, result)

		if err = es.limiter.Wait(ctx); err != nil {
			es.log.WarnContext(ctx, "Run interrupted, destination left untouched",
				"processed", idx+1, "total", summary.Total, "error", err)
			return summary, fmt.Errorf("run interrupted after %d of %d records: %w", idx+1, summary.Total, err)
		}
	}

	if err = ctx.Err(); err != nil {
		return summary, fmt.Errorf("run interrupted before writing: %w", err)
	}

	if err = es.sink.Write(ctx, results); err != nil {
		es.metrics.SinkWrites.WithLabelValues(es.sinkMode, "failure").Inc()
		es.log.ErrorContext(ctx, "Failed to write results", "mode", es.sinkMode, "error", err)
		return summary, fmt.Errorf("failed to write results: %w", err)
	}
	es.metrics.SinkWrites.WithLabelValues(es.sinkMode, "success").Inc()

	summary.Written = len(results)
	es.log.InfoContext(ctx, "Run finished",
		"total", summary.Total,
		"found", summary.Found,
		"not_found", summary.NotFound,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"written", summary.Written,
	)

	return summary, nil
}

// process normalizes and geocodes one record. An address that normalizes to
// nothing is not sent to the geocoder.
func (es *EnrichmentService) process(
	ctx context.Context,
	idx int,
	record models.AddressRecord,
	summary *models.Summary,
) models.GeocodeResult {
	normalized := normalizer.Normalize(record.RawAddress)
	result := models.GeocodeResult{OriginalAddress: record.RawAddress, NormalizedAddress: normalized}

	if normalized == "" {
		summary.Skipped++
		es.metrics.RecordsProcessed.WithLabelValues(statusSkipped).Inc()
		es.log.InfoContext(ctx, "Address not geocodable",
			"index", idx+1, "total", summary.Total, "original", record.RawAddress)
		return result
	}

	outcome := es.geocoder.Geocode(ctx, normalized)
	switch outcome.Kind {
	case models.OutcomeFound:
		summary.Found++
		lat, lon := outcome.Coordinates.Latitude, outcome.Coordinates.Longitude
		result.Latitude, result.Longitude = &lat, &lon
	case models.OutcomeTransientError:
		summary.Failed++
	case models.OutcomeNotFound:
		summary.NotFound++
	}
	es.metrics.RecordsProcessed.WithLabelValues(outcome.Kind.String()).Inc()

	log := es.log.With(
		"index", idx+1,
		"total", summary.Total,
		"original", record.RawAddress,
		"normalized", normalized,
		"outcome", outcome.Kind.String(),
	)
	if result.HasCoordinates() {
		log.InfoContext(ctx, "Address geocoded", "latitude", *result.Latitude, "longitude", *result.Longitude)
	} else {
		log.InfoContext(ctx, "Address not geocoded", "reason", outcome.Reason)
	}

	return result
}
