// AngelaMos | 2026
// aggregator.go

package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/neighborly/internal/config"
	"github.com/carterperez-dev/neighborly/internal/core"
)

var (
	recomputeFailures = core.Counter(
		"rating.recompute.failures",
		"Recomputes that exhausted retries and left an aggregate stale.",
	)
	repairsApplied = core.Counter(
		"rating.repair.applied",
		"Stale aggregates rewritten by the repair worker.",
	)
)

// Aggregator keeps a listing's average_rating and review_count equal to
// what its reviews imply. Every call does a full rescan under a row lock,
// so concurrent recomputes of one listing converge on the committed state.
type Aggregator struct {
	repo      Repository
	queue     Queue
	logger    *slog.Logger
	attempts  int
	baseDelay time.Duration
}

func NewAggregator(
	repo Repository,
	queue Queue,
	cfg config.RatingConfig,
	logger *slog.Logger,
) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = 50 * time.Millisecond
	}

	return &Aggregator{
		repo:      repo,
		queue:     queue,
		logger:    logger.With("component", "rating_aggregator"),
		attempts:  attempts,
		baseDelay: baseDelay,
	}
}

// Recompute rewrites the aggregate of listingID from its reviews.
//
// A listing that no longer exists is a no-op. Store failures are retried
// with backoff; when retries are exhausted the listing is queued for the
// repair worker and the error is returned for the caller to log.
func (a *Aggregator) Recompute(ctx context.Context, listingID string) error {
	ctx, span := core.StartSpan(ctx, "rating.Recompute",
		attribute.String("listing.id", listingID),
	)
	defer span.End()

	agg, err := a.apply(ctx, listingID)
	switch {
	case err == nil:
		a.logger.Debug("aggregate recomputed",
			"listing_id", listingID,
			"average", agg.Average,
			"count", agg.Count,
		)
		return nil
	case errors.Is(err, core.ErrNotFound):
		a.logger.Info("recompute skipped, listing no longer exists",
			"listing_id", listingID,
		)
		return nil
	}

	core.SetSpanError(ctx, err)
	recomputeFailures.Add(ctx, 1)

	if qErr := a.queue.Push(context.WithoutCancel(ctx), listingID); qErr != nil {
		a.logger.Error("aggregate stale and could not be queued",
			"listing_id", listingID,
			"error", err,
			"queue_error", qErr,
		)
		return fmt.Errorf("recompute %s: %w", listingID, errors.Join(err, qErr))
	}

	a.logger.Warn("aggregate recompute failed, queued for repair",
		"listing_id", listingID,
		"error", err,
	)
	return fmt.Errorf("recompute %s: %w", listingID, err)
}

func (a *Aggregator) apply(ctx context.Context, listingID string) (Aggregate, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = a.baseDelay
	policy.MaxElapsedTime = 0

	var agg Aggregate
	op := func() error {
		result, err := a.repo.Apply(ctx, listingID, Compute)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) ||
				errors.Is(err, context.Canceled) {
				return backoff.Permanent(err)
			}
			return err
		}
		agg = result
		return nil
	}

	retry := backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(a.attempts-1)), //nolint:gosec // attempts >= 1
		ctx,
	)
	if err := backoff.Retry(op, retry); err != nil {
		return Aggregate{}, err
	}

	return agg, nil
}
