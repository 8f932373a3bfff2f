// AngelaMos | 2026
// repairer.go

package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/neighborly/internal/config"
	"github.com/carterperez-dev/neighborly/internal/core"
)

type Repairer struct {
	repo      Repository
	queue     Queue
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func NewRepairer(
	repo Repository,
	queue Queue,
	cfg config.RatingConfig,
	logger *slog.Logger,
) *Repairer {
	if logger == nil {
		logger = slog.Default()
	}

	batch := cfg.RepairBatchSize
	if batch <= 0 {
		batch = 50
	}

	return &Repairer{
		repo:      repo,
		queue:     queue,
		logger:    logger.With("component", "rating_repairer"),
		interval:  cfg.RepairInterval,
		batchSize: batch,
	}
}

// Run drains the stale-listing queue every interval until ctx is done.
func (r *Repairer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("rating repairer started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("rating repairer stopped")
			return
		case <-ticker.C:
			if _, err := r.DrainOnce(ctx); err != nil {
				r.logger.Error("drain stale aggregates", "error", err)
			}
		}
	}
}

// DrainOnce recomputes one batch from the queue. Listings that fail again
// are pushed back.
func (r *Repairer) DrainOnce(ctx context.Context) (int, error) {
	ids, err := r.queue.PopBatch(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}

	repaired := 0
	var failed []string

	for _, id := range ids {
		_, err := r.repo.Apply(ctx, id, Compute)
		switch {
		case err == nil:
			repaired++
		case errors.Is(err, core.ErrNotFound):
		default:
			r.logger.Warn("repair failed", "listing_id", id, "error", err)
			failed = append(failed, id)
		}
	}

	if len(failed) > 0 {
		if err := r.queue.Push(context.WithoutCancel(ctx), failed...); err != nil {
			return repaired, fmt.Errorf("requeue %d listings: %w", len(failed), err)
		}
	}

	repairsApplied.Add(ctx, int64(repaired))

	if len(ids) > 0 {
		r.logger.Info("stale aggregates drained",
			"repaired", repaired,
			"requeued", len(failed),
		)
	}

	return repaired, nil
}

// Pending reports how many listings are waiting in the stale queue.
func (r *Repairer) Pending(ctx context.Context) (int64, error) {
	return r.queue.Len(ctx)
}

type RepairReport struct {
	Scanned  int      `json:"scanned"`
	Repaired int      `json:"repaired"`
	Failed   []string `json:"failed,omitempty"`
}

// RepairAll recomputes every listing in id order.
func (r *Repairer) RepairAll(ctx context.Context) (*RepairReport, error) {
	report := &RepairReport{}
	after := ""

	for {
		ids, err := r.repo.ListingIDs(ctx, after, r.batchSize)
		if err != nil {
			return report, err
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			report.Scanned++
			_, err := r.repo.Apply(ctx, id, Compute)
			switch {
			case err == nil:
				report.Repaired++
			case errors.Is(err, core.ErrNotFound):
			default:
				report.Failed = append(report.Failed, id)
			}
		}

		after = ids[len(ids)-1]
	}

	if len(report.Failed) > 0 {
		if err := r.queue.Push(ctx, report.Failed...); err != nil {
			r.logger.Error("queue failed repairs", "error", err)
		}
	}

	repairsApplied.Add(ctx, int64(report.Repaired))

	r.logger.Info("full aggregate repair finished",
		"scanned", report.Scanned,
		"repaired", report.Repaired,
		"failed", len(report.Failed),
	)

	return report, nil
}
