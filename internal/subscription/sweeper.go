// AngelaMos | 2026
// sweeper.go

package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carterperez-dev/neighborly/internal/config"
	"github.com/carterperez-dev/neighborly/internal/core"
)

var lifecycleEvents = core.Counter(
	"subscription.lifecycle.events",
	"Subscription state changes and expiry notices, by event.",
)

func recordLifecycle(ctx context.Context, event string, n int64) {
	if n <= 0 {
		return
	}
	lifecycleEvents.Add(ctx, n, metric.WithAttributes(
		attribute.String("event", event),
	))
}

// ExpiryNotice is published once per subscription when it enters the
// expiry warning window.
type ExpiryNotice struct {
	SubscriptionID string    `json:"subscription_id"`
	ProviderID     string    `json:"provider_id"`
	Plan           string    `json:"plan"`
	EndDate        time.Time `json:"end_date"`
}

type Notifier interface {
	NotifyExpiring(ctx context.Context, notice ExpiryNotice) (bool, error)
}

type redisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) Notifier {
	return &redisNotifier{client: client, channel: channel}
}

// NotifyExpiring publishes the notice unless it was already sent for this
// subscription. The dedupe marker lives until the subscription ends.
func (n *redisNotifier) NotifyExpiring(
	ctx context.Context,
	notice ExpiryNotice,
) (bool, error) {
	ttl := time.Until(notice.EndDate)
	if ttl <= 0 {
		return false, nil
	}

	key := "subscription:notified:" + notice.SubscriptionID
	fresh, err := n.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark notice: %w", err)
	}
	if !fresh {
		return false, nil
	}

	payload, err := json.Marshal(notice)
	if err != nil {
		return false, fmt.Errorf("encode notice: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.client.Del(context.WithoutCancel(ctx), key)
		return false, fmt.Errorf("publish notice: %w", err)
	}

	return true, nil
}

type Sweeper struct {
	clock
	repo      Repository
	notifier  Notifier
	interval  time.Duration
	warning   time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewSweeper(
	repo Repository,
	notifier Notifier,
	cfg config.SubscriptionConfig,
	logger *slog.Logger,
	opts ...Option,
) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}

	warning := cfg.ExpiryWarning
	if warning <= 0 {
		warning = DefaultExpiryWarning
	}

	batch := cfg.SweepBatchSize
	if batch <= 0 {
		batch = 200
	}

	return &Sweeper{
		clock:     newClock(opts),
		repo:      repo,
		notifier:  notifier,
		interval:  cfg.SweepInterval,
		warning:   warning,
		batchSize: batch,
		logger:    logger.With("component", "subscription_sweeper"),
	}
}

type SweepReport struct {
	Expired  int64 `json:"expired"`
	Notified int   `json:"notified"`
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("subscription sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("subscription sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("subscription sweep failed", "error", err)
			}
		}
	}
}

// SweepOnce expires lapsed active records and sends expiry warnings.
func (s *Sweeper) SweepOnce(ctx context.Context) (*SweepReport, error) {
	now := s.now()
	report := &SweepReport{}

	for {
		n, err := s.repo.ExpireDue(ctx, now, s.batchSize)
		if err != nil {
			return report, err
		}
		report.Expired += n
		if n < int64(s.batchSize) {
			break
		}
	}

	expiring, err := s.repo.ListExpiring(ctx, now, now.Add(s.warning), s.batchSize)
	if err != nil {
		return report, err
	}

	for _, sub := range expiring {
		if s.notifier == nil || sub.EndDate == nil {
			continue
		}
		sent, err := s.notifier.NotifyExpiring(ctx, ExpiryNotice{
			SubscriptionID: sub.ID,
			ProviderID:     sub.ProviderID,
			Plan:           sub.Plan,
			EndDate:        *sub.EndDate,
		})
		if err != nil {
			s.logger.Warn("expiry notice failed",
				"subscription_id", sub.ID,
				"error", err,
			)
			continue
		}
		if sent {
			report.Notified++
		}
	}

	recordLifecycle(ctx, "expired", report.Expired)
	recordLifecycle(ctx, "notified", int64(report.Notified))

	if report.Expired > 0 || report.Notified > 0 {
		s.logger.Info("subscription sweep finished",
			"expired", report.Expired,
			"notified", report.Notified,
		)
	}

	return report, nil
}
