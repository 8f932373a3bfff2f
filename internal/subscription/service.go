// AngelaMos | 2026
// service.go

package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/neighborly/internal/config"
	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/payment"
)

const DefaultExpiryWarning = 7 * 24 * time.Hour

type clock struct {
	now func() time.Time
}

type Option func(*clock)

func WithClock(now func() time.Time) Option {
	return func(c *clock) { c.now = now }
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

type Service struct {
	clock
	repo    Repository
	gateway payment.Gateway
	catalog Catalog
	warning time.Duration
	logger  *slog.Logger
}

func NewService(
	repo Repository,
	gateway payment.Gateway,
	cfg config.SubscriptionConfig,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	warning := cfg.ExpiryWarning
	if warning <= 0 {
		warning = DefaultExpiryWarning
	}

	return &Service{
		clock:   newClock(opts),
		repo:    repo,
		gateway: gateway,
		catalog: CatalogFromConfig(cfg.Plans),
		warning: warning,
		logger:  logger.With("component", "subscription"),
	}
}

func (s *Service) ExpiryWarning() time.Duration {
	return s.warning
}

func (s *Service) Now() time.Time {
	return s.now()
}

// Create opens a pending subscription backed by a fresh payment order.
// Nothing is persisted when the gateway cannot create the order.
func (s *Service) Create(
	ctx context.Context,
	caller core.Caller,
	req CreateRequest,
) (*CreateResult, error) {
	ctx, span := core.StartSpan(ctx, "subscription.Create",
		attribute.String("provider.id", caller.ID),
		attribute.String("plan", req.Plan),
	)
	defer span.End()

	if caller.Role != core.RoleProvider {
		return nil, fmt.Errorf("create subscription: %w", ErrNotProvider)
	}

	plan, err := s.catalog.Lookup(req.Plan)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	if err := s.ensureNoCurrent(ctx, caller.ID); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	receipt, err := core.GenerateSecureToken(12)
	if err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:     plan.Amount,
		Currency:   plan.Currency,
		ProviderID: caller.ID,
		Receipt:    "rcpt_" + receipt,
		Notes:      map[string]string{"plan": plan.Name},
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("create subscription: %w", asExternal(err))
	}

	sub := &Subscription{
		ID:               uuid.New().String(),
		ProviderID:       caller.ID,
		Plan:             plan.Name,
		Status:           StatusPending,
		PaymentGatewayID: &order.ID,
		Amount:           plan.Amount,
		Currency:         plan.Currency,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf("create subscription: %w", ErrCurrentExists)
		}
		return nil, err
	}

	s.logger.Info("subscription pending payment",
		"subscription_id", sub.ID,
		"provider_id", caller.ID,
		"plan", plan.Name,
		"order_id", order.ID,
	)

	return &CreateResult{
		Subscription: sub,
		Order: OrderResponse{
			OrderID:  order.ID,
			Amount:   plan.Amount,
			Currency: plan.Currency,
			Gateway:  s.gateway.Name(),
		},
	}, nil
}

// ensureNoCurrent rejects creation while a current record exists. A
// stored active record whose endDate has passed is swept to expired here
// so the provider can renew without waiting for the background sweeper.
func (s *Service) ensureNoCurrent(ctx context.Context, providerID string) error {
	current, err := s.repo.GetCurrent(ctx, providerID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if !current.IsLapsed(s.now()) {
		return ErrCurrentExists
	}

	if err := s.expireLapsed(ctx, current); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return s.ensureNoCurrent(ctx, providerID)
		}
		return err
	}
	return nil
}

// expireLapsed moves an active record whose end date has passed to
// expired. ErrInvalidTransition means another writer moved it first.
func (s *Service) expireLapsed(ctx context.Context, sub *Subscription) error {
	if err := sub.Expire(); err != nil {
		return err
	}
	if err := s.repo.Transition(ctx, sub, StatusActive); err != nil {
		return err
	}

	recordLifecycle(ctx, "expired", 1)
	s.logger.Info("lapsed subscription expired on read",
		"subscription_id", sub.ID,
		"provider_id", sub.ProviderID,
	)
	return nil
}

// VerifyPayment activates the pending record matching the confirmed
// order. A rejected or unreachable verification leaves it pending.
func (s *Service) VerifyPayment(
	ctx context.Context,
	caller core.Caller,
	req VerifyRequest,
) (*Subscription, error) {
	ctx, span := core.StartSpan(ctx, "subscription.VerifyPayment",
		attribute.String("order.id", req.OrderID),
	)
	defer span.End()

	sub, err := s.repo.GetByGatewayID(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}

	if sub.ProviderID != caller.ID {
		return nil, fmt.Errorf("verify payment: %w", ErrNotOwner)
	}

	if sub.Status != StatusPending {
		return nil, fmt.Errorf(
			"verify payment: %w: subscription is %s",
			ErrInvalidTransition,
			sub.Status,
		)
	}

	if err := s.gateway.VerifyPayment(ctx, req); err != nil {
		core.SetSpanError(ctx, err)
		s.logger.Warn("payment verification rejected",
			"subscription_id", sub.ID,
			"order_id", req.OrderID,
			"error", err,
		)
		if core.ErrorKind(err) == core.KindValidation {
			return nil, fmt.Errorf("verify payment: %w", err)
		}
		return nil, fmt.Errorf("verify payment: %w", asExternal(err))
	}

	plan, err := s.catalog.Lookup(sub.Plan)
	if err != nil {
		plan = Plan{Name: sub.Plan, Amount: sub.Amount, Currency: sub.Currency, PeriodMonths: 1}
	}

	invoice, err := sub.Activate(s.now(), plan, s.gateway.Name(), req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}

	if err := s.repo.Activate(ctx, sub, invoice); err != nil {
		return nil, fmt.Errorf("verify payment: %w", err)
	}

	recordLifecycle(ctx, "activated", 1)
	s.logger.Info("subscription activated",
		"subscription_id", sub.ID,
		"provider_id", sub.ProviderID,
		"end_date", sub.EndDate,
	)

	return sub, nil
}

func (s *Service) Cancel(
	ctx context.Context,
	caller core.Caller,
	req CancelRequest,
) (*Subscription, error) {
	sub, err := s.repo.GetCurrent(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}

	if sub.IsLapsed(s.now()) {
		if err := s.expireLapsed(ctx, sub); err != nil &&
			!errors.Is(err, ErrInvalidTransition) {
			return nil, fmt.Errorf("cancel subscription: %w", err)
		}
		return nil, fmt.Errorf("cancel subscription: %w", ErrNoCurrent)
	}

	from := sub.Status
	if err := sub.Cancel(s.now(), req.Reason); err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}

	if err := s.repo.Transition(ctx, sub, from); err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}

	recordLifecycle(ctx, "cancelled", 1)
	s.logger.Info("subscription cancelled",
		"subscription_id", sub.ID,
		"provider_id", sub.ProviderID,
		"reason", sub.CancellationReason,
	)

	return sub, nil
}

// GetCurrent returns the caller's current record with its invoices.
func (s *Service) GetCurrent(
	ctx context.Context,
	caller core.Caller,
) (*Subscription, error) {
	sub, err := s.repo.GetCurrent(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("get current subscription: %w", err)
	}

	invoices, err := s.repo.Invoices(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	sub.Invoices = invoices

	return sub, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListParams,
) ([]Subscription, int, error) {
	if params.Status != "" && !Status(params.Status).Valid() {
		return nil, 0, fmt.Errorf("list subscriptions: %w: status", core.ErrInvalidInput)
	}
	return s.repo.List(ctx, params)
}

// IsPublishingAllowed is true iff the provider holds an active record
// whose endDate is still in the future.
func (s *Service) IsPublishingAllowed(
	ctx context.Context,
	providerID string,
) (bool, error) {
	_, err := s.repo.GetLiveActive(ctx, providerID, s.now())
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) IsAboutToExpire(
	ctx context.Context,
	providerID string,
) (bool, error) {
	now := s.now()
	sub, err := s.repo.GetLiveActive(ctx, providerID, now)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sub.IsAboutToExpire(now, s.warning), nil
}

func asExternal(err error) error {
	if errors.Is(err, core.ErrExternal) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrExternal, err)
}
