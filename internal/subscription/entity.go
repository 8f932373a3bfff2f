// AngelaMos | 2026
// entity.go

package subscription

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/neighborly/internal/config"
	"github.com/carterperez-dev/neighborly/internal/core"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// transitions is the complete lifecycle. Anything absent is rejected;
// cancelled and expired are terminal.
var transitions = map[Status][]Status{
	// pending -> cancelled lets a provider abandon an unpaid order; without
	// it the pending record would block every later Create.
	StatusPending: {StatusActive, StatusCancelled},
	StatusActive:  {StatusCancelled, StatusExpired},
}

var (
	ErrInvalidTransition = fmt.Errorf("%w: invalid subscription transition", core.ErrConflict)
	ErrCurrentExists     = fmt.Errorf(
		"%w: provider already has a pending or active subscription",
		core.ErrConflict,
	)
	ErrNoCurrent   = fmt.Errorf("%w: no active subscription", core.ErrNotFound)
	ErrUnknownPlan = fmt.Errorf("%w: unknown subscription plan", core.ErrInvalidInput)
	ErrNotProvider = fmt.Errorf("%w: only providers can subscribe", core.ErrForbidden)
	ErrNotOwner    = fmt.Errorf("%w: subscription belongs to another provider", core.ErrForbidden)
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

func (s Status) IsCurrent() bool {
	return s == StatusPending || s == StatusActive
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Subscription struct {
	ID                    string     `db:"id"`
	ProviderID            string     `db:"provider_id"`
	Plan                  string     `db:"plan"`
	Status                Status     `db:"status"`
	PaymentGatewayID      *string    `db:"payment_gateway_id"`
	GatewaySubscriptionID string     `db:"gateway_subscription_id"`
	GatewayCustomerID     string     `db:"gateway_customer_id"`
	StartDate             *time.Time `db:"start_date"`
	EndDate               *time.Time `db:"end_date"`
	AutoRenew             bool       `db:"auto_renew"`
	Amount                int64      `db:"amount"`
	Currency              string     `db:"currency"`
	PaymentMethod         string     `db:"payment_method"`
	CancellationReason    string     `db:"cancellation_reason"`
	CancellationDate      *time.Time `db:"cancellation_date"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`

	Invoices []Invoice `db:"-"`
}

type Invoice struct {
	ID             string    `db:"id"`
	SubscriptionID string    `db:"subscription_id"`
	InvoiceID      string    `db:"invoice_id"`
	Amount         int64     `db:"amount"`
	Status         string    `db:"status"`
	PaidAt         time.Time `db:"paid_at"`
	InvoiceURL     string    `db:"invoice_url"`
}

const InvoicePaid = "paid"

func (s *Subscription) transition(to Status) error {
	if !s.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, to)
	}
	s.Status = to
	return nil
}

// IsActive consults endDate live; a stored active status alone is not
// enough.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == StatusActive && s.EndDate != nil && s.EndDate.After(now)
}

func (s *Subscription) IsAboutToExpire(now time.Time, window time.Duration) bool {
	if !s.IsActive(now) {
		return false
	}
	return !s.EndDate.After(now.Add(window))
}

// IsLapsed reports a stored active record whose endDate has passed.
func (s *Subscription) IsLapsed(now time.Time) bool {
	return s.Status == StatusActive && !s.IsActive(now)
}

func (s *Subscription) Activate(
	now time.Time,
	plan Plan,
	method string,
	paymentID string,
) (*Invoice, error) {
	if err := s.transition(StatusActive); err != nil {
		return nil, err
	}

	end := plan.EndFrom(now)
	s.StartDate = &now
	s.EndDate = &end
	s.PaymentMethod = method

	invoice := Invoice{
		SubscriptionID: s.ID,
		InvoiceID:      paymentID,
		Amount:         s.Amount,
		Status:         InvoicePaid,
		PaidAt:         now,
	}
	s.Invoices = append(s.Invoices, invoice)

	return &invoice, nil
}

const DefaultCancellationReason = "User cancelled"

func (s *Subscription) Cancel(now time.Time, reason string) error {
	if err := s.transition(StatusCancelled); err != nil {
		return err
	}
	if reason == "" {
		reason = DefaultCancellationReason
	}
	s.CancellationReason = reason
	s.CancellationDate = &now
	return nil
}

func (s *Subscription) Expire() error {
	return s.transition(StatusExpired)
}

// Plan prices a subscription tier. Amount is in minor currency units.
type Plan struct {
	Name         string
	Amount       int64
	Currency     string
	PeriodMonths int
}

func (p Plan) EndFrom(start time.Time) time.Time {
	return start.AddDate(0, p.PeriodMonths, 0)
}

type Catalog map[string]Plan

func CatalogFromConfig(plans map[string]config.PlanConfig) Catalog {
	c := make(Catalog, len(plans))
	for name, p := range plans {
		c[name] = Plan{
			Name:         name,
			Amount:       p.Amount,
			Currency:     p.Currency,
			PeriodMonths: p.PeriodMonths,
		}
	}
	return c
}

func (c Catalog) Lookup(name string) (Plan, error) {
	p, ok := c[name]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownPlan, name)
	}
	return p, nil
}
