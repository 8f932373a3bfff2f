// AngelaMos | 2026
// fakes_test.go

package subscription

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/payment"
)

type memRepo struct {
	mu       sync.Mutex
	subs     map[string]*Subscription
	invoices map[string][]Invoice
	seq      int
}

func newMemRepo() *memRepo {
	return &memRepo{
		subs:     make(map[string]*Subscription),
		invoices: make(map[string][]Invoice),
	}
}

func (r *memRepo) Create(_ context.Context, s *Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.subs {
		if existing.ProviderID == s.ProviderID && existing.Status.IsCurrent() {
			return fmt.Errorf("create subscription: %w", ErrCurrentExists)
		}
	}

	r.seq++
	cp := *s
	cp.CreatedAt = time.Unix(int64(r.seq), 0)
	r.subs[s.ID] = &cp
	return nil
}

func (r *memRepo) find(pred func(*Subscription) bool) (*Subscription, error) {
	var matches []*Subscription
	for _, s := range r.subs {
		if pred(s) {
			matches = append(matches, s)
		}
	}
	if len(matches) == 0 {
		return nil, core.ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	cp := *matches[0]
	return &cp, nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(s *Subscription) bool { return s.ID == id })
}

func (r *memRepo) GetCurrent(_ context.Context, providerID string) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(s *Subscription) bool {
		return s.ProviderID == providerID && s.Status.IsCurrent()
	})
}

func (r *memRepo) GetByGatewayID(_ context.Context, orderID string) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(s *Subscription) bool {
		return s.PaymentGatewayID != nil && *s.PaymentGatewayID == orderID
	})
}

func (r *memRepo) GetLiveActive(
	_ context.Context,
	providerID string,
	now time.Time,
) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(s *Subscription) bool {
		return s.ProviderID == providerID &&
			s.Status == StatusActive &&
			s.EndDate != nil && s.EndDate.After(now)
	})
}

func (r *memRepo) Activate(_ context.Context, s *Subscription, inv *Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.subs[s.ID]
	if !ok || stored.Status != StatusPending {
		return ErrInvalidTransition
	}
	stored.Status = StatusActive
	stored.StartDate = s.StartDate
	stored.EndDate = s.EndDate
	stored.PaymentMethod = s.PaymentMethod
	r.invoices[s.ID] = append(r.invoices[s.ID], *inv)
	return nil
}

func (r *memRepo) Transition(_ context.Context, s *Subscription, from Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.subs[s.ID]
	if !ok || stored.Status != from {
		return ErrInvalidTransition
	}
	stored.Status = s.Status
	stored.CancellationReason = s.CancellationReason
	stored.CancellationDate = s.CancellationDate
	return nil
}

func (r *memRepo) ExpireDue(_ context.Context, now time.Time, limit int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, s := range r.subs {
		if int(n) == limit {
			break
		}
		if s.Status == StatusActive && s.EndDate != nil && !s.EndDate.After(now) {
			s.Status = StatusExpired
			n++
		}
	}
	return n, nil
}

func (r *memRepo) ListExpiring(
	_ context.Context,
	now, until time.Time,
	limit int,
) ([]Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Subscription
	for _, s := range r.subs {
		if s.Status == StatusActive && s.EndDate != nil &&
			s.EndDate.After(now) && !s.EndDate.After(until) && len(out) < limit {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memRepo) List(_ context.Context, p ListParams) ([]Subscription, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Subscription
	for _, s := range r.subs {
		if p.Status != "" && string(s.Status) != p.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (r *memRepo) Invoices(_ context.Context, id string) ([]Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Invoice(nil), r.invoices[id]...), nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

func (r *memRepo) status(id string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subs[id].Status
}

type fakeGateway struct {
	mu        sync.Mutex
	orders    int
	createErr error
	verifyErr error
}

func (g *fakeGateway) Name() string { return "razorpay" }

func (g *fakeGateway) CreateOrder(
	_ context.Context,
	req payment.OrderRequest,
) (*payment.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.orders++
	return &payment.Order{
		ID:       fmt.Sprintf("order_%d", g.orders),
		Amount:   req.Amount,
		Currency: req.Currency,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) VerifyPayment(_ context.Context, c payment.Confirmation) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verifyErr != nil {
		return g.verifyErr
	}
	if c.Signature != "good" {
		return payment.ErrInvalidSignature
	}
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent map[string]bool
	err  error
}

func (n *fakeNotifier) NotifyExpiring(_ context.Context, notice ExpiryNotice) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return false, n.err
	}
	if n.sent == nil {
		n.sent = make(map[string]bool)
	}
	if n.sent[notice.SubscriptionID] {
		return false, nil
	}
	n.sent[notice.SubscriptionID] = true
	return true, nil
}

var errTimeout = errors.New("context deadline exceeded")
