// AngelaMos | 2026
// service_test.go

package subscription

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/neighborly/internal/config"
	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/payment"
)

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testConfig() config.SubscriptionConfig {
	return config.SubscriptionConfig{
		Plans: map[string]config.PlanConfig{
			"basic": {Amount: 49900, Currency: "INR", PeriodMonths: 1},
		},
		SweepInterval:  time.Minute,
		ExpiryWarning:  DefaultExpiryWarning,
		SweepBatchSize: 10,
	}
}

type fixture struct {
	svc     *Service
	repo    *memRepo
	gateway *fakeGateway
	clock   *testClock
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newMemRepo(),
		gateway: &fakeGateway{},
		clock:   &testClock{t: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)},
	}
	f.svc = NewService(f.repo, f.gateway, testConfig(), nil, WithClock(f.clock.now))
	return f
}

var provider = core.Caller{ID: "prov-1", Role: core.RoleProvider, CommunityID: "c1"}

func (f *fixture) subscribe(t *testing.T) *Subscription {
	t.Helper()
	ctx := context.Background()

	res, err := f.svc.Create(ctx, provider, CreateRequest{Plan: "basic"})
	require.NoError(t, err)

	sub, err := f.svc.VerifyPayment(ctx, provider, VerifyRequest{
		OrderID:   res.Order.OrderID,
		PaymentID: "pay_" + res.Order.OrderID,
		Signature: "good",
	})
	require.NoError(t, err)
	return sub
}

func TestCreateOpensPendingRecord(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Create(context.Background(), provider, CreateRequest{Plan: "basic"})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, res.Subscription.Status)
	assert.Equal(t, "order_1", res.Order.OrderID)
	assert.Equal(t, int64(49900), res.Order.Amount)
	assert.Equal(t, "INR", res.Order.Currency)
	assert.Equal(t, "order_1", *res.Subscription.PaymentGatewayID)

	allowed, err := f.svc.IsPublishingAllowed(context.Background(), provider.ID)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCreateRejectsNonProvider(t *testing.T) {
	f := newFixture()
	customer := core.Caller{ID: "cust-1", Role: core.RoleCustomer}

	_, err := f.svc.Create(context.Background(), customer, CreateRequest{Plan: "basic"})
	assert.Equal(t, core.KindForbidden, core.ErrorKind(err))
	assert.Zero(t, f.repo.count())
}

func TestCreateUnknownPlan(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), provider, CreateRequest{Plan: "gold"})
	assert.Equal(t, core.KindValidation, core.ErrorKind(err))
	assert.Zero(t, f.gateway.orders)
}

func TestCreateGatewayFailurePersistsNothing(t *testing.T) {
	f := newFixture()
	f.gateway.createErr = fmt.Errorf("%w: razorpay unreachable", core.ErrExternal)

	_, err := f.svc.Create(context.Background(), provider, CreateRequest{Plan: "basic"})
	require.Error(t, err)
	assert.Equal(t, core.KindExternal, core.ErrorKind(err))
	assert.Zero(t, f.repo.count())
}

func TestCreateWhileCurrentExists(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, provider, CreateRequest{Plan: "basic"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, provider, CreateRequest{Plan: "basic"})
	assert.True(t, errors.Is(err, ErrCurrentExists))
	assert.Equal(t, core.KindConflict, core.ErrorKind(err))
	assert.Equal(t, 1, f.repo.count())
}

func TestVerifyActivatesAndAllowsPublishing(t *testing.T) {
	f := newFixture()
	sub := f.subscribe(t)

	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, f.clock.t.AddDate(0, 1, 0), *sub.EndDate)
	assert.Equal(t, StatusActive, f.repo.status(sub.ID))

	allowed, err := f.svc.IsPublishingAllowed(context.Background(), provider.ID)
	require.NoError(t, err)
	assert.True(t, allowed)

	current, err := f.svc.GetCurrent(context.Background(), provider)
	require.NoError(t, err)
	require.Len(t, current.Invoices, 1)
	assert.Equal(t, InvoicePaid, current.Invoices[0].Status)
}

func TestVerifyBadSignatureLeavesPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Create(ctx, provider, CreateRequest{Plan: "basic"})
	require.NoError(t, err)

	_, err = f.svc.VerifyPayment(ctx, provider, VerifyRequest{
		OrderID:   res.Order.OrderID,
		PaymentID: "pay_x",
		Signature: "forged",
	})
	require.Error(t, err)
	assert.True(t, payment.IsInvalidSignature(err))
	assert.Equal(t, core.KindValidation, core.ErrorKind(err))
	assert.Equal(t, StatusPending, f.repo.status(res.Subscription.ID))
}

func TestVerifyGatewayTimeoutLeavesPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Create(ctx, provider, CreateRequest{Plan: "basic"})
	require.NoError(t, err)

	f.gateway.verifyErr = errTimeout
	_, err = f.svc.VerifyPayment(ctx, provider, VerifyRequest{
		OrderID:   res.Order.OrderID,
		PaymentID: "pay_x",
		Signature: "good",
	})
	require.Error(t, err)
	assert.Equal(t, core.KindExternal, core.ErrorKind(err))
	assert.Equal(t, StatusPending, f.repo.status(res.Subscription.ID))

	f.gateway.verifyErr = nil
	sub, err := f.svc.VerifyPayment(ctx, provider, VerifyRequest{
		OrderID:   res.Order.OrderID,
		PaymentID: "pay_x",
		Signature: "good",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, sub.Status)
}

func TestVerifyRejectsOtherProvider(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Create(ctx, provider, CreateRequest{Plan: "basic"})
	require.NoError(t, err)

	other := core.Caller{ID: "prov-2", Role: core.RoleProvider}
	_, err = f.svc.VerifyPayment(ctx, other, VerifyRequest{
		OrderID:   res.Order.OrderID,
		PaymentID: "pay_x",
		Signature: "good",
	})
	assert.Equal(t, core.KindForbidden, core.ErrorKind(err))
}

func TestVerifyUnknownOrder(t *testing.T) {
	f := newFixture()

	_, err := f.svc.VerifyPayment(context.Background(), provider, VerifyRequest{
		OrderID:   "order_missing",
		PaymentID: "pay_x",
		Signature: "good",
	})
	assert.Equal(t, core.KindNotFound, core.ErrorKind(err))
}

func TestVerifyTwiceIsConflict(t *testing.T) {
	f := newFixture()
	sub := f.subscribe(t)

	_, err := f.svc.VerifyPayment(context.Background(), provider, VerifyRequest{
		OrderID:   *sub.PaymentGatewayID,
		PaymentID: "pay_again",
		Signature: "good",
	})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestCancelledSubscriptionCannotReactivate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sub := f.subscribe(t)

	cancelled, err := f.svc.Cancel(ctx, provider, CancelRequest{})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, DefaultCancellationReason, cancelled.CancellationReason)

	_, err = f.svc.VerifyPayment(ctx, provider, VerifyRequest{
		OrderID:   *sub.PaymentGatewayID,
		PaymentID: "pay_again",
		Signature: "good",
	})
	assert.Equal(t, core.KindConflict, core.ErrorKind(err))
	assert.Equal(t, StatusCancelled, f.repo.status(sub.ID))

	allowed, err := f.svc.IsPublishingAllowed(ctx, provider.ID)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCancelPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, provider, CreateRequest{Plan: "basic"})
	require.NoError(t, err)

	sub, err := f.svc.Cancel(ctx, provider, CancelRequest{Reason: "changed my mind"})
	require.NoError(t, err)
	assert.Equal(t, "changed my mind", sub.CancellationReason)

	_, err = f.svc.Cancel(ctx, provider, CancelRequest{})
	assert.Equal(t, core.KindNotFound, core.ErrorKind(err))
}

func TestLapsedSubscriptionBlocksPublishingAndIsExpiredOnRenew(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sub := f.subscribe(t)

	f.clock.advance(40 * 24 * time.Hour)

	allowed, err := f.svc.IsPublishingAllowed(ctx, provider.ID)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, StatusActive, f.repo.status(sub.ID))

	res, err := f.svc.Create(ctx, provider, CreateRequest{Plan: "basic"})
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, f.repo.status(sub.ID))
	assert.Equal(t, StatusPending, res.Subscription.Status)
}

func TestCancelLapsedSubscriptionExpiresIt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	sub := f.subscribe(t)

	f.clock.advance(40 * 24 * time.Hour)

	_, err := f.svc.Cancel(ctx, provider, CancelRequest{Reason: "too late"})
	assert.Equal(t, core.KindNotFound, core.ErrorKind(err))
	assert.True(t, errors.Is(err, ErrNoCurrent))
	assert.Equal(t, StatusExpired, f.repo.status(sub.ID))
}

func TestIsAboutToExpire(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.subscribe(t)

	soon, err := f.svc.IsAboutToExpire(ctx, provider.ID)
	require.NoError(t, err)
	assert.False(t, soon)

	f.clock.advance(25 * 24 * time.Hour)
	soon, err = f.svc.IsAboutToExpire(ctx, provider.ID)
	require.NoError(t, err)
	assert.True(t, soon)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.List(context.Background(), ListParams{Status: "paused"})
	assert.Equal(t, core.KindValidation, core.ErrorKind(err))
}
