// AngelaMos | 2026
// entity_test.go

package subscription

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/neighborly/internal/core"
)

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusPending, StatusActive, StatusCancelled, StatusExpired}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusActive}:    true,
		{StatusPending, StatusCancelled}: true,
		{StatusActive, StatusCancelled}:  true,
		{StatusActive, StatusExpired}:    true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatesRejectReactivation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	plan := Plan{Name: "basic", Amount: 49900, Currency: "INR", PeriodMonths: 1}

	for _, status := range []Status{StatusCancelled, StatusExpired} {
		assert.True(t, status.IsTerminal())
		sub := &Subscription{ID: "s1", Status: status}
		_, err := sub.Activate(now, plan, "razorpay", "pay_1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidTransition))
		assert.Equal(t, core.KindConflict, core.ErrorKind(err))
		assert.Equal(t, status, sub.Status)
		assert.Empty(t, sub.Invoices)
	}
}

func TestActivate(t *testing.T) {
	now := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
	sub := &Subscription{ID: "s1", Status: StatusPending, Amount: 49900}
	plan := Plan{Name: "basic", PeriodMonths: 1}

	invoice, err := sub.Activate(now, plan, "razorpay", "pay_1")
	require.NoError(t, err)

	assert.Equal(t, StatusActive, sub.Status)
	assert.Equal(t, now, *sub.StartDate)
	assert.Equal(t, now.AddDate(0, 1, 0), *sub.EndDate)
	assert.Equal(t, "razorpay", sub.PaymentMethod)
	assert.Equal(t, "pay_1", invoice.InvoiceID)
	assert.Equal(t, int64(49900), invoice.Amount)
	assert.Equal(t, InvoicePaid, invoice.Status)
	assert.Len(t, sub.Invoices, 1)
}

func TestCancelDefaultsReason(t *testing.T) {
	now := time.Now()
	sub := &Subscription{Status: StatusActive}

	require.NoError(t, sub.Cancel(now, ""))
	assert.Equal(t, StatusCancelled, sub.Status)
	assert.Equal(t, DefaultCancellationReason, sub.CancellationReason)
	assert.Equal(t, now, *sub.CancellationDate)

	assert.Error(t, sub.Cancel(now, "again"))
}

func TestIsActiveUsesEndDateLive(t *testing.T) {
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(3 * 24 * time.Hour)
	farFuture := now.Add(30 * 24 * time.Hour)

	tests := []struct {
		name        string
		sub         Subscription
		active      bool
		aboutToExpr bool
	}{
		{"active in window", Subscription{Status: StatusActive, EndDate: &future}, true, true},
		{"active far out", Subscription{Status: StatusActive, EndDate: &farFuture}, true, false},
		{"stale active", Subscription{Status: StatusActive, EndDate: &past}, false, false},
		{"ends exactly now", Subscription{Status: StatusActive, EndDate: &now}, false, false},
		{"pending", Subscription{Status: StatusPending}, false, false},
		{"cancelled", Subscription{Status: StatusCancelled, EndDate: &future}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.active, tt.sub.IsActive(now))
			assert.Equal(t, tt.aboutToExpr, tt.sub.IsAboutToExpire(now, DefaultExpiryWarning))
		})
	}
}

func TestCatalogLookup(t *testing.T) {
	c := Catalog{"basic": {Name: "basic", Amount: 49900, Currency: "INR", PeriodMonths: 1}}

	p, err := c.Lookup("basic")
	require.NoError(t, err)
	assert.Equal(t, int64(49900), p.Amount)

	_, err = c.Lookup("platinum")
	assert.Equal(t, core.KindValidation, core.ErrorKind(err))
}
