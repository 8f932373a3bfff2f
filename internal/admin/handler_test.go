// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/middleware"
	"github.com/carterperez-dev/neighborly/internal/rating"
	"github.com/carterperez-dev/neighborly/internal/subscription"
)

type fakeRatings struct {
	recomputed []string
	pending    int64
}

func (f *fakeRatings) Recompute(_ context.Context, listingID string) error {
	if listingID == "broken" {
		return errors.New("connection reset")
	}
	f.recomputed = append(f.recomputed, listingID)
	return nil
}

func (f *fakeRatings) DrainOnce(context.Context) (int, error) {
	n := int(f.pending)
	f.pending = 0
	return n, nil
}

func (f *fakeRatings) RepairAll(context.Context) (*rating.RepairReport, error) {
	return &rating.RepairReport{Scanned: 3, Repaired: 2, Failed: []string{"l3"}}, nil
}

func (f *fakeRatings) Pending(context.Context) (int64, error) {
	return f.pending, nil
}

type fakeSubscriptions struct {
	now    time.Time
	params subscription.ListParams
}

func (f *fakeSubscriptions) List(
	_ context.Context,
	params subscription.ListParams,
) ([]subscription.Subscription, int, error) {
	if params.Status != "" && !subscription.Status(params.Status).Valid() {
		return nil, 0, fmt.Errorf("list subscriptions: %w: status", core.ErrInvalidInput)
	}
	f.params = params
	start, end := f.now.Add(-29*24*time.Hour), f.now.Add(24*time.Hour)
	return []subscription.Subscription{{
		ID:         "s1",
		ProviderID: "p1",
		Status:     subscription.StatusActive,
		StartDate:  &start,
		EndDate:    &end,
	}}, 1, nil
}

func (f *fakeSubscriptions) Now() time.Time { return f.now }

func (f *fakeSubscriptions) ExpiryWarning() time.Duration { return 72 * time.Hour }

type fakeSweeper struct{ calls int }

func (f *fakeSweeper) SweepOnce(context.Context) (*subscription.SweepReport, error) {
	f.calls++
	return &subscription.SweepReport{Expired: 4, Notified: 1}, nil
}

func asCaller(c core.Caller) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(core.WithCaller(r.Context(), c)))
		})
	}
}

type fixture struct {
	router  chi.Router
	ratings *fakeRatings
	subs    *fakeSubscriptions
	sweeper *fakeSweeper
}

func newFixture(t *testing.T, role core.Role) *fixture {
	t.Helper()
	f := &fixture{
		ratings: &fakeRatings{pending: 2},
		subs:    &fakeSubscriptions{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		sweeper: &fakeSweeper{},
	}

	h := NewHandler(HandlerConfig{
		DBStats: func() sql.DBStats { return sql.DBStats{OpenConnections: 3, InUse: 1} },
		DBPing:  func(context.Context) error { return nil },
		RedisPing: func(context.Context) error {
			return errors.New("redis down")
		},
		Ratings:       f.ratings,
		Repairer:      f.ratings,
		Subscriptions: f.subs,
		Sweeper:       f.sweeper,
	})

	f.router = chi.NewRouter()
	h.RegisterRoutes(f.router, asCaller(core.Caller{ID: "a1", Role: role}), middleware.RequireAdmin)
	return f
}

func (f *fixture) do(t *testing.T, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	f := newFixture(t, core.RoleProvider)

	rec, _ := f.do(t, http.MethodPost, "/admin/subscriptions/sweep")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, f.sweeper.calls)
}

func TestSystemStats(t *testing.T) {
	f := newFixture(t, core.RoleAdmin)

	rec, body := f.do(t, http.MethodGet, "/admin/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["database"].(map[string]any)["healthy"])
	assert.Equal(t, false, data["redis"].(map[string]any)["healthy"])
	assert.EqualValues(t, 2, data["stale_aggregates"])
	assert.EqualValues(t, 3, data["database"].(map[string]any)["stats"].(map[string]any)["open_connections"])
}

func TestRatingMaintenance(t *testing.T) {
	f := newFixture(t, core.RoleAdmin)

	rec, _ := f.do(t, http.MethodPost, "/admin/listings/l1/recompute")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"l1"}, f.ratings.recomputed)

	rec, _ = f.do(t, http.MethodPost, "/admin/listings/broken/recompute")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	_, body := f.do(t, http.MethodGet, "/admin/ratings/stale")
	assert.EqualValues(t, 2, body["data"].(map[string]any)["pending"])

	_, body = f.do(t, http.MethodPost, "/admin/ratings/drain")
	assert.EqualValues(t, 2, body["data"].(map[string]any)["repaired"])

	_, body = f.do(t, http.MethodGet, "/admin/ratings/stale")
	assert.EqualValues(t, 0, body["data"].(map[string]any)["pending"])

	_, body = f.do(t, http.MethodPost, "/admin/ratings/repair")
	report := body["data"].(map[string]any)
	assert.EqualValues(t, 3, report["scanned"])
	assert.Equal(t, []any{"l3"}, report["failed"])
}

func TestSubscriptionOversight(t *testing.T) {
	f := newFixture(t, core.RoleAdmin)

	rec, body := f.do(t, http.MethodGet, "/admin/subscriptions?status=active&provider=p1&page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p1", f.subs.params.ProviderID)
	assert.Equal(t, 2, f.subs.params.Page)

	items := body["data"].([]any)
	require.Len(t, items, 1)
	first := items[0].(map[string]any)
	assert.Equal(t, true, first["is_active"])
	assert.Equal(t, true, first["is_about_to_expire"])

	rec, _ = f.do(t, http.MethodGet, "/admin/subscriptions?status=paused")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, body = f.do(t, http.MethodPost, "/admin/subscriptions/sweep")
	assert.EqualValues(t, 4, body["data"].(map[string]any)["expired"])
	assert.Equal(t, 1, f.sweeper.calls)
}
