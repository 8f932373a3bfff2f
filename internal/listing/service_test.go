// AngelaMos | 2026
// service_test.go

package listing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/neighborly/internal/core"
)

type memRepo struct {
	mu       sync.Mutex
	listings map[string]*Listing
	creates  int
}

func newMemRepo() *memRepo {
	return &memRepo{listings: make(map[string]*Listing)}
}

func (r *memRepo) Create(_ context.Context, l *Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *memRepo) Update(_ context.Context, l *Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.listings[l.ID]
	if !ok {
		return core.ErrNotFound
	}
	cp := *l
	cp.ProviderID = stored.ProviderID
	cp.CommunityID = stored.CommunityID
	cp.AverageRating = stored.AverageRating
	cp.ReviewCount = stored.ReviewCount
	r.listings[l.ID] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return core.ErrNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *memRepo) Search(_ context.Context, _ SearchParams) ([]Listing, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Listing
	for _, l := range r.listings {
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (r *memRepo) Provider(_ context.Context, id string) (*ProviderSummary, error) {
	return &ProviderSummary{ID: id, FirstName: "Asha", LastName: "Rao"}, nil
}

func (r *memRepo) Reviews(_ context.Context, _ string, _ int) ([]ReviewSummary, error) {
	return []ReviewSummary{{ID: "r1", Rating: 4, Comment: "good"}}, nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates
}

type stubChecker struct {
	allowed map[string]bool
	err     error
}

func (c *stubChecker) IsPublishingAllowed(_ context.Context, providerID string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.allowed[providerID], nil
}

type stubCategories struct {
	err error
}

func (c *stubCategories) ValidatePlacement(context.Context, string, *string) error {
	return c.err
}

var (
	subscribed   = core.Caller{ID: "p1", Role: core.RoleProvider, CommunityID: "c1"}
	unsubscribed = core.Caller{ID: "p2", Role: core.RoleProvider, CommunityID: "c1"}
	customer     = core.Caller{ID: "u1", Role: core.RoleCustomer, CommunityID: "c1"}
	admin        = core.Caller{ID: "a1", Role: core.RoleAdmin}
)

func newTestService() (*Service, *memRepo, *stubChecker, *stubCategories) {
	repo := newMemRepo()
	checker := &stubChecker{allowed: map[string]bool{"p1": true}}
	categories := &stubCategories{}
	return NewService(repo, NewGate(checker), categories, nil), repo, checker, categories
}

func createRequest() CreateRequest {
	return CreateRequest{
		Title:        "Home tutoring",
		Description:  "Maths and science for grades 6-10",
		CategoryID:   "11111111-1111-1111-1111-111111111111",
		Tags:         []string{"tutoring", "maths"},
		PriceInfo:    "500/hour",
		Availability: "Weekends",
	}
}

func TestGateCanCreate(t *testing.T) {
	checkerErr := errors.New("db down")

	tests := []struct {
		name    string
		caller  core.Caller
		checker *stubChecker
		want    error
	}{
		{"subscribed provider", subscribed, &stubChecker{allowed: map[string]bool{"p1": true}}, nil},
		{"provider without subscription", unsubscribed, &stubChecker{}, ErrSubscriptionRequired},
		{"customer", customer, &stubChecker{allowed: map[string]bool{"u1": true}}, ErrNotProvider},
		{"admin", admin, &stubChecker{allowed: map[string]bool{"a1": true}}, ErrNotProvider},
		{"checker failure", subscribed, &stubChecker{err: checkerErr}, checkerErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewGate(tt.checker).CanCreate(context.Background(), tt.caller)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestCreateStampsProviderAndCommunity(t *testing.T) {
	svc, repo, _, _ := newTestService()

	l, err := svc.Create(context.Background(), subscribed, createRequest())
	require.NoError(t, err)

	assert.Equal(t, "p1", l.ProviderID)
	assert.Equal(t, "c1", l.CommunityID)
	assert.True(t, l.IsActive)
	assert.Zero(t, l.ReviewCount)
	assert.JSONEq(t, `{}`, string(l.CustomFields))
	assert.Equal(t, 1, repo.count())
}

func TestCreateWithoutSubscriptionIsForbidden(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.Create(context.Background(), unsubscribed, createRequest())
	assert.Equal(t, core.KindForbidden, core.ErrorKind(err))
	assert.Zero(t, repo.count())

	_, err = svc.Create(context.Background(), customer, createRequest())
	assert.Equal(t, core.KindForbidden, core.ErrorKind(err))
	assert.Zero(t, repo.count())
}

func TestCreateRejectsBadCategory(t *testing.T) {
	svc, repo, _, categories := newTestService()
	categories.err = core.ErrInvalidInput

	_, err := svc.Create(context.Background(), subscribed, createRequest())
	assert.Equal(t, core.KindValidation, core.ErrorKind(err))
	assert.Zero(t, repo.count())
}

func TestCreateRequiresCommunity(t *testing.T) {
	svc, repo, checker, _ := newTestService()
	homeless := core.Caller{ID: "p3", Role: core.RoleProvider}
	checker.allowed["p3"] = true

	_, err := svc.Create(context.Background(), homeless, createRequest())
	assert.True(t, errors.Is(err, ErrNoCommunity))
	assert.Zero(t, repo.count())
}

func TestUpdateOwnershipAndNoGate(t *testing.T) {
	ctx := context.Background()
	svc, _, checker, _ := newTestService()

	l, err := svc.Create(ctx, subscribed, createRequest())
	require.NoError(t, err)

	checker.allowed["p1"] = false

	title := "Evening tutoring"
	updated, err := svc.Update(ctx, subscribed, l.ID, UpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Evening tutoring", updated.Title)

	_, err = svc.Update(ctx, unsubscribed, l.ID, UpdateRequest{Title: &title})
	assert.True(t, errors.Is(err, ErrNotOwner))

	inactive := false
	updated, err = svc.Update(ctx, admin, l.ID, UpdateRequest{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "c1", updated.CommunityID)

	_, err = svc.Update(ctx, admin, "missing", UpdateRequest{})
	assert.Equal(t, core.KindNotFound, core.ErrorKind(err))
}

func TestUpdateCategoryClearsSubCategory(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	req := createRequest()
	sub := "22222222-2222-2222-2222-222222222222"
	req.SubCategoryID = &sub
	l, err := svc.Create(ctx, subscribed, req)
	require.NoError(t, err)

	other := "33333333-3333-3333-3333-333333333333"
	updated, err := svc.Update(ctx, subscribed, l.ID, UpdateRequest{CategoryID: &other})
	require.NoError(t, err)
	assert.Equal(t, other, updated.CategoryID)
	assert.Nil(t, updated.SubCategoryID)
}

func TestDeleteOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	l, err := svc.Create(ctx, subscribed, createRequest())
	require.NoError(t, err)

	assert.Equal(t, core.KindForbidden, core.ErrorKind(svc.Delete(ctx, customer, l.ID)))
	require.NoError(t, svc.Delete(ctx, admin, l.ID))
	assert.Equal(t, core.KindNotFound, core.ErrorKind(svc.Delete(ctx, admin, l.ID)))
}

func TestGetIncludesReviewsAndNullAverage(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestService()

	l, err := svc.Create(ctx, subscribed, createRequest())
	require.NoError(t, err)

	detail, err := svc.Get(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, "Asha", detail.Provider.FirstName)

	resp := ToDetailResponse(detail)
	assert.False(t, resp.AverageRating.Valid)
}

func TestSearchValidatesParams(t *testing.T) {
	svc, _, _, _ := newTestService()
	lo, hi := 4.0, 2.0

	_, _, err := svc.Search(context.Background(), SearchParams{MinRating: &lo, MaxRating: &hi})
	assert.Equal(t, core.KindValidation, core.ErrorKind(err))

	_, _, err = svc.Search(context.Background(), SearchParams{Sort: "price"})
	assert.Equal(t, core.KindValidation, core.ErrorKind(err))

	_, _, err = svc.Search(context.Background(), SearchParams{Sort: SortRating})
	assert.NoError(t, err)
}
