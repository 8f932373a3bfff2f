// AngelaMos | 2026
// fakes_test.go

package review

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/listing"
	"github.com/carterperez-dev/neighborly/internal/rating"
)

type memRepo struct {
	mu      sync.Mutex
	reviews map[string]*Review
}

func newMemRepo() *memRepo {
	return &memRepo{reviews: make(map[string]*Review)}
}

func (r *memRepo) Create(_ context.Context, rev *Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.ListingID == rev.ListingID && existing.CustomerID == rev.CustomerID {
			return ErrAlreadyReviewed
		}
	}
	cp := *rev
	r.reviews[rev.ID] = &cp
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *rev
	return &cp, nil
}

func (r *memRepo) Exists(_ context.Context, listingID, customerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rev := range r.reviews {
		if rev.ListingID == listingID && rev.CustomerID == customerID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) Update(_ context.Context, id string, p Patch) (*Review, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return nil, 0, core.ErrNotFound
	}
	previous := rev.Rating
	if p.Rating != nil {
		rev.Rating = *p.Rating
	}
	if p.Comment != nil {
		rev.Comment = *p.Comment
	}
	if p.ServiceDate != nil {
		rev.ServiceDate = p.ServiceDate
	}
	if p.SpecificRatings != nil {
		rev.SpecificRatings = *p.SpecificRatings
	}
	cp := *rev
	return &cp, previous, nil
}

// pausingRepo holds the first GetByID issued for a paused review id until
// release is closed.
type pausingRepo struct {
	*memRepo
	pauseID string
	reached chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *pausingRepo) GetByID(ctx context.Context, id string) (*Review, error) {
	rev, err := r.memRepo.GetByID(ctx, id)
	if id == r.pauseID {
		paused := false
		r.once.Do(func() { paused = true })
		if paused {
			close(r.reached)
			<-r.release
		}
	}
	return rev, err
}

func (r *memRepo) SetResponse(_ context.Context, id, response string) (*Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	rev.ProviderResponse = &response
	cp := *rev
	return &cp, nil
}

func (r *memRepo) SetReport(_ context.Context, id string, reported bool, reason *string) (*Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rev, ok := r.reviews[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	rev.IsReported = reported
	rev.ReportReason = reason
	cp := *rev
	return &cp, nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[id]; !ok {
		return core.ErrNotFound
	}
	delete(r.reviews, id)
	return nil
}

func (r *memRepo) ListByListing(
	_ context.Context,
	listingID string,
	_ core.PageParams,
) ([]Review, int, error) {
	return r.filter(func(rev *Review) bool { return rev.ListingID == listingID })
}

func (r *memRepo) ListReported(_ context.Context, _ core.PageParams) ([]Review, int, error) {
	return r.filter(func(rev *Review) bool { return rev.IsReported })
}

func (r *memRepo) filter(keep func(*Review) bool) ([]Review, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Review
	for _, rev := range r.reviews {
		if keep(rev) {
			out = append(out, *rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *memRepo) ratings(listingID string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int
	for _, rev := range r.reviews {
		if rev.ListingID == listingID {
			out = append(out, rev.Rating)
		}
	}
	return out
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reviews)
}

type stubListings struct {
	listings map[string]*listing.Listing
}

func (s *stubListings) Lookup(_ context.Context, id string) (*listing.Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return l, nil
}

// ratingStore stores aggregates computed over the reviews held by memRepo,
// standing in for the listings table.
type ratingStore struct {
	mu         sync.Mutex
	reviews    *memRepo
	aggregates map[string]rating.Aggregate
}

func (s *ratingStore) Apply(
	_ context.Context,
	listingID string,
	compute func([]int) rating.Aggregate,
) (rating.Aggregate, error) {
	agg := compute(s.reviews.ratings(listingID))
	s.mu.Lock()
	s.aggregates[listingID] = agg
	s.mu.Unlock()
	return agg, nil
}

func (s *ratingStore) ListingIDs(context.Context, string, int) ([]string, error) {
	return nil, nil
}

func (s *ratingStore) aggregate(listingID string) rating.Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aggregates[listingID]
}

type nopQueue struct{}

func (nopQueue) Push(context.Context, ...string) error { return nil }
func (nopQueue) PopBatch(context.Context, int) ([]string, error) { return nil, nil }
func (nopQueue) Len(context.Context) (int64, error) { return 0, nil }

type countingRecomputer struct {
	mu    sync.Mutex
	next  Recomputer
	calls int
}

func (c *countingRecomputer) Recompute(ctx context.Context, listingID string) error {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.next.Recompute(ctx, listingID)
}

func (c *countingRecomputer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type failingRecomputer struct{}

func (failingRecomputer) Recompute(context.Context, string) error {
	return errors.New("connection refused")
}
