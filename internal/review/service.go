// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/listing"
)

type ListingLookup interface {
	Lookup(ctx context.Context, id string) (*listing.Listing, error)
}

// Recomputer refreshes a listing's stored rating aggregate.
type Recomputer interface {
	Recompute(ctx context.Context, listingID string) error
}

type Service struct {
	repo       Repository
	listings   ListingLookup
	aggregator Recomputer
	logger     *slog.Logger
}

func NewService(
	repo Repository,
	listings ListingLookup,
	aggregator Recomputer,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		listings:   listings,
		aggregator: aggregator,
		logger:     logger.With("component", "review"),
	}
}

// Create records a customer's review of a listing and refreshes the
// listing's aggregate. A customer reviews a listing at most once.
func (s *Service) Create(
	ctx context.Context,
	caller core.Caller,
	listingID string,
	req CreateRequest,
) (*Review, error) {
	if _, err := s.listings.Lookup(ctx, listingID); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if caller.Role != core.RoleCustomer {
		return nil, fmt.Errorf("create review: %w", ErrNotCustomer)
	}

	if err := validateRating(req.Rating); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	if err := validateComment(req.Comment); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	if err := validateSpecificRatings(req.SpecificRatings); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	exists, err := s.repo.Exists(ctx, listingID, caller.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("create review: %w", ErrAlreadyReviewed)
	}

	specific, err := encodeSpecificRatings(req.SpecificRatings)
	if err != nil {
		return nil, err
	}

	rev := &Review{
		ID:              uuid.New().String(),
		ListingID:       listingID,
		CustomerID:      caller.ID,
		Rating:          req.Rating,
		Comment:         strings.TrimSpace(req.Comment),
		ServiceDate:     req.ServiceDate,
		SpecificRatings: specific,
	}

	if err := s.repo.Create(ctx, rev); err != nil {
		return nil, err
	}

	s.logger.Info("review created",
		"review_id", rev.ID,
		"listing_id", listingID,
		"customer_id", caller.ID,
		"rating", rev.Rating,
	)

	s.recompute(ctx, listingID)

	return rev, nil
}

// Update patches the caller's review. The listing aggregate is refreshed
// when the stored rating changes, compared against the row the write
// replaced.
func (s *Service) Update(
	ctx context.Context,
	caller core.Caller,
	id string,
	req UpdateRequest,
) (*Review, error) {
	rev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !caller.CanModify(rev.CustomerID) {
		return nil, fmt.Errorf("update review: %w", ErrNotOwner)
	}

	var patch Patch
	if req.Rating != nil {
		if err := validateRating(*req.Rating); err != nil {
			return nil, fmt.Errorf("update review: %w", err)
		}
		patch.Rating = req.Rating
	}
	if req.Comment != nil {
		if err := validateComment(*req.Comment); err != nil {
			return nil, fmt.Errorf("update review: %w", err)
		}
		comment := strings.TrimSpace(*req.Comment)
		patch.Comment = &comment
	}
	patch.ServiceDate = req.ServiceDate
	if req.SpecificRatings != nil {
		if err := validateSpecificRatings(*req.SpecificRatings); err != nil {
			return nil, fmt.Errorf("update review: %w", err)
		}
		specific, err := encodeSpecificRatings(*req.SpecificRatings)
		if err != nil {
			return nil, err
		}
		patch.SpecificRatings = &specific
	}

	updated, previous, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	if updated.Rating != previous {
		s.recompute(ctx, updated.ListingID)
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, caller core.Caller, id string) error {
	rev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !caller.CanModify(rev.CustomerID) {
		return fmt.Errorf("delete review: %w", ErrNotOwner)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("review deleted",
		"review_id", id,
		"listing_id", rev.ListingID,
		"by", caller.ID,
	)

	s.recompute(ctx, rev.ListingID)

	return nil
}

// Respond sets the provider's public reply. Only the provider who owns the
// reviewed listing may respond.
func (s *Service) Respond(
	ctx context.Context,
	caller core.Caller,
	id string,
	req RespondRequest,
) (*Review, error) {
	rev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	l, err := s.listings.Lookup(ctx, rev.ListingID)
	if err != nil {
		return nil, fmt.Errorf("respond to review: %w", err)
	}

	if caller.Role != core.RoleProvider || caller.ID != l.ProviderID {
		return nil, fmt.Errorf("respond to review: %w", ErrNotListingProvider)
	}

	response := strings.TrimSpace(req.Response)
	if response == "" || len([]rune(response)) > MaxCommentLength {
		return nil, fmt.Errorf(
			"respond to review: %w: response must be 1 to 500 characters",
			core.ErrInvalidInput,
		)
	}

	return s.repo.SetResponse(ctx, id, response)
}

// Report flags a review for moderation.
func (s *Service) Report(
	ctx context.Context,
	caller core.Caller,
	id string,
	req ReportRequest,
) (*Review, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" || len([]rune(reason)) > 200 {
		return nil, fmt.Errorf(
			"report review: %w: reason must be 1 to 200 characters",
			core.ErrInvalidInput,
		)
	}

	rev, err := s.repo.SetReport(ctx, id, true, &reason)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review reported", "review_id", id, "by", caller.ID)
	return rev, nil
}

// Dismiss clears a report after moderation.
func (s *Service) Dismiss(ctx context.Context, caller core.Caller, id string) (*Review, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("dismiss report: %w", core.ErrForbidden)
	}

	rev, err := s.repo.SetReport(ctx, id, false, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("review report dismissed", "review_id", id, "by", caller.ID)
	return rev, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Review, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListForListing(
	ctx context.Context,
	listingID string,
	page core.PageParams,
) ([]Review, int, error) {
	if _, err := s.listings.Lookup(ctx, listingID); err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	page.Normalize()
	return s.repo.ListByListing(ctx, listingID, page)
}

func (s *Service) ListReported(ctx context.Context, page core.PageParams) ([]Review, int, error) {
	page.Normalize()
	return s.repo.ListReported(ctx, page)
}

// recompute runs after the review write has committed. Its failure never
// fails the caller's request; the aggregator queues the listing for repair.
func (s *Service) recompute(ctx context.Context, listingID string) {
	err := s.aggregator.Recompute(context.WithoutCancel(ctx), listingID)
	if err != nil {
		s.logger.Error("rating recompute failed",
			"listing_id", listingID,
			"error", err,
		)
	}
}

func encodeSpecificRatings(ratings map[string]int) (types.NullJSONText, error) {
	if len(ratings) == 0 {
		return types.NullJSONText{}, nil
	}
	raw, err := json.Marshal(ratings)
	if err != nil {
		return types.NullJSONText{}, fmt.Errorf("%w: specific_ratings: %w", core.ErrInvalidInput, err)
	}
	return types.NullJSONText{JSONText: raw, Valid: true}, nil
}
