// AngelaMos | 2026
// service.go

package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/carterperez-dev/neighborly/internal/core"
)

const detailReviewLimit = 50

var (
	ErrNotOwner = fmt.Errorf(
		"%w: listing belongs to another provider",
		core.ErrForbidden,
	)
	ErrNoCommunity = fmt.Errorf(
		"%w: provider is not a member of any community",
		core.ErrForbidden,
	)
)

type CategoryValidator interface {
	ValidatePlacement(ctx context.Context, categoryID string, subCategoryID *string) error
}

type Service struct {
	repo       Repository
	gate       *Gate
	categories CategoryValidator
	logger     *slog.Logger
}

func NewService(
	repo Repository,
	gate *Gate,
	categories CategoryValidator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		gate:       gate,
		categories: categories,
		logger:     logger.With("component", "listing"),
	}
}

// Create publishes a listing through the gate. Provider and community are
// stamped from the caller; nothing is written when the gate refuses.
func (s *Service) Create(
	ctx context.Context,
	caller core.Caller,
	req CreateRequest,
) (*Listing, error) {
	if err := s.gate.CanCreate(ctx, caller); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	if caller.CommunityID == "" {
		return nil, fmt.Errorf("create listing: %w", ErrNoCommunity)
	}

	if err := s.categories.ValidatePlacement(ctx, req.CategoryID, req.SubCategoryID); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	custom, err := encodeCustomFields(req.CustomFields)
	if err != nil {
		return nil, err
	}

	l := &Listing{
		ID:            uuid.New().String(),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		ProviderID:    caller.ID,
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		Tags:          req.Tags,
		PriceInfo:     req.PriceInfo,
		Availability:  req.Availability,
		Images:        req.Images,
		CommunityID:   caller.CommunityID,
		IsActive:      true,
		CustomFields:  custom,
	}
	if l.Images == nil {
		l.Images = []string{}
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("listing created",
		"listing_id", l.ID,
		"provider_id", l.ProviderID,
		"community_id", l.CommunityID,
	)

	return l, nil
}

// Update edits a listing. Only the owner or an admin may do so; the
// subscription gate does not apply to existing listings.
func (s *Service) Update(
	ctx context.Context,
	caller core.Caller,
	id string,
	req UpdateRequest,
) (*Listing, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !caller.CanModify(l.ProviderID) {
		return nil, fmt.Errorf("update listing: %w", ErrNotOwner)
	}

	placementChanged := false
	if req.CategoryID != nil && *req.CategoryID != l.CategoryID {
		l.CategoryID = *req.CategoryID
		l.SubCategoryID = nil
		placementChanged = true
	}
	if req.SubCategoryID != nil {
		l.SubCategoryID = req.SubCategoryID
		placementChanged = true
	}
	if placementChanged {
		if err := s.categories.ValidatePlacement(ctx, l.CategoryID, l.SubCategoryID); err != nil {
			return nil, fmt.Errorf("update listing: %w", err)
		}
	}

	if req.Title != nil {
		l.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Tags != nil {
		l.Tags = *req.Tags
	}
	if req.PriceInfo != nil {
		l.PriceInfo = *req.PriceInfo
	}
	if req.Availability != nil {
		l.Availability = *req.Availability
	}
	if req.Images != nil {
		l.Images = *req.Images
	}
	if req.IsActive != nil {
		l.IsActive = *req.IsActive
	}
	if req.CustomFields != nil {
		custom, err := encodeCustomFields(*req.CustomFields)
		if err != nil {
			return nil, err
		}
		l.CustomFields = custom
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) Delete(ctx context.Context, caller core.Caller, id string) error {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !caller.CanModify(l.ProviderID) {
		return fmt.Errorf("delete listing: %w", ErrNotOwner)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("listing deleted", "listing_id", id, "by", caller.ID)
	return nil
}

// Get returns the listing with its stored aggregate, provider and most
// recent reviews.
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	provider, err := s.repo.Provider(ctx, l.ProviderID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	reviews, err := s.repo.Reviews(ctx, id, detailReviewLimit)
	if err != nil {
		return nil, err
	}

	return &Detail{Listing: l, Provider: provider, Reviews: reviews}, nil
}

func (s *Service) Lookup(ctx context.Context, id string) (*Listing, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(
	ctx context.Context,
	params SearchParams,
) ([]Listing, int, error) {
	if params.MinRating != nil && params.MaxRating != nil &&
		*params.MinRating > *params.MaxRating {
		return nil, 0, fmt.Errorf(
			"search listings: %w: min_rating exceeds max_rating",
			core.ErrInvalidInput,
		)
	}

	switch params.Sort {
	case "", SortNewest, SortOldest, SortRating, SortReviews, SortTitle:
	default:
		return nil, 0, fmt.Errorf("search listings: %w: unknown sort %q", core.ErrInvalidInput, params.Sort)
	}

	return s.repo.Search(ctx, params)
}

func encodeCustomFields(fields map[string]any) (types.JSONText, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: custom_fields: %w", core.ErrInvalidInput, err)
	}
	return types.JSONText(raw), nil
}
