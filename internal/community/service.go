// AngelaMos | 2026
// service.go

package community

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/neighborly/internal/core"
)

var ErrUnknownBuilding = fmt.Errorf(
	"%w: building is not part of the community",
	core.ErrInvalidInput,
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Community, error) {
	c := &Community{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Street:      req.Address.Street,
		City:        orDefault(req.Address.City, DefaultCity),
		State:       orDefault(req.Address.State, DefaultState),
		PostalCode:  req.Address.PostalCode,
		Type:        req.Type,
		Buildings:   req.Buildings,
		Description: req.Description,
		Amenities:   req.Amenities,
		TotalUnits:  req.TotalUnits,
		IsActive:    true,
	}
	if c.Amenities == nil {
		c.Amenities = []string{}
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Community, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	activeOnly bool,
	page core.PageParams,
) ([]Community, int, error) {
	page.Normalize()
	return s.repo.List(ctx, activeOnly, page)
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateRequest,
) (*Community, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Address != nil {
		c.Street = req.Address.Street
		c.City = orDefault(req.Address.City, c.City)
		c.State = orDefault(req.Address.State, c.State)
		c.PostalCode = req.Address.PostalCode
	}
	if req.Buildings != nil {
		c.Buildings = *req.Buildings
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Amenities != nil {
		c.Amenities = *req.Amenities
	}
	if req.TotalUnits != nil {
		c.TotalUnits = *req.TotalUnits
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// ValidateResidence confirms a registering user's community exists, is
// active and contains their building.
func (s *Service) ValidateResidence(
	ctx context.Context,
	communityID, building string,
) error {
	c, err := s.repo.GetByID(ctx, communityID)
	if errors.Is(err, core.ErrNotFound) || (err == nil && !c.IsActive) {
		return fmt.Errorf("%w: community does not exist", core.ErrInvalidInput)
	}
	if err != nil {
		return err
	}

	if !c.HasBuilding(building) {
		return fmt.Errorf("%w: %q", ErrUnknownBuilding, building)
	}

	return nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
