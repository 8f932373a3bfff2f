// AngelaMos | 2026
// service.go

package category

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/carterperez-dev/neighborly/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Category, error) {
	if req.ParentID != nil {
		if _, err := s.repo.GetByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil, fmt.Errorf("create category: %w", ErrUnknownParent)
			}
			return nil, err
		}
	}

	fields, err := encodeFields(req.FormFields)
	if err != nil {
		return nil, err
	}

	c := &Category{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		ParentID:     req.ParentID,
		FormFields:   fields,
		Icon:         req.Icon,
		IsActive:     true,
		DisplayOrder: req.DisplayOrder,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Category, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Category, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Update(
	ctx context.Context,
	id string,
	req UpdateRequest,
) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.FormFields != nil {
		fields, err := encodeFields(*req.FormFields)
		if err != nil {
			return nil, err
		}
		c.FormFields = fields
	}
	if req.Icon != nil {
		c.Icon = *req.Icon
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.DisplayOrder != nil {
		c.DisplayOrder = *req.DisplayOrder
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Delete refuses while subcategories or listings still point at the
// category.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("delete category: %w: %d subcategories", ErrInUse, children)
	}

	listings, err := s.repo.CountListings(ctx, id)
	if err != nil {
		return err
	}
	if listings > 0 {
		return fmt.Errorf("delete category: %w: %d listings", ErrInUse, listings)
	}

	return s.repo.Delete(ctx, id)
}

// ValidatePlacement checks that a listing can be filed under the category
// and, when given, that the subcategory is a direct child of it.
func (s *Service) ValidatePlacement(
	ctx context.Context,
	categoryID string,
	subCategoryID *string,
) error {
	if _, err := s.repo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: category does not exist", core.ErrInvalidInput)
		}
		return err
	}

	if subCategoryID == nil {
		return nil
	}

	sub, err := s.repo.GetByID(ctx, *subCategoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("%w: subcategory does not exist", core.ErrInvalidInput)
		}
		return err
	}

	if sub.ParentID == nil || *sub.ParentID != categoryID {
		return fmt.Errorf(
			"%w: subcategory does not belong to category",
			core.ErrInvalidInput,
		)
	}

	return nil
}

func encodeFields(fields []FormField) (types.JSONText, error) {
	if fields == nil {
		fields = []FormField{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode form fields: %w", err)
	}
	return types.JSONText(raw), nil
}
