// AngelaMos | 2026
// repository.go

package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/neighborly/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, params ListParams) ([]Category, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
	CountChildren(ctx context.Context, id string) (int, error)
	CountListings(ctx context.Context, id string) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectColumns = `
	SELECT id, name, description, parent_id, form_fields, icon, is_active,
	       display_order, created_at, updated_at
	FROM service_categories`

func (r *repository) Create(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO service_categories (
			id, name, description, parent_id, form_fields, icon, is_active,
			display_order
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.ID,
		c.Name,
		c.Description,
		c.ParentID,
		c.FormFields,
		c.Icon,
		c.IsActive,
		c.DisplayOrder,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create category: %w", ErrNameTaken)
		}
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create category: %w", ErrUnknownParent)
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Category, error) {
	var c Category
	err := r.db.GetContext(ctx, &c, selectColumns+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &c, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]Category, error) {
	conditions := []string{"TRUE"}
	var args []any

	switch {
	case params.ParentID != "":
		args = append(args, params.ParentID)
		conditions = append(conditions, fmt.Sprintf("parent_id = $%d", len(args)))
	case params.RootOnly:
		conditions = append(conditions, "parent_id IS NULL")
	}

	if params.ActiveOnly {
		conditions = append(conditions, "is_active")
	}

	query := selectColumns +
		" WHERE " + strings.Join(conditions, " AND ") +
		" ORDER BY display_order, name"

	var categories []Category
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

func (r *repository) Update(ctx context.Context, c *Category) error {
	query := `
		UPDATE service_categories
		SET name = $2, description = $3, form_fields = $4, icon = $5,
		    is_active = $6, display_order = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID,
		c.Name,
		c.Description,
		c.FormFields,
		c.Icon,
		c.IsActive,
		c.DisplayOrder,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update category: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update category: %w", ErrNameTaken)
		}
		return fmt.Errorf("update category: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM service_categories WHERE id = $1`, id)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("delete category: %w", ErrInUse)
		}
		return fmt.Errorf("delete category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete category: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountChildren(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM service_categories WHERE parent_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("count subcategories: %w", err)
	}
	return n, nil
}

func (r *repository) CountListings(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `
		SELECT COUNT(*) FROM listings
		WHERE category_id = $1 OR sub_category_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("count category listings: %w", err)
	}
	return n, nil
}
