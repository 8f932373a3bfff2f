// AngelaMos | 2026
// repository.go

package community

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/neighborly/internal/core"
)

var ErrInUse = fmt.Errorf("%w: community still has members or listings", core.ErrConflict)

type Repository interface {
	Create(ctx context.Context, c *Community) error
	GetByID(ctx context.Context, id string) (*Community, error)
	List(ctx context.Context, activeOnly bool, page core.PageParams) ([]Community, int, error)
	Update(ctx context.Context, c *Community) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectColumns = `
	SELECT id, name, street, city, state, postal_code, type, buildings,
	       description, amenities, total_units, is_active, created_at, updated_at
	FROM communities`

func (r *repository) Create(ctx context.Context, c *Community) error {
	query := `
		INSERT INTO communities (
			id, name, street, city, state, postal_code, type, buildings,
			description, amenities, total_units, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		c.ID,
		c.Name,
		c.Street,
		c.City,
		c.State,
		c.PostalCode,
		c.Type,
		c.Buildings,
		c.Description,
		c.Amenities,
		c.TotalUnits,
		c.IsActive,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if core.IsCheckViolation(err) {
			return fmt.Errorf("create community: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("create community: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Community, error) {
	var c Community
	err := r.db.GetContext(ctx, &c, selectColumns+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get community: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get community: %w", err)
	}

	return &c, nil
}

func (r *repository) List(
	ctx context.Context,
	activeOnly bool,
	page core.PageParams,
) ([]Community, int, error) {
	where := ""
	if activeOnly {
		where = " WHERE is_active"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM communities"+where); err != nil {
		return nil, 0, fmt.Errorf("count communities: %w", err)
	}

	query := selectColumns + where + ` ORDER BY name LIMIT $1 OFFSET $2`

	var communities []Community
	if err := r.db.SelectContext(ctx, &communities, query, page.PageSize, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list communities: %w", err)
	}

	return communities, total, nil
}

func (r *repository) Update(ctx context.Context, c *Community) error {
	query := `
		UPDATE communities
		SET name = $2, street = $3, city = $4, state = $5, postal_code = $6,
		    buildings = $7, description = $8, amenities = $9, total_units = $10,
		    is_active = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID,
		c.Name,
		c.Street,
		c.City,
		c.State,
		c.PostalCode,
		c.Buildings,
		c.Description,
		c.Amenities,
		c.TotalUnits,
		c.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update community: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update community: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM communities WHERE id = $1`, id)
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("delete community: %w", ErrInUse)
		}
		return fmt.Errorf("delete community: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete community: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete community: %w", core.ErrNotFound)
	}

	return nil
}
