// AngelaMos | 2026
// repository.go

package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/carterperez-dev/neighborly/internal/core"
)

var dialect = goqu.Dialect("postgres")

type Repository interface {
	Create(ctx context.Context, l *Listing) error
	GetByID(ctx context.Context, id string) (*Listing, error)
	Update(ctx context.Context, l *Listing) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, params SearchParams) ([]Listing, int, error)
	Provider(ctx context.Context, providerID string) (*ProviderSummary, error)
	Reviews(ctx context.Context, listingID string, limit int) ([]ReviewSummary, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func columns() []any {
	return []any{
		"id", "title", "description", "provider_id", "category_id",
		"sub_category_id", "tags", "price_info", "availability", "images",
		"community_id",
		goqu.L("average_rating::float8").As("average_rating"),
		"review_count", "is_active", "custom_fields", "created_at", "updated_at",
	}
}

// Create inserts the listing. average_rating and review_count are left to
// their column defaults.
func (r *repository) Create(ctx context.Context, l *Listing) error {
	query, args, err := dialect.Insert("listings").
		Prepared(true).
		Rows(goqu.Record{
			"id":              l.ID,
			"title":           l.Title,
			"description":     l.Description,
			"provider_id":     l.ProviderID,
			"category_id":     l.CategoryID,
			"sub_category_id": l.SubCategoryID,
			"tags":            l.Tags,
			"price_info":      l.PriceInfo,
			"availability":    l.Availability,
			"images":          l.Images,
			"community_id":    l.CommunityID,
			"is_active":       l.IsActive,
			"custom_fields":   l.CustomFields,
		}).
		Returning("created_at", "updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build listing insert: %w", err)
	}

	if err := r.db.QueryRowxContext(ctx, query, args...).
		Scan(&l.CreatedAt, &l.UpdatedAt); err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("create listing: %w: unknown reference", core.ErrInvalidInput)
		}
		return fmt.Errorf("create listing: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Listing, error) {
	query, args, err := dialect.From("listings").
		Prepared(true).
		Select(columns()...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build listing query: %w", err)
	}

	var l Listing
	err = r.db.GetContext(ctx, &l, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get listing: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	return &l, nil
}

// Update writes the editable fields only. Ownership, community and the
// rating aggregate are never part of the statement.
func (r *repository) Update(ctx context.Context, l *Listing) error {
	query, args, err := dialect.Update("listings").
		Prepared(true).
		Set(goqu.Record{
			"title":           l.Title,
			"description":     l.Description,
			"category_id":     l.CategoryID,
			"sub_category_id": l.SubCategoryID,
			"tags":            l.Tags,
			"price_info":      l.PriceInfo,
			"availability":    l.Availability,
			"images":          l.Images,
			"is_active":       l.IsActive,
			"custom_fields":   l.CustomFields,
			"updated_at":      goqu.L("NOW()"),
		}).
		Where(goqu.C("id").Eq(l.ID)).
		Returning("updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build listing update: %w", err)
	}

	err = r.db.GetContext(ctx, &l.UpdatedAt, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update listing: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsForeignKeyViolation(err) {
			return fmt.Errorf("update listing: %w: unknown reference", core.ErrInvalidInput)
		}
		return fmt.Errorf("update listing: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete listing: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Search(
	ctx context.Context,
	params SearchParams,
) ([]Listing, int, error) {
	params.Normalize()

	ds := dialect.From("listings").Prepared(true).Where(filters(params)...)

	countQuery, countArgs, err := ds.Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build listing count: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	query, args, err := ds.Select(columns()...).
		Order(ordering(params.Sort)...).
		Limit(uint(params.PageSize)).
		Offset(uint(params.Offset())).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build listing search: %w", err)
	}

	var listings []Listing
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("search listings: %w", err)
	}

	return listings, total, nil
}

func filters(p SearchParams) []exp.Expression {
	var where []exp.Expression

	eq := map[string]string{
		"community_id":    p.CommunityID,
		"category_id":     p.CategoryID,
		"sub_category_id": p.SubCategoryID,
		"provider_id":     p.ProviderID,
	}
	for _, col := range []string{"community_id", "category_id", "sub_category_id", "provider_id"} {
		if v := eq[col]; v != "" {
			where = append(where, goqu.C(col).Eq(v))
		}
	}

	if p.Active != nil {
		where = append(where, goqu.C("is_active").Eq(*p.Active))
	}
	if p.MinRating != nil {
		where = append(where, goqu.C("average_rating").Gte(*p.MinRating))
	}
	if p.MaxRating != nil {
		where = append(where, goqu.C("average_rating").Lte(*p.MaxRating))
	}
	if len(p.Tags) > 0 {
		where = append(where, goqu.L("tags @> ?", pq.StringArray(p.Tags)))
	}
	if p.Query != "" {
		pattern := "%" + core.EscapeLike(p.Query) + "%"
		where = append(where, goqu.Or(
			goqu.C("title").ILike(pattern),
			goqu.C("description").ILike(pattern),
		))
	}

	return where
}

func ordering(sort string) []exp.OrderedExpression {
	switch sort {
	case SortOldest:
		return []exp.OrderedExpression{goqu.C("created_at").Asc(), goqu.C("id").Asc()}
	case SortRating:
		return []exp.OrderedExpression{
			goqu.C("average_rating").Desc(),
			goqu.C("review_count").Desc(),
			goqu.C("id").Asc(),
		}
	case SortReviews:
		return []exp.OrderedExpression{goqu.C("review_count").Desc(), goqu.C("id").Asc()}
	case SortTitle:
		return []exp.OrderedExpression{goqu.C("title").Asc(), goqu.C("id").Asc()}
	default:
		return []exp.OrderedExpression{goqu.C("created_at").Desc(), goqu.C("id").Asc()}
	}
}

func (r *repository) Provider(
	ctx context.Context,
	providerID string,
) (*ProviderSummary, error) {
	query := `
		SELECT id, first_name, last_name, email, phone
		FROM users
		WHERE id = $1`

	var p ProviderSummary
	err := r.db.GetContext(ctx, &p, query, providerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get listing provider: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing provider: %w", err)
	}

	return &p, nil
}

func (r *repository) Reviews(
	ctx context.Context,
	listingID string,
	limit int,
) ([]ReviewSummary, error) {
	query := `
		SELECT r.id, r.customer_id, u.first_name, u.last_name, r.rating,
		       r.comment, r.provider_response, r.is_verified, r.service_date,
		       r.created_at
		FROM reviews r
		JOIN users u ON u.id = r.customer_id
		WHERE r.listing_id = $1
		ORDER BY r.created_at DESC
		LIMIT $2`

	var reviews []ReviewSummary
	if err := r.db.SelectContext(ctx, &reviews, query, listingID, limit); err != nil {
		return nil, fmt.Errorf("list listing reviews: %w", err)
	}

	return reviews, nil
}
