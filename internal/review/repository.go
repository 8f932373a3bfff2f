// AngelaMos | 2026
// repository.go

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/carterperez-dev/neighborly/internal/core"
)

const uniqueListingCustomer = "reviews_listing_customer_key"

type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	Exists(ctx context.Context, listingID, customerID string) (bool, error)
	Update(ctx context.Context, id string, p Patch) (*Review, int, error)
	SetResponse(ctx context.Context, id, response string) (*Review, error)
	SetReport(ctx context.Context, id string, reported bool, reason *string) (*Review, error)
	Delete(ctx context.Context, id string) error
	ListByListing(ctx context.Context, listingID string, page core.PageParams) ([]Review, int, error)
	ListReported(ctx context.Context, page core.PageParams) ([]Review, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectColumns = `
	SELECT id, listing_id, customer_id, rating, comment, provider_response,
	       is_reported, report_reason, is_verified, service_date,
	       specific_ratings, created_at, updated_at
	FROM reviews`

const returningColumns = `
	RETURNING id, listing_id, customer_id, rating, comment, provider_response,
	          is_reported, report_reason, is_verified, service_date,
	          specific_ratings, created_at, updated_at`

func (r *repository) Create(ctx context.Context, rev *Review) error {
	query := `
		INSERT INTO reviews (
			id, listing_id, customer_id, rating, comment, service_date,
			specific_ratings
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		rev.ID,
		rev.ListingID,
		rev.CustomerID,
		rev.Rating,
		rev.Comment,
		rev.ServiceDate,
		rev.SpecificRatings,
	).Scan(&rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		switch {
		case core.IsUniqueViolation(err) &&
			core.ConstraintName(err) == uniqueListingCustomer:
			return fmt.Errorf("create review: %w", ErrAlreadyReviewed)
		case core.IsUniqueViolation(err):
			return fmt.Errorf("create review: %w", core.ErrDuplicateKey)
		case core.IsForeignKeyViolation(err):
			return fmt.Errorf("create review: listing: %w", core.ErrNotFound)
		case core.IsCheckViolation(err):
			return fmt.Errorf("create review: %w: rating out of range", core.ErrInvalidInput)
		}
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Review, error) {
	var rev Review
	err := r.db.GetContext(ctx, &rev, selectColumns+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	return &rev, nil
}

func (r *repository) Exists(ctx context.Context, listingID, customerID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM reviews WHERE listing_id = $1 AND customer_id = $2
		)`, listingID, customerID)
	if err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}
	return exists, nil
}

// Patch holds the fields an update supplies. Nil fields keep the stored
// value; a non-nil SpecificRatings with Valid false clears the column.
type Patch struct {
	Rating          *int
	Comment         *string
	ServiceDate     *time.Time
	SpecificRatings *types.NullJSONText
}

type patchedReview struct {
	Review
	PreviousRating int `db:"previous_rating"`
}

// Update applies p under a row lock and returns the stored row together
// with the rating it replaced, so callers compare against what was
// committed rather than what they read earlier.
func (r *repository) Update(ctx context.Context, id string, p Patch) (*Review, int, error) {
	var specific types.NullJSONText
	if p.SpecificRatings != nil {
		specific = *p.SpecificRatings
	}

	var row patchedReview
	err := r.db.GetContext(ctx, &row, `
		WITH prev AS (
			SELECT id, rating FROM reviews WHERE id = $1 FOR UPDATE
		)
		UPDATE reviews r
		SET rating = COALESCE($2, r.rating),
		    comment = COALESCE($3, r.comment),
		    service_date = COALESCE($4, r.service_date),
		    specific_ratings = CASE WHEN $5 THEN $6::jsonb ELSE r.specific_ratings END,
		    updated_at = NOW()
		FROM prev
		WHERE r.id = prev.id
		RETURNING r.id, r.listing_id, r.customer_id, r.rating, r.comment,
		          r.provider_response, r.is_reported, r.report_reason,
		          r.is_verified, r.service_date, r.specific_ratings,
		          r.created_at, r.updated_at, prev.rating AS previous_rating`,
		id,
		p.Rating,
		p.Comment,
		p.ServiceDate,
		p.SpecificRatings != nil,
		specific,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("update review: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsCheckViolation(err) {
			return nil, 0, fmt.Errorf("update review: %w: rating out of range", core.ErrInvalidInput)
		}
		return nil, 0, fmt.Errorf("update review: %w", err)
	}

	return &row.Review, row.PreviousRating, nil
}

func (r *repository) SetResponse(ctx context.Context, id, response string) (*Review, error) {
	var rev Review
	err := r.db.GetContext(ctx, &rev, `
		UPDATE reviews
		SET provider_response = $2, updated_at = NOW()
		WHERE id = $1`+returningColumns, id, response)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("respond to review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("respond to review: %w", err)
	}

	return &rev, nil
}

func (r *repository) SetReport(
	ctx context.Context,
	id string,
	reported bool,
	reason *string,
) (*Review, error) {
	var rev Review
	err := r.db.GetContext(ctx, &rev, `
		UPDATE reviews
		SET is_reported = $2, report_reason = $3, updated_at = NOW()
		WHERE id = $1`+returningColumns, id, reported, reason)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("report review: %w", err)
	}

	return &rev, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete review: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListByListing(
	ctx context.Context,
	listingID string,
	page core.PageParams,
) ([]Review, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM reviews WHERE listing_id = $1`, listingID)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	var reviews []Review
	err = r.db.SelectContext(ctx, &reviews, selectColumns+`
		WHERE listing_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`,
		listingID, page.PageSize, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}

func (r *repository) ListReported(
	ctx context.Context,
	page core.PageParams,
) ([]Review, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM reviews WHERE is_reported`)
	if err != nil {
		return nil, 0, fmt.Errorf("count reported reviews: %w", err)
	}

	var reviews []Review
	err = r.db.SelectContext(ctx, &reviews, selectColumns+`
		WHERE is_reported
		ORDER BY updated_at DESC, id
		LIMIT $1 OFFSET $2`,
		page.PageSize, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list reported reviews: %w", err)
	}

	return reviews, total, nil
}
