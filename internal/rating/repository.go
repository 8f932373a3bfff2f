// AngelaMos | 2026
// repository.go

package rating

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/neighborly/internal/core"
)

// Repository is the only writer of listings.average_rating and
// listings.review_count.
type Repository interface {
	// Apply locks the listing, reads all of its ratings, and stores the
	// aggregate produced by compute, atomically. A missing listing returns
	// core.ErrNotFound.
	Apply(
		ctx context.Context,
		listingID string,
		compute func(ratings []int) Aggregate,
	) (Aggregate, error)
	ListingIDs(ctx context.Context, afterID string, limit int) ([]string, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Apply(
	ctx context.Context,
	listingID string,
	compute func(ratings []int) Aggregate,
) (Aggregate, error) {
	var agg Aggregate

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var id string
		err := tx.GetContext(ctx, &id,
			`SELECT id FROM listings WHERE id = $1 FOR UPDATE`,
			listingID,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock listing: %w", err)
		}

		var ratings []int
		err = tx.SelectContext(ctx, &ratings,
			`SELECT rating FROM reviews WHERE listing_id = $1`,
			listingID,
		)
		if err != nil {
			return fmt.Errorf("read ratings: %w", err)
		}

		agg = compute(ratings)

		_, err = tx.ExecContext(ctx, `
			UPDATE listings
			SET average_rating = $2, review_count = $3
			WHERE id = $1`,
			listingID, agg.Average, agg.Count,
		)
		if err != nil {
			return fmt.Errorf("write aggregate: %w", err)
		}

		return nil
	})
	if err != nil {
		return Aggregate{}, fmt.Errorf("apply aggregate: %w", err)
	}

	return agg, nil
}

func (r *repository) ListingIDs(
	ctx context.Context,
	afterID string,
	limit int,
) ([]string, error) {
	query := `
		SELECT id FROM listings
		WHERE ($1 = '' OR id::text > $1)
		ORDER BY id::text
		LIMIT $2`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, afterID, limit); err != nil {
		return nil, fmt.Errorf("list listing ids: %w", err)
	}

	return ids, nil
}
