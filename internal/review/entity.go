// AngelaMos | 2026
// entity.go

package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/carterperez-dev/neighborly/internal/core"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 500
)

type Review struct {
	ID               string             `db:"id"`
	ListingID        string             `db:"listing_id"`
	CustomerID       string             `db:"customer_id"`
	Rating           int                `db:"rating"`
	Comment          string             `db:"comment"`
	ProviderResponse *string            `db:"provider_response"`
	IsReported       bool               `db:"is_reported"`
	ReportReason     *string            `db:"report_reason"`
	IsVerified       bool               `db:"is_verified"`
	ServiceDate      *time.Time         `db:"service_date"`
	SpecificRatings  types.NullJSONText `db:"specific_ratings"`
	CreatedAt        time.Time          `db:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at"`
}

var (
	ErrAlreadyReviewed = fmt.Errorf(
		"%w: you have already reviewed this listing",
		core.ErrConflict,
	)
	ErrNotCustomer = fmt.Errorf(
		"%w: only customers can submit reviews",
		core.ErrForbidden,
	)
	ErrNotOwner = fmt.Errorf(
		"%w: review belongs to another customer",
		core.ErrForbidden,
	)
	ErrNotListingProvider = fmt.Errorf(
		"%w: only the listing's provider can respond",
		core.ErrForbidden,
	)
)

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating must be between 1 and 5", core.ErrInvalidInput)
	}
	return nil
}

func validateComment(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return fmt.Errorf("%w: comment is required", core.ErrInvalidInput)
	}
	if len([]rune(comment)) > MaxCommentLength {
		return fmt.Errorf("%w: comment cannot exceed 500 characters", core.ErrInvalidInput)
	}
	return nil
}

func validateSpecificRatings(ratings map[string]int) error {
	for aspect, r := range ratings {
		if validateRating(r) != nil {
			return fmt.Errorf(
				"%w: %s rating must be between 1 and 5",
				core.ErrInvalidInput,
				aspect,
			)
		}
	}
	return nil
}
