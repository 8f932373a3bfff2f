// AngelaMos | 2026
// entity.go

package listing

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// Listing is a service offered by a provider inside their community.
// AverageRating and ReviewCount are owned by the rating aggregator and are
// read-only here.
type Listing struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	ProviderID    string         `db:"provider_id"`
	CategoryID    string         `db:"category_id"`
	SubCategoryID *string        `db:"sub_category_id"`
	Tags          pq.StringArray `db:"tags"`
	PriceInfo     string         `db:"price_info"`
	Availability  string         `db:"availability"`
	Images        pq.StringArray `db:"images"`
	CommunityID   string         `db:"community_id"`
	AverageRating float64        `db:"average_rating"`
	ReviewCount   int            `db:"review_count"`
	IsActive      bool           `db:"is_active"`
	CustomFields  types.JSONText `db:"custom_fields"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type ProviderSummary struct {
	ID        string `db:"id"`
	FirstName string `db:"first_name"`
	LastName  string `db:"last_name"`
	Email     string `db:"email"`
	Phone     string `db:"phone"`
}

type ReviewSummary struct {
	ID                string     `db:"id"`
	CustomerID        string     `db:"customer_id"`
	CustomerFirstName string     `db:"first_name"`
	CustomerLastName  string     `db:"last_name"`
	Rating            int        `db:"rating"`
	Comment           string     `db:"comment"`
	ProviderResponse  *string    `db:"provider_response"`
	IsVerified        bool       `db:"is_verified"`
	ServiceDate       *time.Time `db:"service_date"`
	CreatedAt         time.Time  `db:"created_at"`
}

// Detail is a listing with its live aggregate, provider and reviews.
type Detail struct {
	Listing  *Listing
	Provider *ProviderSummary
	Reviews  []ReviewSummary
}

const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortRating  = "rating"
	SortReviews = "reviews"
	SortTitle   = "title"
)
