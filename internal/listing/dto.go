// AngelaMos | 2026
// dto.go

package listing

import (
	"encoding/json"
	"time"

	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/rating"
)

// CreateRequest carries no provider or community: both are stamped from
// the authenticated caller.
type CreateRequest struct {
	Title         string         `json:"title"           validate:"required,min=1,max=100"`
	Description   string         `json:"description"     validate:"required,max=1000"`
	CategoryID    string         `json:"category_id"     validate:"required,uuid"`
	SubCategoryID *string        `json:"sub_category_id" validate:"omitempty,uuid"`
	Tags          []string       `json:"tags"            validate:"required,min=1,max=20,dive,required,max=50"`
	PriceInfo     string         `json:"price_info"      validate:"required,max=200"`
	Availability  string         `json:"availability"    validate:"required,max=200"`
	Images        []string       `json:"images"          validate:"omitempty,max=10,dive,url"`
	CustomFields  map[string]any `json:"custom_fields"`
}

type UpdateRequest struct {
	Title         *string         `json:"title,omitempty"           validate:"omitempty,min=1,max=100"`
	Description   *string         `json:"description,omitempty"     validate:"omitempty,max=1000"`
	CategoryID    *string         `json:"category_id,omitempty"     validate:"omitempty,uuid"`
	SubCategoryID *string         `json:"sub_category_id,omitempty" validate:"omitempty,uuid"`
	Tags          *[]string       `json:"tags,omitempty"            validate:"omitempty,min=1,max=20,dive,required,max=50"`
	PriceInfo     *string         `json:"price_info,omitempty"      validate:"omitempty,max=200"`
	Availability  *string         `json:"availability,omitempty"    validate:"omitempty,max=200"`
	Images        *[]string       `json:"images,omitempty"          validate:"omitempty,max=10,dive,url"`
	IsActive      *bool           `json:"is_active,omitempty"`
	CustomFields  *map[string]any `json:"custom_fields,omitempty"`
}

type SearchParams struct {
	core.PageParams
	CommunityID   string
	CategoryID    string
	SubCategoryID string
	ProviderID    string
	Active        *bool
	MinRating     *float64
	MaxRating     *float64
	Tags          []string
	Query         string
	Sort          string
}

type ListingResponse struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ProviderID    string          `json:"provider_id"`
	CategoryID    string          `json:"category_id"`
	SubCategoryID *string         `json:"sub_category_id"`
	Tags          []string        `json:"tags"`
	PriceInfo     string          `json:"price_info"`
	Availability  string          `json:"availability"`
	Images        []string        `json:"images"`
	CommunityID   string          `json:"community_id"`
	AverageRating rating.Average  `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
	IsActive      bool            `json:"is_active"`
	CustomFields  json.RawMessage `json:"custom_fields"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ProviderResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type ReviewResponse struct {
	ID               string     `json:"id"`
	CustomerID       string     `json:"customer_id"`
	CustomerName     string     `json:"customer_name"`
	Rating           int        `json:"rating"`
	Comment          string     `json:"comment"`
	ProviderResponse *string    `json:"provider_response"`
	IsVerified       bool       `json:"is_verified"`
	ServiceDate      *time.Time `json:"service_date"`
	CreatedAt        time.Time  `json:"created_at"`
}

type DetailResponse struct {
	ListingResponse
	Provider *ProviderResponse `json:"provider"`
	Reviews  []ReviewResponse  `json:"reviews"`
}

func ToResponse(l *Listing) ListingResponse {
	custom := json.RawMessage(l.CustomFields)
	if len(custom) == 0 {
		custom = json.RawMessage("{}")
	}

	return ListingResponse{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		ProviderID:    l.ProviderID,
		CategoryID:    l.CategoryID,
		SubCategoryID: l.SubCategoryID,
		Tags:          nonNil(l.Tags),
		PriceInfo:     l.PriceInfo,
		Availability:  l.Availability,
		Images:        nonNil(l.Images),
		CommunityID:   l.CommunityID,
		AverageRating: rating.NewAverage(l.AverageRating, l.ReviewCount),
		ReviewCount:   l.ReviewCount,
		IsActive:      l.IsActive,
		CustomFields:  custom,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func ToResponseList(listings []Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, ToResponse(&listings[i]))
	}
	return out
}

func ToDetailResponse(d *Detail) DetailResponse {
	resp := DetailResponse{
		ListingResponse: ToResponse(d.Listing),
		Reviews:         make([]ReviewResponse, 0, len(d.Reviews)),
	}

	if d.Provider != nil {
		resp.Provider = &ProviderResponse{
			ID:        d.Provider.ID,
			FirstName: d.Provider.FirstName,
			LastName:  d.Provider.LastName,
			Email:     d.Provider.Email,
			Phone:     d.Provider.Phone,
		}
	}

	for _, rv := range d.Reviews {
		resp.Reviews = append(resp.Reviews, ReviewResponse{
			ID:               rv.ID,
			CustomerID:       rv.CustomerID,
			CustomerName:     rv.CustomerFirstName + " " + rv.CustomerLastName,
			Rating:           rv.Rating,
			Comment:          rv.Comment,
			ProviderResponse: rv.ProviderResponse,
			IsVerified:       rv.IsVerified,
			ServiceDate:      rv.ServiceDate,
			CreatedAt:        rv.CreatedAt,
		})
	}

	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
