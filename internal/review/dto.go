// AngelaMos | 2026
// dto.go

package review

import (
	"encoding/json"
	"time"
)

// Rating and comment are range-checked again in the service so non-HTTP
// callers get the same guarantees.
type CreateRequest struct {
	Rating          int            `json:"rating"           validate:"required,min=1,max=5"`
	Comment         string         `json:"comment"          validate:"required,max=500"`
	ServiceDate     *time.Time     `json:"service_date"`
	SpecificRatings map[string]int `json:"specific_ratings" validate:"omitempty,max=10,dive,min=1,max=5"`
}

type UpdateRequest struct {
	Rating          *int            `json:"rating,omitempty"           validate:"omitempty,min=1,max=5"`
	Comment         *string         `json:"comment,omitempty"          validate:"omitempty,max=500"`
	ServiceDate     *time.Time      `json:"service_date,omitempty"`
	SpecificRatings *map[string]int `json:"specific_ratings,omitempty"`
}

type RespondRequest struct {
	Response string `json:"response" validate:"required,max=500"`
}

type ReportRequest struct {
	Reason string `json:"reason" validate:"required,max=200"`
}

type ReviewResponse struct {
	ID               string          `json:"id"`
	ListingID        string          `json:"listing_id"`
	CustomerID       string          `json:"customer_id"`
	Rating           int             `json:"rating"`
	Comment          string          `json:"comment"`
	ProviderResponse *string         `json:"provider_response"`
	IsReported       bool            `json:"is_reported"`
	ReportReason     *string         `json:"report_reason,omitempty"`
	IsVerified       bool            `json:"is_verified"`
	ServiceDate      *time.Time      `json:"service_date"`
	SpecificRatings  json.RawMessage `json:"specific_ratings"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func ToResponse(r *Review) ReviewResponse {
	specific := json.RawMessage("null")
	if r.SpecificRatings.Valid && len(r.SpecificRatings.JSONText) > 0 {
		specific = json.RawMessage(r.SpecificRatings.JSONText)
	}

	return ReviewResponse{
		ID:               r.ID,
		ListingID:        r.ListingID,
		CustomerID:       r.CustomerID,
		Rating:           r.Rating,
		Comment:          r.Comment,
		ProviderResponse: r.ProviderResponse,
		IsReported:       r.IsReported,
		ReportReason:     r.ReportReason,
		IsVerified:       r.IsVerified,
		ServiceDate:      r.ServiceDate,
		SpecificRatings:  specific,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func ToResponseList(reviews []Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, ToResponse(&reviews[i]))
	}
	return out
}
