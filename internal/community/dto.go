// AngelaMos | 2026
// dto.go

package community

import (
	"time"
)

type Address struct {
	Street     string `json:"street"      validate:"required,max=200"`
	City       string `json:"city"        validate:"omitempty,max=100"`
	State      string `json:"state"       validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
}

type CreateRequest struct {
	Name        string   `json:"name"        validate:"required,min=1,max=100"`
	Address     Address  `json:"address"`
	Type        string   `json:"type"        validate:"required,oneof=apartment 'gated community' neighborhood"`
	Buildings   []string `json:"buildings"   validate:"required,min=1,dive,required,max=50"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Amenities   []string `json:"amenities"   validate:"omitempty,dive,max=50"`
	TotalUnits  int      `json:"total_units" validate:"gte=0"`
}

type UpdateRequest struct {
	Name        *string   `json:"name,omitempty"        validate:"omitempty,min=1,max=100"`
	Address     *Address  `json:"address,omitempty"`
	Buildings   *[]string `json:"buildings,omitempty"   validate:"omitempty,min=1,dive,required,max=50"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=500"`
	Amenities   *[]string `json:"amenities,omitempty"   validate:"omitempty,dive,max=50"`
	TotalUnits  *int      `json:"total_units,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool     `json:"is_active,omitempty"`
}

type CommunityResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     Address   `json:"address"`
	Type        string    `json:"type"`
	Buildings   []string  `json:"buildings"`
	Description string    `json:"description,omitempty"`
	Amenities   []string  `json:"amenities"`
	TotalUnits  int       `json:"total_units"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToResponse(c *Community) CommunityResponse {
	amenities := []string(c.Amenities)
	if amenities == nil {
		amenities = []string{}
	}

	return CommunityResponse{
		ID:   c.ID,
		Name: c.Name,
		Address: Address{
			Street:     c.Street,
			City:       c.City,
			State:      c.State,
			PostalCode: c.PostalCode,
		},
		Type:        c.Type,
		Buildings:   c.Buildings,
		Description: c.Description,
		Amenities:   amenities,
		TotalUnits:  c.TotalUnits,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ToResponseList(communities []Community) []CommunityResponse {
	out := make([]CommunityResponse, 0, len(communities))
	for i := range communities {
		out = append(out, ToResponse(&communities[i]))
	}
	return out
}
