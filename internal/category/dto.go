// AngelaMos | 2026
// dto.go

package category

import (
	"encoding/json"
	"time"
)

type CreateRequest struct {
	Name         string      `json:"name"          validate:"required,min=1,max=50"`
	Description  string      `json:"description"   validate:"required,max=500"`
	ParentID     *string     `json:"parent_id"     validate:"omitempty,uuid"`
	FormFields   []FormField `json:"form_fields"   validate:"omitempty,dive"`
	Icon         string      `json:"icon"          validate:"omitempty,max=100"`
	DisplayOrder int         `json:"display_order" validate:"gte=0"`
}

type UpdateRequest struct {
	Name         *string      `json:"name,omitempty"          validate:"omitempty,min=1,max=50"`
	Description  *string      `json:"description,omitempty"   validate:"omitempty,max=500"`
	FormFields   *[]FormField `json:"form_fields,omitempty"   validate:"omitempty,dive"`
	Icon         *string      `json:"icon,omitempty"          validate:"omitempty,max=100"`
	IsActive     *bool        `json:"is_active,omitempty"`
	DisplayOrder *int         `json:"display_order,omitempty" validate:"omitempty,gte=0"`
}

type ListParams struct {
	ParentID   string
	RootOnly   bool
	ActiveOnly bool
}

type CategoryResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	ParentID     *string         `json:"parent_id"`
	FormFields   json.RawMessage `json:"form_fields"`
	Icon         string          `json:"icon,omitempty"`
	IsActive     bool            `json:"is_active"`
	DisplayOrder int             `json:"display_order"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func ToResponse(c *Category) CategoryResponse {
	fields := json.RawMessage(c.FormFields)
	if len(fields) == 0 {
		fields = json.RawMessage("[]")
	}

	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ParentID:     c.ParentID,
		FormFields:   fields,
		Icon:         c.Icon,
		IsActive:     c.IsActive,
		DisplayOrder: c.DisplayOrder,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func ToResponseList(categories []Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, ToResponse(&categories[i]))
	}
	return out
}
