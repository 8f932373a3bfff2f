// AngelaMos | 2026
// entity.go

package category

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/carterperez-dev/neighborly/internal/core"
)

type Category struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Description  string         `db:"description"`
	ParentID     *string        `db:"parent_id"`
	FormFields   types.JSONText `db:"form_fields"`
	Icon         string         `db:"icon"`
	IsActive     bool           `db:"is_active"`
	DisplayOrder int            `db:"display_order"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// FormField describes one provider-facing input a category asks for when
// a listing is created under it.
type FormField struct {
	Name        string        `json:"name"                  validate:"required,max=50"`
	Label       string        `json:"label"                 validate:"required,max=100"`
	Type        string        `json:"type"                  validate:"required,oneof=text textarea select multiselect checkbox radio file date"`
	Options     []FieldOption `json:"options,omitempty"     validate:"omitempty,dive"`
	Required    bool          `json:"required"`
	Placeholder string        `json:"placeholder,omitempty" validate:"omitempty,max=200"`
	HelpText    string        `json:"help_text,omitempty"   validate:"omitempty,max=500"`
}

type FieldOption struct {
	Label string `json:"label" validate:"required,max=100"`
	Value string `json:"value" validate:"required,max=100"`
}

var (
	ErrInUse         = fmt.Errorf("%w: category is still referenced", core.ErrConflict)
	ErrNameTaken     = fmt.Errorf("%w: category name already exists", core.ErrConflict)
	ErrUnknownParent = fmt.Errorf("%w: parent category does not exist", core.ErrInvalidInput)
)
