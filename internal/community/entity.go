// AngelaMos | 2026
// entity.go

package community

import (
	"time"

	"github.com/lib/pq"
)

const (
	TypeApartment    = "apartment"
	TypeGated        = "gated community"
	TypeNeighborhood = "neighborhood"
	DefaultCity      = "Bengaluru"
	DefaultState     = "Karnataka"
)

type Community struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Street      string         `db:"street"`
	City        string         `db:"city"`
	State       string         `db:"state"`
	PostalCode  string         `db:"postal_code"`
	Type        string         `db:"type"`
	Buildings   pq.StringArray `db:"buildings"`
	Description string         `db:"description"`
	Amenities   pq.StringArray `db:"amenities"`
	TotalUnits  int            `db:"total_units"`
	IsActive    bool           `db:"is_active"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (c *Community) HasBuilding(name string) bool {
	for _, b := range c.Buildings {
		if b == name {
			return true
		}
	}
	return false
}
