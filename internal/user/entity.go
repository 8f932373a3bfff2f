// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/neighborly/internal/core"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Role         core.Role `db:"role"`
	CommunityID  *string   `db:"community_id"`
	Building     string    `db:"building"`
	Unit         string    `db:"unit"`
	Phone        string    `db:"phone"`
	IsVerified   bool      `db:"is_verified"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == core.RoleAdmin
}

func (u *User) Community() string {
	if u.CommunityID == nil {
		return ""
	}
	return *u.CommunityID
}
