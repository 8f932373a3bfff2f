// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/neighborly/internal/core"
)

// UpdateMeRequest covers the self-service profile fields. Role and
// community are fixed at registration.
type UpdateMeRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"last_name,omitempty"  validate:"omitempty,min=1,max=50"`
	Phone     *string `json:"phone,omitempty"      validate:"omitempty,e164"`
	Building  *string `json:"building,omitempty"   validate:"omitempty,min=1,max=100"`
	Unit      *string `json:"unit,omitempty"       validate:"omitempty,min=1,max=20"`
}

type SetVerifiedRequest struct {
	Verified bool `json:"verified"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        core.Role `json:"role"`
	CommunityID *string   `json:"community_id"`
	Building    string    `json:"building"`
	Unit        string    `json:"unit"`
	Phone       string    `json:"phone,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListUsersParams struct {
	core.PageParams
	Search      string
	Role        string
	CommunityID string
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		CommunityID: u.CommunityID,
		Building:    u.Building,
		Unit:        u.Unit,
		Phone:       u.Phone,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
