// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/carterperez-dev/neighborly/internal/core"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// RegisterRequest signs up a resident. Admin accounts are provisioned out
// of band.
type RegisterRequest struct {
	Email       string `json:"email"        validate:"required,email,max=255"`
	Password    string `json:"password"     validate:"required,min=8,max=128"`
	FirstName   string `json:"first_name"   validate:"required,min=1,max=50"`
	LastName    string `json:"last_name"    validate:"required,min=1,max=50"`
	Role        string `json:"role"         validate:"required,oneof=customer provider"`
	CommunityID string `json:"community_id" validate:"required,uuid"`
	Building    string `json:"building"     validate:"required,max=100"`
	Unit        string `json:"unit"         validate:"required,max=20"`
	Phone       string `json:"phone"        validate:"omitempty,e164"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=128"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Role        core.Role `json:"role"`
	CommunityID string    `json:"community_id,omitempty"`
	Building    string    `json:"building,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

type AuthResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		CommunityID: u.CommunityID,
		Building:    u.Building,
		Unit:        u.Unit,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
	}
}
