// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/neighborly/internal/auth"
	"github.com/carterperez-dev/neighborly/internal/core"
)

type Service struct {
	repo       Repository
	residences auth.ResidenceValidator
}

func NewService(repo Repository, residences auth.ResidenceValidator) *Service {
	return &Service{repo: repo, residences: residences}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	account auth.NewAccount,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(account.Email),
		PasswordHash: account.PasswordHash,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		Role:         account.Role,
		Building:     account.Building,
		Unit:         account.Unit,
		Phone:        account.Phone,
	}
	if account.CommunityID != "" {
		community := account.CommunityID
		user.CommunityID = &community
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	if params.Role != "" && !core.Role(params.Role).Valid() {
		return nil, 0, fmt.Errorf(
			"list users: invalid role %q: %w",
			params.Role,
			core.ErrInvalidInput,
		)
	}
	return s.repo.List(ctx, params)
}

// SetVerified marks a resident as verified by community management.
func (s *Service) SetVerified(ctx context.Context, id string, verified bool) (*User, error) {
	if err := s.repo.SetVerified(ctx, id, verified); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

// UpdateMe edits the caller's own profile. A new building must belong to
// the caller's community.
func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateMeRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Building != nil && *req.Building != user.Building {
		if user.CommunityID == nil {
			return nil, fmt.Errorf(
				"update me: %w: account has no community",
				core.ErrInvalidInput,
			)
		}
		if err := s.residences.ValidateResidence(ctx, *user.CommunityID, *req.Building); err != nil {
			return nil, fmt.Errorf("update me: %w", err)
		}
		user.Building = *req.Building
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Unit != nil {
		user.Unit = *req.Unit
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CommunityID:  u.Community(),
		Building:     u.Building,
		Unit:         u.Unit,
		IsVerified:   u.IsVerified,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
