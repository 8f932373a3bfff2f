// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/neighborly/internal/core"
)

var (
	ErrInvalidCredentials = fmt.Errorf(
		"%w: invalid email or password",
		core.ErrUnauthorized,
	)
	ErrEmailExists = fmt.Errorf(
		"%w: email already registered",
		core.ErrConflict,
	)
)

// UserInfo is the slice of a user account that authentication needs.
type UserInfo struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         core.Role
	CommunityID  string
	Building     string
	Unit         string
	IsVerified   bool
	CreatedAt    time.Time
}

type NewAccount struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         core.Role
	CommunityID  string
	Building     string
	Unit         string
	Phone        string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(ctx context.Context, account NewAccount) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type ResidenceValidator interface {
	ValidateResidence(ctx context.Context, communityID, building string) error
}

type Service struct {
	jwt          *JWTManager
	userProvider UserProvider
	residences   ResidenceValidator
	logger       *slog.Logger
}

func NewService(
	jwt *JWTManager,
	userProvider UserProvider,
	residences ResidenceValidator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		jwt:          jwt,
		userProvider: userProvider,
		residences:   residences,
		logger:       logger.With("component", "auth"),
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	ipAddress string,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			s.logger.Info("login failed", "reason", "unknown email", "ip", ipAddress)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		s.logger.Info("login failed", "user_id", user.ID, "ip", ipAddress)
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.userProvider.UpdatePassword(ctx, user.ID, newHash)
	}

	return s.createAuthResponse(user)
}

// Register creates a customer or provider account inside an existing
// community. The building must be one the community lists.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	role := core.Role(req.Role)
	if role != core.RoleCustomer && role != core.RoleProvider {
		return nil, fmt.Errorf(
			"register: %w: role must be customer or provider",
			core.ErrInvalidInput,
		)
	}

	if err := s.residences.ValidateResidence(ctx, req.CommunityID, req.Building); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, NewAccount{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		CommunityID:  req.CommunityID,
		Building:     req.Building,
		Unit:         req.Unit,
		Phone:        req.Phone,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", user.ID,
		"role", user.Role,
		"community_id", user.CommunityID,
	)

	return s.createAuthResponse(user)
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, _, err := core.VerifyPasswordWithRehash(
		currentPassword,
		user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) createAuthResponse(user *UserInfo) (*AuthResponse, error) {
	accessToken, expiresAt, err := s.jwt.CreateAccessToken(TokenClaims{
		UserID:      user.ID,
		Role:        user.Role,
		CommunityID: user.CommunityID,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.jwt.config.AccessTokenExpire / time.Second),
			ExpiresAt:   expiresAt,
		},
	}, nil
}
