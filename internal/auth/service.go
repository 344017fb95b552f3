// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/authz"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrEmailTaken         = errors.New("email already used by another account")
)

type UserInfo struct {
	ID           int64
	Name         string
	Email        string
	Phone        *string
	PasswordHash string
	Role         authz.Role
	CreatedAt    time.Time
}

type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Phone        *string
	Role         authz.Role
}

type ProfileUpdate struct {
	Name  string
	Email string
	Phone *string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	Create(ctx context.Context, u NewUser) (*UserInfo, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfile(ctx context.Context, id int64, p ProfileUpdate) (*UserInfo, error)
}

type TokenIssuer interface {
	CreateAccessToken(claims TokenClaims) (string, TokenClaims, error)
	VerifyAccessToken(ctx context.Context, token string) (*TokenClaims, error)
}

// TokenBlacklist tracks bearer tokens revoked by logout.
type TokenBlacklist interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Service struct {
	tokens       TokenIssuer
	userProvider UserProvider
	blacklist    TokenBlacklist
	logger       *slog.Logger
}

func NewService(
	tokens TokenIssuer,
	userProvider UserProvider,
	blacklist TokenBlacklist,
	logger *slog.Logger,
) *Service {
	return &Service{
		tokens:       tokens,
		userProvider: userProvider,
		blacklist:    blacklist,
		logger:       logger,
	}
}

// Register creates a customer account. The requested role is coerced to
// student or faculty; staff and admin accounts are provisioned out of band.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserResponse, error) {
	exists, err := s.userProvider.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, NewUser{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Phone:        req.Phone,
		Role:         authz.SelfServiceRole(req.Role),
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)

	resp := toUserResponse(user)
	return &resp, nil
}

// Login returns ErrInvalidCredentials for both an unknown email and a wrong
// password, after spending the same hashing cost in each case.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
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
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.Warn("password rehash failed", "user_id", user.ID, "error", err)
		}
	}

	token, claims, err := s.tokens.CreateAccessToken(TokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		Email:  user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiresAt,
		User:      toUserResponse(user),
	}, nil
}

// Authenticate verifies token and reloads the user it names, so role and
// profile changes apply without a new login.
func (s *Service) Authenticate(
	ctx context.Context,
	token string,
) (*authz.Principal, error) {
	claims, err := s.tokens.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if s.blacklist != nil && claims.TokenID != "" {
		revoked, err := s.blacklist.IsTokenRevoked(ctx, claims.TokenID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("authenticate: %w", core.ErrTokenRevoked)
		}
	}

	user, err := s.userProvider.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("authenticate: %w", core.ErrUnauthorized)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	return &authz.Principal{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, p *authz.Principal) error {
	if err := authz.Authorize(p); err != nil {
		return err
	}

	if s.blacklist == nil || p.TokenID == "" {
		return nil
	}

	if err := s.blacklist.RevokeToken(ctx, p.TokenID, time.Until(p.ExpiresAt)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	p *authz.Principal,
) (*UserResponse, error) {
	if err := authz.Authorize(p); err != nil {
		return nil, err
	}

	user, err := s.userProvider.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	p *authz.Principal,
	req UpdateProfileRequest,
) (*UserResponse, error) {
	if err := authz.Authorize(p); err != nil {
		return nil, err
	}

	user, err := s.userProvider.UpdateProfile(ctx, p.ID, ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}
