// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/auth"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// GetByEmail matches the address exactly, including case.
func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	nu auth.NewUser,
) (*auth.UserInfo, error) {
	user := &User{
		Name:         nu.Name,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Phone:        normalizePhone(nu.Phone),
		Role:         nu.Role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

// UpdateProfile rewrites name, email and phone. An email held by a
// different account fails with ErrDuplicateKey; keeping one's own email is
// allowed.
func (s *Service) UpdateProfile(
	ctx context.Context,
	id int64,
	p auth.ProfileUpdate,
) (*auth.UserInfo, error) {
	if p.Name == "" || p.Email == "" {
		return nil, fmt.Errorf("update profile: name and email required: %w", core.ErrInvalidInput)
	}

	taken, err := s.repo.EmailTakenByOther(ctx, p.Email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("update profile: %w", core.ErrDuplicateKey)
	}

	user := &User{
		ID:    id,
		Name:  p.Name,
		Email: p.Email,
		Phone: normalizePhone(p.Phone),
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func normalizePhone(phone *string) *string {
	if phone == nil || *phone == "" {
		return nil
	}
	return phone
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
