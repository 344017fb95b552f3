// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/authz"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type RegisterRequest struct {
	Name     string  `json:"name"            validate:"required,max=100"`
	Email    string  `json:"email"           validate:"required,email,max=255"`
	Password string  `json:"password"        validate:"required,min=6,max=128"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Role     string  `json:"role,omitempty"`
}

type UpdateProfileRequest struct {
	Name  string  `json:"name"            validate:"required,max=100"`
	Email string  `json:"email"           validate:"required,email,max=255"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

type UserResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone"`
	Role      authz.Role `json:"role"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func toUserResponse(u *UserInfo) UserResponse {
	resp := UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  u.Role,
	}
	if !u.CreatedAt.IsZero() {
		created := u.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

func principalResponse(p *authz.Principal) UserResponse {
	return UserResponse{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Phone: p.Phone,
		Role:  p.Role,
	}
}
