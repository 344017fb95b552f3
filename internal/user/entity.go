// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/authz"
)

type User struct {
	ID           int64      `db:"id"`
	Name         string     `db:"name"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Phone        *string    `db:"phone"`
	Role         authz.Role `db:"role"`
	CreatedAt    time.Time  `db:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == authz.RoleAdmin
}
