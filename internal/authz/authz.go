// AngelaMos | 2026
// authz.go

package authz

import (
	"fmt"
	"slices"
	"time"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

var (
	// Kitchen roles manage the catalog and the order queue.
	Kitchen = []Role{RoleStaff, RoleAdmin}
	// Customers place orders and read their own history.
	Customers = []Role{RoleStudent, RoleFaculty}
	Admins    = []Role{RoleAdmin}
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsKitchen() bool {
	return slices.Contains(Kitchen, r)
}

// SelfServiceRole maps a role requested at registration to the stored
// role. Only student and faculty can be self-assigned; anything else,
// including an empty value, becomes student.
func SelfServiceRole(requested string) Role {
	switch Role(requested) {
	case RoleFaculty:
		return RoleFaculty
	default:
		return RoleStudent
	}
}

// Principal is the authenticated caller, rebuilt from the user row on
// every request.
type Principal struct {
	ID        int64
	Name      string
	Email     string
	Phone     *string
	Role      Role
	TokenID   string
	ExpiresAt time.Time
}

// Authorize fails with ErrUnauthorized when p is nil and ErrForbidden when
// p's role is not among allowed. An empty allowed set admits any
// authenticated principal.
func Authorize(p *Principal, allowed ...Role) error {
	if p == nil {
		return fmt.Errorf("authorize: %w", core.ErrUnauthorized)
	}

	if len(allowed) == 0 || slices.Contains(allowed, p.Role) {
		return nil
	}

	return fmt.Errorf("authorize role %q: %w", p.Role, core.ErrForbidden)
}

// CanViewOwned reports whether p may read a resource owned by ownerID.
// Kitchen roles see everything; others see only their own.
func CanViewOwned(p *Principal, ownerID *int64) error {
	if err := Authorize(p); err != nil {
		return err
	}

	if p.Role.IsKitchen() {
		return nil
	}

	if ownerID != nil && *ownerID == p.ID {
		return nil
	}

	return fmt.Errorf("view owned resource: %w", core.ErrForbidden)
}
