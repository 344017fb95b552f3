// AngelaMos | 2026
// authz_test.go

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

func TestAuthorize(t *testing.T) {
	staff := &Principal{ID: 1, Role: RoleStaff}
	student := &Principal{ID: 2, Role: RoleStudent}

	assert.ErrorIs(t, Authorize(nil, Kitchen...), core.ErrUnauthorized)
	assert.NoError(t, Authorize(staff, Kitchen...))
	assert.ErrorIs(t, Authorize(student, Kitchen...), core.ErrForbidden)
	assert.NoError(t, Authorize(student, Customers...))
	assert.ErrorIs(t, Authorize(staff, Customers...), core.ErrForbidden)
	assert.NoError(t, Authorize(student))
}

func TestSelfServiceRole(t *testing.T) {
	tests := map[string]Role{
		"student": RoleStudent,
		"faculty": RoleFaculty,
		"staff":   RoleStudent,
		"admin":   RoleStudent,
		"":        RoleStudent,
		"FACULTY": RoleStudent,
	}

	for requested, want := range tests {
		assert.Equal(t, want, SelfServiceRole(requested), "requested %q", requested)
	}
}

func TestCanViewOwned(t *testing.T) {
	owner := int64(7)
	other := int64(8)

	assert.NoError(t, CanViewOwned(&Principal{ID: 7, Role: RoleStudent}, &owner))
	assert.ErrorIs(t, CanViewOwned(&Principal{ID: 7, Role: RoleStudent}, &other), core.ErrForbidden)
	assert.ErrorIs(t, CanViewOwned(&Principal{ID: 7, Role: RoleFaculty}, nil), core.ErrForbidden)
	assert.NoError(t, CanViewOwned(&Principal{ID: 1, Role: RoleAdmin}, &other))
	assert.ErrorIs(t, CanViewOwned(nil, &owner), core.ErrUnauthorized)
}
