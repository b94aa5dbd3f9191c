package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		required Role
		allowed  bool
	}{
		{"UserAccessesUserResource", RoleUser, RoleUser, true},
		{"AdminAccessesUserResource", RoleAdmin, RoleUser, true},
		{"AdminAccessesAdminResource", RoleAdmin, RoleAdmin, true},
		{"UserDeniedAdminResource", RoleUser, RoleAdmin, false},
		{"UnknownRoleDenied", Role("superuser"), RoleUser, false},
		{"EmptyRoleDenied", Role(""), RoleUser, false},
		{"UnknownRequirementDenies", RoleAdmin, Role("owner"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.role, tt.required)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("user")
	assert.NoError(t, err)
	assert.Equal(t, RoleUser, role)

	role, err = ParseRole("admin")
	assert.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, ErrUnknownRole)

	_, err = ParseRole("")
	assert.ErrorIs(t, err, ErrUnknownRole)

	// Matching is exact, no case folding.
	_, err = ParseRole("Admin")
	assert.ErrorIs(t, err, ErrUnknownRole)
}
