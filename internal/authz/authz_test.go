package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coworkhq/member-portal/internal/model"
)

func TestCan(t *testing.T) {
	cases := []struct {
		role   model.Role
		action Action
		want   bool
	}{
		{model.RoleAdmin, ManageUsers, true},
		{model.RoleAdmin, CreateStaff, true},
		{model.RoleAdmin, ManageEquipment, true},
		{model.RoleAdmin, ReserveEquipment, false},

		{model.RoleStaff, ManageUsers, true},
		{model.RoleStaff, CreateStaff, false},
		{model.RoleStaff, ManageEquipment, true},
		{model.RoleStaff, ReserveEquipment, false},

		{model.RoleCustomer, ManageUsers, false},
		{model.RoleCustomer, CreateStaff, false},
		{model.RoleCustomer, ManageEquipment, false},
		{model.RoleCustomer, ReserveEquipment, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Can(tc.role, tc.action),
			"role %s action %s", tc.role, tc.action)
	}
}

func TestCanUnknownRole(t *testing.T) {
	assert.False(t, Can(model.Role("GUEST"), ManageEquipment))
}

func TestCapabilitiesFor(t *testing.T) {
	assert.ElementsMatch(t,
		[]Action{ManageUsers, CreateStaff, ManageEquipment},
		CapabilitiesFor(model.RoleAdmin))
	assert.ElementsMatch(t,
		[]Action{ReserveEquipment},
		CapabilitiesFor(model.RoleCustomer))
}
