// Package authz centralizes the role/capability table. Every privileged
// route declares the action it needs and the table decides; handlers never
// test roles directly.
package authz

import "github.com/coworkhq/member-portal/internal/model"

// Action names a capability a route can require.
type Action string

const (
	ManageUsers      Action = "manage_users"
	CreateStaff      Action = "create_staff"
	ManageEquipment  Action = "manage_equipment"
	ReserveEquipment Action = "reserve_equipment"
)

var capabilities = map[model.Role]map[Action]bool{
	model.RoleAdmin: {
		ManageUsers:     true,
		CreateStaff:     true,
		ManageEquipment: true,
	},
	model.RoleStaff: {
		ManageUsers:     true,
		ManageEquipment: true,
	},
	model.RoleCustomer: {
		ReserveEquipment: true,
	},
}

// Can reports whether the given role holds the capability.
func Can(role model.Role, action Action) bool {
	return capabilities[role][action]
}

// CapabilitiesFor returns the actions granted to a role, for the dashboard.
func CapabilitiesFor(role model.Role) []Action {
	var out []Action
	for _, a := range []Action{ManageUsers, CreateStaff, ManageEquipment, ReserveEquipment} {
		if capabilities[role][a] {
			out = append(out, a)
		}
	}
	return out
}
