package types

import "github.com/google/uuid"

// Role is resolved by the outer auth layer; the core only ever sees the
// already-resolved value.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleBackOffice  Role = "back_office"
	RoleFieldWorker Role = "field_worker"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleBackOffice, RoleFieldWorker:
		return Role(s), true
	}
	return "", false
}

type Capability string

const (
	CapabilityView         Capability = "view"
	CapabilityEditMaterial Capability = "edit-material"
	CapabilityApprove      Capability = "approve"
	CapabilityAdminUsers   Capability = "admin-users"
)

// Actor is the caller identity attached to every request.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapabilityView:         true,
		CapabilityEditMaterial: true,
		CapabilityApprove:      true,
		CapabilityAdminUsers:   true,
	},
	RoleBackOffice: {
		CapabilityView:         true,
		CapabilityEditMaterial: true,
		CapabilityApprove:      true,
	},
	RoleFieldWorker: {
		CapabilityView: true,
	},
}

func (a Actor) Can(c Capability) bool {
	return roleCapabilities[a.Role][c]
}
