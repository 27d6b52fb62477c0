package enums

// ActorRole is the role claim carried by tokens from the hosted auth backend.
type ActorRole string

const (
	ActorRoleService       ActorRole = "service_role"
	ActorRoleAdmin         ActorRole = "admin"
	ActorRoleAuthenticated ActorRole = "authenticated"
)

var validActorRoles = []ActorRole{
	ActorRoleService,
	ActorRoleAdmin,
	ActorRoleAuthenticated,
}

// IsValid reports whether the role is recognized.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether the role can read any organization's ledger.
func (r ActorRole) IsPrivileged() bool {
	return r == ActorRoleService || r == ActorRoleAdmin
}
