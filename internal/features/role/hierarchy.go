package role

// RoleLookup returns a cached role by id.
type RoleLookup interface {
	Lookup(id string) (Role, bool)
}

var systemRanks = map[string]int{
	Employee:   1,
	Manager:    2,
	Admin:      3,
	SuperAdmin: 4,
}

// customRankOrder lists the system roles a custom role may be ranked as,
// highest first. A custom role never ranks as superadmin.
var customRankOrder = []string{Admin, Manager, Employee}

// Hierarchy ranks roles. System roles have fixed ranks; a custom role ranks
// as the highest system role whose default permissions it fully covers, and
// 0 when it covers none. Unknown and inactive custom roles rank 0.
type Hierarchy struct {
	roles RoleLookup
}

func NewHierarchy(roles RoleLookup) *Hierarchy {
	return &Hierarchy{roles: roles}
}

func (h *Hierarchy) Rank(id string) int {
	if rank, ok := systemRanks[id]; ok {
		return rank
	}
	if h == nil || h.roles == nil {
		return 0
	}

	r, ok := h.roles.Lookup(id)
	if !ok || !r.IsActive {
		return 0
	}
	for _, sys := range customRankOrder {
		perms, _ := defaultPermissions(sys)
		if r.Permissions.Covers(perms) {
			return systemRanks[sys]
		}
	}
	return 0
}

// CanManageUser is strict: peers cannot manage each other.
func (h *Hierarchy) CanManageUser(actorRole, targetRole string) bool {
	return h.Rank(actorRole) > h.Rank(targetRole)
}

func (h *Hierarchy) CanAssignRole(actorRole, targetRole string) bool {
	if actorRole == SuperAdmin {
		return true
	}
	return h.Rank(actorRole) >= h.Rank(targetRole)
}
