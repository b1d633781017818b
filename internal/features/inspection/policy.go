package inspection

import (
	"slices"

	"eic-admin/internal/features/auth"
	"eic-admin/internal/features/permission"
)

// Permissions answers catalog checks for a role.
type Permissions interface {
	HasPermission(roleID, module, perm string) bool
}

// Policy decides inspection access from the caller's catalog permissions.
// Holders of inspections.approve see every inspection, others only their own.
type Policy struct {
	perms Permissions
}

func NewPolicy(perms Permissions) Policy {
	return Policy{perms: perms}
}

var (
	reviewerTargets = []Status{StatusInProgress, StatusCompleted, StatusReviewed, StatusApproved, StatusRejected}
	ownerTargets    = []Status{StatusInProgress, StatusCompleted}
)

func (p Policy) has(actor *auth.Actor, perm string) bool {
	return p.perms.HasPermission(actor.Role, permission.ModuleInspections, perm)
}

func owns(actor *auth.Actor, insp *Inspection) bool {
	return insp.InspectorID == actor.ID
}

func (p Policy) CanViewAll(actor *auth.Actor) bool {
	return p.has(actor, "view") && p.has(actor, "approve")
}

func (p Policy) CanList(actor *auth.Actor) bool {
	return p.has(actor, "view")
}

func (p Policy) CanView(actor *auth.Actor, insp *Inspection) bool {
	return p.has(actor, "view") && (owns(actor, insp) || p.has(actor, "approve"))
}

func (p Policy) CanCreate(actor *auth.Actor) bool {
	return p.has(actor, "create") || p.has(actor, "perform")
}

func (p Policy) CanEdit(actor *auth.Actor, insp *Inspection) bool {
	if !p.CanView(actor, insp) {
		return false
	}
	return p.has(actor, "edit") || (owns(actor, insp) && p.has(actor, "perform"))
}

// CanDelete lets super admins delete anything and delete holders remove drafts.
func (p Policy) CanDelete(actor *auth.Actor, insp *Inspection) bool {
	if actor.Role == auth.SuperAdminRole {
		return true
	}
	return p.has(actor, "delete") && insp.Status == StatusDraft && p.CanView(actor, insp)
}

func (p Policy) CanChangeStatus(actor *auth.Actor, insp *Inspection, to Status) bool {
	if actor.Role == auth.SuperAdminRole {
		return true
	}
	if !p.CanView(actor, insp) {
		return false
	}
	if p.has(actor, "approve") && slices.Contains(reviewerTargets, to) {
		return true
	}
	return owns(actor, insp) && p.has(actor, "perform") && slices.Contains(ownerTargets, to)
}
