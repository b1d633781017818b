package auth

import (
	"context"
	"fmt"

	"eic-admin/internal/common/errs"
)

// RequireSuperAdmin must run before any validation of a mutating request.
func RequireSuperAdmin(actor *Actor) error {
	if actor == nil || actor.ID == "" {
		return fmt.Errorf("%w: no authenticated user", errs.ErrAuthentication)
	}
	if actor.Role != SuperAdminRole {
		return fmt.Errorf("%w: super admin access required", errs.ErrAuthorization)
	}
	return nil
}

// Authorize reads the actor from ctx and applies RequireSuperAdmin.
func Authorize(ctx context.Context) (*Actor, error) {
	actor, _ := ActorFromContext(ctx)
	if err := RequireSuperAdmin(actor); err != nil {
		return nil, err
	}
	return actor, nil
}
