package auth

import (
	"context"

	"eic-admin/internal/common/models"
)

// SuperAdminRole is the only role allowed to mutate users and roles.
const SuperAdminRole = "superadmin"

const (
	actorKey   models.ContextKey = "actor"
	sessionKey models.ContextKey = "session"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (a *Actor) Identity() *Identity {
	if a == nil {
		return nil
	}
	return &Identity{ID: a.ID, Email: a.Email}
}

// SystemActor runs seeding and other maintenance outside a request.
func SystemActor() *Actor {
	return &Actor{ID: "system", Email: "system@localhost", Role: SuperAdminRole}
}

func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

func ActorFromContext(ctx context.Context) (*Actor, bool) {
	actor, ok := ctx.Value(actorKey).(*Actor)
	return actor, ok && actor != nil
}

// ActorID returns the caller id, or "system" when none is attached.
func ActorID(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.ID
	}
	return "system"
}

func WithSession(ctx context.Context, session Provider) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func SessionFromContext(ctx context.Context) (Provider, bool) {
	session, ok := ctx.Value(sessionKey).(Provider)
	return session, ok && session != nil
}
