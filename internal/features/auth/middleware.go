package auth

import (
	"context"
	"strings"

	"eic-admin/internal/common/errs"
	"eic-admin/internal/config"
	"eic-admin/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ActorResolver loads the live role of a token subject, so a demoted or
// deactivated user loses access before the token expires.
type ActorResolver interface {
	ResolveActor(ctx context.Context, id string) (*Actor, error)
}

// AuthMiddleware validates JWT tokens and attaches the actor and a session to
// the request's user context.
type AuthMiddleware struct {
	config   *config.Config
	sessions SessionFactory
	resolver ActorResolver
	logger   *zap.Logger
}

func NewAuthMiddleware(cfg *config.Config, sessions SessionFactory, resolver ActorResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{config: cfg, sessions: sessions, resolver: resolver, logger: logger}
}

func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if m.config.SkipAuth {
		// Inject dummy context for dev
		actor := &Actor{ID: "dev-admin-id", Email: "dev@localhost", Role: SuperAdminRole}
		c.Locals(utils.UserClaimsKey, &utils.UserClaims{UserID: actor.ID, Email: actor.Email, Role: actor.Role})
		m.attach(c, actor)
		return c.Next()
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid authorization header format",
		})
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid token",
		})
	}

	actor := &Actor{ID: claims.UserID, Email: claims.Email, Role: claims.Role}
	if m.resolver != nil {
		actor, err = m.resolver.ResolveActor(c.UserContext(), claims.UserID)
		if err != nil {
			m.logger.Warn("Rejected token for unknown or inactive user", zap.String("user_id", claims.UserID), zap.String("ip", c.IP()), zap.Error(err))
			return c.Status(errs.StatusCode(err)).JSON(errs.Body(err))
		}
	}

	c.Locals(utils.UserClaimsKey, claims)
	m.attach(c, actor)
	return c.Next()
}

func (m *AuthMiddleware) attach(c *fiber.Ctx, actor *Actor) {
	ctx := WithActor(c.UserContext(), actor)
	if m.sessions != nil {
		ctx = WithSession(ctx, m.sessions.NewSession(actor.Identity()))
	}
	c.SetUserContext(ctx)
}
