package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "eic-admin/internal/common/api"
	"eic-admin/internal/common/errs"
	"eic-admin/internal/config"
	"eic-admin/internal/database"
	"eic-admin/internal/features/audit"
	"eic-admin/internal/features/auth"
	"eic-admin/internal/features/inspection"
	"eic-admin/internal/features/permission"
	"eic-admin/internal/features/realtime"
	"eic-admin/internal/features/role"
	"eic-admin/internal/features/system"
	"eic-admin/internal/features/user"
	"eic-admin/internal/logger"
	"eic-admin/internal/middleware"
	"eic-admin/internal/scheduler"
	"eic-admin/pkg/utils"

	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(errs.StatusCode(err)).JSON(errs.Body(err))
		},
	})

	app.Use(fiberrecover.New())
	app.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, logger *zap.Logger) {
	logger.Info("Registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		logger.Debug("Setting up route", zap.String("type", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				logger.Info("HTTP server listening", zap.String("addr", port))
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	identityRepo auth.IdentityRepository,
	userRepo user.UserRepository,
	inspectionRepo inspection.InspectionRepository,
	auditRepo audit.AuditRepository,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := identityRepo.EnsureIndexes(ctx); err != nil {
					logger.Error("Failed to ensure credential indexes", zap.Error(err))
				}
				if err := userRepo.EnsureIndexes(ctx); err != nil {
					logger.Error("Failed to ensure user indexes", zap.Error(err))
				}
				if err := inspectionRepo.EnsureIndexes(ctx); err != nil {
					logger.Error("Failed to ensure inspection indexes", zap.Error(err))
				}
				if err := auditRepo.EnsureIndexes(ctx); err != nil {
					logger.Error("Failed to ensure audit indexes", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

// StartStores loads both caches, seeds the system roles and starts the
// change fan-out and the resync schedule. Stop runs in reverse.
func StartStores(
	lc fx.Lifecycle,
	roles role.RoleService,
	users user.UserService,
	hub *realtime.Hub,
	resync *scheduler.ResyncScheduler,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := roles.Start(ctx); err != nil {
				return err
			}
			if _, err := roles.InitializeDefaultRoles(ctx); err != nil {
				return err
			}
			if err := users.Start(ctx); err != nil {
				return err
			}
			hub.Attach(roles, users)
			return resync.Start()
		},
		OnStop: func(ctx context.Context) error {
			resync.Stop()
			hub.Close()
			if err := users.Stop(); err != nil {
				logger.Warn("Failed to stop user watcher", zap.Error(err))
			}
			return roles.Stop()
		},
	})
}

func NewResyncScheduler(cfg *config.Config, roles role.RoleService, users user.UserService, logger *zap.Logger) *scheduler.ResyncScheduler {
	return scheduler.NewResyncScheduler(cfg.ResyncSchedule, logger,
		scheduler.Job{Name: "roles", Run: roles.Refresh},
		scheduler.Job{Name: "users", Run: users.Refresh},
		scheduler.Job{Name: "users_assigned", Run: roles.RecountAllUsers},
	)
}

// storeStatus adapts a store to system.CacheStatus
type storeStatus struct {
	name  string
	state func() (int, bool)
}

func (s storeStatus) Name() string { return s.name }

func (s storeStatus) Len() int {
	n, _ := s.state()
	return n
}

func (s storeStatus) Loaded() bool {
	_, loaded := s.state()
	return loaded
}

func NewHealthController(mongodb *database.MongodbDB, roles role.RoleService, users user.UserService) *system.HealthController {
	return system.NewHealthController(mongodb,
		storeStatus{name: "roles", state: roles.CacheState},
		storeStatus{name: "users", state: users.CacheState},
	)
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,

			logger.NewLogger,

			NewFiberServer,

			database.NewDatabase,

			auth.NewIdentityRepository,
			audit.NewAuditRepository,
			role.NewRoleRepository,
			user.NewUserRepository,
			inspection.NewInspectionRepository,

			auth.NewAuthenticator,
			auth.NewPasswordPolicy,
			permission.NewPermissionService,
			audit.NewAuditService,
			role.NewRoleService,
			user.NewUserService,
			inspection.NewInspectionService,
			auth.NewAuthService,
			auth.NewAuthMiddleware,
			realtime.NewHub,
			NewResyncScheduler,

			func(r user.UserRepository) audit.UserFinder { return r },
			func(r user.UserRepository) role.UserReferenceCounter { return r },
			func(s audit.AuditService) auth.AuditLogger { return s },
			func(a *auth.Authenticator) auth.SessionFactory { return a },
			func(a *auth.Authenticator) user.IdentityAdmin { return a },
			func(s role.RoleService) user.RoleDirectory { return s },
			func(s role.RoleService) middleware.PermissionChecker { return s },
			func(s role.RoleService) inspection.Permissions { return s },
			func(s user.UserService) auth.ProfileLookup { return s },
			func(s user.UserService) auth.ActorResolver { return s },

			auth.NewAuthController,
			permission.NewPermissionController,
			role.NewRoleController,
			user.NewUserController,
			inspection.NewInspectionController,
			audit.NewAuditController,
			realtime.NewWebSocketController,
			NewHealthController,

			AsRoute(auth.NewAuthApi),
			AsRoute(permission.NewPermissionApi),
			AsRoute(role.NewRoleApi),
			AsRoute(user.NewUserApi),
			AsRoute(inspection.NewInspectionApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(realtime.NewWebSocketApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			InitializeIndexes,
			StartStores,
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
		),
	)

	app.Run()
}
