package main

import (
	"context"
	"log"

	"eic-admin/internal/config"
	"eic-admin/internal/database"
	"eic-admin/internal/features/audit"
	"eic-admin/internal/features/auth"
	"eic-admin/internal/features/permission"
	"eic-admin/internal/features/role"
	"eic-admin/internal/features/user"
	"eic-admin/internal/logger"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Seed inserts the system roles and, when configured, the first super admin.
func Seed(
	lc fx.Lifecycle,
	cfg *config.Config,
	roles role.RoleService,
	users user.UserService,
	userRepo user.UserRepository,
	identityRepo auth.IdentityRepository,
	authenticator *auth.Authenticator,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				if err := run(context.Background(), cfg, roles, users, userRepo, identityRepo, authenticator, logger); err != nil {
					logger.Error("Seeding failed", zap.Error(err))
					return
				}
				logger.Info("Seeding completed")
			}()
			return nil
		},
	})
}

func run(
	ctx context.Context,
	cfg *config.Config,
	roles role.RoleService,
	users user.UserService,
	userRepo user.UserRepository,
	identityRepo auth.IdentityRepository,
	authenticator *auth.Authenticator,
	logger *zap.Logger,
) error {
	system := auth.SystemActor()
	ctx = auth.WithActor(ctx, system)
	ctx = auth.WithSession(ctx, authenticator.NewSession(system.Identity()))

	if err := identityRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return err
	}

	if err := roles.Refresh(ctx); err != nil {
		return err
	}
	created, err := roles.InitializeDefaultRoles(ctx)
	if err != nil {
		return err
	}
	logger.Info("System roles", zap.Int("created", created), zap.Int("total", len(roles.ListRoles())))

	if cfg.BootstrapAdminEmail == "" {
		logger.Info("BOOTSTRAP_ADMIN_EMAIL not set, skipping super admin")
		return nil
	}

	n, err := userRepo.CountActiveByRole(ctx, role.SuperAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("Active super admin already present", zap.Int64("count", n))
		return nil
	}

	admin, err := users.CreateUser(ctx, user.CreateUserInput{
		Email:       cfg.BootstrapAdminEmail,
		Password:    cfg.BootstrapAdminPassword,
		DisplayName: cfg.BootstrapAdminName,
		Role:        role.SuperAdmin,
	})
	if err != nil {
		return err
	}
	logger.Info("Super admin created", zap.String("user_id", admin.ID), zap.String("email", admin.Email))
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,

			auth.NewIdentityRepository,
			audit.NewAuditRepository,
			role.NewRoleRepository,
			user.NewUserRepository,

			auth.NewAuthenticator,
			auth.NewPasswordPolicy,
			permission.NewPermissionService,
			audit.NewAuditService,
			role.NewRoleService,
			user.NewUserService,

			func(r user.UserRepository) audit.UserFinder { return r },
			func(r user.UserRepository) role.UserReferenceCounter { return r },
			func(a *auth.Authenticator) user.IdentityAdmin { return a },
			func(s role.RoleService) user.RoleDirectory { return s },
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()
}
