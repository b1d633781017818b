package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"eic-admin/internal/common/errs"
	common_models "eic-admin/internal/common/models"
	"eic-admin/internal/common/validation"
	"eic-admin/internal/database"
	"eic-admin/internal/features/audit"
	"eic-admin/internal/features/auth"
	"eic-admin/internal/features/role"
	"eic-admin/pkg/listview"
	"eic-admin/pkg/syncache"

	"go.uber.org/zap"
)

const auditModule = "users"

// RoleDirectory is the part of the role store the user store depends on.
type RoleDirectory interface {
	RoleExists(id string) bool
	Hierarchy() *role.Hierarchy
}

// IdentityAdmin opens auth sessions and removes orphaned identities.
type IdentityAdmin interface {
	auth.SessionFactory
	RemoveIdentity(ctx context.Context, id string) error
}

type UserService interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*User, error)
	DeleteUser(ctx context.Context, id string, confirmed bool) error
	RestoreUser(ctx context.Context, id string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserStats() UserStats
	ListUsers(st listview.State) listview.Page[User]

	// auth collaborators
	LoginProfile(ctx context.Context, id string) (*auth.Profile, error)
	RecordLogin(ctx context.Context, id string) error
	ResolveActor(ctx context.Context, id string) (*auth.Actor, error)

	Refresh(ctx context.Context) error
	CacheState() (items int, loaded bool)
	Start(ctx context.Context) error
	Stop() error
	Subscribe(fn func(syncache.Event[User])) *syncache.Subscription
}

type UserServiceImpl struct {
	UserRepo     UserRepository
	Roles        RoleDirectory
	Identities   IdentityAdmin
	Passwords    auth.PasswordPolicy
	AuditService audit.AuditService
	Logger       *zap.Logger

	now       func() time.Time
	validator *validation.Validator
	cache     *syncache.Cache[User]
	view      *listview.View[User]

	mu        sync.Mutex
	stopWatch func() error
}

func NewUserService(
	userRepo UserRepository,
	roles RoleDirectory,
	identities IdentityAdmin,
	passwords auth.PasswordPolicy,
	auditService audit.AuditService,
	logger *zap.Logger,
) UserService {
	return &UserServiceImpl{
		UserRepo:     userRepo,
		Roles:        roles,
		Identities:   identities,
		Passwords:    passwords,
		AuditService: auditService,
		Logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		validator:    validation.New(),
		cache:        syncache.New(cacheKeys()),
		view:         listview.NewView(viewSchema()),
	}
}

func (s *UserServiceImpl) checkRole(id string) error {
	if !s.Roles.RoleExists(id) {
		return errs.Validation("role", "exists", fmt.Sprintf("role %q does not exist or is inactive", id))
	}
	return nil
}

// session returns the caller's auth session, or opens one signed in as actor.
func (s *UserServiceImpl) session(ctx context.Context, actor *auth.Actor) auth.Provider {
	if p, ok := auth.SessionFromContext(ctx); ok {
		return p
	}
	return s.Identities.NewSession(actor.Identity())
}

func (s *UserServiceImpl) removeIdentity(ctx context.Context, id string) {
	if err := s.Identities.RemoveIdentity(ctx, id); err != nil {
		s.Logger.Error("Failed to remove orphaned identity", zap.String("user_id", id), zap.Error(err))
	}
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	actor, err := auth.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Role = strings.TrimSpace(in.Role)

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	if err := s.checkRole(in.Role); err != nil {
		return nil, err
	}
	if err := s.Passwords.Check(in.Password); err != nil {
		return nil, err
	}
	if !s.Roles.Hierarchy().CanAssignRole(actor.Role, in.Role) {
		return nil, fmt.Errorf("%w: cannot assign role %s", errs.ErrAuthorization, in.Role)
	}

	_, err = s.UserRepo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: user %s already exists", errs.ErrDuplicate, in.Email)
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	// Creating an identity signs it in. Sign it out right away so the
	// session returns to the acting admin.
	session := s.session(ctx, actor)
	identity, err := session.CreateIdentity(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	signOutErr := session.SignOut(ctx)
	if cur := session.CurrentIdentity(); signOutErr != nil || cur == nil || cur.ID != actor.ID {
		s.Logger.Error("Session did not return to the acting admin",
			zap.String("actor_id", actor.ID),
			zap.String("user_id", identity.ID),
			zap.Error(signOutErr),
		)
		s.removeIdentity(ctx, identity.ID)
		return nil, fmt.Errorf("%w: %s", errs.ErrSessionNotRestored, actor.ID)
	}

	user := &User{
		ID:          identity.ID,
		Email:       identity.Email,
		DisplayName: in.DisplayName,
		Role:        in.Role,
		IsActive:    true,
		CreatedBy:   actor.ID,
		UpdatedBy:   actor.ID,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		s.removeIdentity(ctx, identity.ID)
		return nil, err
	}
	s.cache.Upsert(*user)

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, auditModule, user.ID, map[string]common_models.Change{
		"email": {New: user.Email},
		"role":  {New: user.Role},
	})
	return user, nil
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*User, error) {
	actor, err := auth.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Role = strings.TrimSpace(in.Role)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	if err := s.checkRole(in.Role); err != nil {
		return nil, err
	}

	current, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.Roles.Hierarchy().CanAssignRole(actor.Role, in.Role) {
		return nil, fmt.Errorf("%w: cannot assign role %s", errs.ErrAuthorization, in.Role)
	}
	if current.Role == role.SuperAdmin && in.Role != role.SuperAdmin && current.IsActive {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return nil, err
		}
	}

	updated, err := s.UserRepo.UpdateProfile(ctx, id, in, actor.ID)
	if err != nil {
		return nil, err
	}
	s.cache.Upsert(*updated)

	changes := map[string]common_models.Change{}
	if current.DisplayName != updated.DisplayName {
		changes["display_name"] = common_models.Change{Old: current.DisplayName, New: updated.DisplayName}
	}
	if current.Role != updated.Role {
		changes["role"] = common_models.Change{Old: current.Role, New: updated.Role}
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, auditModule, id, changes)
	return updated, nil
}

// ensureAnotherSuperAdmin fails when at most one active super admin remains.
func (s *UserServiceImpl) ensureAnotherSuperAdmin(ctx context.Context) error {
	n, err := s.UserRepo.CountActiveByRole(ctx, role.SuperAdmin)
	if err != nil {
		return fmt.Errorf("count super admins: %w", err)
	}
	if n <= 1 {
		return errs.ErrLastSuperAdmin
	}
	return nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id string, confirmed bool) error {
	actor, err := auth.Authorize(ctx)
	if err != nil {
		return err
	}
	if !confirmed {
		return errs.ErrConfirmationRequired
	}
	if id == actor.ID {
		return errs.ErrSelfDeletion
	}

	target, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if target.Role == role.SuperAdmin && target.IsActive {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return err
		}
	}

	deleted, err := s.UserRepo.SoftDelete(ctx, id, actor.ID, s.now())
	if err != nil {
		return err
	}
	s.cache.Upsert(*deleted)

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, auditModule, id, map[string]common_models.Change{
		"is_active": {Old: target.IsActive, New: false},
	})
	return nil
}

func (s *UserServiceImpl) RestoreUser(ctx context.Context, id string) (*User, error) {
	actor, err := auth.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	target, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	restored, err := s.UserRepo.Restore(ctx, id, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	s.cache.Upsert(*restored)

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionRestore, auditModule, id, map[string]common_models.Change{
		"is_active": {Old: target.IsActive, New: true},
	})
	return restored, nil
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, id string) (*User, error) {
	if u, ok := s.cache.Get(id); ok {
		return &u, nil
	}
	u, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Upsert(*u)
	return u, nil
}

func (s *UserServiceImpl) GetUserStats() UserStats {
	stats := UserStats{ByRole: map[string]int{}}
	since := s.now().Add(-RecentWindow)

	for _, u := range s.cache.List() {
		stats.Total++
		if u.IsActive {
			stats.Active++
			stats.ByRole[u.Role]++
		} else {
			stats.Inactive++
		}
		if u.CreatedAt != nil && u.CreatedAt.After(since) {
			stats.RecentlyCreated++
		}
	}
	return stats
}

func (s *UserServiceImpl) ListUsers(st listview.State) listview.Page[User] {
	return s.view.Page(s.cache.Generation(), s.cache.List, st)
}

func (s *UserServiceImpl) LoginProfile(ctx context.Context, id string) (*auth.Profile, error) {
	u, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.Profile{ID: u.ID, Email: u.Email, Role: u.Role, IsActive: u.IsActive}, nil
}

func (s *UserServiceImpl) RecordLogin(ctx context.Context, id string) error {
	u, err := s.UserRepo.SetLastLogin(ctx, id, s.now())
	if err != nil {
		return err
	}
	s.cache.Upsert(*u)
	return nil
}

// ResolveActor maps a token subject to its current role. Deactivated users
// are rejected even while their token is still valid.
func (s *UserServiceImpl) ResolveActor(ctx context.Context, id string) (*auth.Actor, error) {
	u, err := s.GetUserByID(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", errs.ErrAuthentication)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", errs.ErrAuthentication)
	}
	return &auth.Actor{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}

func (s *UserServiceImpl) Refresh(ctx context.Context) error {
	users, err := s.UserRepo.List(ctx)
	if err != nil {
		s.Logger.Error("Failed to refresh users", zap.Error(err))
		return err
	}
	s.cache.Replace(users)
	return nil
}

// CacheState reports the cache size and whether a full listing was loaded.
func (s *UserServiceImpl) CacheState() (int, bool) {
	return s.cache.Len(), s.cache.Loaded()
}

func (s *UserServiceImpl) Start(ctx context.Context) error {
	stop, err := s.UserRepo.Watch(ctx, s.apply)
	if err != nil {
		s.Logger.Warn("User change stream unavailable, relying on scheduled resync", zap.Error(err))
	} else {
		s.mu.Lock()
		s.stopWatch = stop
		s.mu.Unlock()
	}

	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	return nil
}

func (s *UserServiceImpl) Stop() error {
	s.mu.Lock()
	stop := s.stopWatch
	s.stopWatch = nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	return stop()
}

func (s *UserServiceImpl) apply(change UserChange) {
	switch {
	case change.Kind == database.ChangeDelete:
		s.cache.Remove(change.ID)
	case change.User != nil:
		s.cache.Upsert(*change.User)
	}
}

func (s *UserServiceImpl) Subscribe(fn func(syncache.Event[User])) *syncache.Subscription {
	return s.cache.Subscribe(fn)
}
