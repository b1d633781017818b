package role

import (
	"context"
	"fmt"
	"sync"

	"eic-admin/internal/common/errs"
	common_models "eic-admin/internal/common/models"
	"eic-admin/internal/common/validation"
	"eic-admin/internal/database"
	"eic-admin/internal/features/audit"
	"eic-admin/internal/features/auth"
	"eic-admin/internal/features/permission"
	"eic-admin/pkg/listview"
	"eic-admin/pkg/syncache"
	"eic-admin/pkg/utils"

	"go.uber.org/zap"
)

const auditModule = "roles"

// UserReferenceCounter queries the live users collection.
type UserReferenceCounter interface {
	CountByRole(ctx context.Context, roleID string) (int64, error)
}

type RoleService interface {
	ListRoles() []Role
	ListRolesView(st listview.State) listview.Page[Role]
	GetRoleByID(ctx context.Context, id string) (*Role, error)
	AvailableRoles() []Role
	CreateRole(ctx context.Context, in RoleInput) (*Role, error)
	UpdateRole(ctx context.Context, id string, in RoleInput) (*Role, error)
	DeleteRole(ctx context.Context, id string) error
	InitializeDefaultRoles(ctx context.Context) (int, error)
	RecountUsers(ctx context.Context, id string) (*Role, error)
	RecountAllUsers(ctx context.Context) error

	HasPermission(roleID, module, perm string) bool
	EffectivePermissions(roleID string) permission.Set
	RoleExists(id string) bool
	Lookup(id string) (Role, bool)
	Hierarchy() *Hierarchy

	Refresh(ctx context.Context) error
	CacheState() (items int, loaded bool)
	Start(ctx context.Context) error
	Stop() error
	Subscribe(fn func(syncache.Event[Role])) *syncache.Subscription
}

type RoleServiceImpl struct {
	RoleRepo          RoleRepository
	Users             UserReferenceCounter
	AuditService      audit.AuditService
	PermissionService permission.PermissionService
	Logger            *zap.Logger

	validator *validation.Validator
	cache     *syncache.Cache[Role]
	view      *listview.View[Role]
	hierarchy *Hierarchy

	mu        sync.Mutex
	stopWatch func() error
}

func NewRoleService(
	roleRepo RoleRepository,
	users UserReferenceCounter,
	auditService audit.AuditService,
	permissionService permission.PermissionService,
	logger *zap.Logger,
) RoleService {
	s := &RoleServiceImpl{
		RoleRepo:          roleRepo,
		Users:             users,
		AuditService:      auditService,
		PermissionService: permissionService,
		Logger:            logger,
		validator:         validation.New(),
		cache:             syncache.New(cacheKeys()),
		view:              listview.NewView(viewSchema()),
	}
	s.hierarchy = NewHierarchy(s)
	return s
}

// ListRoles returns the cached roles, newest first.
func (s *RoleServiceImpl) ListRoles() []Role {
	return s.cache.List()
}

func (s *RoleServiceImpl) ListRolesView(st listview.State) listview.Page[Role] {
	return s.view.Page(s.cache.Generation(), s.cache.List, st)
}

func (s *RoleServiceImpl) GetRoleByID(ctx context.Context, id string) (*Role, error) {
	if r, ok := s.cache.Get(id); ok {
		return &r, nil
	}
	r, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Upsert(*r)
	return r, nil
}

func (s *RoleServiceImpl) AvailableRoles() []Role {
	all := s.cache.List()
	out := make([]Role, 0, len(all))
	for _, r := range all {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out
}

func (s *RoleServiceImpl) validate(in RoleInput) error {
	if err := s.validator.Struct(in); err != nil {
		return err
	}
	return s.PermissionService.Validate(in.Permissions)
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, in RoleInput) (*Role, error) {
	if _, err := auth.Authorize(ctx); err != nil {
		return nil, err
	}

	in = normalizeInput(in)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	id := utils.Slugify(in.Name)
	if id == "" {
		return nil, errs.Validation("name", "id", "name must contain at least one letter or digit")
	}
	if _, ok := s.cache.Get(id); ok {
		return nil, fmt.Errorf("%w: role %s already exists", errs.ErrDuplicate, id)
	}

	role := &Role{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Permissions: in.Permissions.Clone(),
		IsSystem:    false,
		IsActive:    true,
	}
	if err := s.RoleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	s.cache.Upsert(*role)

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, auditModule, role.ID, map[string]common_models.Change{
		"name":        {New: role.Name},
		"permissions": {New: CountPermissions(role.Permissions)},
	})

	s.Logger.Info("Role created", zap.String("role_id", role.ID), zap.String("actor_id", auth.ActorID(ctx)))
	return role, nil
}

func (s *RoleServiceImpl) UpdateRole(ctx context.Context, id string, in RoleInput) (*Role, error) {
	if _, err := auth.Authorize(ctx); err != nil {
		return nil, err
	}

	in = normalizeInput(in)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	current, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsSystem {
		return nil, fmt.Errorf("%w: role %s", errs.ErrImmutableEntity, id)
	}

	in.Permissions = in.Permissions.Clone()
	updated, err := s.RoleRepo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.cache.Upsert(*updated)

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, auditModule, id, diff(current, updated))
	return updated, nil
}

func diff(before, after *Role) map[string]common_models.Change {
	changes := map[string]common_models.Change{}
	if before.Name != after.Name {
		changes["name"] = common_models.Change{Old: before.Name, New: after.Name}
	}
	if before.Description != after.Description {
		changes["description"] = common_models.Change{Old: before.Description, New: after.Description}
	}
	if !before.Permissions.Covers(after.Permissions) || !after.Permissions.Covers(before.Permissions) {
		changes["permissions"] = common_models.Change{
			Old: CountPermissions(before.Permissions),
			New: CountPermissions(after.Permissions),
		}
	}
	return changes
}

func (s *RoleServiceImpl) DeleteRole(ctx context.Context, id string) error {
	if _, err := auth.Authorize(ctx); err != nil {
		return err
	}

	role, err := s.RoleRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("%w: role %s", errs.ErrImmutableEntity, id)
	}

	// Always ask the users collection, the cached users_assigned may be stale
	count, err := s.Users.CountByRole(ctx, id)
	if err != nil {
		return fmt.Errorf("count users of role %s: %w", id, err)
	}
	if count > 0 {
		return fmt.Errorf("%w: role %s is assigned to %d user(s)", errs.ErrConflict, id, count)
	}

	if err := s.RoleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Remove(id)

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, auditModule, id, map[string]common_models.Change{
		"name": {Old: role.Name},
	})
	return nil
}

// InitializeDefaultRoles inserts the system roles that do not exist yet and
// returns how many were created.
func (s *RoleServiceImpl) InitializeDefaultRoles(ctx context.Context) (int, error) {
	created := 0
	for _, r := range DefaultRoles() {
		role := r
		ok, err := s.RoleRepo.InsertIfAbsent(ctx, &role)
		if err != nil {
			return created, fmt.Errorf("seed role %s: %w", role.ID, err)
		}
		if !ok {
			continue
		}
		created++
		s.cache.Upsert(role)
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionSeed, auditModule, role.ID, nil)
	}

	if created > 0 {
		s.Logger.Info("Default roles initialized", zap.Int("created", created))
	}
	return created, nil
}

func (s *RoleServiceImpl) RecountUsers(ctx context.Context, id string) (*Role, error) {
	if _, err := auth.Authorize(ctx); err != nil {
		return nil, err
	}
	return s.recount(ctx, id)
}

func (s *RoleServiceImpl) recount(ctx context.Context, id string) (*Role, error) {
	count, err := s.Users.CountByRole(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.RoleRepo.SetUsersAssigned(ctx, id, count)
	if err != nil {
		return nil, err
	}
	s.cache.Upsert(*updated)
	return updated, nil
}

// RecountAllUsers refreshes users_assigned on every cached role. It runs
// from the scheduler and is not guarded.
func (s *RoleServiceImpl) RecountAllUsers(ctx context.Context) error {
	var firstErr error
	for _, r := range s.cache.List() {
		if _, err := s.recount(ctx, r.ID); err != nil {
			s.Logger.Warn("Failed to recount role users", zap.String("role_id", r.ID), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// HasPermission is false for inactive and unknown roles. Super admins hold
// every catalog permission regardless of the stored document.
func (s *RoleServiceImpl) HasPermission(roleID, module, perm string) bool {
	if roleID == SuperAdmin {
		return s.PermissionService.Exists(module, perm)
	}
	r, ok := s.cache.Get(roleID)
	if !ok || !r.IsActive {
		return false
	}
	return r.Permissions.Has(module, perm)
}

func (s *RoleServiceImpl) EffectivePermissions(roleID string) permission.Set {
	if roleID == SuperAdmin {
		return s.PermissionService.Full()
	}
	r, ok := s.cache.Get(roleID)
	if !ok || !r.IsActive {
		return permission.Set{}
	}
	return r.Permissions.Clone()
}

func (s *RoleServiceImpl) RoleExists(id string) bool {
	r, ok := s.cache.Get(id)
	return ok && r.IsActive
}

func (s *RoleServiceImpl) Lookup(id string) (Role, bool) {
	return s.cache.Get(id)
}

func (s *RoleServiceImpl) Hierarchy() *Hierarchy {
	return s.hierarchy
}

// Refresh replaces the cache with a fresh listing. On error the previous
// cache is kept.
func (s *RoleServiceImpl) Refresh(ctx context.Context) error {
	roles, err := s.RoleRepo.List(ctx)
	if err != nil {
		s.Logger.Error("Failed to refresh roles", zap.Error(err))
		return err
	}
	s.cache.Replace(roles)
	return nil
}

// CacheState reports the cache size and whether a full listing was loaded.
func (s *RoleServiceImpl) CacheState() (int, bool) {
	return s.cache.Len(), s.cache.Loaded()
}

func (s *RoleServiceImpl) Start(ctx context.Context) error {
	stop, err := s.RoleRepo.Watch(ctx, s.apply)
	if err != nil {
		s.Logger.Warn("Role change stream unavailable, relying on scheduled resync", zap.Error(err))
	} else {
		s.mu.Lock()
		s.stopWatch = stop
		s.mu.Unlock()
	}

	if err := s.Refresh(ctx); err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	return nil
}

func (s *RoleServiceImpl) Stop() error {
	s.mu.Lock()
	stop := s.stopWatch
	s.stopWatch = nil
	s.mu.Unlock()

	if stop == nil {
		return nil
	}
	return stop()
}

func (s *RoleServiceImpl) apply(change RoleChange) {
	switch {
	case change.Kind == database.ChangeDelete:
		s.cache.Remove(change.ID)
	case change.Role != nil:
		s.cache.Upsert(*change.Role)
	}
}

func (s *RoleServiceImpl) Subscribe(fn func(syncache.Event[Role])) *syncache.Subscription {
	return s.cache.Subscribe(fn)
}
