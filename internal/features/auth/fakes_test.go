package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"eic-admin/internal/common/errs"
	"eic-admin/internal/common/models"

	"golang.org/x/crypto/bcrypt"
)

type memoryIdentityRepo struct {
	mu    sync.Mutex
	byID  map[string]*Credential
	calls int
}

func newMemoryIdentityRepo() *memoryIdentityRepo {
	return &memoryIdentityRepo{byID: make(map[string]*Credential)}
}

func (r *memoryIdentityRepo) Create(_ context.Context, cred *Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	for _, c := range r.byID {
		if c.Email == strings.ToLower(cred.Email) {
			return fmt.Errorf("%w: identity %s already exists", errs.ErrDuplicate, cred.Email)
		}
	}
	cp := *cred
	cp.Email = strings.ToLower(cp.Email)
	r.byID[cp.ID] = &cp
	return nil
}

func (r *memoryIdentityRepo) FindByEmail(_ context.Context, email string) (*Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.Email == strings.ToLower(email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *memoryIdentityRepo) FindByID(_ context.Context, id string) (*Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, errs.ErrNotFound
}

func (r *memoryIdentityRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *memoryIdentityRepo) EnsureIndexes(context.Context) error { return nil }

func newTestAuthenticator() (*Authenticator, *memoryIdentityRepo) {
	repo := newMemoryIdentityRepo()
	return &Authenticator{Repo: repo, Cost: bcrypt.MinCost}, repo
}

type fakeProfiles struct {
	profiles map[string]*Profile
	logins   []string
}

func (f *fakeProfiles) LoginProfile(_ context.Context, id string) (*Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) RecordLogin(_ context.Context, id string) error {
	f.logins = append(f.logins, id)
	return nil
}

type recordingAudit struct {
	actions []models.AuditAction
	actors  []string
}

func (a *recordingAudit) LogChange(ctx context.Context, action models.AuditAction, _ string, _ string, _ map[string]models.Change) error {
	a.actions = append(a.actions, action)
	a.actors = append(a.actors, ActorID(ctx))
	return nil
}
