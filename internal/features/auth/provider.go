package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"eic-admin/internal/common/errs"
	"eic-admin/pkg/syncache"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Provider is the identity collaborator seen by the user store. Creating an
// identity signs it in; signing it out returns to the previous identity.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context) error
	CreateIdentity(ctx context.Context, email, password string) (*Identity, error)
	CurrentIdentity() *Identity
	OnIdentityChanged(fn func(*Identity)) *syncache.Subscription
}

type SessionFactory interface {
	NewSession(current *Identity) Provider
}

// Authenticator checks and stores credentials with bcrypt.
type Authenticator struct {
	Repo IdentityRepository
	Cost int
}

func NewAuthenticator(repo IdentityRepository) *Authenticator {
	return &Authenticator{Repo: repo, Cost: bcrypt.DefaultCost}
}

func (a *Authenticator) Verify(ctx context.Context, email, password string) (*Identity, error) {
	cred, err := a.Repo.FindByEmail(ctx, email)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid credentials", errs.ErrAuthentication)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", errs.ErrAuthentication)
	}
	return cred.Identity(), nil
}

func (a *Authenticator) Register(ctx context.Context, email, password string) (*Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.Cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	cred := &Credential{
		ID:           primitive.NewObjectID().Hex(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.Repo.Create(ctx, cred); err != nil {
		return nil, err
	}
	return cred.Identity(), nil
}

// RemoveIdentity undoes Register when the matching user document could not be stored.
func (a *Authenticator) RemoveIdentity(ctx context.Context, id string) error {
	return a.Repo.Delete(ctx, id)
}

func (a *Authenticator) NewSession(current *Identity) Provider {
	return NewSession(a, current)
}

// Session tracks the signed-in identity of one caller.
type Session struct {
	auth *Authenticator

	mu        sync.Mutex
	current   *Identity
	previous  []*Identity
	observers map[int]func(*Identity)
	nextID    int
}

func NewSession(a *Authenticator, current *Identity) *Session {
	return &Session{
		auth:      a,
		current:   current,
		observers: make(map[int]func(*Identity)),
	}
}

func (s *Session) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	identity, err := s.auth.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.switchTo(identity)
	return identity, nil
}

func (s *Session) CreateIdentity(ctx context.Context, email, password string) (*Identity, error) {
	identity, err := s.auth.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.switchTo(identity)
	return identity, nil
}

func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	var next *Identity
	if n := len(s.previous); n > 0 {
		next = s.previous[n-1]
		s.previous = s.previous[:n-1]
	}
	s.current = next
	fns := s.observerList()
	s.mu.Unlock()

	notify(fns, next)
	return nil
}

func (s *Session) CurrentIdentity() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	identity := *s.current
	return &identity
}

func (s *Session) OnIdentityChanged(fn func(*Identity)) *syncache.Subscription {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return syncache.NewSubscription(func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	})
}

func (s *Session) switchTo(identity *Identity) {
	s.mu.Lock()
	if s.current != nil {
		s.previous = append(s.previous, s.current)
	}
	s.current = identity
	fns := s.observerList()
	s.mu.Unlock()

	notify(fns, identity)
}

func (s *Session) observerList() []func(*Identity) {
	fns := make([]func(*Identity), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(*Identity), identity *Identity) {
	for _, fn := range fns {
		fn(identity)
	}
}
