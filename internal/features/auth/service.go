package auth

import (
	"context"
	"errors"
	"fmt"

	"eic-admin/internal/common/errs"
	"eic-admin/internal/common/models"
	"eic-admin/pkg/utils"

	"go.uber.org/zap"
)

// Profile is the part of a user document needed to issue a token.
type Profile struct {
	ID       string
	Email    string
	Role     string
	IsActive bool
}

type ProfileLookup interface {
	LoginProfile(ctx context.Context, id string) (*Profile, error)
	RecordLogin(ctx context.Context, id string) error
}

type AuditLogger interface {
	LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error
}

type LoginResult struct {
	Token string   `json:"token"`
	User  *Profile `json:"user"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type AuthServiceImpl struct {
	Authenticator *Authenticator
	Profiles      ProfileLookup
	AuditService  AuditLogger
	Logger        *zap.Logger
}

func NewAuthService(authenticator *Authenticator, profiles ProfileLookup, auditService AuditLogger, logger *zap.Logger) AuthService {
	return &AuthServiceImpl{
		Authenticator: authenticator,
		Profiles:      profiles,
		AuditService:  auditService,
		Logger:        logger,
	}
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	identity, err := s.Authenticator.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := s.Profiles.LoginProfile(ctx, identity.ID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, fmt.Errorf("%w: no user profile for this account", errs.ErrAuthentication)
	}
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", errs.ErrAuthentication)
	}

	token, err := utils.GenerateToken(profile.ID, profile.Email, profile.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	if err := s.Profiles.RecordLogin(ctx, profile.ID); err != nil {
		s.Logger.Warn("Failed to record last login", zap.String("user_id", profile.ID), zap.Error(err))
	}

	ctx = WithActor(ctx, &Actor{ID: profile.ID, Email: profile.Email, Role: profile.Role})
	_ = s.AuditService.LogChange(ctx, models.AuditActionLogin, "users", profile.ID, nil)

	return &LoginResult{Token: token, User: profile}, nil
}
