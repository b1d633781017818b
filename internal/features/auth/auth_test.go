package auth

import (
	"context"
	"testing"

	"eic-admin/internal/common/errs"
	"eic-admin/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRequireSuperAdmin(t *testing.T) {
	tests := []struct {
		name  string
		actor *Actor
		want  error
	}{
		{"no actor", nil, errs.ErrAuthentication},
		{"empty id", &Actor{Role: SuperAdminRole}, errs.ErrAuthentication},
		{"admin", &Actor{ID: "u1", Role: "admin"}, errs.ErrAuthorization},
		{"custom role", &Actor{ID: "u1", Role: "inspector_lead"}, errs.ErrAuthorization},
		{"superadmin", &Actor{ID: "u1", Role: SuperAdminRole}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireSuperAdmin(tt.actor)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthorizeReadsContext(t *testing.T) {
	_, err := Authorize(context.Background())
	require.ErrorIs(t, err, errs.ErrAuthentication)

	ctx := WithActor(context.Background(), &Actor{ID: "root", Role: SuperAdminRole})
	actor, err := Authorize(ctx)
	require.NoError(t, err)
	require.Equal(t, "root", actor.ID)
	require.Equal(t, "root", ActorID(ctx))
	require.Equal(t, "system", ActorID(context.Background()))
}

func TestPasswordPolicies(t *testing.T) {
	tests := []struct {
		name     string
		policy   PasswordPolicy
		password string
		rule     string
	}{
		{"basic ok", BasicPasswordPolicy, "abcdef", ""},
		{"basic short", BasicPasswordPolicy, "abcde", "min"},
		{"empty", BasicPasswordPolicy, "", "required"},
		{"strong ok", StrongPasswordPolicy, "Abcdef12", ""},
		{"strong short", StrongPasswordPolicy, "Abc12", "min"},
		{"strong single class", StrongPasswordPolicy, "abcdefgh", "mixed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Check(tt.password)
			if tt.rule == "" {
				require.NoError(t, err)
				return
			}
			ve, ok := errs.AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, "password", ve.Field)
			assert.Equal(t, tt.rule, ve.Rule)
		})
	}
}

func TestCreateIdentityThenSignOutRestoresPrevious(t *testing.T) {
	authenticator, _ := newTestAuthenticator()
	admin := &Identity{ID: "admin-1", Email: "root@x.com"}
	session := authenticator.NewSession(admin)

	var seen []string
	sub := session.OnIdentityChanged(func(id *Identity) {
		if id == nil {
			seen = append(seen, "<none>")
			return
		}
		seen = append(seen, id.Email)
	})
	defer sub.Unsubscribe()

	created, err := session.CreateIdentity(context.Background(), "New@X.com", "abcdef")
	require.NoError(t, err)
	require.Equal(t, "new@x.com", created.Email)
	require.Equal(t, created.ID, session.CurrentIdentity().ID)

	require.NoError(t, session.SignOut(context.Background()))
	require.Equal(t, admin.ID, session.CurrentIdentity().ID)
	require.Equal(t, []string{"new@x.com", "root@x.com"}, seen)
}

func TestSignInVerifiesPassword(t *testing.T) {
	authenticator, _ := newTestAuthenticator()
	_, err := authenticator.Register(context.Background(), "a@x.com", "abcdef")
	require.NoError(t, err)

	session := authenticator.NewSession(nil)
	_, err = session.SignIn(context.Background(), "a@x.com", "wrong-password")
	require.ErrorIs(t, err, errs.ErrAuthentication)
	require.Nil(t, session.CurrentIdentity())

	identity, err := session.SignIn(context.Background(), "A@x.com", "abcdef")
	require.NoError(t, err)
	require.Equal(t, identity.ID, session.CurrentIdentity().ID)

	require.NoError(t, session.SignOut(context.Background()))
	require.Nil(t, session.CurrentIdentity())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	authenticator, _ := newTestAuthenticator()
	_, err := authenticator.Register(context.Background(), "a@x.com", "abcdef")
	require.NoError(t, err)

	_, err = authenticator.Register(context.Background(), "A@X.com", "abcdef")
	require.ErrorIs(t, err, errs.ErrDuplicate)
}

func TestLogin(t *testing.T) {
	utils.SetSecret("login-test")
	authenticator, _ := newTestAuthenticator()
	active, err := authenticator.Register(context.Background(), "lead@x.com", "abcdef")
	require.NoError(t, err)
	inactive, err := authenticator.Register(context.Background(), "gone@x.com", "abcdef")
	require.NoError(t, err)

	profiles := &fakeProfiles{profiles: map[string]*Profile{
		active.ID:   {ID: active.ID, Email: "lead@x.com", Role: "manager", IsActive: true},
		inactive.ID: {ID: inactive.ID, Email: "gone@x.com", Role: "employee", IsActive: false},
	}}
	audit := &recordingAudit{}
	svc := NewAuthService(authenticator, profiles, audit, zap.NewNop())

	result, err := svc.Login(context.Background(), "lead@x.com", "abcdef")
	require.NoError(t, err)
	claims, err := utils.ValidateToken(result.Token)
	require.NoError(t, err)
	require.Equal(t, active.ID, claims.UserID)
	require.Equal(t, "manager", claims.Role)
	require.Equal(t, []string{active.ID}, profiles.logins)
	require.Equal(t, []string{active.ID}, audit.actors)

	_, err = svc.Login(context.Background(), "gone@x.com", "abcdef")
	require.ErrorIs(t, err, errs.ErrAuthentication)

	_, err = svc.Login(context.Background(), "nobody@x.com", "abcdef")
	require.ErrorIs(t, err, errs.ErrAuthentication)
}
