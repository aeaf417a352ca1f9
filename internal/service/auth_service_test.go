package service

import (
	"testing"
	"time"

	"fandreams/config"
	"fandreams/internal/auth"
	"fandreams/internal/domain"
	"fandreams/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(env *testEnv) *AuthService {
	cfg := &config.JWTConfig{
		AccessSecret:  "test-access",
		RefreshSecret: "test-refresh",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "fandreams-test",
	}
	return NewAuthService(cfg,
		repository.NewUserRepository(env.db),
		repository.NewCreatorProfileRepository(env.db),
		env.wallets,
		env.bonus,
	)
}

func TestRegisterProvisionsWallet(t *testing.T) {
	env := newTestEnv(t)
	authSvc := newAuthService(env)

	user, tokens, err := authSvc.Register(RegisterParams{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleFan, user.Role)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, int64(0), env.wallet(t, user.ID).Balance)

	_, _, err = authSvc.Register(RegisterParams{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	require.Error(t, err)
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeAlreadyExists, derr.Code)
}

func TestLoginVerifiesPassword(t *testing.T) {
	env := newTestEnv(t)
	authSvc := newAuthService(env)
	_, _, err := authSvc.Register(RegisterParams{
		Username: "bob", Email: "bob@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	user, tokens, err := authSvc.Login("bob@example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.NotEmpty(t, tokens.AccessToken)

	_, _, err = authSvc.Login("bob@example.com", "wrong")
	require.Error(t, err)
	_, _, err = authSvc.Login("nobody@example.com", "supersecret")
	require.Error(t, err)
}

func TestRefreshRotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	authSvc := newAuthService(env)
	_, tokens, err := authSvc.Register(RegisterParams{
		Username: "carol", Email: "carol@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	fresh, err := authSvc.Refresh(tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	// Access tokens are signed with a different secret and must not refresh.
	_, err = authSvc.Refresh(tokens.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestBecomeCreatorBootstrapsProfile(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.settings.Update(map[string]string{
		domain.SettingCreatorBonusEnabled: "true",
	}))
	authSvc := newAuthService(env)
	user, _, err := authSvc.Register(RegisterParams{
		Username: "dora", Email: "dora@example.com", Password: "supersecret",
	})
	require.NoError(t, err)

	upgraded, err := authSvc.BecomeCreator(user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCreator, upgraded.Role)

	// The welcome bonus offer is registered, pending subscribers.
	bonus, err := env.bonus.Status(user.ID)
	require.NoError(t, err)
	require.NotNil(t, bonus)
	assert.Equal(t, domain.CreatorBonusPending, bonus.Status)

	// Upgrading twice is a no-op.
	again, err := authSvc.BecomeCreator(user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCreator, again.Role)
}
