package service

import (
	"testing"

	"github.com/storefront-next/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserAuthService(env *serviceTestEnv) *UserAuthService {
	cfg := &config.Config{
		UserJWT: config.JWTConfig{SecretKey: "test-user-secret-0123456789abcdef", ExpireHours: 1},
		Security: config.SecurityConfig{PasswordPolicy: config.PasswordPolicyConfig{
			MinLength:     8,
			RequireNumber: true,
		}},
	}
	return NewUserAuthService(cfg, env.users, env.profiles)
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupServiceTestDB(t)
	svc := newTestUserAuthService(env)

	user, token, _, err := svc.Register(RegisterInput{Username: "nora", Email: "Nora@Example.com", Password: "hunter22!", PasswordConfirm: "hunter22!"})
	require.NoError(t, err)
	assert.Equal(t, "nora@example.com", user.Email)
	assert.NotEmpty(t, token)

	claims, err := svc.ParseUserJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, _, err = svc.Register(RegisterInput{Username: "nora", Email: "other@example.com", Password: "hunter22!"})
	assert.ErrorIs(t, err, ErrUsernameExists)
	_, _, _, err = svc.Register(RegisterInput{Username: "nora2", Email: "nora@example.com", Password: "hunter22!"})
	assert.ErrorIs(t, err, ErrEmailExists)

	loggedIn, _, _, err := svc.Login("nora@example.com", "hunter22!", false)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	_, _, _, err = svc.Login("nora", "wrong-pass1", false)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterPasswordPolicy(t *testing.T) {
	env := setupServiceTestDB(t)
	svc := newTestUserAuthService(env)

	_, _, _, err := svc.Register(RegisterInput{Username: "otto", Email: "otto@example.com", Password: "short1"})
	assert.ErrorIs(t, err, ErrWeakPassword)
	key, args, ok := IsPasswordPolicyError(err)
	require.True(t, ok)
	assert.Equal(t, "error.password_min_length", key)
	assert.Equal(t, []interface{}{8}, args)

	_, _, _, err = svc.Register(RegisterInput{Username: "otto", Email: "otto@example.com", Password: "longenough", PasswordConfirm: "longenough"})
	key, _, _ = IsPasswordPolicyError(err)
	assert.Equal(t, "error.password_require_number", key)

	_, _, _, err = svc.Register(RegisterInput{Username: "bad name", Email: "otto@example.com", Password: "longenough1"})
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	env := setupServiceTestDB(t)
	svc := newTestUserAuthService(env)
	user, _, _, err := svc.Register(RegisterInput{Username: "pia", Email: "pia@example.com", Password: "password1"})
	require.NoError(t, err)

	inactive := false
	_, err = NewUserAdminService(env.users, env.profiles).UpdateUser(user.ID, UserAdminUpdateInput{IsActive: &inactive})
	require.NoError(t, err)

	_, _, _, err = svc.Login("pia", "password1", false)
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestChangePasswordBumpsTokenVersion(t *testing.T) {
	env := setupServiceTestDB(t)
	svc := newTestUserAuthService(env)
	user, _, _, err := svc.Register(RegisterInput{Username: "quinn", Email: "quinn@example.com", Password: "password1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(user.ID, "nope", "password2"), ErrInvalidPassword)
	require.NoError(t, svc.ChangePassword(user.ID, "password1", "password2"))

	reloaded, err := svc.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.TokenVersion+1, reloaded.TokenVersion)
	_, _, _, err = svc.Login("quinn", "password2", false)
	assert.NoError(t, err)
}

func TestUpdateProfileCreatesProfile(t *testing.T) {
	env := setupServiceTestDB(t)
	svc := newTestUserAuthService(env)
	user := env.createUser(t, "rosa")

	first := "Rosa"
	city := "  Lyon "
	view, err := svc.UpdateProfile(user.ID, UserProfileInput{FirstName: &first, City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Rosa", view.User.FirstName)
	assert.Equal(t, "Lyon", view.Profile.City)
	assert.NotZero(t, view.Profile.ID)

	long := "123456789012345678901"
	_, err = svc.UpdateProfile(user.ID, UserProfileInput{ZipCode: &long})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
