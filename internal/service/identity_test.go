package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupThenLogin_ReturnsSameUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	signup, err := env.identity.Signup(ctx, SignupInput{Email: "a@x.com", Password: "pw", Name: "Alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, "a@x.com", signup.Email)

	login, err := env.identity.Login(ctx, LoginInput{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, signup.UserID, login.UserID)
	assert.Equal(t, "Alice", login.Name)
	assert.NotEmpty(t, login.Token)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "a@x.com", "Alice")

	_, err := env.identity.Signup(context.Background(), SignupInput{Email: " A@X.com ", Password: "pw2", Name: "Other"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	var svcErr *Error
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, KindConflict, svcErr.Kind)
}

func TestSignup_InvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []SignupInput{
		{Email: "", Password: "pw", Name: "Alice"},
		{Email: "not-an-email", Password: "pw", Name: "Alice"},
		{Email: "a@x.com", Password: "", Name: "Alice"},
		{Email: "a@x.com", Password: "pw", Name: "   "},
	}
	for _, in := range cases {
		_, err := env.identity.Signup(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", in)
	}

	users, err := env.identity.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.signup(t, "a@x.com", "Alice")
	ctx := context.Background()

	_, err := env.identity.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.identity.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestListUsers_NeverExposesCredentials(t *testing.T) {
	env := newTestEnv(t)
	bob := env.signup(t, "b@x.com", "Bob")
	alice := env.signup(t, "a@x.com", "Alice")

	users, err := env.identity.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []UserSummary{
		{UserID: alice, Username: "Alice"},
		{UserID: bob, Username: "Bob"},
	}, users)
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "a@x.com", "Alice")
	bob := env.signup(t, "b@x.com", "Bob")

	t.Run("self", func(t *testing.T) {
		got, err := env.identity.UpdateProfile(ctx, alice, alice, ProfileInput{Name: "Alice B", Avatar: "https://img/a.png"})
		require.NoError(t, err)
		assert.Equal(t, "Alice B", got.Username)
		assert.Equal(t, "https://img/a.png", got.Avatar)
	})

	t.Run("other user", func(t *testing.T) {
		_, err := env.identity.UpdateProfile(ctx, bob, alice, ProfileInput{Name: "Hacked"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.identity.UpdateProfile(ctx, "", uuid.NewString(), ProfileInput{Name: "X"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := env.identity.UpdateProfile(ctx, alice, alice, ProfileInput{Name: " "})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
