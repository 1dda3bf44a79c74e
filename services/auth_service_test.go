package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nba-predictions-go/database"
	"nba-predictions-go/models"
)

type recordingMailer struct {
	configured bool
	sent       []string
	err        error
}

func (m *recordingMailer) IsConfigured() bool { return m.configured }

func (m *recordingMailer) SendWelcomeEmail(to, username string) error {
	m.sent = append(m.sent, to)
	return m.err
}

func newAuthService() (*AuthService, *database.MemoryUserRepository) {
	users := database.NewMemoryUserRepository()
	return NewAuthService(users, AuthConfig{
		JWTSecret:           "test-secret",
		TokenTTL:            time.Hour,
		AllowedEmailDomains: []string{"gmail.com", " Yahoo.com "},
	}), users
}

func signUp(t *testing.T, a *AuthService, username, email string) *models.AuthResponse {
	t.Helper()
	resp, err := a.SignUp(context.Background(), models.SignUpRequest{Username: username, Email: email, Password: "secret1"})
	require.NoError(t, err)
	return resp
}

func TestSignUpAndSignInByUsernameOrEmail(t *testing.T) {
	a, _ := newAuthService()
	ctx := context.Background()

	resp := signUp(t, a, "alice", "Alice@Gmail.com")
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice@gmail.com", resp.User.Email)
	assert.Empty(t, resp.User.Password)

	byName, err := a.SignIn(ctx, models.SignInRequest{Identifier: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, byName.User.ID)

	byEmail, err := a.SignIn(ctx, models.SignInRequest{Identifier: "ALICE@gmail.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, byEmail.User.ID)

	_, err = a.SignIn(ctx, models.SignInRequest{Identifier: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.SignIn(ctx, models.SignInRequest{Identifier: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignUpValidation(t *testing.T) {
	a, _ := newAuthService()
	ctx := context.Background()
	signUp(t, a, "alice", "alice@gmail.com")

	cases := []struct {
		name string
		req  models.SignUpRequest
		want error
	}{
		{"domain", models.SignUpRequest{Username: "bob", Email: "bob@hotmail.com", Password: "secret1"}, ErrEmailDomain},
		{"malformed email", models.SignUpRequest{Username: "bob", Email: "bob", Password: "secret1"}, ErrInvalidEmail},
		{"username", models.SignUpRequest{Username: "b!", Email: "bob@gmail.com", Password: "secret1"}, ErrInvalidUsername},
		{"password", models.SignUpRequest{Username: "bob", Email: "bob@gmail.com", Password: "123"}, ErrWeakPassword},
		{"email taken", models.SignUpRequest{Username: "bob", Email: "ALICE@gmail.com", Password: "secret1"}, ErrEmailTaken},
		{"username taken", models.SignUpRequest{Username: "alice", Email: "bob@yahoo.com", Password: "secret1"}, ErrUsernameTaken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := a.SignUp(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	signUp(t, a, "bob", "bob@yahoo.com")
}

func TestTokenRoundTrip(t *testing.T) {
	a, _ := newAuthService()
	resp := signUp(t, a, "alice", "alice@gmail.com")

	user, err := a.GetUserFromToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	other := NewAuthService(database.NewMemoryUserRepository(), AuthConfig{JWTSecret: "different"})
	_, err = other.ValidateToken(resp.Token)
	assert.Error(t, err)

	_, err = a.GetUserFromToken(context.Background(), "not-a-token")
	assert.Error(t, err)
}

func TestUpdateAccount(t *testing.T) {
	a, _ := newAuthService()
	ctx := context.Background()
	alice := signUp(t, a, "alice", "alice@gmail.com").User
	signUp(t, a, "bob", "bob@gmail.com")

	_, err := a.UpdateAccount(ctx, alice.ID, models.UpdateAccountRequest{Username: "bob"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = a.UpdateAccount(ctx, alice.ID, models.UpdateAccountRequest{Email: "bob@gmail.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	updated, err := a.UpdateAccount(ctx, alice.ID, models.UpdateAccountRequest{Username: "alice2", Email: "alice@yahoo.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	assert.Equal(t, "alice@yahoo.com", updated.Email)

	kept, err := a.UpdateAccount(ctx, alice.ID, models.UpdateAccountRequest{})
	require.NoError(t, err)
	assert.Equal(t, "alice2", kept.Username, "blank fields keep current values")

	_, err = a.UpdateAccount(ctx, "ghost", models.UpdateAccountRequest{Username: "ghost"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestIsAvailable(t *testing.T) {
	a, _ := newAuthService()
	ctx := context.Background()
	signUp(t, a, "alice", "alice@gmail.com")

	free, err := a.IsAvailable(ctx, "username", "alice")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = a.IsAvailable(ctx, "email", "carol@gmail.com")
	require.NoError(t, err)
	assert.True(t, free)

	_, err = a.IsAvailable(ctx, "phone", "123")
	assert.Error(t, err)
}

func TestWelcomeMailFailureDoesNotBlockSignUp(t *testing.T) {
	a, _ := newAuthService()
	mailer := &recordingMailer{configured: true, err: errors.New("smtp down")}
	a.SetMailer(mailer)

	signUp(t, a, "alice", "alice@gmail.com")
	assert.Equal(t, []string{"alice@gmail.com"}, mailer.sent)

	mailer.configured = false
	signUp(t, a, "bob", "bob@gmail.com")
	assert.Len(t, mailer.sent, 1)
}
