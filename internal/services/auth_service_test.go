package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"guild-chat/config"
	"guild-chat/internal/domain/user"
	guild_errors "guild-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTExpiryMin:  15,
		RefreshExpiry: 14,
	}
}

func TestRegisterIssuesValidTokens(t *testing.T) {
	var createdUser *user.User
	var createdSession *user.UserSession
	userRepo := &mockUserRepository{
		CreateFunc: func(ctx context.Context, u *user.User) error {
			createdUser = u
			return nil
		},
		CreateSessionFunc: func(ctx context.Context, s *user.UserSession) error {
			createdSession = s
			return nil
		},
	}
	svc := NewAuthService(userRepo, testAuthConfig())

	resp, err := svc.Register(context.Background(), RegisterInput{
		Email:       "sam@example.com",
		Username:    "sam",
		Password:    "correct horse",
		DisplayName: "Sam",
	})
	require.NoError(t, err)

	require.NotNil(t, createdUser)
	assert.NotEqual(t, "correct horse", createdUser.PasswordHash, "password must be hashed")
	require.NotNil(t, createdSession)
	assert.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.ParseAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, createdUser.ID.String(), claims.UserID)
	assert.Equal(t, createdSession.ID.String(), claims.SessionID)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(&mockUserRepository{}, testAuthConfig())

	tests := []struct {
		name  string
		input RegisterInput
		want  error
	}{
		{"bad email", RegisterInput{Email: "nope", Username: "sam", Password: "long enough", DisplayName: "Sam"}, guild_errors.ErrInvalidInput},
		{"short password", RegisterInput{Email: "sam@example.com", Username: "sam", Password: "short", DisplayName: "Sam"}, guild_errors.ErrInvalidInput},
		{"missing display name", RegisterInput{Email: "sam@example.com", Username: "sam", Password: "long enough"}, guild_errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	userRepo := &mockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (user.User, error) {
			return user.User{ID: uuid.New()}, nil
		},
	}
	svc := NewAuthService(userRepo, testAuthConfig())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:       "taken@example.com",
		Username:    "sam",
		Password:    "long enough",
		DisplayName: "Sam",
	})
	assert.ErrorIs(t, err, guild_errors.ErrAlreadyExists)
}

func TestLoginChecksPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	stored := user.User{
		ID:           uuid.New(),
		Username:     "sam",
		Email:        "sam@example.com",
		PasswordHash: string(hash),
		DisplayName:  "Sam",
	}
	userRepo := &mockUserRepository{
		GetByUsernameFunc: func(ctx context.Context, username string) (user.User, error) {
			return stored, nil
		},
	}
	svc := NewAuthService(userRepo, testAuthConfig())

	resp, err := svc.Login(context.Background(), LoginInput{Identity: "sam", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, stored.ID.String(), resp.User.ID)

	_, err = svc.Login(context.Background(), LoginInput{Identity: "sam", Password: "wrong"})
	assert.ErrorIs(t, err, guild_errors.ErrUnauthorized)
}

func TestValidateSession(t *testing.T) {
	userID := uuid.New()
	sessionID := uuid.New()
	now := time.Now()

	tests := []struct {
		name    string
		session user.UserSession
		caller  uuid.UUID
		wantErr bool
	}{
		{
			"valid",
			user.UserSession{ID: sessionID, UserID: userID, ExpiresAt: now.Add(time.Hour)},
			userID,
			false,
		},
		{
			"wrong user",
			user.UserSession{ID: sessionID, UserID: uuid.New(), ExpiresAt: now.Add(time.Hour)},
			userID,
			true,
		},
		{
			"revoked",
			user.UserSession{ID: sessionID, UserID: userID, ExpiresAt: now.Add(time.Hour), RevokedAt: sql.NullTime{Time: now, Valid: true}},
			userID,
			true,
		},
		{
			"expired",
			user.UserSession{ID: sessionID, UserID: userID, ExpiresAt: now.Add(-time.Minute)},
			userID,
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mockUserRepository{
				GetSessionByIDFunc: func(ctx context.Context, id uuid.UUID) (user.UserSession, error) {
					return tt.session, nil
				},
			}
			svc := NewAuthService(userRepo, testAuthConfig())

			_, err := svc.ValidateSession(context.Background(), sessionID, tt.caller)
			if tt.wantErr {
				assert.ErrorIs(t, err, guild_errors.ErrUnauthorized)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseAccessTokenRejectsTampering(t *testing.T) {
	svc := NewAuthService(&mockUserRepository{}, testAuthConfig())

	_, err := svc.ParseAccessToken("")
	assert.ErrorIs(t, err, guild_errors.ErrUnauthorized)

	_, err = svc.ParseAccessToken("not.a.token")
	assert.ErrorIs(t, err, guild_errors.ErrUnauthorized)

	other := NewAuthService(&mockUserRepository{}, &config.Config{JWTSecret: "other-secret", JWTExpiryMin: 15, RefreshExpiry: 14})
	token, _, err := other.newAccessToken(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, guild_errors.ErrUnauthorized)
}
