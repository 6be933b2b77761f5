package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/courtside/courtside-api/internal/models"
	appErrors "github.com/courtside/courtside-api/pkg/errors"
)

type authUserRepoStub struct {
	user       *models.User
	findErr    error
	lastLogins []string
	updateErr  error
}

func (s *authUserRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authUserRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.lastLogins = append(s.lastLogins, id)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{AccessTokenSecret: "test-secret", AccessTokenExpiry: time.Hour, Issuer: "courtside-test"}
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Email:        "coach@club.test",
		FullName:     "Coach One",
		Role:         models.RoleCoach,
		PasswordHash: string(hash),
		Active:       true,
	}
}

func TestAuthServiceLoginIssuesToken(t *testing.T) {
	repo := &authUserRepoStub{user: activeUser(t, "s3cret")}
	service := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := service.Login(context.Background(), models.LoginRequest{Email: "coach@club.test", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Equal(t, []string{"user-1"}, repo.lastLogins)
}

func TestAuthServiceLoginRejectsWrongPassword(t *testing.T) {
	repo := &authUserRepoStub{user: activeUser(t, "s3cret")}
	service := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := service.Login(context.Background(), models.LoginRequest{Email: "coach@club.test", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownEmailLooksLikeBadCredentials(t *testing.T) {
	service := NewAuthService(&authUserRepoStub{}, nil, nil, testAuthConfig())

	_, err := service.Login(context.Background(), models.LoginRequest{Email: "ghost@club.test", Password: "s3cret"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	user := activeUser(t, "s3cret")
	user.Active = false
	service := NewAuthService(&authUserRepoStub{user: user}, nil, nil, testAuthConfig())

	_, err := service.Login(context.Background(), models.LoginRequest{Email: "coach@club.test", Password: "s3cret"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRoundTrip(t *testing.T) {
	repo := &authUserRepoStub{user: activeUser(t, "s3cret")}
	service := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := service.Login(context.Background(), models.LoginRequest{Email: "coach@club.test", Password: "s3cret"})
	require.NoError(t, err)

	claims, err := service.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleCoach, claims.Role)
	assert.Equal(t, "courtside-test", claims.Issuer)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	service := NewAuthService(&authUserRepoStub{}, nil, nil, testAuthConfig())

	_, err := service.ValidateToken("not-a-token")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRejectsWrongSecret(t *testing.T) {
	issuing := NewAuthService(&authUserRepoStub{user: activeUser(t, "s3cret")}, nil, nil, testAuthConfig())
	resp, err := issuing.Login(context.Background(), models.LoginRequest{Email: "coach@club.test", Password: "s3cret"})
	require.NoError(t, err)

	validating := NewAuthService(&authUserRepoStub{}, nil, nil, AuthConfig{AccessTokenSecret: "other-secret", AccessTokenExpiry: time.Hour})
	_, err = validating.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}
