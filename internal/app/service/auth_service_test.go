package service

import (
	"context"
	"testing"
	"time"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/internal/db"
	"github.com/rbautista/tindahan-backend/pkg/oauth"
	"github.com/rbautista/tindahan-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const authTestSecret = "test-secret-key"

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(userRepo, nil, authTestSecret, 15*time.Minute, 168*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, tokens, err := authService.Register("maria@example.com", "password123", "maria", model.RoleUser)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	// Stored hash must verify the original password
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, util.VerifyPassword(user.PasswordHash, "password123"))

	// Issued token carries the identity
	claims, err := util.ValidateToken(tokens.AccessToken, authTestSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "maria@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestAuthService_Register_DefaultsToUserRole(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register("juan@example.com", "password123", "juan", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
}

func TestAuthService_Register_RejectsAdminRole(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, _, err := authService.Register("evil@example.com", "password123", "evil", model.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthService_Register_DuplicateEmailAndUsername(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, _, err := authService.Register("maria@example.com", "password123", "maria", model.RoleUser)
	require.NoError(t, err)

	_, _, err = authService.Register("maria@example.com", "password123", "othername", model.RoleUser)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	_, _, err = authService.Register("other@example.com", "password123", "maria", model.RoleUser)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthService_Login(t *testing.T) {
	authService := setupAuthServiceTest(t)

	_, _, err := authService.Register("maria@example.com", "password123", "maria", model.RoleOwner)
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid credentials", email: "maria@example.com", password: "password123"},
		{name: "wrong password", email: "maria@example.com", password: "wrong", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@example.com", password: "password123", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.RoleOwner, user.Role)
			assert.NotEmpty(t, tokens.AccessToken)
		})
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register("maria@example.com", "password123", "maria", model.RoleUser)
	require.NoError(t, err)
	_, _, err = authService.Register("juan@example.com", "password123", "juan", model.RoleUser)
	require.NoError(t, err)

	newName := "maria_sari"
	address := "123 Mabini St"
	updated, err := authService.UpdateProfile(user.ID, ProfileMutation{Username: &newName, Address: &address})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Username)
	assert.Equal(t, address, updated.Address)

	// Taking another user's username is rejected
	taken := "juan"
	_, err = authService.UpdateProfile(user.ID, ProfileMutation{Username: &taken})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = authService.UpdateProfile(9999, ProfileMutation{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

type fakeOAuthVerifier struct {
	identity *oauth.Identity
	err      error
}

func (v *fakeOAuthVerifier) Verify(ctx context.Context, idToken string) (*oauth.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

func setupOAuthServiceTest(t *testing.T, verifier OAuthVerifier) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(userRepo, verifier, authTestSecret, 15*time.Minute, 168*time.Hour)
}

func TestAuthService_OAuthLogin_CreatesShopperAccount(t *testing.T) {
	authService := setupOAuthServiceTest(t, &fakeOAuthVerifier{
		identity: &oauth.Identity{
			Subject: "google-sub-1",
			Email:   "maria@example.com",
			Name:    "Maria Clara",
			Picture: "https://example.com/maria.png",
		},
	})

	user, tokens, err := authService.OAuthLogin(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.Equal(t, "maria", user.Username)
	assert.Equal(t, "https://example.com/maria.png", user.AvatarURL)
	assert.NotEmpty(t, tokens.AccessToken)

	// The generated credential never matches any guessable password
	assert.False(t, util.VerifyPassword(user.PasswordHash, ""))
	assert.False(t, util.VerifyPassword(user.PasswordHash, "provider-token"))
}

func TestAuthService_OAuthLogin_ReusesExistingAccount(t *testing.T) {
	authService := setupOAuthServiceTest(t, &fakeOAuthVerifier{
		identity: &oauth.Identity{Subject: "google-sub-1", Email: "maria@example.com"},
	})

	registered, _, err := authService.Register("maria@example.com", "password123", "maria", model.RoleOwner)
	require.NoError(t, err)

	user, _, err := authService.OAuthLogin(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, model.RoleOwner, user.Role)
}

func TestAuthService_OAuthLogin_UsernameCollision(t *testing.T) {
	authService := setupOAuthServiceTest(t, &fakeOAuthVerifier{
		identity: &oauth.Identity{Subject: "google-sub-2", Email: "maria@gmail.example"},
	})

	_, _, err := authService.Register("other@example.com", "password123", "maria", model.RoleUser)
	require.NoError(t, err)

	user, _, err := authService.OAuthLogin(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, "maria1", user.Username)
}

func TestAuthService_OAuthLogin_Errors(t *testing.T) {
	rejected := setupOAuthServiceTest(t, &fakeOAuthVerifier{err: oauth.ErrInvalidIDToken})
	_, _, err := rejected.OAuthLogin(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrInvalidOAuthToken)

	unconfigured := setupOAuthServiceTest(t, nil)
	_, _, err = unconfigured.OAuthLogin(context.Background(), "any-token")
	assert.ErrorIs(t, err, ErrOAuthNotConfigured)
}
