package service

import (
	"testing"
	"time"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/internal/db"
	"github.com/rbautista/tindahan-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPasswordResetTest(t *testing.T) (PasswordResetService, AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	resetRepo := repository.NewPasswordResetRepository(testDB)
	resetService := NewPasswordResetService(resetRepo, userRepo)
	authService := NewAuthService(userRepo, nil, authTestSecret, 15*time.Minute, 168*time.Hour)
	return resetService, authService, testDB
}

func storedToken(t *testing.T, testDB *gorm.DB, email string) *model.PasswordReset {
	var reset model.PasswordReset
	require.NoError(t, testDB.Where("email = ?", email).Order("id DESC").First(&reset).Error)
	return &reset
}

func TestPasswordResetService_FullFlow(t *testing.T) {
	resetService, authService, testDB := setupPasswordResetTest(t)

	user, _, err := authService.Register("maria@example.com", "old-password", "maria", model.RoleUser)
	require.NoError(t, err)

	require.NoError(t, resetService.RequestReset("maria@example.com"))
	reset := storedToken(t, testDB, "maria@example.com")
	assert.False(t, reset.Used)
	assert.True(t, reset.ExpiresAt.After(time.Now()))

	require.NoError(t, resetService.ResetPassword(reset.Token, "new-password"))

	var updated model.User
	require.NoError(t, testDB.First(&updated, user.ID).Error)
	assert.True(t, util.VerifyPassword(updated.PasswordHash, "new-password"))
	assert.False(t, util.VerifyPassword(updated.PasswordHash, "old-password"))
}

func TestPasswordResetService_UnknownEmailIsSilent(t *testing.T) {
	resetService, _, testDB := setupPasswordResetTest(t)

	// Indistinguishable from the known-email case for the caller
	require.NoError(t, resetService.RequestReset("nobody@example.com"))

	var count int64
	require.NoError(t, testDB.Model(&model.PasswordReset{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPasswordResetService_TokenIsSingleUse(t *testing.T) {
	resetService, authService, testDB := setupPasswordResetTest(t)

	_, _, err := authService.Register("maria@example.com", "old-password", "maria", model.RoleUser)
	require.NoError(t, err)

	require.NoError(t, resetService.RequestReset("maria@example.com"))
	reset := storedToken(t, testDB, "maria@example.com")

	require.NoError(t, resetService.ResetPassword(reset.Token, "new-password"))
	err = resetService.ResetPassword(reset.Token, "another-password")
	assert.ErrorIs(t, err, ErrResetTokenUsed)
}

func TestPasswordResetService_ExpiredToken(t *testing.T) {
	resetService, authService, testDB := setupPasswordResetTest(t)

	_, _, err := authService.Register("maria@example.com", "old-password", "maria", model.RoleUser)
	require.NoError(t, err)

	expired := &model.PasswordReset{
		Email:     "maria@example.com",
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, testDB.Create(expired).Error)

	err = resetService.ResetPassword("expired-token", "new-password")
	assert.ErrorIs(t, err, ErrResetTokenExpired)
}

func TestPasswordResetService_UnknownToken(t *testing.T) {
	resetService, _, _ := setupPasswordResetTest(t)

	err := resetService.ResetPassword("no-such-token", "new-password")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}
