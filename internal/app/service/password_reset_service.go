package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/pkg/logger"
	"github.com/rbautista/tindahan-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrResetTokenExpired = errors.New("reset token has expired")
	ErrResetTokenUsed    = errors.New("reset token has already been used")
)

const (
	resetTokenExpiry = 1 * time.Hour
	resetTokenLength = 32 // random bytes, hex-encoded
)

type PasswordResetService interface {
	RequestReset(email string) error
	ResetPassword(token, newPassword string) error
}

type passwordResetService struct {
	resetRepo repository.PasswordResetRepository
	userRepo  repository.UserRepository
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
) PasswordResetService {
	return &passwordResetService{
		resetRepo: resetRepo,
		userRepo:  userRepo,
	}
}

// RequestReset issues a reset token for the account behind email. The
// outcome is identical whether or not the account exists, so the
// endpoint cannot be used to enumerate registered emails.
func (s *passwordResetService) RequestReset(email string) error {
	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	// Opportunistic cleanup of stale tokens
	if err := s.resetRepo.DeleteExpired(); err != nil {
		logger.Warn("Failed to purge expired reset tokens", map[string]interface{}{
			"error": err.Error(),
		})
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for unknown email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		logger.Error("Failed to generate reset token", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	reset := &model.PasswordReset{
		Email:     email,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenExpiry),
	}
	if err := s.resetRepo.Create(reset); err != nil {
		return err
	}

	// TODO: deliver the token by email once the mail sender lands;
	// until then operators read it from the log
	logger.Info("Password reset token generated", map[string]interface{}{
		"email":      email,
		"user_id":    user.ID,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

// ResetPassword consumes a token and sets the new password. Each token
// works exactly once and only within its validity window.
func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	reset, err := s.resetRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	if time.Now().After(reset.ExpiresAt) {
		logger.Warn("Reset token has expired", map[string]interface{}{
			"email": reset.Email,
		})
		return ErrResetTokenExpired
	}
	if reset.Used {
		logger.Warn("Reset token has already been used", map[string]interface{}{
			"email": reset.Email,
		})
		return ErrResetTokenUsed
	}

	user, err := s.userRepo.FindByEmail(reset.Email)
	if err != nil {
		return err
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	if err := s.resetRepo.MarkAsUsed(reset.ID); err != nil {
		// The password is already changed; a dangling token only
		// risks a redundant second reset by the same holder
		logger.Error("Failed to mark reset token as used", err, map[string]interface{}{
			"reset_id": reset.ID,
		})
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func generateResetToken() (string, error) {
	raw := make([]byte, resetTokenLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
