package db

import (
	"os"

	"github.com/rbautista/tindahan-backend/internal/app/model"
	"github.com/rbautista/tindahan-backend/pkg/logger"
	"github.com/rbautista/tindahan-backend/pkg/util"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Product{},
		&model.Store{},
		&model.StoreProduct{},
		&model.PasswordReset{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed creates the bootstrap administrator account when ADMIN_EMAIL and
// ADMIN_PASSWORD are configured and no admin exists yet.
func Seed() error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Info("Admin bootstrap skipped, ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return nil
	}

	var count int64
	if err := DB.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Admin account already exists, skipping bootstrap", map[string]interface{}{
			"admin_count": count,
		})
		return nil
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Email:        email,
		PasswordHash: hash,
		Username:     "admin",
		Role:         model.RoleAdmin,
	}
	if err := DB.Create(admin).Error; err != nil {
		logger.Error("Failed to create bootstrap admin", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	logger.Info("Bootstrap admin account created", map[string]interface{}{
		"user_id": admin.ID,
		"email":   email,
	})
	return nil
}
