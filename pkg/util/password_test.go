package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"Valid password", "password123"},
		{"Empty password", ""}, // bcrypt can hash empty strings
		{"Long password", "this-is-a-very-long-password-with-special-chars!@#$%^&*()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			assert.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
			assert.Contains(t, hash, "$2a$")
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "mySecurePassword123"
	hash, err := HashPassword(password)
	assert.NoError(t, err)

	assert.True(t, VerifyPassword(hash, password))
	assert.False(t, VerifyPassword(hash, "wrongPassword"))
	assert.False(t, VerifyPassword("not-a-hash", password))
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword("samePassword")
	assert.NoError(t, err)
	hash2, err := HashPassword("samePassword")
	assert.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}
