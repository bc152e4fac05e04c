package util

import (
	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost 12 keeps hashing around 250ms on current hardware,
// slow enough to blunt offline guessing without hurting login latency
const bcryptCost = 12

// HashPassword derives a bcrypt hash for storage
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
