package auth

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrNoPassword marks an account that cannot log in because it has no hash.
var ErrNoPassword = errors.New("no password configured")

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// PlaceholderHash hashes a random secret at cost. Comparing against it when an
// account is unknown or has no hash makes failed logins take as long as real ones.
func PlaceholderHash(cost int) (string, error) {
	secret := make([]byte, 24)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	return HashPassword(string(secret), cost)
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	if hashed == "" {
		return ErrNoPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
