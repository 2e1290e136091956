// Package auth holds credential rules shared by the server and its admin surface.
package auth

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes  = 72
	maxUsernameLength = 32
	hashCost          = bcrypt.DefaultCost
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9._-]*[a-z0-9])?$`)

// placeholderHash is compared against when no stored hash exists, so unknown
// usernames cost the same bcrypt work as known ones.
var placeholderHash = sync.OnceValue(func() []byte {
	hashed, err := bcrypt.GenerateFromPassword([]byte("taskdesk-placeholder"), hashCost)
	if err != nil {
		panic(fmt.Sprintf("auth: placeholder hash: %v", err))
	}
	return hashed
})

// NormalizeUsername lowercases a username and checks its character set.
func NormalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(strings.ToLower(raw))
	switch {
	case username == "":
		return "", fmt.Errorf("username is required")
	case len(username) > maxUsernameLength:
		return "", fmt.Errorf("username must be at most %d characters", maxUsernameLength)
	case !usernamePattern.MatchString(username):
		return "", fmt.Errorf("invalid username: %s", username)
	}
	return username, nil
}

// ValidatePassword enforces length bounds on a new password.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

// HashPassword validates and hashes a password for the users table.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether candidate matches passwordHash.
// An empty hash never matches but still pays for one comparison.
func VerifyPassword(passwordHash, candidate string) bool {
	if strings.TrimSpace(passwordHash) == "" {
		_ = bcrypt.CompareHashAndPassword(placeholderHash(), []byte(candidate))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(candidate)) == nil
}
