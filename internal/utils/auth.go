package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// HashToken generates a bcrypt hash of an upload token for the receiver's
// UPLOAD_TOKEN_HASH setting.
func HashToken(token string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// CheckToken reports whether token matches hashedToken.
func CheckToken(token, hashedToken string) bool {
	if token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(token)) == nil
}
