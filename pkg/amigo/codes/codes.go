// Package codes generates and verifies the three secrets the system runs
// on: the public join code, the group admin code, and each participant's
// access code. Admin and access codes are bearer secrets; they are handed
// out exactly once and only their bcrypt hash is persisted.
package codes

import (
	"crypto/rand"

	"golang.org/x/crypto/bcrypt"
)

const (
	// JoinCodeLength is the number of characters in a join code.
	JoinCodeLength = 8
	// joinCodeCharset avoids characters that read ambiguously when the
	// code is shared aloud or written down (0/O, 1/I).
	joinCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// SecretLength is the number of characters in admin and access codes.
	SecretLength  = 20
	secretCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// randomString draws length characters from charset using crypto/rand.
func randomString(length int, charset string) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b), nil
}

// NewJoinCode generates a short shareable group code.
func NewJoinCode() (string, error) {
	return randomString(JoinCodeLength, joinCodeCharset)
}

// NewSecret generates an admin or participant access code.
func NewSecret() (string, error) {
	return randomString(SecretLength, secretCharset)
}

// Hash returns the bcrypt hash of a code for storage.
func Hash(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether code matches the stored hash.
func Verify(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
