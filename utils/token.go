package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewInviteToken returns the capability string embedded in invitation links:
// 32 random bytes, hex-encoded, so always 64 lowercase hex characters.
func NewInviteToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
