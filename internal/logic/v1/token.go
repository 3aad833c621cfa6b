package v1

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// sessionTokenBytes is the raw entropy per session token: 64 bytes
// (512 bits), hex-encoded to 128 characters.
const sessionTokenBytes = 64

// GenerateSessionToken returns a cryptographically random opaque token.
// Uniqueness is still enforced by the sessions.token constraint, not
// assumed from entropy.
func GenerateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
