package v1

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. OWASP-recommended iteration count for HMAC-SHA256.
const (
	pbkdf2Iterations = 600_000
	pbkdf2KeyLen     = 32
	saltLen          = 32 // 256 bits
)

// PasswordHasher derives and verifies salted password digests. The salt
// is stored per user next to the digest.
type PasswordHasher interface {
	// GenerateSalt produces a random salt encoded as a printable string.
	GenerateSalt() (string, error)

	// Hash derives the digest for the password and salt. Deterministic:
	// equal inputs always yield equal output.
	Hash(password, salt string) string

	// Verify recomputes the digest and compares it against expected in
	// constant time.
	Verify(password, salt, expected string) bool
}

// PBKDF2Hasher implements PasswordHasher with PBKDF2-HMAC-SHA256.
//
// The system this replaces carried two divergent schemes: a plain salted
// SHA-256 concatenation on the live login path and a PBKDF-based hasher
// that was never wired in. This implementation applies the PBKDF scheme
// uniformly; see DESIGN.md for the recorded finding.
type PBKDF2Hasher struct {
	iterations int
}

// NewPBKDF2Hasher creates a hasher with the default iteration count.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{iterations: pbkdf2Iterations}
}

// GenerateSalt returns 32 random bytes, base64-encoded.
func (h *PBKDF2Hasher) GenerateSalt() (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(salt), nil
}

// Hash derives a PBKDF2-HMAC-SHA256 digest of password and salt,
// base64-encoded. An empty or malformed password simply hashes to some
// digest and fails verification naturally.
func (h *PBKDF2Hasher) Hash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), h.iterations, pbkdf2KeyLen, sha256.New)
	return base64.RawStdEncoding.EncodeToString(key)
}

// Verify recomputes the digest and compares in constant time.
func (h *PBKDF2Hasher) Verify(password, salt, expected string) bool {
	computed := h.Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expected)) == 1
}
