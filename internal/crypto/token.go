package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/google/uuid"
)

const sessionTokenBytes = 32

// GenerateID returns 128 random bits in canonical 8-4-4-4-12 hex form.
// No version or variant bits are set.
func GenerateID() string {
	var id uuid.UUID
	mustRead(id[:])
	return id.String()
}

// GenerateSessionToken returns 256 random bits as unpadded URL-safe base64.
// The result is the cookie value and must never be logged or stored.
func GenerateSessionToken() string {
	b := make([]byte, sessionTokenBytes)
	mustRead(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// HashToken returns the base64 SHA-256 digest used as the session lookup key.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func mustRead(b []byte) {
	if _, err := rand.Read(b); err != nil {
		panic("crypto: secure random source unavailable: " + err.Error())
	}
}
