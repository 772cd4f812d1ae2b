package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

var ErrInvalidSalt = errors.New("invalid salt encoding")

const (
	// PasswordIterations is the PBKDF2 work factor. Changing it invalidates every stored hash.
	PasswordIterations = 100_000
	saltLength         = 16
	keyLength          = 32
)

// PasswordHash is the persisted form of a password: derived key and salt, both base64.
type PasswordHash struct {
	Hash string
	Salt string
}

// HashPassword derives a PBKDF2-HMAC-SHA256 key from password.
// A fresh random salt is generated unless existingSalt is supplied.
func HashPassword(password string, existingSalt ...string) (PasswordHash, error) {
	var salt []byte
	if len(existingSalt) > 0 && existingSalt[0] != "" {
		decoded, err := base64.StdEncoding.DecodeString(existingSalt[0])
		if err != nil {
			return PasswordHash{}, fmt.Errorf("%w: %v", ErrInvalidSalt, err)
		}
		salt = decoded
	} else {
		salt = make([]byte, saltLength)
		if _, err := rand.Read(salt); err != nil {
			return PasswordHash{}, fmt.Errorf("generating salt: %w", err)
		}
	}

	key := pbkdf2.Key([]byte(password), salt, PasswordIterations, keyLength, sha256.New)

	return PasswordHash{
		Hash: base64.StdEncoding.EncodeToString(key),
		Salt: base64.StdEncoding.EncodeToString(salt),
	}, nil
}

// VerifyPassword re-derives the key with the stored salt and compares it to storedHash.
func VerifyPassword(password, storedHash, storedSalt string) (bool, error) {
	if storedSalt == "" {
		return false, ErrInvalidSalt
	}

	candidate, err := HashPassword(password, storedSalt)
	if err != nil {
		return false, err
	}

	return candidate.Hash == storedHash, nil
}
