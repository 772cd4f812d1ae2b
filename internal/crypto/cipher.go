package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrDecrypt is returned for any decryption failure: bad encoding, wrong key or a failed tag.
var ErrDecrypt = errors.New("decryption failed")

const (
	ivLength        = 12
	maskPlaceholder = "****"
	maskMinLength   = 12
)

// Sealed is an AES-GCM ciphertext and the IV it was sealed with, both base64.
type Sealed struct {
	Ciphertext string
	IV         string
}

// Encrypt seals plaintext with AES-256-GCM under SHA-256(secret).
// Every call draws a fresh IV.
func Encrypt(plaintext, secret string) (Sealed, error) {
	gcm, err := newGCM(secret)
	if err != nil {
		return Sealed{}, err
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return Sealed{}, fmt.Errorf("generating iv: %w", err)
	}

	ciphertext := gcm.Seal(nil, iv, []byte(plaintext), nil)

	return Sealed{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// Decrypt opens a value produced by Encrypt. It never returns unauthenticated plaintext.
func Decrypt(ciphertext, iv, secret string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecrypt
	}
	nonce, err := base64.StdEncoding.DecodeString(iv)
	if err != nil || len(nonce) != ivLength {
		return "", ErrDecrypt
	}

	gcm, err := newGCM(secret)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, data, nil)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}

// Mask keeps the first and last four characters of secret for display.
func Mask(secret string) string {
	r := []rune(secret)
	if len(r) < maskMinLength {
		return maskPlaceholder
	}
	return string(r[:4]) + strings.Repeat("*", len(r)-8) + string(r[len(r)-4:])
}

func newGCM(secret string) (cipher.AEAD, error) {
	key := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	return cipher.NewGCM(block)
}
