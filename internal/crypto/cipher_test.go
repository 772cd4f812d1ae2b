package crypto

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	secret := "server-wide secret of any length"

	for _, plaintext := range []string{
		"",
		"AIzaSyABCDEFGHIJKLMNOP",
		"unicode: ключ 🔑",
		strings.Repeat("x", 4096),
	} {
		sealed, err := Encrypt(plaintext, secret)
		if err != nil {
			t.Fatalf("Encrypt() unexpected error: %v", err)
		}

		got, err := Decrypt(sealed.Ciphertext, sealed.IV, secret)
		if err != nil {
			t.Fatalf("Decrypt() unexpected error: %v", err)
		}
		if got != plaintext {
			t.Errorf("Decrypt() = %q, want %q", got, plaintext)
		}
	}
}

func TestEncryptUsesFreshIV(t *testing.T) {
	a, err := Encrypt("same", "secret")
	if err != nil {
		t.Fatalf("Encrypt() unexpected error: %v", err)
	}
	b, err := Encrypt("same", "secret")
	if err != nil {
		t.Fatalf("Encrypt() unexpected error: %v", err)
	}

	if a.IV == b.IV {
		t.Error("Encrypt() reused an IV")
	}
	if a.Ciphertext == b.Ciphertext {
		t.Error("Encrypt() produced identical ciphertexts")
	}

	iv, err := base64.StdEncoding.DecodeString(a.IV)
	if err != nil {
		t.Fatalf("IV is not base64: %v", err)
	}
	if len(iv) != 12 {
		t.Errorf("IV length = %d, want 12", len(iv))
	}
}

func TestDecryptWrongSecretFailsClosed(t *testing.T) {
	sealed, err := Encrypt("AIzaSyABCDEFGHIJKLMNOP", "secret-one")
	if err != nil {
		t.Fatalf("Encrypt() unexpected error: %v", err)
	}

	got, err := Decrypt(sealed.Ciphertext, sealed.IV, "secret-two")
	if !errors.Is(err, ErrDecrypt) {
		t.Fatalf("Decrypt() error = %v, want ErrDecrypt", err)
	}
	if got != "" {
		t.Errorf("Decrypt() returned %q alongside an error", got)
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	sealed, err := Encrypt("AIzaSyABCDEFGHIJKLMNOP", "secret")
	if err != nil {
		t.Fatalf("Encrypt() unexpected error: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(sealed.Ciphertext)
	raw[0] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := Decrypt(tampered, sealed.IV, "secret"); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Decrypt() tampered error = %v, want ErrDecrypt", err)
	}
}

func TestDecryptMalformedInput(t *testing.T) {
	sealed, err := Encrypt("value", "secret")
	if err != nil {
		t.Fatalf("Encrypt() unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		ciphertext string
		iv         string
	}{
		{"bad ciphertext encoding", "%%%", sealed.IV},
		{"bad iv encoding", sealed.Ciphertext, "%%%"},
		{"short iv", sealed.Ciphertext, base64.StdEncoding.EncodeToString([]byte("short"))},
		{"empty ciphertext", "", sealed.IV},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decrypt(tt.ciphertext, tt.iv, "secret"); !errors.Is(err, ErrDecrypt) {
				t.Errorf("Decrypt() error = %v, want ErrDecrypt", err)
			}
		})
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AIzaSyABCDEFGHIJKLMNOP", "AIza**************MNOP"},
		{"AIzaValidLookingKey1234", "AIza***************1234"},
		{"123456789012", "1234****9012"},
		{"12345678901", "****"},
		{"ключ-абвгд-0042", "ключ*******0042"},
		{"ключ-абв", "****"},
		{"short", "****"},
		{"", "****"},
	}

	for _, tt := range tests {
		got := Mask(tt.in)
		if got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if n := utf8.RuneCountInString(tt.in); n >= 12 && utf8.RuneCountInString(got) != n {
			t.Errorf("Mask(%q) length = %d, want %d", tt.in, utf8.RuneCountInString(got), n)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Mask(%q) = %q is not valid UTF-8", tt.in, got)
		}
	}
}
