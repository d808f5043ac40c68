package security

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// SealedPrefix marks a value produced by EncryptString.
const SealedPrefix = "enc:"

var ErrNoSealingKey = errors.New("EXCHANGE_CREDENTIALS_KEY is not set")

// IsSealed reports whether s was produced by EncryptString.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, SealedPrefix)
}

// EncryptString seals plaintext with the key from EXCHANGE_CREDENTIALS_KEY.
func EncryptString(plaintext string) (string, error) {
	return EncryptStringWithKey(GetConfig().ExchangeCRKey, plaintext)
}

// EncryptStringWithKey returns "enc:" + base64(nonce || ciphertext).
func EncryptStringWithKey(encodedKey, plaintext string) (string, error) {
	aead, err := newAEAD(encodedKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return SealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptStringWithKey opens a value produced by EncryptStringWithKey.
func DecryptStringWithKey(encodedKey, value string) (string, error) {
	aead, err := newAEAD(encodedKey)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, SealedPrefix))
	if err != nil {
		return "", fmt.Errorf("decode sealed value: %w", err)
	}
	if len(raw) < aead.NonceSize() {
		return "", errors.New("sealed value is too short")
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("open sealed value: %w", err)
	}
	return string(plaintext), nil
}

func newAEAD(encodedKey string) (cipher.AEAD, error) {
	if encodedKey == "" {
		return nil, ErrNoSealingKey
	}
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("decode EXCHANGE_CREDENTIALS_KEY: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("EXCHANGE_CREDENTIALS_KEY must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return chacha20poly1305.New(key)
}
