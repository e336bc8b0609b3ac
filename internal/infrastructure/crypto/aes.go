// Package crypto protects sensitive card fields at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySalt       = "PaymentGateway.Salt.v1"
	keyIterations = 100_000
	keyLength     = 32
)

var (
	ErrEmptyPassphrase  = errors.New("crypto: encryption passphrase is required")
	ErrDecryptionFailed = errors.New("crypto: ciphertext is corrupt or was encrypted with a different key")
)

// AESEncryptor encrypts strings with AES-256-GCM. Each ciphertext is the
// random nonce followed by the sealed payload, base64 encoded, so it can be
// decrypted with nothing but the shared key.
type AESEncryptor struct {
	aead cipher.AEAD
}

// NewAESEncryptor derives a 256-bit key from passphrase with PBKDF2-SHA256.
func NewAESEncryptor(passphrase string) (*AESEncryptor, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}

	key := pbkdf2.Key([]byte(passphrase), []byte(keySalt), keyIterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: create gcm: %w", err)
	}

	return &AESEncryptor{aead: aead}, nil
}

// Encrypt returns plaintext unchanged when it is empty.
func (e *AESEncryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return plaintext, nil
	}

	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypto: generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt returns ciphertext unchanged when it is empty.
func (e *AESEncryptor) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return ciphertext, nil
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	nonceSize := e.aead.NonceSize()
	if len(raw) < nonceSize+e.aead.Overhead() {
		return "", ErrDecryptionFailed
	}

	plaintext, err := e.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}
