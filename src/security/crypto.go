package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const saltSize = 16

var ErrCiphertextInvalid = errors.New("stored credential is corrupt or was sealed with a different secret")

// Sealer encrypts small local-state values (the credential token) at rest
// with AES-256-GCM. The key is derived from an application secret with
// scrypt, using a fresh random salt per sealed value, so the sqlite file on
// its own never contains a usable token.
type Sealer struct {
	secret string
}

func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("state secret must not be empty")
	}
	return &Sealer{secret: secret}, nil
}

// scrypt parameters follow the package's recommended interactive defaults.
func (s *Sealer) deriveKey(salt []byte) ([]byte, error) {
	return scrypt.Key([]byte(s.secret), salt, 1<<15, 8, 1, 32)
}

// Seal encrypts plaintext and returns base64(salt || nonce || ciphertext).
// Empty input stays empty, mirroring an absent credential.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := s.deriveKey(salt)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	out := append(append(salt, nonce...), sealed...)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. A truncated or tampered value, or a value sealed under
// a different secret, yields ErrCiphertextInvalid.
func (s *Sealer) Open(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrCiphertextInvalid
	}
	if len(data) < saltSize {
		return "", ErrCiphertextInvalid
	}
	salt, rest := data[:saltSize], data[saltSize:]

	key, err := s.deriveKey(salt)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(rest) < gcm.NonceSize() {
		return "", ErrCiphertextInvalid
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrCiphertextInvalid
	}
	return string(plaintext), nil
}
