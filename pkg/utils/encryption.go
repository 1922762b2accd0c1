package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// sealedPrefix marks values produced by Sealer.Seal; anything else is plaintext.
const sealedPrefix = "enc:v1:"

var (
	ErrInvalidKey         = errors.New("ENCRYPTION_KEY must be base64 encoding of exactly 32 bytes")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// ParseEncryptionKey decodes a base64-encoded 32-byte master key.
func ParseEncryptionKey(keyBase64 string) ([]byte, error) {
	keyBytes, err := base64.StdEncoding.DecodeString(strings.TrimSpace(keyBase64))
	if err != nil || len(keyBytes) != 32 {
		return nil, ErrInvalidKey
	}
	return keyBytes, nil
}

// Sealer encrypts journal text with AES-256-GCM under a per-user key derived from
// the master key with HKDF-SHA256, so one user's ciphertext never opens under another's key.
type Sealer struct {
	master []byte
}

func NewSealer(keyBase64 string) (*Sealer, error) {
	key, err := ParseEncryptionKey(keyBase64)
	if err != nil {
		return nil, err
	}
	return &Sealer{master: key}, nil
}

func (s *Sealer) aead(userID string) (cipher.AEAD, error) {
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, s.master, nil, []byte("moodlog/entry/"+userID))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext for userID. Empty input stays empty.
func (s *Sealer) Seal(userID, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	gcm, err := s.aead(userID)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), []byte(userID))
	return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a value produced by Seal. Values without the sealed prefix were
// written before encryption was enabled and are returned unchanged.
func (s *Sealer) Open(userID, value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return value, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", err
	}
	gcm, err := s.aead(userID)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", ErrCiphertextTooShort
	}

	nonce, ciphertextBytes := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertextBytes, []byte(userID))
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
