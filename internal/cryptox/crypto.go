// Package cryptox implements the symmetric cipher used for stored message
// and passcode payloads. Payloads are encrypted with AES-256-GCM under a key
// derived deterministically from the owning user's ID and a server-held
// secret, so a ciphertext is only ever decryptable in its owner's context.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

var ErrCiphertextTooShort = errors.New("ciphertext too short")

type Cipher struct {
	serverSecret []byte
}

func NewCipher(serverSecret string) *Cipher {
	return &Cipher{serverSecret: []byte(serverSecret)}
}

// DeriveUserKey derives the 32-byte AES key for a user. The derivation is
// deterministic: the same user ID and server secret always yield the same
// key, so no per-row key material needs to be stored.
func (c *Cipher) DeriveUserKey(userID string) []byte {
	return argon2.IDKey(c.serverSecret, []byte(userID), 1, 64*1024, 4, 32)
}

// EncryptString encrypts plaintext for the given user and returns a base64
// string of nonce||ciphertext. A fresh random 12-byte nonce is generated for
// every call.
func (c *Cipher) EncryptString(plaintext string, userID string) (string, error) {
	aesgcm, err := c.newGCM(userID)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := aesgcm.Seal(nonce, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString. Decryption fails if the payload was
// encrypted for a different user or has been tampered with.
func (c *Cipher) DecryptString(encoded string, userID string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decoding ciphertext: %w", err)
	}

	aesgcm, err := c.newGCM(userID)
	if err != nil {
		return "", err
	}

	if len(sealed) < aesgcm.NonceSize() {
		return "", ErrCiphertextTooShort
	}

	nonce, ciphertext := sealed[:aesgcm.NonceSize()], sealed[aesgcm.NonceSize():]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

func (c *Cipher) newGCM(userID string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.DeriveUserKey(userID))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
