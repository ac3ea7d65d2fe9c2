// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vault seals the SMTP password under a master passphrase so the
// config file never stores it in the clear.
// Implements: prd005-settings (R3);
//
//	docs/ARCHITECTURE § Settings.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP recommended) and blob geometry. Changing any
// of these invalidates existing sealed passwords.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32 // AES-256

	saltSize  = 32
	nonceSize = 12 // GCM standard nonce size
)

// ErrWrongPassphrase is returned when a sealed blob does not open. A wrong
// passphrase and a tampered blob are indistinguishable under GCM.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted sealed password")

// Seal encrypts secret under passphrase and returns a base64 blob holding
// salt, nonce, and ciphertext. Each call produces a fresh salt and nonce.
func Seal(secret, passphrase string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	gcm, err := aead(passphrase, salt)
	if err != nil {
		return "", err
	}

	blob := make([]byte, 0, saltSize+nonceSize+len(secret)+gcm.Overhead())
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = gcm.Seal(blob, nonce, []byte(secret), nil)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Open decrypts a blob produced by Seal and returns the secret.
func Open(blob, passphrase string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("decoding sealed password: %w", err)
	}
	if len(raw) < saltSize+nonceSize {
		return "", ErrWrongPassphrase
	}

	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+nonceSize]

	gcm, err := aead(passphrase, salt)
	if err != nil {
		return "", err
	}

	secret, err := gcm.Open(nil, nonce, raw[saltSize+nonceSize:], nil)
	if err != nil {
		return "", ErrWrongPassphrase
	}
	return string(secret), nil
}

func aead(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return gcm, nil
}
