// Package codec provides authenticated symmetric encryption of document
// bodies.
//
// Sealed bodies are confidential and integrity-protected independently of
// the audit proof: tampered ciphertext fails authentication at Open time.
// Open exists for internal use (similarity comparison against stored
// plaintext); sealed bodies are what persist, plaintext is never a stored
// or response payload.
package codec

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrDecryption indicates ciphertext unreadable under the loaded key:
// produced under a different key, truncated, or corrupted. Fatal for that
// document, not for the process. Match with errors.Is.
var ErrDecryption = errors.New("ciphertext unreadable under loaded key")

// KeySize is the required key length in bytes.
const KeySize = chacha20poly1305.KeySize

// Codec seals and opens document bodies with XChaCha20-Poly1305.
//
// The key is fixed at construction and never mutated, so a Codec is safe
// for concurrent use. Construct one explicitly and inject it - there is no
// package-level instance, and tests use distinct keys per case.
type Codec struct {
	aead cipher.AEAD
}

// New creates a Codec from 32 bytes of key material.
func New(key []byte) (*Codec, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// Seal encrypts a plaintext body. The random 24-byte nonce is prepended to
// the returned ciphertext, so every call produces distinct bytes even for
// identical plaintext.
func (c *Codec) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("seal: nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a sealed body produced by Seal under the same key.
// Returns ErrDecryption (wrapped) on truncated input, key mismatch, or any
// authentication failure. Never returns partial plaintext.
func (c *Codec) Open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < c.aead.NonceSize()+c.aead.Overhead() {
		return nil, fmt.Errorf("open: truncated ciphertext: %w", ErrDecryption)
	}
	nonce, sealed := ciphertext[:c.aead.NonceSize()], ciphertext[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("open: %w", ErrDecryption)
	}
	return plaintext, nil
}
