package bundle

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the size of the encryption key (32 bytes for NaCl secretbox)
	KeySize = 32
	// NonceSize is the size of the nonce (24 bytes for NaCl secretbox)
	NonceSize = 24
	// SaltSize is the size of the key derivation salt
	SaltSize = 16
)

// encryptedMagic prefixes every encrypted bundle.
var encryptedMagic = []byte("MLPB1")

// ErrDecrypt is returned for a wrong passphrase or a corrupted bundle.
var ErrDecrypt = errors.New("decryption failed (wrong passphrase or corrupted data)")

// DeriveKey stretches a passphrase into a secretbox key with Argon2id.
func DeriveKey(passphrase string, salt []byte) *[KeySize]byte {
	var key [KeySize]byte
	copy(key[:], argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, KeySize))
	return &key
}

// Encrypt seals plaintext with NaCl secretbox.
// Layout: magic | salt | nonce | ciphertext.
func Encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(encryptedMagic)+SaltSize+NonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, encryptedMagic...)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, DeriveKey(passphrase, salt)), nil
}

// Decrypt opens data produced by Encrypt.
func Decrypt(data []byte, passphrase string) ([]byte, error) {
	header := len(encryptedMagic) + SaltSize + NonceSize
	if len(data) < header || !bytes.HasPrefix(data, encryptedMagic) {
		return nil, fmt.Errorf("not an encrypted bundle (minimum %d bytes with %q prefix)", header, encryptedMagic)
	}

	salt := data[len(encryptedMagic) : len(encryptedMagic)+SaltSize]
	var nonce [NonceSize]byte
	copy(nonce[:], data[len(encryptedMagic)+SaltSize:header])

	plaintext, ok := secretbox.Open(nil, data[header:], &nonce, DeriveKey(passphrase, salt))
	if !ok {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
