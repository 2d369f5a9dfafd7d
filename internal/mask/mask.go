// Package mask turns secrets into MASK- strings that keep them out of plain
// sight in configuration files. Masking is obfuscation with a fixed key
// material, not encryption under a user secret.
package mask

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"sectool/internal/provider"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Prefix marks a masked value.
	Prefix = "MASK-"
	// SaltLength is the required salt length in characters.
	SaltLength = 8
	// DefaultIterations is used when none is configured.
	DefaultIterations = 10000

	keyMaterial = "sectool masked value key material"
	keyLen      = provider.KeySize
	nonceLen    = 12
	saltCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	ErrBadSalt       = errors.New("salt must be exactly 8 characters")
	ErrBadIterations = errors.New("iteration count must be positive")
	ErrNotMasked     = errors.New("value is not masked")
	ErrMalformed     = errors.New("malformed masked value")
)

// Mask obfuscates secret with salt and iteration count.
func Mask(secret, salt string, iterations int) (string, error) {
	if len(salt) != SaltLength {
		return "", ErrBadSalt
	}
	if iterations < 1 {
		return "", ErrBadIterations
	}

	aead, nonce, err := derive(salt, iterations)
	if err != nil {
		return "", err
	}
	sealed := aead.Seal(nil, nonce, []byte(secret), nil)

	return fmt.Sprintf("%s%s;%s;%d", Prefix, base64.StdEncoding.EncodeToString(sealed), salt, iterations), nil
}

// Unmask recovers the secret from a value produced by Mask.
func Unmask(masked string) (string, error) {
	if !IsMasked(masked) {
		return "", ErrNotMasked
	}

	parts := strings.Split(strings.TrimPrefix(masked, Prefix), ";")
	if len(parts) != 3 {
		return "", fmt.Errorf("expected <data>;<salt>;<iterations>: %w", ErrMalformed)
	}
	sealed, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("decode data: %w", ErrMalformed)
	}
	salt := parts[1]
	if len(salt) != SaltLength {
		return "", ErrBadSalt
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", fmt.Errorf("iteration count %q: %w", parts[2], ErrMalformed)
	}
	if iterations < 1 {
		return "", ErrBadIterations
	}

	aead, nonce, err := derive(salt, iterations)
	if err != nil {
		return "", err
	}
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("open masked data: %w", ErrMalformed)
	}
	return string(plain), nil
}

// IsMasked reports whether value carries the mask prefix.
func IsMasked(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// Reveal returns value unmasked when it is masked and unchanged otherwise.
func Reveal(value string) (string, error) {
	if !IsMasked(value) {
		return value, nil
	}
	return Unmask(value)
}

// RandomSalt returns a random alphanumeric salt of SaltLength characters.
func RandomSalt() (string, error) {
	salt := make([]byte, SaltLength)
	limit := big.NewInt(int64(len(saltCharset)))
	for i := range salt {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		salt[i] = saltCharset[n.Int64()]
	}
	return string(salt), nil
}

// derive expands the fixed key material into an AES-256-GCM key and nonce.
func derive(salt string, iterations int) (cipher.AEAD, []byte, error) {
	material := pbkdf2.Key([]byte(keyMaterial), []byte(salt), iterations, keyLen+nonceLen, sha256.New)
	gcm, err := provider.New(provider.AES256GCM, material[:keyLen])
	if err != nil {
		return nil, nil, err
	}
	return gcm, material[keyLen:], nil
}
