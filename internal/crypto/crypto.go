// Package crypto seals data under a password using Argon2id and an AEAD
// taken from the installed cipher provider.
package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"sectool/internal/provider"

	"golang.org/x/crypto/argon2"
)

const (
	// Argon2 parameters (following OWASP recommendations)
	argon2Time    = 3         // Number of iterations
	argon2Memory  = 64 * 1024 // Memory in KB (64 MB)
	argon2Threads = 4         // Number of parallel threads
	argon2KeyLen  = 32        // Length of derived key (256 bits)

	// KDFArgon2id names the key derivation recorded in envelopes.
	KDFArgon2id = "argon2id"

	saltSize = 32 // 256 bits

	// Legacy layout: salt | nonce | ciphertext, AES-256-GCM.
	legacyNonceSize = 12

	// KeyFileSize is the length of a legacy keyfile.
	KeyFileSize = 32
)

var (
	ErrWrongPassword = errors.New("wrong password or corrupted data")
	ErrTooShort      = errors.New("encrypted data too short")
	ErrUnknownKDF    = errors.New("unknown key derivation")
	ErrBadKeyFile    = errors.New("invalid keyfile size")
)

// Envelope is sealed data plus everything except the password needed to
// open it again.
type Envelope struct {
	Cipher     string `json:"cipher"`
	KDF        string `json:"kdf"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// DeriveKey stretches secret with Argon2id.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// Seal encrypts data under password with the named cipher.
func Seal(data []byte, password, cipherName string) (*Envelope, error) {
	salt, err := randomBytes(saltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := provider.New(cipherName, DeriveKey([]byte(password), salt))
	if err != nil {
		return nil, err
	}

	nonce, err := randomBytes(aead.NonceSize())
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return &Envelope{
		Cipher:     cipherName,
		KDF:        KDFArgon2id,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aead.Seal(nil, nonce, data, []byte(cipherName)),
	}, nil
}

// Open decrypts env with password.
func Open(env *Envelope, password string) ([]byte, error) {
	if env.KDF != KDFArgon2id {
		return nil, fmt.Errorf("%q: %w", env.KDF, ErrUnknownKDF)
	}

	aead, err := provider.New(env.Cipher, DeriveKey([]byte(password), env.Salt))
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != aead.NonceSize() {
		return nil, ErrTooShort
	}

	plaintext, err := aead.Open(nil, env.Nonce, env.Ciphertext, []byte(env.Cipher))
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}

// CombineKey joins a master password and a legacy keyfile into the secret
// the legacy format derives its key from.
func CombineKey(password string, keyFile []byte) ([]byte, error) {
	if len(keyFile) != KeyFileSize {
		return nil, ErrBadKeyFile
	}
	combined := make([]byte, 0, len(password)+KeyFileSize)
	combined = append(combined, []byte(password)...)
	combined = append(combined, keyFile...)
	return combined, nil
}

// SealLegacy writes data in the legacy salt|nonce|ciphertext layout.
func SealLegacy(data []byte, password string, keyFile []byte) ([]byte, error) {
	combinedKey, err := CombineKey(password, keyFile)
	if err != nil {
		return nil, err
	}

	salt, err := randomBytes(saltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := provider.New(provider.AES256GCM, DeriveKey(combinedKey, salt))
	if err != nil {
		return nil, err
	}

	nonce, err := randomBytes(legacyNonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := aead.Seal(nil, nonce, data, nil)

	result := make([]byte, 0, saltSize+legacyNonceSize+len(ciphertext))
	result = append(result, salt...)
	result = append(result, nonce...)
	result = append(result, ciphertext...)
	return result, nil
}

// OpenLegacy decrypts data written in the legacy layout.
func OpenLegacy(data []byte, password string, keyFile []byte) ([]byte, error) {
	if len(data) < saltSize+legacyNonceSize {
		return nil, ErrTooShort
	}

	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+legacyNonceSize]
	ciphertext := data[saltSize+legacyNonceSize:]

	combinedKey, err := CombineKey(password, keyFile)
	if err != nil {
		return nil, err
	}

	aead, err := provider.New(provider.AES256GCM, DeriveKey(combinedKey, salt))
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plaintext, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
