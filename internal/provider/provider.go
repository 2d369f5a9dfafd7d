// Package provider holds the process-wide registry of authenticated ciphers.
// Install must run before anything is sealed or opened.
package provider

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher names understood by the default provider.
const (
	AES256GCM         = "AES-256-GCM"
	XChaCha20Poly1305 = "XChaCha20-Poly1305"
)

// KeySize is the key length every registered cipher expects.
const KeySize = 32

var (
	ErrNotInstalled  = errors.New("cipher provider not installed")
	ErrUnknownCipher = errors.New("unknown cipher")
)

// Factory builds an AEAD from a KeySize-byte key.
type Factory func(key []byte) (cipher.AEAD, error)

var (
	mu        sync.RWMutex
	once      sync.Once
	installed bool
	factories = map[string]Factory{}
)

// Install registers the default ciphers. Only the first call has an effect.
func Install() {
	once.Do(func() {
		Register(AES256GCM, newAESGCM)
		Register(XChaCha20Poly1305, chacha20poly1305.NewX)

		mu.Lock()
		installed = true
		mu.Unlock()
	})
}

// Installed reports whether Install has run.
func Installed() bool {
	mu.RLock()
	defer mu.RUnlock()
	return installed
}

// Register adds or replaces a cipher factory.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	if !installed {
		return nil, ErrNotInstalled
	}
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%s (available: %s): %w", name, strings.Join(sortedNames(), ", "), ErrUnknownCipher)
	}
	return f, nil
}

// New builds the named AEAD for key.
func New(name string, key []byte) (cipher.AEAD, error) {
	f, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%s: key must be %d bytes, got %d", name, KeySize, len(key))
	}
	return f(key)
}

// Names lists the registered ciphers, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	return sortedNames()
}

// sortedNames expects mu to be held.
func sortedNames() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
