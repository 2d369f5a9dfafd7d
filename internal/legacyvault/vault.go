// Package legacyvault reads legacy password-store directories: a tree of
// *.enc files sealed with a master password combined with a .keyfile.
package legacyvault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sectool/internal/crypto"

	"github.com/tyler-smith/go-bip39"
)

const (
	entrySuffix = ".enc"
	keyFileName = ".keyfile"
)

var (
	ErrVaultNotFound   = errors.New("legacy vault directory does not exist")
	ErrKeyFileMissing  = errors.New("keyfile not found")
	ErrInvalidMnemonic = errors.New("invalid recovery phrase")
	ErrEntryNotFound   = errors.New("entry does not exist")
)

// Vault is an opened legacy vault directory.
type Vault struct {
	dir string
}

// Open returns a Vault for dir.
func Open(dir string) (*Vault, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrVaultNotFound)
	}
	return &Vault{dir: dir}, nil
}

// Dir returns the vault directory.
func (v *Vault) Dir() string { return v.dir }

// HasKeyFile checks if the keyfile exists.
func (v *Vault) HasKeyFile() bool {
	_, err := os.Stat(filepath.Join(v.dir, keyFileName))
	return err == nil
}

// KeyFile reads the keyfile.
func (v *Vault) KeyFile() ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(v.dir, keyFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyFileMissing
		}
		return nil, fmt.Errorf("failed to read keyfile: %w", err)
	}
	if len(data) != crypto.KeyFileSize {
		return nil, crypto.ErrBadKeyFile
	}
	return data, nil
}

// RecoverKeyFile regenerates the keyfile from a BIP-39 recovery phrase.
func (v *Vault) RecoverKeyFile(mnemonic string) error {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return ErrInvalidMnemonic
	}

	// Empty passphrase, first 32 bytes of the seed
	seed := bip39.NewSeed(mnemonic, "")
	if err := os.WriteFile(filepath.Join(v.dir, keyFileName), seed[:crypto.KeyFileSize], 0600); err != nil {
		return fmt.Errorf("failed to write keyfile: %w", err)
	}
	return nil
}

// Entries lists entry names, relative to the vault and without the .enc
// suffix. Hidden files and directories are skipped.
func (v *Vault) Entries() ([]string, error) {
	var names []string
	err := filepath.WalkDir(v.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != v.dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), entrySuffix) {
			return nil
		}
		rel, err := filepath.Rel(v.dir, path)
		if err != nil {
			return err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), entrySuffix))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk legacy vault: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Read decrypts the entry called name.
func (v *Vault) Read(name, password string) (string, error) {
	keyFile, err := v.KeyFile()
	if err != nil {
		return "", err
	}

	encrypted, err := os.ReadFile(v.entryPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", name, ErrEntryNotFound)
		}
		return "", fmt.Errorf("failed to read entry file: %w", err)
	}

	plain, err := crypto.OpenLegacy(encrypted, password, keyFile)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s: %w", name, err)
	}
	return string(plain), nil
}

// Write seals secret as entry name, creating parent directories.
func (v *Vault) Write(name, secret, password string) error {
	keyFile, err := v.KeyFile()
	if err != nil {
		return err
	}

	path := v.entryPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	encrypted, err := crypto.SealLegacy([]byte(secret), password, keyFile)
	if err != nil {
		return fmt.Errorf("failed to encrypt %s: %w", name, err)
	}
	return os.WriteFile(path, encrypted, 0600)
}

func (v *Vault) entryPath(name string) string {
	if !strings.HasSuffix(name, entrySuffix) {
		name += entrySuffix
	}
	return filepath.Join(v.dir, filepath.FromSlash(name))
}

// GenerateMnemonic creates a new 12-word recovery phrase.
func GenerateMnemonic() (string, error) {
	// 128 bits of entropy (12 words)
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}
