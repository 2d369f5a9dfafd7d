// Package credstore keeps named secrets in a single password-sealed file.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sectool/internal/crypto"
)

const formatVersion = 1

var (
	ErrStoreExists   = errors.New("credential store already exists")
	ErrStoreNotFound = errors.New("credential store does not exist")
	ErrAliasNotFound = errors.New("alias not found")
	ErrEmptyAlias    = errors.New("alias must not be empty")
	ErrCorrupt       = errors.New("credential store is corrupted")
)

// Entry is a single stored secret.
type Entry struct {
	Secret  string    `json:"secret"`
	Created time.Time `json:"created"`
}

// storeFile is the on-disk layout.
type storeFile struct {
	Version  int              `json:"version"`
	Envelope *crypto.Envelope `json:"envelope"`
}

// Store is an opened credential store. Changes stay in memory until Save.
type Store struct {
	path     string
	password string
	cipher   string
	entries  map[string]Entry
}

// FileExists reports whether a store file exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Create initialises an empty store at path and writes it.
func Create(path, password, cipherName string) (*Store, error) {
	if FileExists(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrStoreExists)
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &Store{
		path:     path,
		password: password,
		cipher:   cipherName,
		entries:  make(map[string]Entry),
	}
	if err := s.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open reads and decrypts the store at path.
func Open(path, password string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrStoreNotFound)
		}
		return nil, fmt.Errorf("failed to read credential store: %w", err)
	}

	var sf storeFile
	if err := json.Unmarshal(data, &sf); err != nil || sf.Envelope == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrCorrupt)
	}
	if sf.Version != formatVersion {
		return nil, fmt.Errorf("%s: unsupported version %d: %w", path, sf.Version, ErrCorrupt)
	}

	plain, err := crypto.Open(sf.Envelope, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(plain, &entries); err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrCorrupt)
	}

	return &Store{
		path:     path,
		password: password,
		cipher:   sf.Envelope.Cipher,
		entries:  entries,
	}, nil
}

// Path returns the store location.
func (s *Store) Path() string { return s.path }

// Cipher returns the cipher the store is sealed with.
func (s *Store) Cipher() string { return s.cipher }

// Add stores secret under alias, replacing any previous value.
func (s *Store) Add(alias, secret string) error {
	key := Normalize(alias)
	if key == "" {
		return ErrEmptyAlias
	}
	s.entries[key] = Entry{Secret: secret, Created: time.Now().UTC()}
	return nil
}

// Remove deletes alias.
func (s *Store) Remove(alias string) error {
	key := Normalize(alias)
	if _, ok := s.entries[key]; !ok {
		return fmt.Errorf("%s: %w", alias, ErrAliasNotFound)
	}
	delete(s.entries, key)
	return nil
}

// Exists reports whether alias is present.
func (s *Store) Exists(alias string) bool {
	_, ok := s.entries[Normalize(alias)]
	return ok
}

// Get returns the secret stored under alias.
func (s *Store) Get(alias string) (string, error) {
	e, ok := s.entries[Normalize(alias)]
	if !ok {
		return "", fmt.Errorf("%s: %w", alias, ErrAliasNotFound)
	}
	return e.Secret, nil
}

// Aliases returns all aliases, sorted.
func (s *Store) Aliases() []string {
	aliases := make([]string, 0, len(s.entries))
	for a := range s.entries {
		aliases = append(aliases, a)
	}
	sort.Strings(aliases)
	return aliases
}

// Len returns the number of stored entries.
func (s *Store) Len() int { return len(s.entries) }

// Save seals the entries and atomically replaces the store file.
func (s *Store) Save() error {
	plain, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to encode entries: %w", err)
	}

	env, err := crypto.Seal(plain, s.password, s.cipher)
	if err != nil {
		return fmt.Errorf("failed to seal credential store: %w", err)
	}

	data, err := json.MarshalIndent(storeFile{Version: formatVersion, Envelope: env}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credstore-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace credential store: %w", err)
	}
	return nil
}

// Normalize returns the key alias is stored under. Aliases are
// case-insensitive.
func Normalize(alias string) string {
	return strings.ToLower(strings.TrimSpace(alias))
}
