package legacyvault

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// ErrNotRepository is returned by Head when the vault is not under git.
var ErrNotRepository = errors.New("legacy vault is not a git repository")

// Clone fetches a legacy vault from remoteURL into dir. An existing
// non-empty dir is left untouched and reported as an error.
func Clone(remoteURL, dir string, progress io.Writer) (*Vault, error) {
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return nil, fmt.Errorf("%s is not empty, refusing to clone into it", dir)
	}

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dir), 0700); err != nil {
		return nil, fmt.Errorf("failed to create parent directory: %w", err)
	}

	opts := &gogit.CloneOptions{
		URL:      remoteURL,
		Progress: progress,
	}
	auth, err := authFor(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to setup authentication: %w", err)
	}
	if auth != nil {
		opts.Auth = auth
	}

	if _, err := gogit.PlainClone(dir, false, opts); err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}
	return Open(dir)
}

// Head returns the commit hash checked out in the vault directory.
func (v *Vault) Head() (string, error) {
	repo, err := gogit.PlainOpen(v.dir)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return "", ErrNotRepository
		}
		return "", fmt.Errorf("failed to open repository: %w", err)
	}
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return ref.Hash().String(), nil
}

// authFor picks credentials for remoteURL: the SSH agent for SSH remotes,
// GIT_USERNAME with GIT_PASSWORD or GIT_TOKEN for HTTPS remotes. No prompts
// are issued; the migration runs unattended.
func authFor(remoteURL string) (transport.AuthMethod, error) {
	if strings.HasPrefix(remoteURL, "git@") || strings.HasPrefix(remoteURL, "ssh://") {
		sshAuth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			return nil, fmt.Errorf("no SSH agent available: %w", err)
		}
		return sshAuth, nil
	}

	if strings.HasPrefix(remoteURL, "https://") {
		username := os.Getenv("GIT_USERNAME")
		password := os.Getenv("GIT_PASSWORD")
		if password == "" {
			password = os.Getenv("GIT_TOKEN") // Support both password and token
		}
		if username != "" && password != "" {
			return &http.BasicAuth{Username: username, Password: password}, nil
		}
	}

	// Local paths, file:// URLs and URLs with embedded credentials
	return nil, nil
}
