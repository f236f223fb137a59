// Package state holds the client-side authentication state: the bearer token
// and the signed-in principal, mirrored to disk so sessions survive process
// restarts.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Mann-lohchab/Portal/internal/model"
)

const (
	// DefaultConfigDir is the directory under XDG_CONFIG_HOME holding the
	// mirrored auth state.
	DefaultConfigDir = "schoolctl"

	tokenFileName     = "token"
	principalFileName = "principal.json"

	filePermissions = 0600
	dirPermissions  = 0700
)

// ErrNotLoggedIn indicates no credentials are held.
var ErrNotLoggedIn = errors.New("not logged in - run 'schoolctl login' first")

// FileStore mirrors the auth state as two entries under a config directory,
// one for the token and one for the principal summary.
type FileStore struct {
	dir string
}

// NewFileStore resolves the mirror directory from XDG_CONFIG_HOME, falling
// back to ~/.config.
func NewFileStore() (*FileStore, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return &FileStore{dir: filepath.Join(configHome, DefaultConfigDir)}, nil
}

// NewFileStoreAt uses an explicit directory. Tests use this.
func NewFileStoreAt(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (fs *FileStore) Save(token string, user model.Summary) error {
	if err := os.MkdirAll(fs.dir, dirPermissions); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(fs.dir, tokenFileName), []byte(token), filePermissions); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(fs.dir, principalFileName), data, filePermissions)
}

// Load reads both entries back. A missing or unreadable mirror returns
// ErrNotLoggedIn; a present but unparseable one returns the parse error so
// the caller can discard it.
func (fs *FileStore) Load() (string, model.Summary, error) {
	token, err := os.ReadFile(filepath.Join(fs.dir, tokenFileName))
	if err != nil {
		return "", model.Summary{}, ErrNotLoggedIn
	}
	data, err := os.ReadFile(filepath.Join(fs.dir, principalFileName))
	if err != nil {
		return "", model.Summary{}, ErrNotLoggedIn
	}
	var user model.Summary
	if err := json.Unmarshal(data, &user); err != nil {
		return "", model.Summary{}, err
	}
	if len(token) == 0 || !user.Role.Valid() {
		return "", model.Summary{}, errors.New("auth state mirror incomplete")
	}
	return string(token), user, nil
}

func (fs *FileStore) Clear() error {
	var firstErr error
	for _, name := range []string{tokenFileName, principalFileName} {
		if err := os.Remove(filepath.Join(fs.dir, name)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Snapshot is a read-only copy of the auth state at one instant.
type Snapshot struct {
	Token string
	User  *model.Summary
}

// IsAuthenticated requires both halves: a token to present and a principal
// to act as.
func (s Snapshot) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// Container is the single writer of client auth state. All transitions go
// through Login and Logout; readers take snapshots.
type Container struct {
	mu    sync.Mutex
	token string
	user  *model.Summary
	store *FileStore
}

// NewContainer hydrates from the file mirror. A corrupt mirror is discarded
// rather than surfaced: the user simply starts signed out.
func NewContainer(store *FileStore) *Container {
	c := &Container{store: store}
	if store == nil {
		return c
	}
	token, user, err := store.Load()
	if err != nil {
		if !errors.Is(err, ErrNotLoggedIn) {
			_ = store.Clear()
		}
		return c
	}
	c.token = token
	c.user = &user
	return c
}

// Login records a successful authentication. The mirror is written before
// memory so a crash can never leave memory ahead of disk.
func (c *Container) Login(token string, user model.Summary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store != nil {
		if err := c.store.Save(token, user); err != nil {
			return err
		}
	}
	c.token = token
	c.user = &user
	return nil
}

// Logout drops the in-memory state unconditionally. Mirror cleanup failures
// are reported but never leave the container signed in.
func (c *Container) Logout() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.user = nil
	if c.store != nil {
		return c.store.Clear()
	}
	return nil
}

func (c *Container) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return Snapshot{Token: c.token}
	}
	user := *c.user
	return Snapshot{Token: c.token, User: &user}
}

func (c *Container) IsAuthenticated() bool {
	return c.Snapshot().IsAuthenticated()
}
