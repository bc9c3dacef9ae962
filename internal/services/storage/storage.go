// Package storage keeps planner documents on disk, optionally encrypted with
// an age scrypt passphrase.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"filippo.io/age"
	"github.com/sirupsen/logrus"

	"finplan/internal/logging"
)

const (
	// markerFile indicates encryption is enabled
	markerFile = ".encrypted"

	// verifyFile holds verifyMagic encrypted with the current passphrase
	verifyFile  = ".encryption-verify"
	verifyMagic = `{"magic":"finplan-encryption-verify","version":1}`

	filePerm = 0600
	dirPerm  = 0700
)

var (
	ErrLocked            = errors.New("storage: file is encrypted but storage is locked")
	ErrWrongPassphrase   = errors.New("storage: incorrect passphrase")
	ErrAlreadyEncrypted  = errors.New("storage: encryption is already enabled")
	ErrNotEncrypted      = errors.New("storage: encryption is not enabled")
	ErrPassphraseTooWeak = errors.New("storage: passphrase must be at least 8 characters")
)

// Storage reads and writes files below a base directory. Once encryption is
// enabled every document written is encrypted and reads decrypt transparently.
type Storage struct {
	baseDir   string
	log       *logrus.Entry
	encrypted bool
	identity  *age.ScryptIdentity
	recipient *age.ScryptRecipient
	mu        sync.RWMutex
}

// New opens the store rooted at baseDir, creating the directory if needed
func New(baseDir string, log *logrus.Logger) (*Storage, error) {
	if err := os.MkdirAll(baseDir, dirPerm); err != nil {
		return nil, fmt.Errorf("create %s: %w", baseDir, err)
	}
	s := &Storage{
		baseDir: baseDir,
		log:     logging.Component(logging.OrDiscard(log), logging.ComponentStorage),
	}
	if _, err := os.Stat(filepath.Join(baseDir, markerFile)); err == nil {
		s.encrypted = true
	}
	return s, nil
}

// BaseDir returns the base directory
func (s *Storage) BaseDir() string {
	return s.baseDir
}

// IsEncrypted returns true if the data directory is encrypted
func (s *Storage) IsEncrypted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encrypted
}

// IsUnlocked reports whether documents can be read and written
func (s *Storage) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.encrypted || s.identity != nil
}

// Unlock checks the passphrase against the verification file and keeps the
// key in memory. Unlocking an unencrypted store is a no-op.
func (s *Storage) Unlock(passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return nil
	}
	identity, err := s.verify(passphrase)
	if err != nil {
		return err
	}
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("create recipient: %w", err)
	}
	s.identity, s.recipient = identity, recipient
	return nil
}

// Lock clears the key from memory
func (s *Storage) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = nil
	s.recipient = nil
}

// ReadFile reads a document relative to the base directory
func (s *Storage) ReadFile(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil, err
	}
	if !isAgeEncrypted(data) {
		return data, nil
	}
	if s.identity == nil {
		return nil, ErrLocked
	}
	return decryptData(data, s.identity)
}

// WriteFile atomically writes a document relative to the base directory
func (s *Storage) WriteFile(name string, data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.encrypted {
		if s.recipient == nil {
			return ErrLocked
		}
		encrypted, err := encryptData(data, s.recipient)
		if err != nil {
			return fmt.Errorf("encrypt %s: %w", name, err)
		}
		data = encrypted
	}
	return atomicWrite(s.path(name), data)
}

// Remove deletes a document
func (s *Storage) Remove(name string) error {
	return os.Remove(s.path(name))
}

// List returns the names of the documents in dir with the given extension,
// without the extension, sorted. A missing directory lists nothing.
func (s *Storage) List(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(s.path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Storage) path(name string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(name))
}

// atomicWrite writes through a temp file in the target directory and renames it into place
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// isInternal reports whether path is one of the store's own bookkeeping files
func isInternal(path string) bool {
	base := filepath.Base(path)
	return base == markerFile || base == verifyFile || strings.HasSuffix(base, ".tmp")
}
