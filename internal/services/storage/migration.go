package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"github.com/sirupsen/logrus"

	"finplan/internal/logging"
)

// minPassphraseLength is the shortest passphrase EnableEncryption accepts
const minPassphraseLength = 8

// EnableEncryption encrypts every stored document with passphrase and leaves
// the store unlocked. A failure part way decrypts what was already converted.
func (s *Storage) EnableEncryption(passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encrypted {
		return ErrAlreadyEncrypted
	}
	if len(passphrase) < minPassphraseLength {
		return ErrPassphraseTooWeak
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("create recipient: %w", err)
	}
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("create identity: %w", err)
	}

	verifyPath := filepath.Join(s.baseDir, verifyFile)
	check, err := encryptData([]byte(verifyMagic), recipient)
	if err != nil {
		return fmt.Errorf("encrypt verification file: %w", err)
	}
	if err := atomicWrite(verifyPath, check); err != nil {
		return fmt.Errorf("write verification file: %w", err)
	}

	docs, err := s.documents()
	if err != nil {
		os.Remove(verifyPath)
		return err
	}
	for i, path := range docs {
		if err := rewrite(path, func(data []byte) ([]byte, error) {
			if isAgeEncrypted(data) {
				return nil, nil
			}
			return encryptData(data, recipient)
		}); err != nil {
			s.rollback(docs[:i], identity)
			os.Remove(verifyPath)
			return fmt.Errorf("encrypt %s: %w", filepath.Base(path), err)
		}
	}

	if err := atomicWrite(filepath.Join(s.baseDir, markerFile), []byte("encrypted")); err != nil {
		s.rollback(docs, identity)
		os.Remove(verifyPath)
		return fmt.Errorf("create marker file: %w", err)
	}

	s.encrypted = true
	s.identity = identity
	s.recipient = recipient
	s.log.WithField("documents", len(docs)).Info("encryption enabled")
	return nil
}

// DisableEncryption decrypts every stored document. The current passphrase is
// required even when the store is unlocked.
func (s *Storage) DisableEncryption(passphrase string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return ErrNotEncrypted
	}
	identity, err := s.verify(passphrase)
	if err != nil {
		return err
	}

	docs, err := s.documents()
	if err != nil {
		return err
	}
	for _, path := range docs {
		if err := rewrite(path, func(data []byte) ([]byte, error) {
			if !isAgeEncrypted(data) {
				return nil, nil
			}
			return decryptData(data, identity)
		}); err != nil {
			return fmt.Errorf("decrypt %s: %w", filepath.Base(path), err)
		}
	}

	os.Remove(filepath.Join(s.baseDir, markerFile))
	os.Remove(filepath.Join(s.baseDir, verifyFile))

	s.encrypted = false
	s.identity = nil
	s.recipient = nil
	s.log.WithField("documents", len(docs)).Info("encryption disabled")
	return nil
}

// documents lists every JSON document below the base directory
func (s *Storage) documents() ([]string, error) {
	var docs []string
	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || isInternal(path) {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	return docs, nil
}

// rewrite replaces a file with transform's output; a nil output leaves it untouched
func rewrite(path string, transform func([]byte) ([]byte, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := transform(data)
	if err != nil || out == nil {
		return err
	}
	return atomicWrite(path, out)
}

// rollback decrypts documents converted before a failed EnableEncryption
func (s *Storage) rollback(docs []string, identity *age.ScryptIdentity) {
	for _, path := range docs {
		err := rewrite(path, func(data []byte) ([]byte, error) {
			if !isAgeEncrypted(data) {
				return nil, nil
			}
			return decryptData(data, identity)
		})
		if err != nil {
			s.log.WithFields(logrus.Fields{"path": path, logging.FieldError: err}).Error("rollback failed")
		}
	}
}
