package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

// TokenStore persists exactly one bearer token across runs.
// Load returns "" with a nil error when nothing is stored.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileStore keeps the token in a single 0600 file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the token file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements TokenStore.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save implements TokenStore.
func (s *FileStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear implements TokenStore. A missing file is not an error.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

var (
	bucketSession = []byte("session")
	keyToken      = []byte("token")
)

// BoltStore keeps the token under a fixed key in a bbolt database. The
// database is opened per call so a second console process is only blocked
// for the duration of one transaction.
type BoltStore struct {
	path string
	opts *bbolt.Options
}

// NewBoltStore returns a store backed by the bbolt file at path.
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{
		path: path,
		opts: &bbolt.Options{Timeout: time.Second},
	}
}

// Load implements TokenStore.
func (s *BoltStore) Load() (string, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	var tok string
	err := s.with(func(db *bbolt.DB) error {
		return db.View(func(tx *bbolt.Tx) error {
			b := tx.Bucket(bucketSession)
			if b == nil {
				return nil
			}
			tok = string(b.Get(keyToken))
			return nil
		})
	})
	if err != nil {
		return "", fmt.Errorf("read token db: %w", err)
	}
	return tok, nil
}

// Save implements TokenStore.
func (s *BoltStore) Save(token string) error {
	err := s.with(func(db *bbolt.DB) error {
		return db.Update(func(tx *bbolt.Tx) error {
			b, err := tx.CreateBucketIfNotExists(bucketSession)
			if err != nil {
				return err
			}
			return b.Put(keyToken, []byte(token))
		})
	})
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Clear implements TokenStore.
func (s *BoltStore) Clear() error {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	err := s.with(func(db *bbolt.DB) error {
		return db.Update(func(tx *bbolt.Tx) error {
			b := tx.Bucket(bucketSession)
			if b == nil {
				return nil
			}
			return b.Delete(keyToken)
		})
	})
	if err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

func (s *BoltStore) with(fn func(db *bbolt.DB) error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	db, err := bbolt.Open(s.path, 0600, s.opts)
	if err != nil {
		return fmt.Errorf("open boltdb: %w", err)
	}
	if err := fn(db); err != nil {
		db.Close() //nolint:errcheck
		return err
	}
	return db.Close()
}
