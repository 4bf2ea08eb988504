// Package objectstore is a content-addressed blob store on the local
// filesystem. Blobs are identified by the hex SHA-256 of their content and
// laid out in a two-level fan-out under the root directory, so repeated
// writes of the same content are free.
package objectstore

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when no blob exists for a CID.
var ErrNotFound = errors.New("object not found")

// Store writes and reads content-addressed blobs under a root directory.
type Store struct {
	root string
}

// New creates the root directory if needed and returns a Store.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create object store root: %w", err)
	}
	return &Store{root: root}, nil
}

// Put stores data and returns its CID. Writing the same content twice is a
// no-op that returns the same CID.
func (s *Store) Put(data []byte) (string, error) {
	sum := sha256.Sum256(data)
	cid := hex.EncodeToString(sum[:])

	path := s.pathFor(cid)
	if _, err := os.Stat(path); err == nil {
		return cid, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	// Write to a temp file and rename so a crash never leaves a partial
	// blob under its final name.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp object: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store object: %w", err)
	}
	return cid, nil
}

// Get returns the blob for a CID, or ErrNotFound.
func (s *Store) Get(cid string) ([]byte, error) {
	if !validCID(cid) {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(s.pathFor(cid))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// Has reports whether a blob exists for a CID.
func (s *Store) Has(cid string) bool {
	if !validCID(cid) {
		return false
	}
	_, err := os.Stat(s.pathFor(cid))
	return err == nil
}

func (s *Store) pathFor(cid string) string {
	return filepath.Join(s.root, cid[:2], cid[2:4], cid)
}

// validCID checks the CID is a well-formed hex SHA-256 digest. This also
// keeps path traversal out of pathFor.
func validCID(cid string) bool {
	if len(cid) != 64 {
		return false
	}
	for i := 0; i < len(cid); i++ {
		c := cid[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
