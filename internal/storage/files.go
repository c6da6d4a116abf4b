package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("file not found")
	ErrBadExtension = errors.New("file extension not allowed")
	ErrTooLarge     = errors.New("file exceeds size limit")
	ErrBadFilename  = errors.New("invalid filename")
)

// Store is a directory-backed blob store for one kind of upload
// (images or model files). Content is never inspected; only the
// extension and size are checked.
type Store struct {
	dir      string
	maxBytes int64
	allowed  map[string]struct{}
}

func New(dir string, maxBytes int64, exts []string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(exts))

	for _, e := range exts {
		allowed[strings.ToLower(strings.TrimPrefix(e, "."))] = struct{}{}
	}

	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		allowed:  allowed,
	}, nil
}

func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save writes the upload under a unique name derived from the original
// one and returns the stored filename.
func (s *Store) Save(originalName string, size int64, r io.Reader) (string, error) {
	base := filepath.Base(originalName)

	if base == "" || base == "." || base == string(filepath.Separator) {
		return "", ErrBadFilename
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))

	if _, ok := s.allowed[ext]; !ok {
		return "", ErrBadExtension
	}

	if size > s.maxBytes {
		return "", ErrTooLarge
	}

	// timestamp-random prefix keeps same-named uploads from clobbering
	// each other
	name := fmt.Sprintf("%d-%d-%s", time.Now().UnixMilli(), rand.Int63n(1_000_000_000), base)

	f, err := os.Create(filepath.Join(s.dir, name))

	if err != nil {
		return "", err
	}

	// the limit guards against a lying Content-Length
	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))

	closeErr := f.Close()

	if err == nil {
		err = closeErr
	}

	if err == nil && written > s.maxBytes {
		err = ErrTooLarge
	}

	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", err
	}

	return name, nil
}

// Delete removes a stored file. Path separators in the name are
// rejected so a caller can never reach outside the store directory.
func (s *Store) Delete(name string) error {
	if name == "" || name != filepath.Base(name) {
		return ErrBadFilename
	}

	err := os.Remove(filepath.Join(s.dir, name))

	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}

	return nil
}
