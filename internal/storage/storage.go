package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

var ErrReadFailed = errors.New("source file read failed")
var ErrWriteFailed = errors.New("source file write failed")
var ErrTooLarge = errors.New("source file too large")

// Storage holds the whole backing document.
type Storage interface {
	Load() ([]byte, error)
	Persist(data []byte) error
	Name() string
}

type FileStorage struct {
	path     string
	maxBytes int64
	perm     os.FileMode
}

func NewFileStorage(path string, maxBytes int64, perm os.FileMode) *FileStorage {
	return &FileStorage{path: path, maxBytes: maxBytes, perm: perm}
}

func (s *FileStorage) Name() string {
	return s.path
}

func (s *FileStorage) Load() ([]byte, error) {
	return ReadFile(s.path, s.maxBytes)
}

func (s *FileStorage) Persist(data []byte) error {
	return WriteAtomic(s.path, data, s.perm)
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// ReadFile reads the whole file at path. Files larger than maxBytes are
// rejected; a non positive maxBytes disables the limit.
func ReadFile(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrReadFailed, "could not open %s: %v", path, err)
	}

	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(ErrReadFailed, "could not collect file %s stats: %v", path, err)
	}

	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, errors.Wrapf(ErrTooLarge, "%s holds %d bytes, limit is %d", path, info.Size(), maxBytes)
	}

	var r io.Reader = f
	if maxBytes > 0 {
		// the file may grow between stat and read
		r = io.LimitReader(f, maxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(ErrReadFailed, "could not read %s: %v", path, err)
	}

	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, errors.Wrapf(ErrTooLarge, "%s grew past %d bytes while reading", path, maxBytes)
	}

	return data, nil
}

// WriteAtomic replaces the file at path with data. The data goes to a
// temporary file in the same directory which is synced and renamed over
// path, so readers see either the old or the new content and a failed write
// leaves the original untouched.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmpF, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return errors.Wrapf(ErrWriteFailed, "could not create temp file for %s: %v", path, err)
	}

	tmpFName := tmpF.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmpF.Close()
			_ = os.Remove(tmpFName)
		}
	}()

	n, err := tmpF.Write(data)
	if err != nil {
		return errors.Wrapf(ErrWriteFailed, "could not write into %s: %v", tmpFName, err)
	}

	if n != len(data) {
		return errors.Wrapf(ErrWriteFailed, "short write into %s: %d of %d bytes", tmpFName, n, len(data))
	}

	if err := tmpF.Chmod(perm); err != nil {
		return errors.Wrapf(ErrWriteFailed, "could not chmod %s: %v", tmpFName, err)
	}

	if err := tmpF.Sync(); err != nil {
		return errors.Wrapf(ErrWriteFailed, "could not sync %s: %v", tmpFName, err)
	}

	if err := tmpF.Close(); err != nil {
		return errors.Wrapf(ErrWriteFailed, "could not close %s: %v", tmpFName, err)
	}

	if err := os.Rename(tmpFName, path); err != nil {
		return errors.Wrapf(ErrWriteFailed, "could not swap %s for %s: %v", path, tmpFName, err)
	}

	committed = true

	return nil
}
