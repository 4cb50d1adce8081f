package cart

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
)

// Storage is the durable single-key store behind the cart, the local
// equivalent of browser localStorage: read once at startup, overwritten
// after every mutation.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// FileStorage keeps the serialized cart in one file on disk.
type FileStorage struct {
	path string
}

// NewFileStorage creates a FileStorage at the given path. The file is
// created on first Save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load reads the stored cart. A missing file is not an error: it reads as
// empty, the same as a browser with no saved cart.
func (f *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read cart file")
	}
	return data, nil
}

// Save overwrites the stored cart atomically via a temp file rename, so a
// crash mid-write never corrupts the saved cart.
func (f *FileStorage) Save(data []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".cart-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write cart file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close cart file")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrap(err, "replace cart file")
	}
	return nil
}
