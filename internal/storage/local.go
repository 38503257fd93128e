package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

// LocalStore keeps images in a directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create upload dir")
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	name, err := NewName(filename)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create image file")
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxImageSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxImageSize {
		err = domain.Validation("Image exceeds %d MB", MaxImageSize>>20)
	}
	if err != nil {
		_ = os.Remove(path)
		if domain.IsKind(err, domain.KindValidation) {
			return "", err
		}
		return "", errors.Wrap(err, "write image file")
	}
	return Reference(name), nil
}

func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if !validName(name) {
		return nil, domain.NotFound("Image not found")
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, domain.NotFound("Image not found")
	} else if err != nil {
		return nil, errors.Wrap(err, "open image")
	}
	return f, nil
}

func (s *LocalStore) Delete(_ context.Context, name string) error {
	if !validName(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "delete image")
	}
	return nil
}
