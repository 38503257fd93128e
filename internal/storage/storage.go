// Package storage keeps uploaded product images on local disk or in S3.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/config"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
)

// URLPrefix is prepended to stored names to form image references.
const URLPrefix = "/uploads/"

// MaxImageSize upload limit in bytes
const MaxImageSize = 5 << 20

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ImageStore persists images and serves them back by name.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// New builds the store selected by cfg.Storage.Type.
func New(ctx context.Context, cfg *config.AppConfig) (ImageStore, error) {
	switch strings.ToLower(cfg.Storage.Type) {
	case "", "local":
		return NewLocalStore(cfg.GetUploadDir())
	case "s3":
		return NewS3Store(ctx, cfg.Storage)
	default:
		return nil, errors.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
}

// NewName returns a random object name keeping the image extension.
func NewName(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := imageTypes[ext]; !ok {
		return "", domain.Validation("Unsupported image type %q", ext)
	}
	return uuid.NewString() + ext, nil
}

// ContentType of a stored name, empty when unknown.
func ContentType(name string) string {
	return imageTypes[strings.ToLower(filepath.Ext(name))]
}

// Reference is the public reference of a stored name.
func Reference(name string) string {
	return URLPrefix + name
}

// NameOf extracts the stored name from a reference, "" for foreign references.
func NameOf(ref string) string {
	if !strings.HasPrefix(ref, URLPrefix) {
		return ""
	}
	name := strings.TrimPrefix(ref, URLPrefix)
	if !validName(name) {
		return ""
	}
	return name
}

func validName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.HasPrefix(name, ".") && ContentType(name) != ""
}
