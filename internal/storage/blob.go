package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// BlobStore keeps uploaded files. Put returns the public URL of the stored
// object.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

var ErrBadKey = errors.New("storage: invalid key")

// Uploader stores files under a fresh key that keeps the original name.
type Uploader struct {
	Store BlobStore
	NewID func() string
}

func NewUploader(s BlobStore) *Uploader {
	return &Uploader{Store: s, NewID: uuid.NewString}
}

func (u *Uploader) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	return u.Store.Put(ctx, u.NewID()+"/"+baseName(name), r)
}

func baseName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "upload"
	}
	return name
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	if key == "" {
		return "", ErrBadKey
	}
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))[1:]
	if k == "" || k != strings.TrimPrefix(key, "/") {
		return "", ErrBadKey
	}
	return k, nil
}
