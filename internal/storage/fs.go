package storage

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FSStore keeps blobs on local disk and hands out URLs under
// <publicURL>/files/.
type FSStore struct {
	base      string
	publicURL string
}

func NewFSStore(base, publicURL string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *FSStore) Put(_ context.Context, key string, r io.Reader) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.base, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return s.publicURL + "/files/" + escapeKey(k), nil
}

func escapeKey(k string) string {
	parts := strings.Split(k, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func (s *FSStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	k, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.base, filepath.FromSlash(k)))
}
