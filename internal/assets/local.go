package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps payloads on the local filesystem under Dir
type LocalStore struct {
	Dir     string
	BaseURL string
}

// NewLocalStore creates the upload directory if needed
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) Put(ctx context.Context, prefix string, up Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.ContainsAny(prefix, `/\.`) || prefix == "" {
		return "", fmt.Errorf("invalid asset prefix %q", prefix)
	}
	dir := filepath.Join(s.Dir, prefix)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	name := objectName(prefix, up, time.Now())
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, up.Body); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("save file: %w", err)
	}
	return path.Join(prefix, name), nil
}

func (s *LocalStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.BaseURL + "/" + ref
}

// Path resolves ref to a file below Dir, rejecting references that escape it
func (s *LocalStore) Path(ref string) (string, error) {
	clean := path.Clean("/" + ref)
	if clean == "/" || strings.Contains(ref, "..") {
		return "", fs.ErrNotExist
	}
	return filepath.Join(s.Dir, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	p, err := s.Path(ref)
	if err != nil {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
