// Package storage persists uploaded images under a local directory and maps
// them to the /uploads/<type>s/<file> paths stored in content records.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Store writes and deletes uploaded files. The filesystem is injected so
// tests can run against afero.NewMemMapFs.
type Store struct {
	fs      afero.Fs
	root    string
	baseURL string
}

// New builds a Store rooted at dir. baseURL is the public path prefix
// recorded in the database, normally "/uploads".
func New(fs afero.Fs, dir, baseURL string) *Store {
	return &Store{
		fs:      fs,
		root:    filepath.Clean(dir),
		baseURL: "/" + strings.Trim(baseURL, "/"),
	}
}

// BaseURL returns the public path prefix.
func (s *Store) BaseURL() string {
	return s.baseURL
}

// Root returns the on-disk directory uploads are written to.
func (s *Store) Root() string {
	return s.root
}

// Managed reports whether ref is a path this store owns, as opposed to an
// external URL supplied by an editor.
func (s *Store) Managed(ref string) bool {
	return strings.HasPrefix(ref, s.baseURL+"/")
}

// Save writes src into the subdir with a generated filename and returns the
// public path to record, e.g. /uploads/blogs/5f3a...png.
func (s *Store) Save(ctx context.Context, subdir, originalName string, src io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + sanitizeExt(originalName)
	dir := filepath.Join(s.root, subdir)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir %q: %w", dir, err)
	}

	dst, err := s.fs.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = s.fs.Remove(filepath.Join(dir, name))
		return "", fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return path.Join(s.baseURL, subdir, name), nil
}

// Remove deletes the file behind a managed path. Unmanaged refs and already
// missing files are treated as success so deletes stay idempotent.
func (s *Store) Remove(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.Managed(ref) {
		return nil
	}

	abs, err := s.abs(ref)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(abs); err != nil {
		if exists, statErr := afero.Exists(s.fs, abs); statErr == nil && !exists {
			return nil
		}
		return fmt.Errorf("remove upload %q: %w", ref, err)
	}
	return nil
}

// Exists reports whether the file behind a managed path is present.
func (s *Store) Exists(ref string) (bool, error) {
	if !s.Managed(ref) {
		return false, nil
	}
	abs, err := s.abs(ref)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, abs)
}

// abs maps a public path back to its on-disk location, refusing refs that
// would escape the upload root.
func (s *Store) abs(ref string) (string, error) {
	rel := strings.TrimPrefix(ref, s.baseURL+"/")
	rel = path.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") || path.IsAbs(rel) {
		return "", fmt.Errorf("invalid upload path %q", ref)
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
