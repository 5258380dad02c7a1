package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidName = errors.New("invalid file name")

var PhotoExtensions = []string{"png", "jpg", "jpeg"}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Files stores uploads flat in one directory under collision-free names.
type Files struct {
	dir string
}

// NewFiles creates dir if needed.
func NewFiles(dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Files{dir: dir}, nil
}

func (f *Files) Dir() string { return f.dir }

// Allowed reports whether name has one of the given extensions.
func Allowed(name string, exts []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// SanitizeName reduces an uploaded file name to a safe base name.
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, ".")
	return name
}

// Save writes src under "<uuid>_<sanitised name>" and returns that name.
func (f *Files) Save(name string, src io.Reader) (string, error) {
	clean := SanitizeName(name)
	if clean == "" {
		return "", ErrInvalidName
	}
	stored := uuid.NewString() + "_" + clean

	dst, err := os.OpenFile(filepath.Join(f.dir, stored), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	return stored, nil
}

// Path resolves a stored name to its location on disk, rejecting anything
// that is not a plain file name.
func (f *Files) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return filepath.Join(f.dir, name), nil
}

// Remove deletes a stored file. Empty and missing names are ignored.
func (f *Files) Remove(name string) error {
	if name == "" {
		return nil
	}
	p, err := f.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
