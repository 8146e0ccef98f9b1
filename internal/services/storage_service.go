package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mediavault/backend/internal/config"
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]+$`)

// StorageService maps (owner, file name) pairs to locations under a single
// local root, one subdirectory per owner.
type StorageService struct {
	root string
}

func NewStorageService(cfg *config.Config) *StorageService {
	_ = os.MkdirAll(cfg.StorageRoot, 0o755)
	return &StorageService{root: cfg.StorageRoot}
}

// NewObjectName returns a fresh server-side file name: a random token plus
// the client-declared extension. The extension is normalized but otherwise
// taken literally; it implies nothing about the actual content.
func (s *StorageService) NewObjectName(originalExt string) string {
	ext := strings.ToLower(strings.TrimSpace(originalExt))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return uuid.New().String() + ext
}

// Resolve returns the physical location for a file in the owner's namespace,
// creating the owner directory lazily. MkdirAll is idempotent, so concurrent
// callers for different owners are safe.
func (s *StorageService) Resolve(ownerID uuid.UUID, fileName string) (string, error) {
	if fileName == "" || fileName != filepath.Base(fileName) || strings.Contains(fileName, "..") {
		return "", fmt.Errorf("invalid file name %q", fileName)
	}
	dir := filepath.Join(s.root, ownerID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create owner directory: %w", err)
	}
	return filepath.Join(dir, fileName), nil
}

// SaveStream writes an incoming stream to the owner's namespace. The write
// goes to a temporary .part file first and is renamed into place only after
// a successful sync; any failure removes the partial file.
func (s *StorageService) SaveStream(ctx context.Context, ownerID uuid.UUID, fileName string, r io.Reader) (int64, error) {
	absPath, err := s.Resolve(ownerID, fileName)
	if err != nil {
		return 0, err
	}

	tmp := absPath + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}

	if err := f.Sync(); err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}

	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}

	return n, nil
}

// Delete removes a file from the owner's namespace. Missing files are not an
// error.
func (s *StorageService) Delete(ownerID uuid.UUID, fileName string) error {
	absPath, err := s.Resolve(ownerID, fileName)
	if err != nil {
		return err
	}
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Exists reports whether a file is present in the owner's namespace.
func (s *StorageService) Exists(ownerID uuid.UUID, fileName string) bool {
	absPath, err := s.Resolve(ownerID, fileName)
	if err != nil {
		return false
	}
	_, err = os.Stat(absPath)
	return err == nil
}
