package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/markreg/caseflow/internal/application/port"
	"go.uber.org/zap"
)

// LocalFileStorage implements port.FileStorage on the local filesystem.
// Store generates an opaque reference; callers persist the reference, never
// the path.
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage
func NewLocalFileStorage(baseDir string, logger *zap.Logger) port.FileStorage {
	return &LocalFileStorage{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Store writes content under a generated reference and returns it
func (s *LocalFileStorage) Store(ctx context.Context, fileName string, content []byte) (string, error) {
	ref, err := newRef(fileName)
	if err != nil {
		return "", err
	}
	fullPath := s.fullPath(ref)

	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create storage directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File stored",
		zap.String("ref", ref),
		zap.Int("size", len(content)))

	return ref, nil
}

// Read returns the content behind a reference
func (s *LocalFileStorage) Read(ctx context.Context, ref string) ([]byte, error) {
	fullPath := s.fullPath(ref)

	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		s.logger.Error("Failed to read file",
			zap.String("ref", ref),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return content, nil
}

// Exists checks whether a reference resolves to a stored file
func (s *LocalFileStorage) Exists(ctx context.Context, ref string) bool {
	_, err := os.Stat(s.fullPath(ref))
	return err == nil
}

// Delete removes the file behind a reference. Deleting a missing file is a
// no-op.
func (s *LocalFileStorage) Delete(ctx context.Context, ref string) error {
	fullPath := s.fullPath(ref)

	if err := s.validatePath(fullPath); err != nil {
		return err
	}

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(fullPath); err != nil {
		s.logger.Error("Failed to delete file",
			zap.String("ref", ref),
			zap.Error(err))
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

func (s *LocalFileStorage) fullPath(ref string) string {
	return filepath.Join(s.baseDir, ref)
}

// validatePath checks that the path stays within baseDir
func (s *LocalFileStorage) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}

// newRef builds a date-partitioned reference with a random component so two
// uploads of the same file never collide.
func newRef(fileName string) (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reference: %w", err)
	}

	base := filepath.Base(fileName)
	if base == "." || base == string(filepath.Separator) {
		base = "file"
	}

	now := time.Now()
	return filepath.Join(
		now.Format("2006"), now.Format("01"),
		hex.EncodeToString(buf)+"_"+base,
	), nil
}
