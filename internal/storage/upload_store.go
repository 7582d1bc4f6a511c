package storage

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UploadStore writes uploaded invoice/PO files to the local filesystem
// under <baseDir>/DD-MM-YYYY/<sessionID>/<filename>.
type UploadStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewUploadStore creates a new local upload store
func NewUploadStore(baseDir string, logger *zap.Logger) *UploadStore {
	return &UploadStore{baseDir: baseDir, logger: logger}
}

// SaveUpload stores a file and returns its path on disk
func (s *UploadStore) SaveUpload(sessionID, filename string, content []byte) (string, error) {
	cleanName := filepath.Base(filename)
	if cleanName == "." || cleanName == string(filepath.Separator) {
		return "", fmt.Errorf("invalid upload filename: %q", filename)
	}

	day := time.Now().Format("02-01-2006")
	fullPath := filepath.Join(s.baseDir, day, sessionID, cleanName)

	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create upload directory",
			zap.String("path", filepath.Dir(fullPath)), zap.Error(err))
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write upload", zap.String("path", fullPath), zap.Error(err))
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	s.logger.Debug("Upload stored",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))
	return fullPath, nil
}

// validatePath rejects anything that escapes the base directory
func (s *UploadStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes upload directory: %s", fullPath)
	}
	return nil
}

// ValidateConfiguration ensures the base directory exists and is writable.
// Called once at startup; a failure is a warning, not fatal.
func (s *UploadStore) ValidateConfiguration() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("upload directory is not usable: %w", err)
	}
	probe := filepath.Join(s.baseDir, ".write_probe")
	if err := os.WriteFile(probe, nil, 0644); err != nil {
		return fmt.Errorf("upload directory is not writable: %w", err)
	}
	_ = os.Remove(probe)
	return nil
}

// ContentType guesses a MIME type from the file extension, defaulting to
// application/octet-stream.
func ContentType(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
