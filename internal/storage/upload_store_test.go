package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaveUpload_DatePartitionedLayout(t *testing.T) {
	base := t.TempDir()
	store := NewUploadStore(base, zap.NewNop())

	path, err := store.SaveUpload("session-1", "invoice.pdf", []byte("%PDF-1.4 data"))
	require.NoError(t, err)

	day := time.Now().Format("02-01-2006")
	assert.Equal(t, filepath.Join(base, day, "session-1", "invoice.pdf"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 data"), content)
}

func TestSaveUpload_StripsDirectoryComponents(t *testing.T) {
	base := t.TempDir()
	store := NewUploadStore(base, zap.NewNop())

	path, err := store.SaveUpload("session-1", "../../etc/passwd", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "passwd", filepath.Base(path))

	day := time.Now().Format("02-01-2006")
	assert.Equal(t, filepath.Join(base, day, "session-1", "passwd"), path)
}

func TestSaveUpload_RejectsEmptyFilename(t *testing.T) {
	store := NewUploadStore(t.TempDir(), zap.NewNop())

	_, err := store.SaveUpload("session-1", ".", []byte("x"))
	assert.Error(t, err)
}

func TestValidateConfiguration(t *testing.T) {
	base := filepath.Join(t.TempDir(), "uploads")
	store := NewUploadStore(base, zap.NewNop())

	require.NoError(t, store.ValidateConfiguration())

	// The directory now exists and is empty again after the write probe
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("invoice.pdf"))
	assert.Equal(t, "application/pdf", ContentType("INVOICE.PDF"))
	assert.Equal(t, "application/octet-stream", ContentType("mystery.invoice"))
}
