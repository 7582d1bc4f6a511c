package upload

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/finchat/invoice-validator/internal/storage"
	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// FileInfo describes an uploaded document after probing
type FileInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	PageCount   int    `json:"page_count,omitempty"`
}

var pdfMagic = []byte("%PDF")

// Prober validates uploaded files before they are submitted for
// validation. PDFs are opened with mupdf to confirm they are readable;
// an unreadable document fails here instead of deep in the backend.
type Prober struct {
	logger *zap.Logger
}

// NewProber creates a new upload prober
func NewProber(logger *zap.Logger) *Prober {
	return &Prober{logger: logger}
}

// Probe inspects an uploaded file and returns its metadata
func (p *Prober) Probe(name string, content []byte) (*FileInfo, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("uploaded file %q is empty", name)
	}

	info := &FileInfo{
		Name:        filepath.Base(name),
		ContentType: storage.ContentType(name),
		Size:        len(content),
	}

	if isPDF(name, content) {
		doc, err := fitz.NewFromMemory(content)
		if err != nil {
			p.logger.Warn("Unreadable PDF upload", zap.String("name", name), zap.Error(err))
			return nil, fmt.Errorf("uploaded file %q is not a readable PDF: %w", name, err)
		}
		defer doc.Close()

		info.PageCount = doc.NumPage()
		if info.PageCount == 0 {
			return nil, fmt.Errorf("uploaded file %q has no pages", name)
		}
	}

	p.logger.Debug("Upload probed",
		zap.String("name", info.Name),
		zap.String("content_type", info.ContentType),
		zap.Int("size", info.Size),
		zap.Int("pages", info.PageCount))
	return info, nil
}

func isPDF(name string, content []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return true
	}
	return bytes.HasPrefix(content, pdfMagic)
}
