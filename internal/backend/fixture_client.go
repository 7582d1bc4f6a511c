package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/finchat/invoice-validator/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FixtureClient serves validation payloads from JSON files on disk. It is
// a demo/test seam chosen only by explicit configuration, never inferred
// from the uploaded files. It looks for payload.json first under a
// DD-MM-YYYY subdirectory (matching the upload partitioning), then at the
// fixture root.
type FixtureClient struct {
	dir    string
	logger *zap.Logger
}

// NewFixtureClient creates a fixture-backed validation client
func NewFixtureClient(dir string, logger *zap.Logger) *FixtureClient {
	return &FixtureClient{dir: dir, logger: logger}
}

// Validate loads the fixture payload; the uploaded content is ignored
func (c *FixtureClient) Validate(_ context.Context, req UploadRequest) (*UploadResult, error) {
	day := time.Now().Format("02-01-2006")
	candidates := []string{
		filepath.Join(c.dir, day, "payload.json"),
		filepath.Join(c.dir, "payload.json"),
	}

	var raw []byte
	var err error
	var loaded string
	for _, path := range candidates {
		raw, err = os.ReadFile(path)
		if err == nil {
			loaded = path
			break
		}
	}
	if loaded == "" {
		return nil, fmt.Errorf("no fixture payload found under %s: %w", c.dir, err)
	}

	var payload models.ValidationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode fixture payload %s: %w", loaded, err)
	}

	c.logger.Info("Served fixture validation payload",
		zap.String("path", loaded),
		zap.String("session_id", req.SessionID))

	return &UploadResult{
		ResultID: uuid.NewString(),
		Payload:  &payload,
	}, nil
}
