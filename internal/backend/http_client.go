package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HTTPClient talks to the validation backend over HTTP multipart
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient creates a validation client against the given base URL
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Validate posts the documents and decodes the validation payload
func (c *HTTPClient) Validate(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writeFilePart(writer, "invoice", req.InvoiceName, req.InvoiceContent); err != nil {
		return nil, err
	}
	if req.HasPo {
		if err := writeFilePart(writer, "po", req.PoName, req.PoContent); err != nil {
			return nil, err
		}
	}
	_ = writer.WriteField("session_id", req.SessionID)
	_ = writer.WriteField("checklist_option", req.ChecklistOption)
	_ = writer.WriteField("has_po", strconv.FormatBool(req.HasPo))

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/validate", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build validation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Info("Submitting upload to validation backend",
		zap.String("session_id", req.SessionID),
		zap.String("checklist_option", req.ChecklistOption),
		zap.Bool("has_po", req.HasPo))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("Validation backend call failed", zap.Error(err))
		return nil, fmt.Errorf("validation backend call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("validation backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode validation response: %w", err)
	}
	if result.Payload == nil {
		return nil, fmt.Errorf("validation response carried no payload")
	}
	return &result, nil
}

func writeFilePart(writer *multipart.Writer, field, name string, content []byte) error {
	part, err := writer.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("failed to create %s form part: %w", field, err)
	}
	if _, err := part.Write(content); err != nil {
		return fmt.Errorf("failed to write %s content: %w", field, err)
	}
	return nil
}
