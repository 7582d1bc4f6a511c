package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/finchat/invoice-validator/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResultRepository persists validation payloads keyed by result id.
// Payloads are immutable: there is no update path.
type ResultRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewResultRepository creates a new result repository
func NewResultRepository(db *sql.DB, logger *zap.Logger) *ResultRepository {
	return &ResultRepository{db: db, logger: logger}
}

// Save stores a payload and returns its result id (generating one when
// the backend did not supply one).
func (r *ResultRepository) Save(resultID, sessionID string, payload *models.ValidationPayload) (string, error) {
	if resultID == "" {
		resultID = uuid.NewString()
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO validation_results (id, session_id, invoice_number, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		resultID, sessionID, payload.InvoiceNumber, string(raw), time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to save validation result",
			zap.String("result_id", resultID), zap.Error(err))
		return "", fmt.Errorf("failed to save validation result: %w", err)
	}
	return resultID, nil
}

// Get retrieves a payload by result id
func (r *ResultRepository) Get(resultID string) (*models.ValidationPayload, error) {
	var raw string
	err := r.db.QueryRow(
		"SELECT payload FROM validation_results WHERE id = ?", resultID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrResultNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get validation result",
			zap.String("result_id", resultID), zap.Error(err))
		return nil, fmt.Errorf("failed to get validation result: %w", err)
	}

	var payload models.ValidationPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored payload: %w", err)
	}
	return &payload, nil
}
