package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/finchat/invoice-validator/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionRepository handles chat session persistence
type SessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, logger *zap.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

// Create inserts a new session. A missing id or title gets a generated
// uuid and the default title.
func (r *SessionRepository) Create(session *models.ChatSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Title == "" {
		session.Title = models.DefaultSessionTitle
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO chat_sessions (id, title, invoice_result_id, created_at, updated_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?)`,
		session.ID, session.Title, session.InvoiceResultID, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create session", zap.Error(err))
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by id
func (r *SessionRepository) GetByID(id string) (*models.ChatSession, error) {
	row := r.db.QueryRow(`
		SELECT id, title, COALESCE(invoice_result_id, ''), created_at, updated_at
		FROM chat_sessions WHERE id = ?`, id)

	var session models.ChatSession
	err := row.Scan(&session.ID, &session.Title, &session.InvoiceResultID,
		&session.CreatedAt, &session.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get session", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// List returns all sessions, most recently active first
func (r *SessionRepository) List() ([]*models.ChatSession, error) {
	rows, err := r.db.Query(`
		SELECT id, title, COALESCE(invoice_result_id, ''), created_at, updated_at
		FROM chat_sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.ChatSession
	for rows.Next() {
		var session models.ChatSession
		if err := rows.Scan(&session.ID, &session.Title, &session.InvoiceResultID,
			&session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

// AttachResult links a validation result to a session. The link is set at
// most once; a second attach fails with ErrResultAlreadyAttached.
func (r *SessionRepository) AttachResult(sessionID, resultID string) error {
	result, err := r.db.Exec(`
		UPDATE chat_sessions
		SET invoice_result_id = ?, updated_at = ?
		WHERE id = ? AND invoice_result_id IS NULL`,
		resultID, time.Now().UTC(), sessionID,
	)
	if err != nil {
		r.logger.Error("Failed to attach result", zap.String("session_id", sessionID), zap.Error(err))
		return fmt.Errorf("failed to attach result: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check attach result: %w", err)
	}
	if affected == 0 {
		if _, err := r.GetByID(sessionID); err != nil {
			return err
		}
		return ErrResultAlreadyAttached
	}
	return nil
}

// Touch bumps a session's updated_at
func (r *SessionRepository) Touch(sessionID string) error {
	result, err := r.db.Exec(
		"UPDATE chat_sessions SET updated_at = ? WHERE id = ?",
		time.Now().UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check touch result: %w", err)
	}
	if affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
