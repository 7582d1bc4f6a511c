package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/finchat/invoice-validator/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MessageRepository handles chat message persistence
type MessageRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *sql.DB, logger *zap.Logger) *MessageRepository {
	return &MessageRepository{db: db, logger: logger}
}

// Append adds a message to a session's transcript
func (r *MessageRepository) Append(msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	var payload interface{}
	if len(msg.Payload) > 0 {
		payload = string(msg.Payload)
	}

	_, err := r.db.Exec(`
		INSERT INTO chat_messages (id, session_id, role, message, type, payload, result_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?)`,
		msg.ID, msg.SessionID, msg.Role, msg.Message, msg.Type.String(),
		payload, msg.ResultID, msg.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to append message",
			zap.String("session_id", msg.SessionID), zap.Error(err))
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListBySession returns a session's transcript in chronological order
func (r *MessageRepository) ListBySession(sessionID string) ([]*models.ChatMessage, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, role, message, type,
		       COALESCE(payload, ''), COALESCE(result_id, ''), timestamp
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY timestamp ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		var msgType, payload string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Message,
			&msgType, &payload, &msg.ResultID, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Type = models.MessageType(msgType)
		if payload != "" {
			msg.Payload = []byte(payload)
		}
		messages = append(messages, &msg)
	}
	return messages, rows.Err()
}

// Delete removes a message. The upload flow uses this to clear the
// loading placeholder before the result or error message lands.
func (r *MessageRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM chat_messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// Tx variants let the upload flow replace the loading placeholder and
// append the outcome atomically.

// AppendTx is Append inside an existing transaction
func (r *MessageRepository) AppendTx(tx *sql.Tx, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	var payload interface{}
	if len(msg.Payload) > 0 {
		payload = string(msg.Payload)
	}

	_, err := tx.Exec(`
		INSERT INTO chat_messages (id, session_id, role, message, type, payload, result_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?)`,
		msg.ID, msg.SessionID, msg.Role, msg.Message, msg.Type.String(),
		payload, msg.ResultID, msg.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// DeleteTx is Delete inside an existing transaction; a missing row is not
// an error here since the placeholder may never have been written.
func (r *MessageRepository) DeleteTx(tx *sql.Tx, id string) error {
	if id == "" {
		return nil
	}
	if _, err := tx.Exec("DELETE FROM chat_messages WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
