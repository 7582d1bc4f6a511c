package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/finchat/invoice-validator/internal/assistant"
	"github.com/finchat/invoice-validator/internal/backend"
	"github.com/finchat/invoice-validator/internal/models"
	"github.com/finchat/invoice-validator/internal/notify"
	"github.com/finchat/invoice-validator/internal/report"
	"github.com/finchat/invoice-validator/internal/repository"
	"github.com/finchat/invoice-validator/internal/session"
	"github.com/finchat/invoice-validator/internal/storage"
	"github.com/finchat/invoice-validator/internal/upload"
	"github.com/finchat/invoice-validator/pkg/database"
	"go.uber.org/zap"
)

const welcomeMessage = "Welcome! Upload an invoice (and optionally a purchase order) " +
	"and I will validate it against your checklist."

// FileUpload is one uploaded document
type FileUpload struct {
	Name    string
	Content []byte
}

// ChatService orchestrates sessions, uploads, validation results, and
// follow-up queries. All mutation of a session's transcript funnels
// through here, serialized per session.
type ChatService struct {
	db        *database.DB
	sessions  *repository.SessionRepository
	messages  *repository.MessageRepository
	results   *repository.ResultRepository
	store     *storage.UploadStore
	prober    *upload.Prober
	validator backend.ValidationClient
	assistant *assistant.Assistant
	notifier  *notify.ReviewerNotifier
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewChatService creates the chat service. assistant and notifier may be
// nil; the corresponding features degrade gracefully.
func NewChatService(
	db *database.DB,
	sessions *repository.SessionRepository,
	messages *repository.MessageRepository,
	results *repository.ResultRepository,
	store *storage.UploadStore,
	prober *upload.Prober,
	validator backend.ValidationClient,
	asst *assistant.Assistant,
	notifier *notify.ReviewerNotifier,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		db:        db,
		sessions:  sessions,
		messages:  messages,
		results:   results,
		store:     store,
		prober:    prober,
		validator: validator,
		assistant: asst,
		notifier:  notifier,
		logger:    logger,
		inFlight:  make(map[string]bool),
	}
}

// acquire marks a session busy; the caller must release. Overlapping
// submits are refused, not queued (spec: a new action that depends on a
// prior result waits for it).
func (s *ChatService) acquire(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[sessionID] {
		return ErrOperationInFlight
	}
	s.inFlight[sessionID] = true
	return nil
}

func (s *ChatService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}

// CreateSession starts a new chat session with a welcome message
func (s *ChatService) CreateSession(title string) (*models.ChatSession, error) {
	sess := &models.ChatSession{Title: title}
	if err := s.sessions.Create(sess); err != nil {
		return nil, err
	}

	welcome := &models.ChatMessage{
		SessionID: sess.ID,
		Role:      models.RoleAssistant,
		Message:   welcomeMessage,
		Type:      models.MessageWelcome,
	}
	if err := s.messages.Append(welcome); err != nil {
		return nil, err
	}

	s.logger.Info("Session created", zap.String("session_id", sess.ID))
	return sess, nil
}

// ListSessions returns all sessions, most recently active first
func (s *ChatService) ListSessions() ([]*models.ChatSession, error) {
	return s.sessions.List()
}

// GetTranscript returns a session's messages in order
func (s *ChatService) GetTranscript(sessionID string) ([]*models.ChatMessage, error) {
	if _, err := s.sessions.GetByID(sessionID); err != nil {
		return nil, err
	}
	return s.messages.ListBySession(sessionID)
}

// AppendMessage adds an arbitrary message to a transcript
func (s *ChatService) AppendMessage(msg *models.ChatMessage) error {
	if !msg.Type.IsValid() {
		return fmt.Errorf("invalid message type: %s", msg.Type)
	}
	if _, err := s.sessions.GetByID(msg.SessionID); err != nil {
		return err
	}
	if err := s.messages.Append(msg); err != nil {
		return err
	}
	return s.sessions.Touch(msg.SessionID)
}

// SubmitUpload runs the full upload flow: probe and store the files, call
// the validation backend, and land either a validation_result message or
// an error message in the transcript. The loading placeholder is always
// removed in the same transaction that appends the outcome.
func (s *ChatService) SubmitUpload(ctx context.Context, sessionID, checklistOption string, invoice FileUpload, po *FileUpload) (string, *models.ValidationPayload, error) {
	if err := s.acquire(sessionID); err != nil {
		return "", nil, err
	}
	defer s.release(sessionID)

	sess, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return "", nil, err
	}

	machine := session.NewMachine(session.StateForSession(sess.InvoiceResultID != ""))
	if !machine.CanFire(session.TriggerAttachResult) {
		return "", nil, repository.ErrResultAlreadyAttached
	}

	invoiceInfo, err := s.prober.Probe(invoice.Name, invoice.Content)
	if err != nil {
		return "", nil, err
	}
	var poInfo *upload.FileInfo
	if po != nil {
		if poInfo, err = s.prober.Probe(po.Name, po.Content); err != nil {
			return "", nil, err
		}
	}

	if _, err := s.store.SaveUpload(sessionID, invoice.Name, invoice.Content); err != nil {
		return "", nil, err
	}
	if po != nil {
		if _, err := s.store.SaveUpload(sessionID, po.Name, po.Content); err != nil {
			return "", nil, err
		}
	}

	if err := s.appendUploadMessages(sessionID, invoiceInfo, poInfo); err != nil {
		return "", nil, err
	}

	placeholder := &models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Message:   "Validating your documents...",
		Type:      models.MessageLoading,
	}
	if err := s.messages.Append(placeholder); err != nil {
		return "", nil, err
	}

	result, err := s.validator.Validate(ctx, backend.UploadRequest{
		SessionID:       sessionID,
		ChecklistOption: checklistOption,
		InvoiceName:     invoice.Name,
		InvoiceContent:  invoice.Content,
		PoName:          poName(po),
		PoContent:       poContent(po),
		HasPo:           po != nil,
	})
	if err != nil {
		s.failUpload(sessionID, placeholder.ID, err)
		return "", nil, err
	}

	resultID, err := s.results.Save(result.ResultID, sessionID, result.Payload)
	if err != nil {
		s.failUpload(sessionID, placeholder.ID, err)
		return "", nil, err
	}

	payloadJSON, err := json.Marshal(result.Payload)
	if err != nil {
		s.failUpload(sessionID, placeholder.ID, err)
		return "", nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = s.db.WithTransaction(func(tx *sql.Tx) error {
		if err := s.messages.DeleteTx(tx, placeholder.ID); err != nil {
			return err
		}
		return s.messages.AppendTx(tx, &models.ChatMessage{
			SessionID: sessionID,
			Role:      models.RoleAssistant,
			Message:   result.Payload.SummaryMessage,
			Type:      models.MessageValidationResult,
			Payload:   payloadJSON,
			ResultID:  resultID,
		})
	})
	if err != nil {
		return "", nil, err
	}

	if err := s.sessions.AttachResult(sessionID, resultID); err != nil {
		return "", nil, err
	}
	if err := machine.Fire(session.TriggerAttachResult); err != nil {
		// Unreachable given the CanFire check above, but keep the machine
		// honest about the transition it just witnessed.
		s.logger.Warn("Session state transition refused", zap.Error(err))
	}

	if s.notifier != nil && result.Payload.InvoiceValidationStatus == models.StatusRejected {
		if err := s.notifier.NotifyRejected(ctx, result.Payload, resultID); err != nil {
			s.logger.Warn("Reviewer notification failed", zap.Error(err))
		}
	}

	s.logger.Info("Upload validated",
		zap.String("session_id", sessionID),
		zap.String("result_id", resultID),
		zap.String("status", string(result.Payload.InvoiceValidationStatus)))
	return resultID, result.Payload, nil
}

func (s *ChatService) appendUploadMessages(sessionID string, invoiceInfo, poInfo *upload.FileInfo) error {
	infos := []*upload.FileInfo{invoiceInfo}
	if poInfo != nil {
		infos = append(infos, poInfo)
	}
	meta, err := json.Marshal(infos)
	if err != nil {
		return fmt.Errorf("failed to marshal upload metadata: %w", err)
	}

	text := "Uploaded " + invoiceInfo.Name
	if poInfo != nil {
		text += " and " + poInfo.Name
	}
	return s.messages.Append(&models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleUser,
		Message:   text,
		Type:      models.MessageFileUpload,
		Payload:   meta,
	})
}

// failUpload replaces the loading placeholder with an inline error
// message. The placeholder must never outlive the operation.
func (s *ChatService) failUpload(sessionID, placeholderID string, cause error) {
	err := s.db.WithTransaction(func(tx *sql.Tx) error {
		if err := s.messages.DeleteTx(tx, placeholderID); err != nil {
			return err
		}
		return s.messages.AppendTx(tx, &models.ChatMessage{
			SessionID: sessionID,
			Role:      models.RoleAssistant,
			Message:   "Validation failed: " + cause.Error() + ". Please try uploading again.",
			Type:      models.MessageError,
		})
	})
	if err != nil {
		s.logger.Error("Failed to record upload failure",
			zap.String("session_id", sessionID), zap.Error(err))
	}
}

// GetReport fetches a stored payload and renders it. An empty result id
// is the recoverable "no data for this report" state.
func (s *ChatService) GetReport(resultID string) (*report.Report, error) {
	payload, err := s.GetPayload(resultID)
	if err != nil {
		return nil, err
	}
	rpt := report.Render(payload)
	return &rpt, nil
}

// GetPayload fetches a stored validation payload by result id
func (s *ChatService) GetPayload(resultID string) (*models.ValidationPayload, error) {
	if resultID == "" {
		return nil, ErrNoResultID
	}
	return s.results.Get(resultID)
}

// Ask handles a follow-up chat query: the question and the answer both
// land in the transcript. Without a configured assistant, a canned reply
// explains the limitation.
func (s *ChatService) Ask(ctx context.Context, sessionID, resultID, question string) (string, error) {
	if err := s.acquire(sessionID); err != nil {
		return "", err
	}
	defer s.release(sessionID)

	sess, err := s.sessions.GetByID(sessionID)
	if err != nil {
		return "", err
	}
	if resultID == "" {
		resultID = sess.InvoiceResultID
	}

	if err := s.messages.Append(&models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleUser,
		Message:   question,
		Type:      models.MessageText,
	}); err != nil {
		return "", err
	}

	var rpt *report.Report
	if resultID != "" {
		payload, err := s.results.Get(resultID)
		if err == nil {
			rendered := report.Render(payload)
			rpt = &rendered
		} else {
			s.logger.Warn("Could not load result for follow-up query",
				zap.String("result_id", resultID), zap.Error(err))
		}
	}

	answer := "I don't have an assistant configured, so I can only show you the " +
		"validation report itself. Open the report view for details."
	if s.assistant != nil {
		answer, err = s.assistant.Answer(ctx, question, rpt)
		if err != nil {
			s.failQuery(sessionID, err)
			return "", err
		}
	}

	if err := s.messages.Append(&models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Message:   answer,
		Type:      models.MessageText,
	}); err != nil {
		return "", err
	}
	if err := s.sessions.Touch(sessionID); err != nil {
		s.logger.Warn("Failed to touch session", zap.Error(err))
	}
	return answer, nil
}

func (s *ChatService) failQuery(sessionID string, cause error) {
	if err := s.messages.Append(&models.ChatMessage{
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Message:   "Sorry, I could not answer that: " + cause.Error(),
		Type:      models.MessageError,
	}); err != nil {
		s.logger.Error("Failed to record query failure", zap.Error(err))
	}
}

func poName(po *FileUpload) string {
	if po == nil {
		return ""
	}
	return po.Name
}

func poContent(po *FileUpload) []byte {
	if po == nil {
		return nil
	}
	return po.Content
}
