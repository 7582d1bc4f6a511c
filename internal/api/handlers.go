package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/finchat/invoice-validator/internal/export"
	"github.com/finchat/invoice-validator/internal/models"
	"github.com/finchat/invoice-validator/internal/repository"
	"github.com/finchat/invoice-validator/internal/service"
	"github.com/finchat/invoice-validator/pkg/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the chat service over HTTP
type Handler struct {
	chat     *service.ChatService
	exporter *export.ExcelExporter
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(chat *service.ChatService, exporter *export.ExcelExporter, logger *zap.Logger) *Handler {
	return &Handler{chat: chat, exporter: exporter, logger: logger}
}

type createSessionRequest struct {
	Title string `json:"title"`
}

// CreateSession starts a new chat session
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := h.chat.CreateSession(utils.SanitizeString(req.Title))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// ListSessions returns all sessions, most recently active first
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.chat.ListSessions()
	if err != nil {
		h.fail(c, err)
		return
	}
	if sessions == nil {
		sessions = []*models.ChatSession{}
	}
	c.JSON(http.StatusOK, sessions)
}

// GetMessages returns a session's transcript
func (h *Handler) GetMessages(c *gin.Context) {
	messages, err := h.chat.GetTranscript(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if messages == nil {
		messages = []*models.ChatMessage{}
	}
	c.JSON(http.StatusOK, messages)
}

type appendMessageRequest struct {
	Role    string          `json:"role" binding:"required"`
	Message string          `json:"message" binding:"required"`
	Type    string          `json:"type" binding:"required"`
	Payload json.RawMessage `json:"payload"`
}

// AppendMessage adds a message to a session transcript
func (h *Handler) AppendMessage(c *gin.Context) {
	var req appendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateRole(req.Role); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg := &models.ChatMessage{
		SessionID: c.Param("id"),
		Role:      req.Role,
		Message:   utils.SanitizeString(req.Message),
		Type:      models.MessageType(req.Type),
		Payload:   req.Payload,
	}
	if err := h.chat.AppendMessage(msg); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Upload accepts an invoice (and optional PO) and runs the validation flow
func (h *Handler) Upload(c *gin.Context) {
	sessionID := c.Param("id")
	checklist := c.PostForm("checklist_option")

	invoiceHeader, err := c.FormFile("invoice")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoice file is required"})
		return
	}
	invoice, err := readUpload(invoiceHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var po *service.FileUpload
	if poHeader, err := c.FormFile("po"); err == nil {
		poFile, err := readUpload(poHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		po = poFile
	}

	resultID, payload, err := h.chat.SubmitUpload(c.Request.Context(), sessionID, checklist, *invoice, po)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result_id": resultID,
		"payload":   payload,
	})
}

type chatRequest struct {
	SessionID       string `json:"session_id" binding:"required"`
	Message         string `json:"message" binding:"required"`
	InvoiceResultID string `json:"invoice_result_id"`
}

// Chat handles a follow-up query about a validation result
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateID(req.SessionID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.chat.Ask(c.Request.Context(), req.SessionID, req.InvoiceResultID,
		utils.SanitizeString(req.Message))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// GetReport renders the stored validation payload as a report
func (h *Handler) GetReport(c *gin.Context) {
	rpt, err := h.chat.GetReport(c.Param("resultId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rpt)
}

// ExportReport downloads the report as an Excel workbook
func (h *Handler) ExportReport(c *gin.Context) {
	rpt, err := h.chat.GetReport(c.Param("resultId"))
	if err != nil {
		h.fail(c, err)
		return
	}

	buf, err := h.exporter.Export(rpt)
	if err != nil {
		h.fail(c, err)
		return
	}

	filename := fmt.Sprintf("validation-report-%s.xlsx", c.Param("resultId"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// fail maps service errors onto HTTP statuses
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrResultNotFound),
		errors.Is(err, service.ErrNoResultID):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOperationInFlight),
		errors.Is(err, repository.ErrResultAlreadyAttached):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func readUpload(header *multipart.FileHeader) (*service.FileUpload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %q: %w", header.Filename, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %q: %w", header.Filename, err)
	}
	return &service.FileUpload{Name: header.Filename, Content: content}, nil
}
