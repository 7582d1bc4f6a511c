// Package notify pushes a heads-up to a human reviewer when a validation
// comes back rejected. Notification failures never fail the upload flow.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/finchat/invoice-validator/internal/models"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// Config holds Lark notification configuration
type Config struct {
	AppID         string
	AppSecret     string
	ReviewerEmail string
}

// ReviewerNotifier sends rejected-validation notices over Lark
type ReviewerNotifier struct {
	client        *lark.Client
	reviewerEmail string
	logger        *zap.Logger
}

// NewReviewerNotifier creates a notifier, or nil when unconfigured. A nil
// notifier is valid and sends nothing.
func NewReviewerNotifier(cfg Config, logger *zap.Logger) *ReviewerNotifier {
	if cfg.AppID == "" {
		return nil
	}
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)
	return &ReviewerNotifier{
		client:        client,
		reviewerEmail: cfg.ReviewerEmail,
		logger:        logger,
	}
}

// NotifyRejected tells the reviewer that an invoice failed validation
func (n *ReviewerNotifier) NotifyRejected(ctx context.Context, payload *models.ValidationPayload, resultID string) error {
	text := fmt.Sprintf(
		"Invoice %s was rejected by validation (checklist: %s). Result id: %s. %s",
		payload.InvoiceNumber, payload.SelectedChecklistOption, resultID, payload.SummaryMessage,
	)

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal notification content: %w", err)
	}

	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType("email").
		Body(larkIm.NewCreateMessageReqBodyBuilder().
			ReceiveId(n.reviewerEmail).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send reviewer notification", zap.Error(err))
		return fmt.Errorf("failed to send reviewer notification: %w", err)
	}
	if !resp.Success() {
		n.logger.Error("Lark API returned failure",
			zap.Int("code", resp.Code), zap.String("msg", resp.Msg))
		return fmt.Errorf("lark API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	n.logger.Info("Reviewer notified of rejected invoice",
		zap.String("invoice_number", payload.InvoiceNumber),
		zap.String("result_id", resultID))
	return nil
}
