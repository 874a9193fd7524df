package lark

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/markreg/caseflow/internal/application/port"
	"go.uber.org/zap"
)

// Config holds Lark messenger configuration
type Config struct {
	AppID     string
	AppSecret string
}

// Messenger implements port.MessageChannel over the Lark IM API. User IDs in
// the directory double as Lark user IDs.
type Messenger struct {
	client *lark.Client
	logger *zap.Logger
}

// NewMessenger creates a new Lark messenger
func NewMessenger(cfg Config, logger *zap.Logger) *Messenger {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &Messenger{
		client: client,
		logger: logger,
	}
}

// Send delivers a text message to a user
func (m *Messenger) Send(ctx context.Context, userID, title, message string) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}

	content, err := json.Marshal(map[string]string{
		"text": fmt.Sprintf("%s\n%s", title, message),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("user_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(userID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := m.client.Im.Message.Create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to send message",
			zap.String("user_id", userID),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("user_id", userID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	return nil
}

// Verify interface compliance
var _ port.MessageChannel = (*Messenger)(nil)
