package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/markreg/caseflow/internal/application/port"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Advisor implements port.BrandAdvisor using OpenAI. The advisory is a
// non-binding note for the checker; the brand review decision stays human.
type Advisor struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// NewAdvisor creates a new OpenAI brand advisor
func NewAdvisor(apiKey, model string, temperature float32, logger *zap.Logger) *Advisor {
	return &Advisor{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

// Advise produces a short distinctiveness and conflict-risk note for a brand
func (a *Advisor) Advise(ctx context.Context, brandName string, classes []int) (string, error) {
	a.logger.Debug("Requesting brand advisory",
		zap.String("brand", brandName),
		zap.Ints("classes", classes))

	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a trademark pre-filing analyst. Given a brand name and Nice classification classes, write a short plain-text note (under 120 words) on distinctiveness, descriptiveness and likely conflict risks. Do not give a registration verdict.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: a.buildPrompt(brandName, classes),
			},
		},
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		a.logger.Error("OpenAI API call failed", zap.Error(err))
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	note := strings.TrimSpace(resp.Choices[0].Message.Content)
	if note == "" {
		return "", fmt.Errorf("empty advisory from OpenAI")
	}

	a.logger.Info("Brand advisory completed", zap.String("brand", brandName))
	return note, nil
}

func (a *Advisor) buildPrompt(brandName string, classes []int) string {
	parts := make([]string, len(classes))
	for i, cl := range classes {
		parts[i] = fmt.Sprintf("%d", cl)
	}
	return fmt.Sprintf("Brand name: %s\nNice classes: %s", brandName, strings.Join(parts, ", "))
}

// Verify interface compliance
var _ port.BrandAdvisor = (*Advisor)(nil)
