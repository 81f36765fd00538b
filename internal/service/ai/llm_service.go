package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"

	"github.com/finalyzer/support/backend/internal/config"
	"github.com/finalyzer/support/backend/internal/model/profile"
	"github.com/finalyzer/support/backend/internal/service/reply"
)

// Service answers chat messages with an Ark model instead of the webhook.
type Service struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	logger logrus.FieldLogger
}

// NewService creates the chat model from cfg and compiles the chain.
func NewService(ctx context.Context, cfg config.AIConfig, logger logrus.FieldLogger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newService(ctx, chatModel, logger)
}

func newService(ctx context.Context, chatModel model.BaseChatModel, logger logrus.FieldLogger) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chain: runnable, logger: logger}, nil
}

// Reply runs the chain once. Model errors become the connectivity text.
func (s *Service) Reply(ctx context.Context, text string, p *profile.UserProfile) reply.Result {
	input := map[string]any{
		"system": BuildSystemPrompt(p),
		"query":  text,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		s.logger.WithError(err).Warn("chat model request failed")
		return reply.Reject(reply.ConnectivityText, fmt.Errorf("failed to run AI chain: %w", err))
	}

	content := ""
	if response != nil {
		content = strings.TrimSpace(response.Content)
	}
	if content == "" {
		return reply.Reject(reply.FallbackText, fmt.Errorf("chat model returned empty content"))
	}

	s.logger.WithField("length", len(content)).Debug("generated model reply")
	return reply.Accept(content)
}
