package translate

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultClaudeModel = "claude-3-haiku-20240307"

// Claude 通过 Anthropic Messages API 做翻译或摘要
type Claude struct {
	client *anthropic.Client
	model  anthropic.Model
	task   Task
	log    *slog.Logger
}

func NewClaude(apiKey, model string, task Task, log *slog.Logger, opts ...option.RequestOption) *Claude {
	if model == "" {
		model = DefaultClaudeModel
	}
	if log == nil {
		log = slog.Default()
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(opts...)
	return &Claude{
		client: &client,
		model:  anthropic.Model(model),
		task:   task,
		log:    log,
	}
}

func (c *Claude) Transform(ctx context.Context, text string) string {
	text = clip(text, maxInputRunes)
	if text == "" {
		return ""
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   defaultMaxToken,
		Temperature: anthropic.Float(defaultTemp),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(c.task.prompt(text))),
		},
	})
	if err != nil {
		return logFailure(c.log, "claude", c.task, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}
	out := cleanOutput(sb.String())
	if out == "" {
		return logFailure(c.log, "claude", c.task, errors.New("empty response"))
	}
	return out
}
