package translate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI 通过 Chat Completions 做翻译或摘要
type OpenAI struct {
	client *openai.Client
	model  openai.ChatModel
	task   Task
	log    *slog.Logger
}

func NewOpenAI(apiKey, model string, task Task, log *slog.Logger, opts ...option.RequestOption) *OpenAI {
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	if log == nil {
		log = slog.Default()
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAI{
		client: &client,
		model:  openai.ChatModel(model),
		task:   task,
		log:    log,
	}
}

func (o *OpenAI) Transform(ctx context.Context, text string) string {
	text = clip(text, maxInputRunes)
	if text == "" {
		return ""
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               o.model,
		MaxCompletionTokens: openai.Int(defaultMaxToken),
		Temperature:         openai.Float(defaultTemp),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(o.task.prompt(text)),
		},
	})
	if err != nil {
		return logFailure(o.log, "openai", o.task, err)
	}
	if len(resp.Choices) == 0 {
		return logFailure(o.log, "openai", o.task, errors.New("no choices in response"))
	}

	out := cleanOutput(resp.Choices[0].Message.Content)
	if out == "" {
		return logFailure(o.log, "openai", o.task, errors.New("empty response"))
	}
	return out
}
