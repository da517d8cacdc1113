// Package openai provides a completion provider backed by the OpenAI Chat
// Completions API. It adapts Athir's normalized Request messages into the
// SDK's message format.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/athir-ai/athir/model"
)

// Options configure the OpenAI completion adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
}

// Completion wraps the OpenAI Chat Completions API behind the generic
// model.Completion interface.
type Completion struct {
	client *openai.Client
	opts   Options
}

// NewCompletion creates a new OpenAI completion provider using the official client.
func NewCompletion(optFns ...func(o *Options)) *Completion {
	opts := Options{
		Model:               string(openai.ChatModelGPT4oMini),
		Temperature:         0.4,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := openai.NewClient(clientOpts...)

	return &Completion{client: &client, opts: opts}
}

// NewCompletionFromClient creates a new OpenAI completion provider from an existing client.
func NewCompletionFromClient(client *openai.Client, optFns ...func(o *Options)) *Completion {
	opts := Options{
		Model:               string(openai.ChatModelGPT4oMini),
		Temperature:         0.4,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Completion{client: client, opts: opts}
}

// Complete implements model.Completion via a single non-streaming chat completion.
func (c *Completion) Complete(ctx context.Context, req model.Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case model.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case model.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	temperature := c.opts.Temperature
	if req.Temperature != 0 {
		temperature = req.Temperature
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               openai.ChatModel(c.opts.Model),
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Info implements model.Completion.
func (c *Completion) Info() model.Info {
	return model.Info{Name: c.opts.Model, Provider: "openai"}
}
