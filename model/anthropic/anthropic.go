// Package anthropic provides a completion provider backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/athir-ai/athir/model"
)

// Options configures the Anthropic completion adapter (temperature, model id,
// max tokens, API key). Extend via functional options to preserve stability.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Completion wraps the Anthropic Messages API behind the generic
// model.Completion interface.
type Completion struct {
	client *anthropic.Client
	opts   Options
}

// NewCompletion creates a new Anthropic completion provider using the official client.
func NewCompletion(optFns ...func(o *Options)) *Completion {
	opts := Options{
		Model:       string(anthropic.ModelClaude3_5Sonnet20241022),
		Temperature: 0.4,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Completion{client: &client, opts: opts}
}

// NewCompletionFromClient creates a new Anthropic completion provider from an existing client.
func NewCompletionFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Completion {
	opts := Options{
		Model:       string(anthropic.ModelClaude3_5Sonnet20241022),
		Temperature: 0.4,
		MaxTokens:   4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Completion{client: client, opts: opts}
}

// Complete implements model.Completion via a single non-streaming message call.
// System messages are lifted into the Messages API system blocks; consecutive
// user content is passed through as-is.
func (c *Completion) Complete(ctx context.Context, req model.Request) (string, error) {
	var systemBlocks []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, m := range req.Messages {
		switch m.Role {
		case model.RoleSystem:
			if m.Content != "" {
				systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: m.Content})
			}
		case model.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	temperature := c.opts.Temperature
	if req.Temperature != 0 {
		temperature = req.Temperature
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.opts.Model),
		Messages:    messages,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(temperature),
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic completion: empty response")
	}
	return sb.String(), nil
}

// Info implements model.Completion.
func (c *Completion) Info() model.Info {
	return model.Info{Name: c.opts.Model, Provider: "anthropic"}
}
