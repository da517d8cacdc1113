package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/athir-ai/athir/logging"
	"github.com/athir-ai/athir/memory"
	"github.com/athir-ai/athir/model"
	"github.com/athir-ai/athir/persona"
)

// ToolOutput is one executed (or rejected) plan step, in execution order.
type ToolOutput struct {
	Tool            string         `json:"tool"`
	Success         bool           `json:"success"`
	Data            map[string]any `json:"data,omitempty"`
	Error           string         `json:"error,omitempty"`
	ExecutionTimeMS int64          `json:"execution_time_ms"`
	CostUSD         float64        `json:"cost_usd"`
}

// Composer builds the assistant reply from the resolved persona, the user
// message, the memory bundle and the executed tool outputs.
type Composer interface {
	Compose(ctx context.Context, profile *persona.Profile, message string, bundle *memory.Bundle, outputs []ToolOutput) (string, error)
}

// DeterministicComposer formats the reply with no model call. It is the mode
// used when no completion provider is configured, and the fallback when a
// provider errors. Its output shape is stable so tests can assert on it.
type DeterministicComposer struct{}

// Compose implements Composer. It never fails.
func (DeterministicComposer) Compose(_ context.Context, profile *persona.Profile, message string, bundle *memory.Bundle, outputs []ToolOutput) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] فهمت ✅\n%s", profile.Name, message)

	if len(outputs) > 0 {
		b.WriteString("\n---\nنتائج الأدوات:")
		for _, out := range outputs {
			if out.Success {
				fmt.Fprintf(&b, "\n- %s: %v", out.Tool, out.Data)
			} else {
				fmt.Fprintf(&b, "\n- %s: خطأ: %s", out.Tool, out.Error)
			}
		}
	}

	if bundle != nil && len(bundle.RecentMessages) > 0 {
		b.WriteString("\n---\n(ملحوظة: تم أخذ آخر رسائل من الذاكرة قصيرة المدى)")
	}
	return b.String(), nil
}

// DelegatedComposer asks a completion provider for the reply, grounding it on
// the persona prompt, relevant memory and tool outputs. Any provider failure
// falls back to the deterministic rendering so the pipeline always replies.
type DelegatedComposer struct {
	Provider model.Completion
	Logger   logging.Logger

	fallback DeterministicComposer
}

// NewDelegatedComposer wraps a provider; a nil provider composes
// deterministically.
func NewDelegatedComposer(provider model.Completion, logger logging.Logger) *DelegatedComposer {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &DelegatedComposer{Provider: provider, Logger: logger}
}

// Compose implements Composer.
func (c *DelegatedComposer) Compose(ctx context.Context, profile *persona.Profile, message string, bundle *memory.Bundle, outputs []ToolOutput) (string, error) {
	if c.Provider == nil {
		return c.fallback.Compose(ctx, profile, message, bundle, outputs)
	}

	req := model.Request{
		Messages: []model.Message{
			{Role: model.RoleSystem, Content: profile.SystemPrompt},
			{Role: model.RoleSystem, Content: "Relevant memory:\n" + memorySnippets(bundle)},
			{Role: model.RoleSystem, Content: "Tool outputs:\n" + toolRecords(outputs)},
			{Role: model.RoleUser, Content: message},
		},
	}

	start := time.Now()
	reply, err := c.Provider.Complete(ctx, req)
	if mcl, ok := c.Logger.(logging.ModelCallLogger); ok {
		mcl.LogModelCall(c.Provider.Info().Name, time.Since(start), err == nil, err)
	}
	if err != nil {
		c.Logger.Warn("completion failed, composing deterministically", "provider", c.Provider.Info().Provider, "error", err.Error())
		return c.fallback.Compose(ctx, profile, message, bundle, outputs)
	}
	return reply, nil
}

func memorySnippets(bundle *memory.Bundle) string {
	if bundle == nil || len(bundle.RelevantHistory) == 0 {
		return "(none)"
	}
	matches := bundle.RelevantHistory
	if len(matches) > 3 {
		matches = matches[:3]
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, "- "+m.Text)
	}
	return strings.Join(lines, "\n")
}

func toolRecords(outputs []ToolOutput) string {
	if len(outputs) == 0 {
		return "(none)"
	}
	lines := make([]string, 0, len(outputs))
	for _, out := range outputs {
		if out.Success {
			lines = append(lines, fmt.Sprintf("- %s ok: %v", out.Tool, out.Data))
		} else {
			lines = append(lines, fmt.Sprintf("- %s failed: %s", out.Tool, out.Error))
		}
	}
	return strings.Join(lines, "\n")
}
