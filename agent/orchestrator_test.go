package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athir-ai/athir/memory"
	"github.com/athir-ai/athir/persona"
	"github.com/athir-ai/athir/tool"
)

type capturedSummary struct {
	conversationID string
	text           string
	tokens         int
}

type fakeSummaries struct {
	saved []capturedSummary
	err   error
}

func (f *fakeSummaries) SaveSummary(_ context.Context, conversationID, text string, tokens int) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, capturedSummary{conversationID, text, tokens})
	return nil
}

func (f *fakeSummaries) Summary(context.Context, string) (string, error) {
	return "", memory.ErrUnavailable
}

type blockingPrefs struct {
	blocked []any
}

func (b *blockingPrefs) Get(context.Context, string, string) (map[string]any, error) {
	return map[string]any{"blocked_tools": b.blocked}, nil
}

func TestHandleMessageSearch(t *testing.T) {
	o := NewOrchestrator()

	resp, err := o.HandleMessage(context.Background(), Request{
		User:         "u1",
		Conversation: "c1",
		Message:      "ابحث عن الطقس",
		Plan:         tool.TierFree,
	})
	require.NoError(t, err)

	require.Len(t, resp.Plan, 1)
	assert.Equal(t, "web_search", resp.Plan[0].Name)
	assert.Equal(t, "ابحث عن الطقس", resp.Plan[0].Params["query"])

	require.Len(t, resp.ToolOutputs, 1)
	out := resp.ToolOutputs[0]
	assert.True(t, out.Success)
	assert.Equal(t, 0.005, out.CostUSD)
	assert.Len(t, out.Data["results"].([]map[string]any), 2)

	assert.Contains(t, resp.Reply, "نتائج الأدوات:")
	assert.Contains(t, resp.Reply, "نتيجة 1")
	assert.Contains(t, resp.Reply, "نتيجة 2")
	assert.Equal(t, persona.DefaultID, resp.Persona.ID)
	assert.Equal(t, persona.DefaultName, resp.Persona.Name)
	assert.Greater(t, resp.Context.TokensEstimate, 0)
}

func TestHandleMessageBlockedToolFiltered(t *testing.T) {
	personas := persona.NewManager(func(po *persona.Options) {
		po.Preferences = &blockingPrefs{blocked: []any{"web_search"}}
	})
	o := NewOrchestrator(func(opts *Options) { opts.Personas = personas })

	resp, err := o.HandleMessage(context.Background(), Request{
		User:    "u1",
		Message: "ابحث عن الطقس",
		Plan:    tool.TierFree,
	})
	require.NoError(t, err)

	assert.Empty(t, resp.Plan)
	assert.Empty(t, resp.ToolOutputs)
	assert.NotContains(t, resp.Reply, "نتائج الأدوات")
}

func TestHandleMessageNoProviderIsDeterministic(t *testing.T) {
	o := NewOrchestrator()

	resp, err := o.HandleMessage(context.Background(), Request{User: "u1", Message: "مرحبا"})
	require.NoError(t, err)

	lines := strings.Split(resp.Reply, "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, "["+persona.DefaultName+"] فهمت ✅", lines[0])
	assert.Equal(t, "مرحبا", lines[1])
	assert.Empty(t, resp.Plan)
	assert.Empty(t, resp.ToolOutputs)
}

func TestHandleMessageBlankMessageAbsorbed(t *testing.T) {
	o := NewOrchestrator()

	resp, err := o.HandleMessage(context.Background(), Request{User: "u1", Message: "   "})
	require.NoError(t, err)

	assert.Empty(t, resp.Plan)
	assert.Empty(t, resp.ToolOutputs)
	assert.Equal(t, "["+persona.DefaultName+"] فهمت ✅", strings.Split(resp.Reply, "\n")[0])
}

func TestHandleMessageGatingThroughPipeline(t *testing.T) {
	planner := NewPlannerWithIntents([]Intent{
		{
			Tool:     "automation",
			Keywords: []string{"automate"},
			Params:   func(string) map[string]any { return map[string]any{"workflow": "w"} },
		},
	})
	o := NewOrchestrator(func(opts *Options) { opts.Planner = planner })

	resp, err := o.HandleMessage(context.Background(), Request{
		User:    "u1",
		Message: "automate this",
		Plan:    tool.TierFree,
	})
	require.NoError(t, err)

	require.Len(t, resp.ToolOutputs, 1)
	out := resp.ToolOutputs[0]
	assert.False(t, out.Success)
	assert.Equal(t, tool.ErrPlanInsufficient, out.Error)
	assert.Zero(t, out.CostUSD)
	assert.Zero(t, out.ExecutionTimeMS)
	assert.Contains(t, resp.Reply, "خطأ: "+tool.ErrPlanInsufficient)
}

func TestHandleMessagePersistsSummary(t *testing.T) {
	summaries := &fakeSummaries{}
	mem := memory.New(func(mo *memory.Options) { mo.Summaries = summaries })
	o := NewOrchestrator(func(opts *Options) { opts.Memory = mem })

	resp, err := o.HandleMessage(context.Background(), Request{
		User:         "u1",
		Conversation: "c7",
		Message:      "مرحبا",
	})
	require.NoError(t, err)

	require.Len(t, summaries.saved, 1)
	saved := summaries.saved[0]
	assert.Equal(t, "c7", saved.conversationID)
	assert.Contains(t, saved.text, "آخر رد:")
	assert.Contains(t, saved.text, "user:مرحبا")
	assert.Equal(t, resp.Context.TokensEstimate, saved.tokens)
}

func TestHandleMessageWritesShortTermBothTurns(t *testing.T) {
	mem := memory.New()
	o := NewOrchestrator(func(opts *Options) { opts.Memory = mem })

	resp, err := o.HandleMessage(context.Background(), Request{User: "u9", Message: "مرحبا"})
	require.NoError(t, err)

	entries, err := mem.RecentShortTerm(context.Background(), "u9", 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "assistant", entries[0].Role)
	assert.Equal(t, resp.Reply, entries[0].Content)
	assert.Equal(t, "user", entries[1].Role)
	assert.Equal(t, "مرحبا", entries[1].Content)
}

func TestHandleMessageDefaultsTierToFree(t *testing.T) {
	o := NewOrchestrator()

	resp, err := o.HandleMessage(context.Background(), Request{User: "u1", Message: "ابحث عن شيء"})
	require.NoError(t, err)
	require.Len(t, resp.ToolOutputs, 1)
	assert.True(t, resp.ToolOutputs[0].Success)
}
