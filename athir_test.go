package athir

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athir-ai/athir/agent"
	"github.com/athir-ai/athir/config"
	"github.com/athir-ai/athir/persona"
	"github.com/athir-ai/athir/tool"
)

func newTestAthir(t *testing.T) *Athir {
	t.Helper()
	settings := config.Default()
	settings.SQLitePath = filepath.Join(t.TempDir(), "athir.db")
	settings.RedisURL = "" // in-process layers only

	a := New(func(o *Options) { o.Settings = settings })
	t.Cleanup(func() { assert.NoError(t, a.Close()) })
	return a
}

func TestNewDefaultsAreUsable(t *testing.T) {
	a := newTestAthir(t)

	resp, err := a.HandleMessage(context.Background(), agent.Request{
		User:         "u1",
		Conversation: "c1",
		Message:      "مرحبا",
	})
	require.NoError(t, err)
	assert.Equal(t, persona.DefaultID, resp.Persona.ID)
	assert.Contains(t, resp.Reply, "فهمت ✅\nمرحبا")
}

func TestHandleMessageRunsPlannedTools(t *testing.T) {
	a := newTestAthir(t)

	resp, err := a.HandleMessage(context.Background(), agent.Request{
		User:         "u1",
		Conversation: "c1",
		Message:      "ابحث عن أخبار اليوم",
		Plan:         tool.TierFree,
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolOutputs, 1)
	assert.Equal(t, "web_search", resp.ToolOutputs[0].Tool)
	assert.True(t, resp.ToolOutputs[0].Success)
}

func TestSummaryPersistsAcrossInstances(t *testing.T) {
	settings := config.Default()
	settings.SQLitePath = filepath.Join(t.TempDir(), "athir.db")
	settings.RedisURL = ""

	a := New(func(o *Options) { o.Settings = settings })
	_, err := a.HandleMessage(context.Background(), agent.Request{
		User:         "u1",
		Conversation: "c-persist",
		Message:      "مرحبا",
	})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b := New(func(o *Options) { o.Settings = settings })
	defer b.Close()

	text, err := b.Memory().Summary(context.Background(), "c-persist")
	require.NoError(t, err)
	assert.Contains(t, text, "آخر رد:")
}

func TestToolsExposedForTelemetry(t *testing.T) {
	a := newTestAthir(t)

	res := a.Tools().Execute(context.Background(), "translation", map[string]any{"text": "مرحبا"}, tool.TierFree, false)
	require.True(t, res.Success)

	hist := a.Tools().History()
	require.Len(t, hist, 1)
	assert.Equal(t, "translation", hist[0].Tool)
	assert.Len(t, a.Tools().List(), 16)
}
