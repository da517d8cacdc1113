package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athir-ai/athir/logging"
)

// fakeSummaries is a SummaryStore stub with controllable behavior.
type fakeSummaries struct {
	texts map[string]string
	err   error
}

func (f *fakeSummaries) SaveSummary(_ context.Context, conversationID, summary string, _ int) error {
	if f.err != nil {
		return f.err
	}
	f.texts[conversationID] = summary
	return nil
}

func (f *fakeSummaries) Summary(_ context.Context, conversationID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if text, ok := f.texts[conversationID]; ok {
		return text, nil
	}
	return "", errors.New("no summary")
}

func TestNewDefaultsToInProcessLayers(t *testing.T) {
	cm := New()
	ctx := context.Background()

	require.NoError(t, cm.AppendShortTerm(ctx, "u1", Entry{Role: "user", Content: "hi"}))
	entries, err := cm.RecentShortTerm(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Summary layer degraded to unavailable.
	err = cm.SaveSummary(ctx, "c1", "text", 3)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNewUnreachableRedisFallsBack(t *testing.T) {
	cm := New(func(o *Options) {
		o.RedisURL = "redis://127.0.0.1:1/0"
	})
	ctx := context.Background()

	// Construction must not fail and the fallback must work.
	require.NoError(t, cm.AppendShortTerm(ctx, "u1", Entry{Role: "user", Content: "hi"}))
	entries, err := cm.RecentShortTerm(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// degradeRecorder captures layer degradation through the richer logger hook.
type degradeRecorder struct {
	logging.NoOpLogger
	layers []string
}

func (r *degradeRecorder) LogLayerDegraded(layer string, _ error) {
	r.layers = append(r.layers, layer)
}

func TestNewInvalidRedisURLRecordsDegradation(t *testing.T) {
	rec := &degradeRecorder{}
	cm := New(func(o *Options) {
		o.RedisURL = "not-a-redis-url"
		o.Logger = rec
	})
	ctx := context.Background()

	require.NoError(t, cm.AppendShortTerm(ctx, "u1", Entry{Role: "user", Content: "hi"}))
	assert.Equal(t, []string{"redis"}, rec.layers)
}

func TestBuildContextFullBundle(t *testing.T) {
	summaries := &fakeSummaries{texts: map[string]string{"c1": "talked about weather"}}
	cm := New(func(o *Options) {
		o.Summaries = summaries
	})
	ctx := context.Background()

	require.NoError(t, cm.SetPreferences(ctx, "u1", DefaultPersonaID, map[string]any{"tone": "calm"}))
	require.NoError(t, cm.IndexMessage(ctx, "u1", "c1", "weather in Cairo"))
	for i := 0; i < 7; i++ {
		require.NoError(t, cm.AppendShortTerm(ctx, "u1", Entry{Role: "user", Content: fmt.Sprintf("m%d", i)}))
	}

	bundle := cm.BuildContext(ctx, "u1", "weather in Cairo", "c1")

	assert.Len(t, bundle.RecentMessages, 5)
	assert.Equal(t, "m6", bundle.RecentMessages[0].Content)
	require.Len(t, bundle.RelevantHistory, 1)
	assert.Equal(t, "weather in Cairo", bundle.RelevantHistory[0].Text)
	assert.Equal(t, "calm", bundle.PersonaPreferences["tone"])
	assert.Equal(t, "talked about weather", bundle.ConversationSummary)
	assert.Greater(t, bundle.TokensEstimate, 0)
}

func TestBuildContextPlaceholderSummary(t *testing.T) {
	cm := New()
	ctx := context.Background()

	require.NoError(t, cm.AppendShortTerm(ctx, "u1", Entry{Role: "user", Content: "hi"}))
	bundle := cm.BuildContext(ctx, "u1", "hi", "c42")

	assert.Contains(t, bundle.ConversationSummary, "c42")
	assert.Contains(t, bundle.ConversationSummary, "1")
}

func TestBuildContextEmptyEverything(t *testing.T) {
	cm := New(func(o *Options) {
		o.Vector = NoopVectorStore{}
	})

	bundle := cm.BuildContext(context.Background(), "nobody", "query words", "c1")

	assert.Empty(t, bundle.RecentMessages)
	assert.Empty(t, bundle.RelevantHistory)
	assert.Nil(t, bundle.PersonaPreferences)
	assert.NotEmpty(t, bundle.ConversationSummary)
	// Query words still count toward the estimate.
	assert.Equal(t, 2+1, bundle.TokensEstimate) // "[]" counts as one field
}

func TestBuildContextTokenEstimate(t *testing.T) {
	cm := New()
	ctx := context.Background()

	bundleEmpty := cm.BuildContext(ctx, "u1", "one two three", "c1")
	assert.GreaterOrEqual(t, bundleEmpty.TokensEstimate, 3)
}
