package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/athir-ai/athir/internal/util"
	"github.com/athir-ai/athir/logging"
)

// DefaultPersonaID is the persona whose preferences are read during context
// aggregation. Matches persona.DefaultID.
const DefaultPersonaID = "athir"

// probeTimeout bounds the Redis availability probe at construction.
const probeTimeout = 3 * time.Second

// Bundle is the aggregate read-only context snapshot built once per request.
type Bundle struct {
	RecentMessages      []Entry        `json:"recent_messages"`
	RelevantHistory     []Match        `json:"relevant_history"`
	PersonaPreferences  map[string]any `json:"persona_preferences,omitempty"`
	ConversationSummary string         `json:"conversation_summary"`
	TokensEstimate      int            `json:"tokens_estimate"`
}

// Options configures ContextualMemory construction. Explicit layer overrides
// win over the Redis probe; an empty RedisURL skips the probe entirely.
type Options struct {
	// RedisURL enables the Redis adapters for the short-term and preference
	// layers when the instance is reachable.
	RedisURL string

	// Layer overrides (tests, custom backends).
	ShortTerm   ShortTermStore
	Vector      VectorStore
	Preferences PreferenceStore
	Summaries   SummaryStore

	// Embedder backs the default in-process vector index.
	Embedder Embedder

	Logger logging.Logger
}

// ContextualMemory aggregates the four memory layers behind one façade.
// Each layer is chosen at construction by a non-raising capability probe and
// never changes afterwards; methods are safe for concurrent use when the
// chosen layer implementations are.
type ContextualMemory struct {
	shortTerm ShortTermStore
	vector    VectorStore
	prefs     PreferenceStore
	summaries SummaryStore
	logger    logging.Logger
}

// New constructs a ContextualMemory, probing Redis when configured and
// degrading each unset layer to its in-process fallback.
func New(optFns ...func(o *Options)) *ContextualMemory {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	cm := &ContextualMemory{
		shortTerm: opts.ShortTerm,
		vector:    opts.Vector,
		prefs:     opts.Preferences,
		summaries: opts.Summaries,
		logger:    opts.Logger,
	}

	var client *redis.Client
	if opts.RedisURL != "" && (cm.shortTerm == nil || cm.prefs == nil) {
		client = probeRedis(opts.RedisURL, opts.Logger)
	}

	if cm.shortTerm == nil {
		if client != nil {
			cm.shortTerm = NewRedisShortTerm(client)
		} else {
			cm.shortTerm = NewInMemoryShortTerm()
		}
	}
	if cm.prefs == nil {
		if client != nil {
			cm.prefs = NewRedisPreferences(client)
		} else {
			cm.prefs = NewInMemoryPreferences()
		}
	}
	if cm.vector == nil {
		cm.vector = NewInMemoryVectorIndex(opts.Embedder)
	}
	if cm.summaries == nil {
		cm.summaries = UnavailableSummaryStore{}
	}
	return cm
}

// probeRedis returns a connected client or nil; it never raises.
func probeRedis(url string, logger logging.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		logDegraded(logger, "redis", err)
		return nil
	}
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logDegraded(logger, "redis", err)
		_ = client.Close()
		return nil
	}
	return client
}

// logDegraded records that a layer fell back to its in-process
// implementation, through the richer logger when one is configured.
func logDegraded(logger logging.Logger, layer string, err error) {
	if dl, ok := logger.(logging.LayerDegradeLogger); ok {
		dl.LogLayerDegraded(layer, err)
		return
	}
	logger.Warn("memory layer degraded, using in-process fallback", "layer", layer, "error", err.Error())
}

// AppendShortTerm records one role/content pair in the user's buffer.
func (cm *ContextualMemory) AppendShortTerm(ctx context.Context, userID string, entry Entry) error {
	return cm.shortTerm.Append(ctx, userID, entry)
}

// RecentShortTerm returns up to n buffered entries, most recent first.
func (cm *ContextualMemory) RecentShortTerm(ctx context.Context, userID string, n int) ([]Entry, error) {
	return cm.shortTerm.Recent(ctx, userID, n)
}

// IndexMessage stores message text in the semantic layer. A no-op when the
// layer is absent.
func (cm *ContextualMemory) IndexMessage(ctx context.Context, userID, conversationID, text string) error {
	return cm.vector.Index(ctx, userID, conversationID, text)
}

// SearchHistory returns up to k semantically similar past messages for the user.
func (cm *ContextualMemory) SearchHistory(ctx context.Context, query, userID string, k int) ([]Match, error) {
	return cm.vector.Search(ctx, query, userID, k)
}

// SetPreferences stores preferences for (user, persona) with a 24h TTL.
func (cm *ContextualMemory) SetPreferences(ctx context.Context, userID, personaID string, prefs map[string]any) error {
	return cm.prefs.Set(ctx, userID, personaID, prefs)
}

// Preferences returns fresh preferences for (user, persona), or nil.
func (cm *ContextualMemory) Preferences(ctx context.Context, userID, personaID string) (map[string]any, error) {
	return cm.prefs.Get(ctx, userID, personaID)
}

// SaveSummary upserts the latest summary for a conversation.
func (cm *ContextualMemory) SaveSummary(ctx context.Context, conversationID, summary string, tokensEstimate int) error {
	return cm.summaries.SaveSummary(ctx, conversationID, summary, tokensEstimate)
}

// Summary returns the latest stored summary for a conversation.
func (cm *ContextualMemory) Summary(ctx context.Context, conversationID string) (string, error) {
	return cm.summaries.Summary(ctx, conversationID)
}

// BuildContext aggregates all four layers into one Bundle. Layer failures are
// absorbed: each degraded read contributes empty/default data and is logged,
// so the bundle is always well-formed.
func (cm *ContextualMemory) BuildContext(ctx context.Context, userID, query, conversationID string) *Bundle {
	recent, err := cm.shortTerm.Recent(ctx, userID, 5)
	if err != nil {
		cm.logger.Warn("short-term read failed", "layer", "short_term", "error", err.Error())
		recent = nil
	}

	history, err := cm.vector.Search(ctx, query, userID, 3)
	if err != nil {
		cm.logger.Warn("semantic search failed", "layer", "vector", "error", err.Error())
		history = nil
	}

	prefs, err := cm.prefs.Get(ctx, userID, DefaultPersonaID)
	if err != nil {
		cm.logger.Warn("preference read failed", "layer", "preferences", "error", err.Error())
		prefs = nil
	}

	summary, err := cm.summaries.Summary(ctx, conversationID)
	if err != nil {
		// Absence (no row yet, layer unavailable) is an expected state.
		if !errors.Is(err, ErrUnavailable) {
			cm.logger.Debug("summary absent or unreadable", "layer", "summary", "error", err.Error())
		}
		summary = ""
	}
	if summary == "" {
		summary = fmt.Sprintf("المحادثة رقم %s - %d رسائل", conversationID, len(recent))
	}

	return &Bundle{
		RecentMessages:      recent,
		RelevantHistory:     history,
		PersonaPreferences:  prefs,
		ConversationSummary: summary,
		TokensEstimate:      util.WordCount(fmt.Sprint(recent)) + util.WordCount(query),
	}
}
