package persona

import (
	"context"

	"github.com/athir-ai/athir/logging"
)

// DefaultID is the built-in default persona identifier.
const DefaultID = "athir"

// DefaultName is the display name of the built-in default persona.
const DefaultName = "أثير"

// DefaultSystemPrompt instructs the default persona.
const DefaultSystemPrompt = `أنت أثير (Athir) — وكيل عام.

مهمتك: مساعدة المستخدم بشكل عملي وذكي، وتفويض المهام للأدوات عند الحاجة.
قواعد:
1) إذا طُلب بحث: استخدم web_search ثم لخّص النتائج.
2) إذا طُلب ترجمة: استخدم translation.
3) إذا لم تكن هناك حاجة لأداة: أجب مباشرة.
4) احترم خطة المستخدم: free/premium/enterprise.
5) لا تنفذ أي فعل خطير بدون تأكيد.
`

// ToolPolicy constrains which tools a persona may plan.
type ToolPolicy struct {
	AllowAll     bool     `json:"allow_all"`
	BlockedTools []string `json:"blocked_tools"`
}

// Blocks reports whether the policy blocks the named tool.
func (p ToolPolicy) Blocks(name string) bool {
	for _, blocked := range p.BlockedTools {
		if blocked == name {
			return true
		}
	}
	return false
}

// Profile is the resolved persona for one request. It is never persisted by
// this package; its lifetime is a single request.
type Profile struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SystemPrompt string     `json:"system_prompt"`
	Policy       ToolPolicy `json:"tool_policy"`
}

// Record is a stored persona override.
type Record struct {
	Name        string
	Description string
}

// Store looks up stored persona overrides. The relational store in package
// store satisfies this via an adapter; absence is reported as an error and
// treated as "no override".
type Store interface {
	Persona(ctx context.Context, userID, name string) (*Record, error)
}

// Preferences reads stored preferences for (user, persona). Satisfied by the
// contextual memory's preference layer; nil map means none stored.
type Preferences interface {
	Get(ctx context.Context, userID, personaID string) (map[string]any, error)
}

// Options configures a Manager. Both collaborators are optional.
type Options struct {
	Store       Store
	Preferences Preferences
	Logger      logging.Logger
}

// Manager resolves persona profiles.
type Manager struct {
	store  Store
	prefs  Preferences
	logger logging.Logger
}

// NewManager constructs a Manager with optional overrides.
func NewManager(optFns ...func(o *Options)) *Manager {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Manager{store: opts.Store, prefs: opts.Preferences, logger: opts.Logger}
}

// Resolve builds the Profile for (user, persona). It starts from the built-in
// default, overlays a stored override when one exists, then merges stored
// preferences. Failures at any step leave the profile as already computed.
func (m *Manager) Resolve(ctx context.Context, userID, personaID string) *Profile {
	if personaID == "" {
		personaID = DefaultID
	}

	profile := &Profile{
		ID:           personaID,
		Name:         DefaultName,
		SystemPrompt: DefaultSystemPrompt,
		Policy:       ToolPolicy{AllowAll: true},
	}

	if m.store != nil {
		rec, err := m.store.Persona(ctx, userID, personaID)
		if err != nil {
			m.logger.Debug("persona override unavailable", "persona_id", personaID, "error", err.Error())
		} else if rec != nil {
			profile.Name = rec.Name
			if rec.Description != "" {
				profile.SystemPrompt = rec.Description
			}
		}
	}

	if m.prefs != nil {
		prefs, err := m.prefs.Get(ctx, userID, personaID)
		if err != nil {
			m.logger.Debug("persona preferences unavailable", "persona_id", personaID, "error", err.Error())
		} else if len(prefs) > 0 {
			applyPreferences(profile, prefs)
		}
	}

	return profile
}

// applyPreferences merges stored preferences into the profile: a "tone" value
// becomes an instruction suffix, a "blocked_tools" list replaces the blocked
// set and clears allow-all.
func applyPreferences(profile *Profile, prefs map[string]any) {
	if tone, ok := prefs["tone"].(string); ok && tone != "" {
		profile.SystemPrompt += "\n\nنبرة الرد: " + tone
	}

	blocked := blockedToolNames(prefs["blocked_tools"])
	if len(blocked) > 0 {
		profile.Policy.BlockedTools = blocked
		profile.Policy.AllowAll = false
	}
}

// blockedToolNames tolerates both []string and the []any shape produced by
// JSON decoding.
func blockedToolNames(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		names := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return names
	default:
		return nil
	}
}
