// Package athir provides a high-level façade over the conversational
// pipeline: persona resolution, four-layer contextual memory, keyword
// planning, the gated tool registry and reply composition. Most applications
// interact with this package by:
//  1. Creating an Athir via New() (optionally supplying Settings or
//     overriding individual collaborators)
//  2. Calling HandleMessage for each inbound user message
//
// All defaults are safe for local development: without Redis, SQLite or
// provider credentials every layer degrades to its in-process fallback and
// tools run in mock mode.
package athir

import (
	"context"

	"github.com/athir-ai/athir/agent"
	"github.com/athir-ai/athir/config"
	"github.com/athir-ai/athir/logging"
	"github.com/athir-ai/athir/memory"
	"github.com/athir-ai/athir/model"
	"github.com/athir-ai/athir/model/anthropic"
	"github.com/athir-ai/athir/model/openai"
	"github.com/athir-ai/athir/persona"
	"github.com/athir-ai/athir/store"
	"github.com/athir-ai/athir/tool"
)

// Options configures the Athir instance.
type Options struct {
	// Settings drives the default wiring: Redis/SQLite endpoints, tool mode,
	// provider credentials. Defaults to config.Default().
	Settings *config.Settings

	// Completion overrides the provider selected from Settings.LLMProvider.
	// When neither is configured, replies are composed deterministically.
	Completion model.Completion

	// Collaborator overrides (defaults are built from Settings if nil).
	Memory   *memory.ContextualMemory
	Personas *persona.Manager
	Tools    *tool.Registry

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Athir is the high-level façade aggregating the pipeline collaborators.
type Athir struct {
	opts         Options
	orchestrator *agent.Orchestrator
	store        *store.Store
}

// New creates an Athir instance with optional overrides. Any unset
// collaborator is wired from Settings; unavailable backends fall back to
// in-process implementations rather than failing construction.
func New(optFns ...func(o *Options)) *Athir {
	opts := Options{
		Settings: config.Default(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Settings == nil {
		opts.Settings = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	var st *store.Store
	if opts.Settings.SQLitePath != "" {
		var err error
		st, err = store.Open(opts.Settings.SQLitePath)
		if err != nil {
			opts.Logger.Warn("sqlite unavailable, personas and summaries degrade", "path", opts.Settings.SQLitePath, "error", err.Error())
			st = nil
		}
	}

	if opts.Memory == nil {
		opts.Memory = memory.New(func(o *memory.Options) {
			o.RedisURL = opts.Settings.RedisURL
			o.Logger = opts.Logger
			if st != nil {
				o.Summaries = st
			}
		})
	}

	if opts.Personas == nil {
		opts.Personas = persona.NewManager(func(o *persona.Options) {
			o.Logger = opts.Logger
			o.Preferences = preferenceReader{opts.Memory}
			if st != nil {
				o.Store = personaStoreAdapter{st}
			}
		})
	}

	if opts.Completion == nil {
		opts.Completion = completionFromSettings(opts.Settings)
	}

	if opts.Tools == nil {
		opts.Tools = tool.NewRegistry(func(o *tool.Options) {
			o.Settings = opts.Settings
			o.Completion = opts.Completion
			o.Logger = opts.Logger
		})
	}

	orchestrator := agent.NewOrchestrator(func(o *agent.Options) {
		o.Memory = opts.Memory
		o.Personas = opts.Personas
		o.Tools = opts.Tools
		o.Composer = agent.NewDelegatedComposer(opts.Completion, opts.Logger)
		o.Logger = opts.Logger
	})

	return &Athir{opts: opts, orchestrator: orchestrator, store: st}
}

// HandleMessage runs the pipeline for one inbound message.
func (a *Athir) HandleMessage(ctx context.Context, req agent.Request) (*agent.Response, error) {
	return a.orchestrator.HandleMessage(ctx, req)
}

// Memory exposes the contextual memory for direct layer access
// (preferences, summaries, short-term inspection).
func (a *Athir) Memory() *memory.ContextualMemory { return a.opts.Memory }

// Tools exposes the registry for listing, telemetry and direct execution.
func (a *Athir) Tools() *tool.Registry { return a.opts.Tools }

// Close releases the relational store, if one was opened.
func (a *Athir) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// completionFromSettings selects a provider from configuration. An
// unconfigured or unknown provider yields nil, which composes replies
// deterministically.
func completionFromSettings(settings *config.Settings) model.Completion {
	switch settings.LLMProvider {
	case config.ProviderOpenAI:
		return openai.NewCompletion(func(o *openai.Options) {
			o.APIKey = settings.OpenAIAPIKey
			if settings.OpenAIModel != "" {
				o.Model = settings.OpenAIModel
			}
		})
	case config.ProviderAnthropic:
		return anthropic.NewCompletion(func(o *anthropic.Options) {
			o.APIKey = settings.AnthropicAPIKey
			if settings.AnthropicModel != "" {
				o.Model = settings.AnthropicModel
			}
		})
	default:
		return nil
	}
}

// personaStoreAdapter maps the relational persona row onto the manager's
// lookup interface.
type personaStoreAdapter struct {
	store *store.Store
}

func (a personaStoreAdapter) Persona(ctx context.Context, userID, name string) (*persona.Record, error) {
	rec, err := a.store.Persona(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	return &persona.Record{Name: rec.Name, Description: rec.Description}, nil
}

// preferenceReader exposes the memory preference layer to the persona
// manager.
type preferenceReader struct {
	memory *memory.ContextualMemory
}

func (r preferenceReader) Get(ctx context.Context, userID, personaID string) (map[string]any, error) {
	return r.memory.Preferences(ctx, userID, personaID)
}
