package tool

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/athir-ai/athir/config"
	"github.com/athir-ai/athir/logging"
	"github.com/athir-ai/athir/model"
)

// Options configures Registry construction.
type Options struct {
	// Settings selects mock vs live behavior and carries provider credentials.
	// Defaults to mock mode.
	Settings *config.Settings

	// HTTPClient is shared by all live providers.
	HTTPClient *http.Client

	// Provider endpoint overrides, used by tests and self-hosted deployments.
	SerpAPIBaseURL   string
	ReplicateBaseURL string

	// Completion backs the advanced_analytics live path. Optional; without it
	// the tool stays on its mock insights.
	Completion model.Completion

	Logger logging.Logger
}

// Registry is the static tool catalog plus the gated execution entry point.
//
// One Registry instance may be shared across concurrent requests: the
// execution history is an explicitly synchronized append-only log, so
// cross-request telemetry stays intact without per-request instancing.
type Registry struct {
	tools    map[string]Descriptor
	settings *config.Settings
	logger   logging.Logger

	mu      sync.Mutex
	history []HistoryEntry

	serp       *serpAPIClient
	replicate  *replicateClient
	translate  *libreTranslateClient
	completion model.Completion
	http       *http.Client
}

// NewRegistry constructs a Registry with the sixteen builtin tools registered.
func NewRegistry(optFns ...func(o *Options)) *Registry {
	opts := Options{
		Settings:         config.Default(),
		SerpAPIBaseURL:   defaultSerpAPIBaseURL,
		ReplicateBaseURL: defaultReplicateBaseURL,
		Logger:           logging.NoOpLogger{},
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
	if opts.HTTPClient == nil {
		timeout := time.Duration(opts.Settings.ProviderTimeoutSecs) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		opts.HTTPClient = &http.Client{Timeout: timeout}
	}

	r := &Registry{
		tools:      make(map[string]Descriptor),
		settings:   opts.Settings,
		logger:     opts.Logger,
		completion: opts.Completion,
		http:       opts.HTTPClient,
	}
	r.serp = newSerpAPIClient(opts.Settings.SerpAPIKey, opts.SerpAPIBaseURL, opts.HTTPClient)
	r.replicate = newReplicateClient(opts.Settings.ReplicateAPIToken, opts.Settings.ReplicateModel, opts.ReplicateBaseURL, opts.HTTPClient)
	r.translate = newLibreTranslateClient(opts.Settings.LibreTranslateURL, opts.Settings.LibreTranslateKey, opts.HTTPClient)

	r.registerBuiltins()
	return r
}

// register adds a descriptor to the catalog. Names are unique; registering a
// duplicate replaces the previous descriptor, which only happens in tests.
func (r *Registry) register(d Descriptor) {
	r.tools[d.Name] = d
}

// List returns metadata for all registered tools, sorted by name.
func (r *Registry) List() []Metadata {
	out := make([]Metadata, 0, len(r.tools))
	for _, d := range r.tools {
		out = append(out, Metadata{
			Name:                 d.Name,
			Category:             d.Category,
			CostUSD:              d.CostUSD,
			AvgLatencyMS:         d.AvgLatencyMS,
			RequiresConfirmation: d.RequiresConfirmation,
			PlanRequired:         d.PlanRequired,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// History returns a copy of the execution history.
func (r *Registry) History() []HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]HistoryEntry, len(r.history))
	copy(out, r.history)
	return out
}

// Execute runs one gated tool invocation. It never returns a Go error; every
// failure mode is a failed Result.
//
// Gating precedence, strictly in order and short-circuiting:
//  1. unknown tool name       -> "tool not found", cost 0, time 0
//  2. plan tier below minimum -> "plan insufficient", cost 0, time 0
//  3. unconfirmed when needed -> "requires confirmation", cost 0, time 0
//  4. invoke the implementation with timing; unit cost on success, half the
//     unit cost on failure or fault.
//
// Calls reaching step 4 are appended to the execution history; rejected
// calls are not.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any, tier Tier, confirmed bool) Result {
	desc, ok := r.tools[name]
	if !ok {
		r.logger.Warn("tool rejected", "tool", name, "reason", ErrToolNotFound)
		return rejected(ErrToolNotFound)
	}
	if !tier.Allows(desc.PlanRequired) {
		r.logger.Warn("tool rejected", "tool", name, "reason", ErrPlanInsufficient, "tier", string(tier), "required", string(desc.PlanRequired))
		return rejected(ErrPlanInsufficient)
	}
	if desc.RequiresConfirmation && !confirmed {
		r.logger.Warn("tool rejected", "tool", name, "reason", ErrConfirmationRequired)
		return rejected(ErrConfirmationRequired)
	}

	start := time.Now()
	result, err := r.invoke(ctx, desc, params)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		result = Result{
			Success:         false,
			Error:           err.Error(),
			ExecutionTimeMS: elapsed,
			CostIncurred:    desc.CostUSD / 2,
		}
	} else {
		if result.ExecutionTimeMS == 0 {
			result.ExecutionTimeMS = elapsed
		}
		if result.CostIncurred == 0 {
			if result.Success {
				result.CostIncurred = desc.CostUSD
			} else {
				result.CostIncurred = desc.CostUSD / 2
			}
		}
	}

	r.mu.Lock()
	r.history = append(r.history, HistoryEntry{
		Tool:    name,
		Success: result.Success,
		Cost:    result.CostIncurred,
		TimeMS:  result.ExecutionTimeMS,
	})
	r.mu.Unlock()

	r.logger.Info("tool executed", "tool", name, "success", result.Success, "cost_usd", result.CostIncurred, "time_ms", result.ExecutionTimeMS)
	return result
}

// invoke runs the implementation, converting panics into faults so a broken
// tool can never take down the pipeline.
func (r *Registry) invoke(ctx context.Context, desc Descriptor, params map[string]any) (result Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
			} else {
				err = errors.New(desc.Name + ": implementation panic")
			}
		}
	}()
	return desc.impl(ctx, params)
}
