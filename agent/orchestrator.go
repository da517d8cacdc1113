package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/athir-ai/athir/internal/util"
	"github.com/athir-ai/athir/logging"
	"github.com/athir-ai/athir/memory"
	"github.com/athir-ai/athir/persona"
	"github.com/athir-ai/athir/tool"
)

// Request is one inbound user message with its routing context.
type Request struct {
	User         string    `json:"user_id"`
	Conversation string    `json:"conversation_id"`
	Message      string    `json:"message"`
	PersonaID    string    `json:"persona_id,omitempty"`
	Plan         tool.Tier `json:"plan"`
}

// PersonaInfo identifies the persona that produced a reply.
type PersonaInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ContextMeta carries per-request context accounting.
type ContextMeta struct {
	TokensEstimate int `json:"tokens_estimate"`
}

// Response is the structured result of one handled message.
type Response struct {
	Reply       string       `json:"reply"`
	Persona     PersonaInfo  `json:"persona"`
	Plan        []tool.Call  `json:"plan"`
	ToolOutputs []ToolOutput `json:"tool_outputs"`
	Context     ContextMeta  `json:"context_meta"`
}

// Options configures Orchestrator construction. Every collaborator has a
// working default so an Orchestrator with no options is fully functional in
// mock mode.
type Options struct {
	Memory   *memory.ContextualMemory
	Personas *persona.Manager
	Tools    *tool.Registry
	Planner  *Planner
	Composer Composer
	Logger   logging.Logger
}

// Orchestrator runs the fixed message pipeline.
type Orchestrator struct {
	memory   *memory.ContextualMemory
	personas *persona.Manager
	tools    *tool.Registry
	planner  *Planner
	composer Composer
	logger   logging.Logger
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Memory == nil {
		opts.Memory = memory.New(func(o *memory.Options) { o.Logger = opts.Logger })
	}
	if opts.Personas == nil {
		opts.Personas = persona.NewManager(func(o *persona.Options) { o.Logger = opts.Logger })
	}
	if opts.Tools == nil {
		opts.Tools = tool.NewRegistry(func(o *tool.Options) { o.Logger = opts.Logger })
	}
	if opts.Planner == nil {
		opts.Planner = NewPlanner()
	}
	if opts.Composer == nil {
		opts.Composer = DeterministicComposer{}
	}
	return &Orchestrator{
		memory:   opts.Memory,
		personas: opts.Personas,
		tools:    opts.Tools,
		planner:  opts.Planner,
		composer: opts.Composer,
		logger:   opts.Logger,
	}
}

// HandleMessage runs the pipeline for one message. Persistence layers are
// best effort throughout: their failures degrade context or drop write-back
// but never fail the request. Every input, including a blank message, flows
// through the full pipeline and resolves to a well-formed response; an error
// is returned only when composition itself fails.
func (o *Orchestrator) HandleMessage(ctx context.Context, req Request) (*Response, error) {
	if req.Plan == "" {
		req.Plan = tool.TierFree
	}

	profile := o.personas.Resolve(ctx, req.User, req.PersonaID)

	// The user's message joins short-term memory before planning, so the
	// context bundle below already reflects it.
	if err := o.memory.AppendShortTerm(ctx, req.User, memory.Entry{Role: "user", Content: req.Message}); err != nil {
		o.logger.Warn("short-term append failed", "user_id", req.User, "error", err.Error())
	}

	bundle := o.memory.BuildContext(ctx, req.User, req.Message, req.Conversation)

	plan := o.planner.Plan(req.Message)
	plan = filterPlan(plan, profile, o.logger)

	outputs := make([]ToolOutput, 0, len(plan))
	for _, call := range plan {
		res := o.tools.Execute(ctx, call.Name, call.Params, req.Plan, call.Confirmed)
		outputs = append(outputs, ToolOutput{
			Tool:            call.Name,
			Success:         res.Success,
			Data:            res.Data,
			Error:           res.Error,
			ExecutionTimeMS: res.ExecutionTimeMS,
			CostUSD:         res.CostIncurred,
		})
	}

	if err := o.memory.IndexMessage(ctx, req.User, req.Conversation, req.Message); err != nil {
		o.logger.Warn("semantic index failed", "user_id", req.User, "error", err.Error())
	}

	reply, err := o.composer.Compose(ctx, profile, req.Message, bundle, outputs)
	if err != nil {
		return nil, fmt.Errorf("compose reply: %w", err)
	}

	if err := o.memory.AppendShortTerm(ctx, req.User, memory.Entry{Role: "assistant", Content: reply}); err != nil {
		o.logger.Warn("short-term append failed", "user_id", req.User, "error", err.Error())
	}

	o.persistSummary(ctx, req.Conversation, bundle, reply)

	return &Response{
		Reply:       reply,
		Persona:     PersonaInfo{ID: profile.ID, Name: profile.Name},
		Plan:        plan,
		ToolOutputs: outputs,
		Context:     ContextMeta{TokensEstimate: bundle.TokensEstimate},
	}, nil
}

// filterPlan drops calls the persona policy blocks, preserving the relative
// order of the remainder.
func filterPlan(plan []tool.Call, profile *persona.Profile, logger logging.Logger) []tool.Call {
	if profile == nil || profile.Policy.AllowAll {
		return plan
	}
	filtered := plan[:0]
	for _, call := range plan {
		if profile.Policy.Blocks(call.Name) {
			logger.Info("tool blocked by persona policy", "tool", call.Name, "persona_id", profile.ID)
			continue
		}
		filtered = append(filtered, call)
	}
	return filtered
}

// persistSummary upserts the conversation summary, built from the last 5
// context messages plus a truncated preview of the reply. A missing summary
// layer is expected and stays quiet; a failed attempt is logged.
func (o *Orchestrator) persistSummary(ctx context.Context, conversationID string, bundle *memory.Bundle, reply string) {
	if conversationID == "" {
		return
	}

	recent := bundle.RecentMessages
	if len(recent) > 5 {
		recent = recent[:5]
	}
	parts := make([]string, 0, len(recent))
	for _, entry := range recent {
		parts = append(parts, fmt.Sprintf("%s:%s", util.FirstField(entry.Role), util.Truncate(entry.Content, 80)))
	}
	text := strings.Join(parts, " | ") + "\nآخر رد: " + util.Truncate(reply, 200)

	if err := o.memory.SaveSummary(ctx, conversationID, text, bundle.TokensEstimate); err != nil {
		if errors.Is(err, memory.ErrUnavailable) {
			o.logger.Debug("summary layer absent, skipping persist", "conversation_id", conversationID)
			return
		}
		o.logger.Warn("summary persist failed", "conversation_id", conversationID, "error", err.Error())
	}
}
