package tool

import "context"

// Tier is an ordered subscription level gating tool access.
type Tier string

// Plan tiers, totally ordered: free < premium < enterprise.
const (
	TierFree       Tier = "free"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// Rank returns the tier's position in the order. Unknown tiers rank as free.
func (t Tier) Rank() int {
	switch t {
	case TierPremium:
		return 1
	case TierEnterprise:
		return 2
	default:
		return 0
	}
}

// Allows reports whether a caller on tier t may use a tool requiring required.
// Monotone: anything allowed for a lower tier is allowed for a higher one.
func (t Tier) Allows(required Tier) bool {
	return t.Rank() >= required.Rank()
}

// Category groups tools by availability class.
type Category string

// Tool categories.
const (
	CategoryCore        Category = "core"
	CategoryConditional Category = "conditional"
	CategoryAdvanced    Category = "advanced"
)

// Gating rejection messages. Rejections carry exactly zero cost and time.
const (
	ErrToolNotFound         = "tool not found"
	ErrPlanInsufficient     = "plan insufficient"
	ErrConfirmationRequired = "requires confirmation"
)

// Impl is one tool implementation. A returned non-nil error is an
// implementation fault; the registry converts it into a half-cost failed
// Result. Implementations may instead return an explicit failed Result
// (e.g. a caught provider outage) which keeps the same half-cost convention.
type Impl func(ctx context.Context, params map[string]any) (Result, error)

// Descriptor is the immutable registration record for one capability.
type Descriptor struct {
	Name                 string   `json:"name"`
	Category             Category `json:"category"`
	CostUSD              float64  `json:"cost_usd"`
	AvgLatencyMS         int      `json:"avg_latency_ms"`
	RequiresConfirmation bool     `json:"requires_confirmation"`
	PlanRequired         Tier     `json:"plan_required"`

	impl Impl
}

// Metadata is the externally visible part of a Descriptor.
type Metadata struct {
	Name                 string   `json:"name"`
	Category             Category `json:"category"`
	CostUSD              float64  `json:"cost_usd"`
	AvgLatencyMS         int      `json:"avg_latency_ms"`
	RequiresConfirmation bool     `json:"requires_confirmation"`
	PlanRequired         Tier     `json:"plan_required"`
}

// Call is a planned, not-yet-executed invocation of a named tool.
type Call struct {
	Name      string         `json:"name"`
	Params    map[string]any `json:"params"`
	Confirmed bool           `json:"confirmed"`
}

// Result is the outcome of one executed (or rejected) Call.
type Result struct {
	Success         bool           `json:"success"`
	Data            map[string]any `json:"data,omitempty"`
	Error           string         `json:"error,omitempty"`
	ExecutionTimeMS int64          `json:"execution_time_ms"`
	CostIncurred    float64        `json:"cost_incurred"`
}

// HistoryEntry records one dispatched call for telemetry.
type HistoryEntry struct {
	Tool    string  `json:"tool"`
	Success bool    `json:"success"`
	Cost    float64 `json:"cost"`
	TimeMS  int64   `json:"time_ms"`
}

// rejected builds the zero-cost, zero-time Result used by gating steps.
func rejected(msg string) Result {
	return Result{Success: false, Error: msg}
}
