package agent

import (
	"strings"

	"github.com/athir-ai/athir/tool"
)

// Intent maps trigger keywords to one planned tool call. Params receives the
// raw user message and builds the call's parameters.
type Intent struct {
	Tool     string
	Keywords []string
	Params   func(message string) map[string]any
}

// Planner turns a user message into an ordered tool plan by substring
// keyword matching. Intents are evaluated in table order and every matching
// intent contributes one call, so a message asking to search and translate
// plans both tools.
type Planner struct {
	intents []Intent
}

// NewPlanner returns a planner with the default Arabic/English intent table.
func NewPlanner() *Planner {
	return &Planner{intents: defaultIntents()}
}

// NewPlannerWithIntents returns a planner over a custom intent table.
func NewPlannerWithIntents(intents []Intent) *Planner {
	return &Planner{intents: intents}
}

func defaultIntents() []Intent {
	return []Intent{
		{
			Tool:     "web_search",
			Keywords: []string{"ابحث", "بحث", "search", "google", "ويب"},
			Params: func(message string) map[string]any {
				return map[string]any{"query": message, "num_results": 5}
			},
		},
		{
			Tool:     "translation",
			Keywords: []string{"ترجم", "translate"},
			Params: func(message string) map[string]any {
				return map[string]any{"text": message, "target_lang": "en"}
			},
		},
		{
			Tool:     "data_analysis",
			Keywords: []string{"حلل", "تحليل", "analyze"},
			Params: func(message string) map[string]any {
				return map[string]any{"data": map[string]any{"text": message}}
			},
		},
	}
}

// Plan returns the tool calls triggered by the message, in intent table
// order. An empty plan means the reply needs no tools.
func (p *Planner) Plan(message string) []tool.Call {
	normalized := strings.ToLower(strings.TrimSpace(message))
	if normalized == "" {
		return nil
	}

	var calls []tool.Call
	for _, intent := range p.intents {
		for _, kw := range intent.Keywords {
			if strings.Contains(normalized, kw) {
				calls = append(calls, tool.Call{Name: intent.Tool, Params: intent.Params(message)})
				break
			}
		}
	}
	return calls
}
