package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/athir-ai/athir/internal/util"
	"github.com/athir-ai/athir/model"
)

// registerBuiltins installs the static sixteen-tool catalog. Metadata (cost,
// latency, confirmation, plan tier) is fixed per tool; only the behavior of
// an implementation varies with the configured tool mode.
func (r *Registry) registerBuiltins() {
	r.register(Descriptor{
		Name: "web_search", Category: CategoryCore,
		CostUSD: 0.005, AvgLatencyMS: 1500,
		PlanRequired: TierFree,
		impl:         r.webSearch,
	})
	r.register(Descriptor{
		Name: "image_generation", Category: CategoryCore,
		CostUSD: 0.02, AvgLatencyMS: 3000,
		PlanRequired: TierFree,
		impl:         r.imageGeneration,
	})
	r.register(Descriptor{
		Name: "data_analysis", Category: CategoryCore,
		CostUSD: 0.001, AvgLatencyMS: 800,
		PlanRequired: TierFree,
		impl:         dataAnalysis,
	})
	r.register(Descriptor{
		Name: "translation", Category: CategoryCore,
		CostUSD: 0.001, AvgLatencyMS: 500,
		PlanRequired: TierFree,
		impl:         r.translation,
	})
	r.register(Descriptor{
		Name: "code_execution", Category: CategoryConditional,
		CostUSD: 0.003, AvgLatencyMS: 2000,
		RequiresConfirmation: true, PlanRequired: TierFree,
		impl: codeExecution,
	})
	r.register(Descriptor{
		Name: "file_processing", Category: CategoryConditional,
		CostUSD: 0.002, AvgLatencyMS: 1200,
		PlanRequired: TierFree,
		impl:         fileProcessing,
	})
	r.register(Descriptor{
		Name: "voice_processing", Category: CategoryConditional,
		CostUSD: 0.01, AvgLatencyMS: 2500,
		PlanRequired: TierFree,
		impl:         voiceProcessing,
	})
	r.register(Descriptor{
		Name: "automation", Category: CategoryConditional,
		CostUSD: 0.05, AvgLatencyMS: 5000,
		PlanRequired: TierPremium,
		impl:         automation,
	})
	r.register(Descriptor{
		Name: "video_generation", Category: CategoryAdvanced,
		CostUSD: 0.15, AvgLatencyMS: 10000,
		PlanRequired: TierEnterprise,
		impl:         videoGeneration,
	})
	r.register(Descriptor{
		Name: "advanced_analytics", Category: CategoryAdvanced,
		CostUSD: 0.08, AvgLatencyMS: 3000,
		PlanRequired: TierPremium,
		impl:         r.advancedAnalytics,
	})
	r.register(Descriptor{
		Name: "api_integration", Category: CategoryAdvanced,
		CostUSD: 0.04, AvgLatencyMS: 2000,
		PlanRequired: TierPremium,
		impl:         r.apiIntegration,
	})
	r.register(Descriptor{
		Name: "database_query", Category: CategoryAdvanced,
		CostUSD: 0.006, AvgLatencyMS: 1500,
		PlanRequired: TierPremium,
		impl:         databaseQuery,
	})
	r.register(Descriptor{
		Name: "email_sending", Category: CategoryConditional,
		CostUSD: 0.003, AvgLatencyMS: 1000,
		PlanRequired: TierFree,
		impl:         emailSending,
	})
	r.register(Descriptor{
		Name: "calendar_management", Category: CategoryConditional,
		CostUSD: 0.004, AvgLatencyMS: 1200,
		PlanRequired: TierFree,
		impl:         calendarManagement,
	})
	r.register(Descriptor{
		Name: "social_media", Category: CategoryAdvanced,
		CostUSD: 0.07, AvgLatencyMS: 2500,
		PlanRequired: TierPremium,
		impl:         socialMedia,
	})
	r.register(Descriptor{
		Name: "ecommerce", Category: CategoryAdvanced,
		CostUSD: 0.1, AvgLatencyMS: 4000,
		PlanRequired: TierEnterprise,
		impl:         ecommerce,
	})
}

// live reports whether implementations should reach external providers.
func (r *Registry) live() bool {
	return r.settings != nil && r.settings.Live()
}

// liveFailed wraps a provider error as a failed Result; the registry's
// fill-in then applies the half-cost convention.
func liveFailed(tool string, err error) Result {
	return Result{Success: false, Error: fmt.Sprintf("%s live failed: %v", tool, err)}
}

func (r *Registry) webSearch(ctx context.Context, params map[string]any) (Result, error) {
	query := util.StringParam(params, "query", "")
	num := util.IntParam(params, "num_results", 5)
	if num <= 0 {
		num = 5
	}

	if r.live() && r.serp.configured() {
		results, err := r.serp.search(ctx, query, num)
		if err != nil {
			return liveFailed("web_search", err), nil
		}
		return Result{Success: true, Data: map[string]any{"results": results, "query": query}}, nil
	}

	mock := []map[string]any{
		{"title": "نتيجة 1", "link": "https://example.com/1"},
		{"title": "نتيجة 2", "link": "https://example.com/2"},
	}
	if len(mock) > num {
		mock = mock[:num]
	}
	return Result{Success: true, Data: map[string]any{"results": mock, "query": query}}, nil
}

func (r *Registry) imageGeneration(ctx context.Context, params map[string]any) (Result, error) {
	prompt := util.StringParam(params, "prompt", "")

	if r.live() && r.replicate.configured() {
		prediction, err := r.replicate.predict(ctx, prompt)
		if err != nil {
			return liveFailed("image_generation", err), nil
		}
		return Result{Success: true, Data: map[string]any{"prediction": prediction, "prompt": prompt}}, nil
	}

	return Result{Success: true, Data: map[string]any{
		"image_url": "https://example.com/image.jpg",
		"prompt":    prompt,
	}}, nil
}

// dataAnalysis is always local: it summarizes the shape of the supplied data
// rather than shipping it anywhere.
func dataAnalysis(_ context.Context, params map[string]any) (Result, error) {
	data := util.MapParam(params, "data")

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 50 {
		keys = keys[:50]
	}

	return Result{Success: true, Data: map[string]any{
		"keys":         keys,
		"approx_chars": len(fmt.Sprint(data)),
	}}, nil
}

func (r *Registry) translation(ctx context.Context, params map[string]any) (Result, error) {
	text := util.StringParam(params, "text", "")
	target := util.StringParam(params, "target_lang", "en")

	if r.live() && r.translate.configured() {
		translated, err := r.translate.translate(ctx, text, target)
		if err != nil {
			return liveFailed("translation", err), nil
		}
		return Result{Success: true, Data: map[string]any{"translated_text": translated, "target_lang": target}}, nil
	}

	return Result{Success: true, Data: map[string]any{
		"translated_text": fmt.Sprintf("[%s] %s", target, text),
		"target_lang":     target,
	}}, nil
}

// codeExecution fails in every mode until a sandbox runner is wired in.
func codeExecution(_ context.Context, _ map[string]any) (Result, error) {
	return Result{
		Success: false,
		Error:   "code_execution disabled by default. Configure a sandbox runner to enable.",
	}, nil
}

func fileProcessing(_ context.Context, params map[string]any) (Result, error) {
	file := util.StringParam(params, "file", "document.txt")
	return Result{Success: true, Data: map[string]any{
		"processed": true,
		"file":      file,
	}}, nil
}

// voiceProcessing fails until a speech-to-text provider is configured.
func voiceProcessing(_ context.Context, _ map[string]any) (Result, error) {
	return Result{
		Success: false,
		Error:   "voice_processing requires STT provider. Configure integration to enable.",
	}, nil
}

func automation(_ context.Context, params map[string]any) (Result, error) {
	workflow := util.StringParam(params, "workflow", "")
	steps := util.SliceParam(params, "steps")
	return Result{Success: true, Data: map[string]any{
		"completed_steps": len(steps),
		"workflow":        workflow,
	}}, nil
}

// videoGeneration fails until an enterprise video provider is configured.
func videoGeneration(_ context.Context, _ map[string]any) (Result, error) {
	return Result{
		Success: false,
		Error:   "video_generation requires an enterprise provider (e.g., Runway).",
	}, nil
}

func (r *Registry) advancedAnalytics(ctx context.Context, params map[string]any) (Result, error) {
	query := util.StringParam(params, "query", "")

	if r.live() && r.completion != nil {
		text, err := r.completion.Complete(ctx, model.Request{
			Messages: []model.Message{
				{Role: model.RoleSystem, Content: "أنت محلل بيانات. أعط رؤى موجزة، كل رؤية في سطر مستقل."},
				{Role: model.RoleUser, Content: query},
			},
		})
		if err != nil {
			return liveFailed("advanced_analytics", err), nil
		}
		return Result{Success: true, Data: map[string]any{
			"insights": nonEmptyLines(text, 5),
			"query":    query,
		}}, nil
	}

	return Result{Success: true, Data: map[string]any{
		"insights": []string{"رؤية 1", "رؤية 2"},
		"query":    query,
	}}, nil
}

// nonEmptyLines splits text into at most max trimmed non-empty lines.
func nonEmptyLines(text string, max int) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == max {
			break
		}
	}
	return lines
}

func (r *Registry) apiIntegration(ctx context.Context, params map[string]any) (Result, error) {
	endpoint := util.StringParam(params, "endpoint", "")
	method := util.StringParam(params, "method", "GET")

	if r.live() && endpoint != "" {
		status, body, err := doRequest(ctx, r.http, method, endpoint, util.MapParam(params, "payload"))
		if err != nil {
			return liveFailed("api_integration", err), nil
		}
		return Result{Success: status < 400, Data: map[string]any{
			"status":   status,
			"endpoint": endpoint,
			"method":   method,
			"body":     body,
		}}, nil
	}

	return Result{Success: true, Data: map[string]any{
		"status":   200,
		"endpoint": endpoint,
		"method":   method,
	}}, nil
}

func databaseQuery(_ context.Context, params map[string]any) (Result, error) {
	query := util.StringParam(params, "sql", "")
	return Result{Success: true, Data: map[string]any{
		"rows": []any{},
		"sql":  query,
	}}, nil
}

func emailSending(_ context.Context, params map[string]any) (Result, error) {
	to := util.StringParam(params, "to", "")
	subject := util.StringParam(params, "subject", "")
	return Result{Success: true, Data: map[string]any{
		"sent":    true,
		"to":      to,
		"subject": subject,
	}}, nil
}

func calendarManagement(_ context.Context, params map[string]any) (Result, error) {
	event := util.StringParam(params, "event", "")
	return Result{Success: true, Data: map[string]any{
		"event_id": "cal_123",
		"event":    event,
	}}, nil
}

func socialMedia(_ context.Context, params map[string]any) (Result, error) {
	platform := util.StringParam(params, "platform", "")
	return Result{Success: true, Data: map[string]any{
		"posted":   true,
		"platform": platform,
	}}, nil
}

func ecommerce(_ context.Context, params map[string]any) (Result, error) {
	action := util.StringParam(params, "action", "")
	product := util.StringParam(params, "product", "")
	return Result{Success: true, Data: map[string]any{
		"order_id": "ord_123",
		"action":   action,
		"product":  product,
	}}, nil
}
