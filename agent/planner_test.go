package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanSearchKeyword(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("ابحث عن الطقس")
	require.Len(t, plan, 1)
	assert.Equal(t, "web_search", plan[0].Name)
	assert.Equal(t, "ابحث عن الطقس", plan[0].Params["query"])
	assert.Equal(t, 5, plan[0].Params["num_results"])
}

func TestPlanEnglishKeywordCaseInsensitive(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("  Search for Go generics  ")
	require.Len(t, plan, 1)
	assert.Equal(t, "web_search", plan[0].Name)
	// The query keeps the raw message, not the normalized form.
	assert.Equal(t, "  Search for Go generics  ", plan[0].Params["query"])
}

func TestPlanTranslation(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("ترجم هذه الجملة")
	require.Len(t, plan, 1)
	assert.Equal(t, "translation", plan[0].Name)
	assert.Equal(t, "ترجم هذه الجملة", plan[0].Params["text"])
	assert.Equal(t, "en", plan[0].Params["target_lang"])
}

func TestPlanAnalysisWrapsMessage(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("حلل هذه البيانات")
	require.Len(t, plan, 1)
	assert.Equal(t, "data_analysis", plan[0].Name)
	data := plan[0].Params["data"].(map[string]any)
	assert.Equal(t, "حلل هذه البيانات", data["text"])
}

func TestPlanMultipleIntentsKeepTableOrder(t *testing.T) {
	p := NewPlanner()

	plan := p.Plan("ابحث عن المقال ثم ترجم النتيجة")
	require.Len(t, plan, 2)
	assert.Equal(t, "web_search", plan[0].Name)
	assert.Equal(t, "translation", plan[1].Name)
}

func TestPlanNoKeywords(t *testing.T) {
	p := NewPlanner()

	assert.Empty(t, p.Plan("مرحبا كيف حالك"))
	assert.Empty(t, p.Plan(""))
	assert.Empty(t, p.Plan("   "))
}

func TestPlanCustomIntentTable(t *testing.T) {
	p := NewPlannerWithIntents([]Intent{
		{
			Tool:     "email_sending",
			Keywords: []string{"email"},
			Params:   func(string) map[string]any { return map[string]any{"to": "x@y.z"} },
		},
	})

	plan := p.Plan("send an Email please")
	require.Len(t, plan, 1)
	assert.Equal(t, "email_sending", plan[0].Name)
	// Default intents are not consulted.
	assert.Empty(t, p.Plan("search something"))
}
