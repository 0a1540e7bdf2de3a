package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	dm "github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

const defaultScore = 50

const impactPrompt = `
You are an API.
You MUST return VALID JSON ONLY.
NO explanations.
NO markdown.
NO extra text.

You are an Impact Analysis agent for market intelligence.

Industry: %s
Focus: %s

Evaluate the EVENT below and assign:
- impact_level: High | Medium | Low
- score: integer 0-100
- why: 2-4 concise bullet points
- actions: 2-4 clear actionable steps

Return EXACT JSON in this format:
{
  "impact_level": "High | Medium | Low",
  "score": 0,
  "why": ["reason 1", "reason 2"],
  "actions": ["action 1", "action 2"]
}

EVENT:
Title: %s
URL: %s
Signals: %s
Key points: %s
`

// FallbackAssessment 模型输出不可用时的固定评估
func FallbackAssessment() dm.ImpactAssessment {
	return dm.ImpactAssessment{
		ImpactLevel: dm.ImpactMedium,
		Score:       defaultScore,
		Why:         []string{"Impact could not be reliably parsed from model output"},
		Actions:     []string{"Manually review this event", "Re-run analysis with more context"},
	}
}

// Scorer 影响评估器
type Scorer struct {
	completer llm.Completer
}

// NewScorer 创建影响评估器
func NewScorer(completer llm.Completer) *Scorer {
	return &Scorer{completer: completer}
}

// Score 评估单个事件的业务影响，不返回错误
func (s *Scorer) Score(ctx context.Context, event dm.Event, ictx dm.ImpactContext) dm.ImpactAssessment {
	focus := ictx.Focus
	if focus == "" {
		focus = "general"
	}
	signals, _ := json.Marshal(event.Signals)
	keyPoints, _ := json.Marshal(nonNil(event.KeyPoints))

	prompt := fmt.Sprintf(impactPrompt, ictx.Industry, focus, event.Title, event.URL, signals, keyPoints)
	out := s.completer.CompleteText(ctx, prompt)
	if out == "" {
		logger.Log.Warnf("影响评估: 模型输出为空 [%s]", event.Title)
		return FallbackAssessment()
	}

	obj, ok := llm.ParseObject(out)
	if !ok {
		logger.Log.Warnf("影响评估: JSON 解析失败 [%s]", event.Title)
		return FallbackAssessment()
	}
	return decodeAssessment(obj)
}

// decodeAssessment 缺失字段取默认值：Medium / 50 / [] / []
func decodeAssessment(obj map[string]json.RawMessage) dm.ImpactAssessment {
	return dm.ImpactAssessment{
		ImpactLevel: parseLevel(obj["impact_level"]),
		Score:       parseScore(obj["score"]),
		Why:         listOrEmpty(obj["why"]),
		Actions:     listOrEmpty(obj["actions"]),
	}
}

func parseLevel(raw json.RawMessage) dm.ImpactLevel {
	s, ok := llm.String(raw)
	if !ok {
		return dm.ImpactMedium
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return dm.ImpactHigh
	case "low":
		return dm.ImpactLow
	default:
		return dm.ImpactMedium
	}
}

// parseScore 接受数字或数字字符串，四舍五入并限制在 0..100
func parseScore(raw json.RawMessage) int {
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return defaultScore
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		s, ok := llm.String(raw)
		if !ok {
			return defaultScore
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return defaultScore
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return defaultScore
	}

	n := int(math.Round(f))
	switch {
	case n < 0:
		return 0
	case n > 100:
		return 100
	}
	return n
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
