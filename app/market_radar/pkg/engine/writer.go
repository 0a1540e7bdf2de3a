package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	dm "github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

const defaultSynthesisBudget = 14000

const reportPrompt = `
You are an API.
You MUST return VALID JSON ONLY.
NO explanations.
NO markdown.
NO comments.

Return JSON EXACTLY matching this schema:

{
  "summary": "string",
  "drivers": ["string"],
  "competitors": ["string"],
  "impact_radar": [
    {
      "event": "string",
      "impact_level": "High|Medium|Low",
      "score": 0,
      "why": ["string"],
      "actions": ["string"],
      "url": "string"
    }
  ],
  "opportunities": ["string"],
  "risks": ["string"],
  "90_day_plan": {
    "0_30": ["string"],
    "30_60": ["string"],
    "60_90": ["string"]
  },
  "sources": ["string"]
}

Rules:
- impact_radar: 3-5 items
- opportunities: 3-5 items
- risks: 3-5 items
- drivers 3-7 items
- competitors 5-10 unique names
- ONLY use URLs from REAL SOURCES list
- If no valid URL exists, use empty string

REAL SOURCES:
%s

INPUT DATA:
%s
`

// Writer 报告合成器
type Writer struct {
	completer llm.Completer
	filter    SourceFilter
	budget    int
}

// NewWriter 创建报告合成器。budget 为嵌入提示词的输入 JSON 的最大字符数
func NewWriter(completer llm.Completer, filter SourceFilter, budget int) *Writer {
	if budget <= 0 {
		budget = defaultSynthesisBudget
	}
	return &Writer{completer: completer, filter: filter, budget: budget}
}

// Write 合成最终报告。模型输出缺少必需字段时返回固定的兜底报告，不返回错误
func (w *Writer) Write(ctx context.Context, in dm.SynthesisInput) dm.Report {
	sources := filterSources(w.filter, in.Sources)

	srcJSON, _ := json.Marshal(sources)
	payload, _ := json.Marshal(in)
	prompt := fmt.Sprintf(reportPrompt, srcJSON, truncateRunes(string(payload), w.budget))

	out := w.completer.CompleteText(ctx, prompt)
	obj, ok := llm.ParseObject(out)
	if !ok {
		logger.Log.Warn("报告合成: JSON 解析失败，使用兜底报告")
		obj = map[string]json.RawMessage{}
	}

	report, complete := decodeReport(obj, in)
	if !complete {
		if ok {
			logger.Log.Warn("报告合成: 缺少必需字段，使用兜底报告")
		}
		report = FallbackReport(in)
	}

	report.Sources = sources
	allowed := make(map[string]struct{}, len(sources))
	for _, s := range sources {
		allowed[s] = struct{}{}
	}
	for i := range report.ImpactRadar {
		if _, ok := allowed[report.ImpactRadar[i].URL]; !ok {
			report.ImpactRadar[i].URL = ""
		}
	}

	normalizeReport(&report)
	return report
}

// FallbackReport 由输入直接拼出的固定报告
func FallbackReport(in dm.SynthesisInput) dm.Report {
	summary := in.Context
	if summary == "" {
		summary = "Industry"
	}

	radar := make([]dm.ImpactRadarEntry, 0, len(in.Impacts))
	for _, imp := range in.Impacts {
		radar = append(radar, dm.ImpactRadarEntry{ImpactAssessment: imp})
	}

	return dm.Report{
		Summary:     summary + " market analysis",
		Drivers:     []string{"Regulation", "Technology adoption", "Market competition"},
		Competitors: in.Competitors,
		ImpactRadar: radar,
		Opportunities: []string{
			"Market expansion", "Digital transformation",
			"Market expansion", "Digital transformation",
			"Market expansion", "Digital transformation",
		},
		Risks: []string{
			"Regulatory pressure", "Cost increase",
			"Regulatory pressure", "Cost increase",
			"Regulatory pressure", "Cost increase",
		},
		NinetyDayPlan: dm.NinetyDayPlan{
			Days0To30:  []string{"Assess market"},
			Days30To60: []string{"Optimize operations"},
			Days60To90: []string{"Scale initiatives"},
		},
	}
}

// decodeReport 解码模型输出；summary、drivers、impact_radar 缺失或类型不符时 complete 为 false
func decodeReport(obj map[string]json.RawMessage, in dm.SynthesisInput) (r dm.Report, complete bool) {
	summary, ok := llm.String(obj["summary"])
	if !ok {
		return r, false
	}
	drivers, ok := llm.StringList(obj["drivers"])
	if !ok {
		return r, false
	}
	radar, ok := decodeRadar(obj["impact_radar"])
	if !ok {
		return r, false
	}

	r = dm.Report{
		Summary:       summary,
		Drivers:       drivers,
		ImpactRadar:   radar,
		Opportunities: listOrEmpty(obj["opportunities"]),
		Risks:         listOrEmpty(obj["risks"]),
	}
	if c, ok := llm.StringList(obj["competitors"]); ok {
		r.Competitors = c
	} else {
		r.Competitors = in.Competitors
	}

	plan, found := obj["90_day_plan"]
	if !found {
		plan = obj["ninety_day_plan"]
	}
	r.NinetyDayPlan = decodePlan(plan)
	return r, true
}

func decodeRadar(raw json.RawMessage) ([]dm.ImpactRadarEntry, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}

	radar := make([]dm.ImpactRadarEntry, 0, len(items))
	for _, it := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(it, &fields); err != nil || fields == nil {
			continue
		}
		event, _ := llm.String(fields["event"])
		url, _ := llm.String(fields["url"])
		radar = append(radar, dm.ImpactRadarEntry{
			Event:            event,
			ImpactAssessment: decodeAssessment(fields),
			URL:              url,
		})
	}
	return radar, true
}

func decodePlan(raw json.RawMessage) dm.NinetyDayPlan {
	var fields map[string]json.RawMessage
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &fields)
	}
	return dm.NinetyDayPlan{
		Days0To30:  listOrEmpty(fields["0_30"]),
		Days30To60: listOrEmpty(fields["30_60"]),
		Days60To90: listOrEmpty(fields["60_90"]),
	}
}

// normalizeReport 保证所有列表字段非 nil
func normalizeReport(r *dm.Report) {
	r.Drivers = nonNil(r.Drivers)
	r.Competitors = nonNil(r.Competitors)
	r.Opportunities = nonNil(r.Opportunities)
	r.Risks = nonNil(r.Risks)
	r.Sources = nonNil(r.Sources)
	r.NinetyDayPlan.Days0To30 = nonNil(r.NinetyDayPlan.Days0To30)
	r.NinetyDayPlan.Days30To60 = nonNil(r.NinetyDayPlan.Days30To60)
	r.NinetyDayPlan.Days60To90 = nonNil(r.NinetyDayPlan.Days60To90)
	if r.ImpactRadar == nil {
		r.ImpactRadar = []dm.ImpactRadarEntry{}
	}
	for i := range r.ImpactRadar {
		r.ImpactRadar[i].Why = nonNil(r.ImpactRadar[i].Why)
		r.ImpactRadar[i].Actions = nonNil(r.ImpactRadar[i].Actions)
	}
}
