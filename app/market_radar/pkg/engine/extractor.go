package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/fetch"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	dm "github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

const (
	extractTextLimit = 3000
	maxKeyPoints     = 5
)

var entitySchema = llm.GenerateSchema[dm.EntityBundle]()

const extractPrompt = `
You are an API.
You MUST return VALID JSON ONLY.
NO explanations.
NO markdown.
NO extra text.

You are an information extraction agent.

Extract structured entities from the text below.

Return EXACT JSON with keys:
{
  "competitors": [],
  "pricing_models": [],
  "emerging_themes": [],
  "key_points": []
}

The JSON must validate against this schema:
%s

Rules:
- competitors: company names only
- pricing_models: subscription, freemium, licensing, etc (if found)
- emerging_themes: industry or technology trends
- key_points: max 5 concise bullets

TEXT:
%s
`

// Extractor 内容提取器：抓取页面、清洗正文，再由 LLM 提取实体
type Extractor struct {
	fetcher   fetch.Fetcher
	cleaner   fetch.Cleaner
	completer llm.Completer
}

// NewExtractor 创建内容提取器
func NewExtractor(fetcher fetch.Fetcher, cleaner fetch.Cleaner, completer llm.Completer) *Extractor {
	return &Extractor{fetcher: fetcher, cleaner: cleaner, completer: completer}
}

// Extract 从 url 指向的页面提取实体，失败时返回全空的实体集合
func (x *Extractor) Extract(ctx context.Context, url string) dm.EntityBundle {
	raw := x.fetcher.Fetch(ctx, url)
	if raw == "" {
		logger.Log.Warnf("页面抓取为空: %s", url)
	}
	text := x.cleaner.Clean(ctx, raw)

	prompt := fmt.Sprintf(extractPrompt, entitySchema, truncateRunes(text, extractTextLimit))
	out := x.completer.CompleteText(ctx, prompt)
	if out == "" {
		logger.Log.Warn("实体提取: 模型输出为空")
		return dm.EmptyEntityBundle()
	}

	obj, ok := llm.ParseObject(out)
	if !ok {
		logger.Log.Warnf("实体提取: JSON 解析失败, 原始输出: %s", truncateRunes(out, 200))
		return dm.EmptyEntityBundle()
	}
	return decodeEntities(obj)
}

// decodeEntities 缺失或类型不符的字段视为空列表
func decodeEntities(obj map[string]json.RawMessage) dm.EntityBundle {
	b := dm.EntityBundle{
		Competitors:    listOrEmpty(obj["competitors"]),
		PricingModels:  listOrEmpty(obj["pricing_models"]),
		EmergingThemes: listOrEmpty(obj["emerging_themes"]),
		KeyPoints:      listOrEmpty(obj["key_points"]),
	}
	if len(b.KeyPoints) > maxKeyPoints {
		b.KeyPoints = b.KeyPoints[:maxKeyPoints]
	}
	return b
}

func listOrEmpty(raw json.RawMessage) []string {
	if l, ok := llm.StringList(raw); ok {
		return l
	}
	return []string{}
}

// truncateRunes 按字符截断，避免切断多字节字符
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
