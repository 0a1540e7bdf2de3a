package engine

import (
	"strconv"
	"strings"

	dm "github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

// DedupeByURL 按 URL 去重，保留首次出现的顺序；空 URL 被丢弃
func DedupeByURL(hits []dm.SearchHit) []dm.SearchHit {
	seen := make(map[string]struct{}, len(hits))
	out := make([]dm.SearchHit, 0, len(hits))
	for _, h := range hits {
		if h.URL == "" {
			continue
		}
		if _, ok := seen[h.URL]; ok {
			continue
		}
		seen[h.URL] = struct{}{}
		out = append(out, h)
	}
	return out
}

// dedupeHits 按 (title, url) 去重
func dedupeHits(hits []dm.SearchHit) []dm.SearchHit {
	seen := make(map[dm.SearchHit]struct{}, len(hits))
	out := make([]dm.SearchHit, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

// impactKey 评估去重键：(impact_level, score, why)。
// actions 与事件 URL 不参与比较，两个不同事件若三者恰好相同会被合并。
// 每段都带长度前缀，why 的不同切分不会得到相同的键。
func impactKey(a dm.ImpactAssessment) string {
	var sb strings.Builder
	writeField := func(s string) {
		sb.WriteString(strconv.Itoa(len(s)))
		sb.WriteByte(':')
		sb.WriteString(s)
	}
	writeField(string(a.ImpactLevel))
	writeField(strconv.Itoa(a.Score))
	sb.WriteString(strconv.Itoa(len(a.Why)))
	sb.WriteByte('#')
	for _, w := range a.Why {
		writeField(w)
	}
	return sb.String()
}

// dedupeImpacts 去重并最多保留 max 条
func dedupeImpacts(impacts []dm.ImpactAssessment, max int) []dm.ImpactAssessment {
	seen := make(map[string]struct{}, len(impacts))
	out := make([]dm.ImpactAssessment, 0, len(impacts))
	for _, imp := range impacts {
		k := impactKey(imp)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, imp)
		if len(out) >= max {
			break
		}
	}
	return out
}

// uniqueSources 取命中的非空 URL，去重保序后截取前 max 个
func uniqueSources(hits []dm.SearchHit, max int) []string {
	seen := make(map[string]struct{}, len(hits))
	out := make([]string, 0, max)
	for _, h := range hits {
		if h.URL == "" {
			continue
		}
		if _, ok := seen[h.URL]; ok {
			continue
		}
		seen[h.URL] = struct{}{}
		out = append(out, h.URL)
		if len(out) >= max {
			break
		}
	}
	return out
}
