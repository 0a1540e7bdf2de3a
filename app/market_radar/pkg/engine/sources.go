package engine

import "strings"

// SourceFilter 决定一个来源 URL 能否出现在报告中
type SourceFilter interface {
	Allow(url string) bool
}

// DenylistFilter 按子串屏蔽来源，大小写不敏感
type DenylistFilter struct {
	patterns []string
}

// NewDenylistFilter 创建黑名单过滤器，空白项被忽略
func NewDenylistFilter(patterns []string) *DenylistFilter {
	f := &DenylistFilter{}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			f.patterns = append(f.patterns, p)
		}
	}
	return f
}

// Allow implements SourceFilter
func (f *DenylistFilter) Allow(url string) bool {
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)
	for _, p := range f.patterns {
		if strings.Contains(lower, p) {
			return false
		}
	}
	return true
}

// filterSources 保序过滤来源，丢弃空串与被拒绝的 URL
func filterSources(filter SourceFilter, sources []string) []string {
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if s == "" {
			continue
		}
		if filter != nil && !filter.Allow(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
