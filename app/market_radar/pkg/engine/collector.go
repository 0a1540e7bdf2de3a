package engine

import (
	"context"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	dm "github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/search"
)

const (
	defaultSearchTimeout = 20 * time.Second
	defaultFallbackBase  = "https://en.wikipedia.org/wiki"
	resultsPerQuery      = 5
)

// Collector 搜索聚合器：对同一行业发出多组查询并合并结果
type Collector struct {
	searcher     search.Searcher
	timeout      time.Duration
	fallbackBase string
}

// NewCollector 创建搜索聚合器
func NewCollector(searcher search.Searcher, timeout time.Duration, fallbackBase string) *Collector {
	if timeout <= 0 {
		timeout = defaultSearchTimeout
	}
	if fallbackBase == "" {
		fallbackBase = defaultFallbackBase
	}
	return &Collector{
		searcher:     searcher,
		timeout:      timeout,
		fallbackBase: strings.TrimRight(fallbackBase, "/"),
	}
}

// Queries 返回行业对应的四组查询，顺序固定
func Queries(industry string) []string {
	return []string{
		industry + " industry news",
		industry + " regulatory updates",
		industry + " market trends",
		industry + " latest developments",
	}
}

// FallbackHit 所有查询都没有结果时使用的兜底命中
func FallbackHit(base, industry string) dm.SearchHit {
	if base == "" {
		base = defaultFallbackBase
	}
	slug := url.PathEscape(strings.ReplaceAll(industry, " ", "_"))
	return dm.SearchHit{
		Title: industry + " industry overview",
		URL:   strings.TrimRight(base, "/") + "/" + slug,
	}
}

// Collect 并发执行所有查询，按查询顺序合并、按 URL 去重。
// 结果至少包含一条命中，不返回错误。
func (c *Collector) Collect(ctx context.Context, industry string) []dm.SearchHit {
	queries := Queries(industry)
	slots := make([][]dm.SearchHit, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			slots[i] = c.query(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	var merged []dm.SearchHit
	for _, s := range slots {
		merged = append(merged, s...)
	}

	hits := DedupeByURL(merged)
	if len(hits) == 0 {
		logger.Log.Warnf("行业 [%s] 所有查询均无结果，使用兜底来源", industry)
		return []dm.SearchHit{FallbackHit(c.fallbackBase, industry)}
	}
	logger.Log.Infof("行业 [%s] 共收集到 %d 条去重结果", industry, len(hits))
	return hits
}

// query 执行单条查询，任何失败都记录后返回 nil
func (c *Collector) query(ctx context.Context, q string) (hits []dm.SearchHit) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Warnf("查询 [%s] 异常: %v", q, r)
			hits = nil
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.searcher.Search(ctx, &search.Request{
		Query:      q,
		Topic:      search.TopicNews,
		MaxResults: resultsPerQuery,
	})
	if err != nil {
		logger.Log.Warnf("查询 [%s] 失败: %v", q, err)
		return nil
	}
	if resp == nil {
		logger.Log.Warnf("查询 [%s] 返回了无效响应", q)
		return nil
	}

	for _, r := range resp.Results {
		u := strings.TrimSpace(r.URL)
		if u == "" {
			continue
		}
		hits = append(hits, dm.SearchHit{Title: strings.TrimSpace(r.Title), URL: u})
	}
	logger.Log.Debugf("查询 [%s] 由 [%s] 命中 %d 条", q, resp.Backend, len(hits))
	return hits
}
