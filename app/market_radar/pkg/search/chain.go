package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
)

// ErrNoResults 所有搜索后端都没有返回结果
var ErrNoResults = errors.New("no search results")

// Named 带名字的搜索后端，用于日志
type Named struct {
	Name     string
	Searcher Searcher
}

// Chain 按顺序尝试多个搜索后端，第一个返回非空结果的后端胜出
type Chain struct {
	backends []Named
}

// NewChain 创建兜底搜索链
func NewChain(backends ...Named) *Chain {
	return &Chain{backends: backends}
}

var _ Searcher = (*Chain)(nil)

// Search implements Searcher
func (c *Chain) Search(ctx context.Context, req *Request) (*Response, error) {
	var errs []error
	for _, b := range c.backends {
		resp, err := b.Searcher.Search(ctx, req)
		if err != nil {
			logger.Log.Warnf("搜索后端 [%s] 失败: %v", b.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", b.Name, err))
			continue
		}
		if resp != nil && len(resp.Results) > 0 {
			resp.Backend = b.Name
			return resp, nil
		}
		logger.Log.Debugf("搜索后端 [%s] 无结果，尝试下一个", b.Name)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoResults, errors.Join(errs...))
	}
	return nil, ErrNoResults
}
