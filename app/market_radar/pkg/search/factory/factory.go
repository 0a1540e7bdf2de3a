package factory

import (
	"fmt"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/gnews"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/search"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/searxng"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/tavily"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/websearch"
)

// NewSearcher 根据配置创建搜索实例
func NewSearcher(cfg config.SearchConfig) (search.Searcher, error) {
	switch cfg.Provider {
	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey), nil

	case "searxng":
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil

	case "web", "":
		// DuckDuckGo -> Bing -> Google News RSS
		return search.NewChain(
			search.Named{Name: "duckduckgo", Searcher: websearch.NewClient(websearch.DuckDuckGo(cfg.Web.DuckDuckGoURL), cfg.Web.MaxResults)},
			search.Named{Name: "bing", Searcher: websearch.NewClient(websearch.Bing(cfg.Web.BingURL), cfg.Web.MaxResults)},
			search.Named{Name: "google_news", Searcher: gnews.NewClient(cfg.Web.GoogleNewsURL, cfg.Web.MaxResults)},
		), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Provider)
	}
}
