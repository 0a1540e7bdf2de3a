// Package websearch 通过解析公开搜索结果页（DuckDuckGo HTML、Bing）获取搜索结果，无需 API Key。
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/search"
)

const (
	DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"
	DefaultBingURL       = "https://www.bing.com/search"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Engine 描述一个结果页：如何发请求、用哪个选择器取链接
type Engine struct {
	Name     string
	Endpoint string
	Selector string
	build    func(ctx context.Context, endpoint, query string) (*http.Request, error)
	resolve  func(href string) string
}

// DuckDuckGo 返回 DuckDuckGo HTML 版结果页的解析配置
func DuckDuckGo(endpoint string) Engine {
	if endpoint == "" {
		endpoint = DefaultDuckDuckGoURL
	}
	return Engine{
		Name:     "duckduckgo",
		Endpoint: endpoint,
		Selector: "a.result__a",
		build: func(ctx context.Context, endpoint, query string) (*http.Request, error) {
			form := url.Values{"q": {query}}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			return req, nil
		},
		resolve: resolveDuckDuckGo,
	}
}

// Bing 返回 Bing 结果页的解析配置
func Bing(endpoint string) Engine {
	if endpoint == "" {
		endpoint = DefaultBingURL
	}
	return Engine{
		Name:     "bing",
		Endpoint: endpoint,
		Selector: "li.b_algo h2 a",
		build: func(ctx context.Context, endpoint, query string) (*http.Request, error) {
			u, err := url.Parse(endpoint)
			if err != nil {
				return nil, err
			}
			q := u.Query()
			q.Set("q", query)
			u.RawQuery = q.Encode()
			return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		},
		resolve: func(href string) string { return href },
	}
}

// Client 基于 goquery 的结果页解析客户端
type Client struct {
	engine     Engine
	maxResults int
	client     *http.Client
}

// NewClient 创建结果页解析客户端
func NewClient(engine Engine, maxResults int) *Client {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{
		engine:     engine,
		maxResults: maxResults,
		client:     &http.Client{Timeout: 20 * time.Second},
	}
}

// Ensure Client implements search.Searcher
var _ search.Searcher = (*Client)(nil)

// Search implements search.Searcher
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	httpReq, err := c.engine.build(ctx, c.engine.Endpoint, req.Query)
	if err != nil {
		return nil, fmt.Errorf("%s: create request failed: %w", c.engine.Name, err)
	}
	httpReq.Header.Set("User-Agent", userAgent)

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", c.engine.Name, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, fmt.Errorf("%s: unexpected status %d", c.engine.Name, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: parse html failed: %w", c.engine.Name, err)
	}

	limit := c.maxResults
	if req.MaxResults > 0 && req.MaxResults < limit {
		limit = req.MaxResults
	}

	var results []search.Result
	doc.Find(c.engine.Selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Text())
		href, ok := s.Attr("href")
		if !ok || title == "" {
			return true
		}
		link := c.engine.resolve(strings.TrimSpace(href))
		if link == "" {
			return true
		}
		results = append(results, search.Result{Title: title, URL: link})
		return len(results) < limit
	})

	return &search.Response{Results: results}, nil
}

// resolveDuckDuckGo 还原 DuckDuckGo 的跳转链接 //duckduckgo.com/l/?uddg=<真实地址>
func resolveDuckDuckGo(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return href
}
