package gnews

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/search"
)

const DefaultFeedURL = "https://news.google.com/rss/search"

// Client Google News RSS 搜索客户端
type Client struct {
	feedURL    string
	maxResults int
	client     *http.Client
	parser     *gofeed.Parser
}

// NewClient 创建 Google News RSS 客户端
func NewClient(feedURL string, maxResults int) *Client {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{
		feedURL:    feedURL,
		maxResults: maxResults,
		client:     &http.Client{Timeout: 20 * time.Second},
		parser:     gofeed.NewParser(),
	}
}

// Ensure Client implements search.Searcher
var _ search.Searcher = (*Client)(nil)

// Search implements search.Searcher
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	u, err := url.Parse(c.feedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL: %w", err)
	}
	q := u.Query()
	q.Set("q", req.Query)
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google news rss error (status %d)", res.StatusCode)
	}

	feed, err := c.parser.Parse(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed failed: %w", err)
	}

	limit := c.maxResults
	if req.MaxResults > 0 && req.MaxResults < limit {
		limit = req.MaxResults
	}

	results := make([]search.Result, 0, limit)
	for _, it := range feed.Items {
		if len(results) >= limit {
			break
		}
		link := strings.TrimSpace(it.Link)
		if link == "" {
			continue
		}
		r := search.Result{
			Title:   strings.TrimSpace(it.Title),
			URL:     link,
			Content: it.Description,
		}
		if it.PublishedParsed != nil {
			r.PublishedDate = it.PublishedParsed.Format(time.DateOnly)
		}
		results = append(results, r)
	}

	return &search.Response{Results: results}, nil
}
