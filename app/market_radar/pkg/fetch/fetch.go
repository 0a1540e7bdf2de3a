package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
)

const (
	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	maxBodyBytes = 5 << 20
	// readability 结果短于该长度时改用整页文本
	minReadableLen = 200
	maxFallbackLen = 3000
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// Fetcher 抓取 URL 的原始内容，失败时返回空字符串
type Fetcher interface {
	Fetch(ctx context.Context, url string) string
}

// Cleaner 把原始 HTML 提炼为正文文本
type Cleaner interface {
	Clean(ctx context.Context, raw string) string
}

// Client 基于 net/http + go-readability 的抓取与清洗实现
type Client struct {
	client  *http.Client
	timeout time.Duration
}

// NewClient 创建抓取客户端
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

var (
	_ Fetcher = (*Client)(nil)
	_ Cleaner = (*Client)(nil)
)

// Fetch 抓取页面 HTML
func (c *Client) Fetch(ctx context.Context, pageURL string) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.get(ctx, pageURL)
	if err != nil {
		logger.Log.Warnf("抓取页面失败 [%s]: %v", pageURL, err)
		return ""
	}
	return body
}

func (c *Client) get(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body failed: %w", err)
	}
	return string(data), nil
}

// Clean 提取正文：优先 readability，正文过短时退化为整页纯文本
func (c *Client) Clean(ctx context.Context, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	base, _ := url.Parse("http://localhost/")
	article, err := readability.FromReader(strings.NewReader(raw), base)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); len(text) > minReadableLen {
			return text
		}
	} else {
		logger.Log.Debugf("readability 解析失败，改用纯文本: %v", err)
	}

	return plainText(raw)
}

func plainText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return truncate(strings.TrimSpace(raw), maxFallbackLen)
	}
	doc.Find("script, style, noscript").Remove()

	text := strings.ReplaceAll(doc.Text(), "\r", "")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")

	return truncate(strings.TrimSpace(text), maxFallbackLen)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
