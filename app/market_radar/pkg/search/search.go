package search

import "context"

// Topic 搜索类别
type Topic string

const (
	TopicGeneral Topic = "general"
	TopicNews    Topic = "news"
)

// Searcher 定义通用的搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求
type Request struct {
	Query      string
	Topic      Topic
	MaxResults int // <=0 表示由后端决定
}

// Response 通用搜索响应
type Response struct {
	// Backend 实际给出结果的后端名，用于日志
	Backend string
	Results []Result
}

// Result 单条搜索结果，只有 URL 是必需的
type Result struct {
	Title         string
	URL           string
	Content       string
	PublishedDate string // YYYY-MM-DD，未知时为空
}
