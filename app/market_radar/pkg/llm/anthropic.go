package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
)

// AnthropicCompleter 通过 Anthropic Messages API 完成文本补全
type AnthropicCompleter struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicCompleter 创建 Anthropic 客户端，baseURL 为空时使用官方地址
func NewAnthropicCompleter(apiKey, baseURL, model string, maxTokens int) *AnthropicCompleter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)

	return &AnthropicCompleter{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
	}
}

var _ Completer = (*AnthropicCompleter)(nil)

// CompleteText implements Completer
func (a *AnthropicCompleter) CompleteText(ctx context.Context, prompt string) string {
	messages := []anthropic.MessageParam{{
		Content: []anthropic.ContentBlockParamUnion{{
			OfText: &anthropic.TextBlockParam{Text: prompt},
		}},
		Role: anthropic.MessageParamRoleUser,
	}}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages:  messages,
	})
	if err != nil {
		logger.Log.Errorf("Anthropic 调用失败: %v", err)
		return ""
	}

	var parts []string
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			parts = append(parts, variant.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}
