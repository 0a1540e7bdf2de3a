package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
)

const (
	maxRetries = 3
	baseDelay  = 2 * time.Second
)

// EinoCompleter 通过 eino 的 OpenAI 兼容 ChatModel 完成文本补全（OpenAI、DeepSeek、Ollama 的 /v1 接口等）
type EinoCompleter struct {
	chatModel model.ChatModel
}

// NewEinoCompleter 初始化 OpenAI 兼容的 ChatModel
func NewEinoCompleter(ctx context.Context, baseURL, apiKey, modelName string) (*EinoCompleter, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return &EinoCompleter{chatModel: chatModel}, nil
}

var _ Completer = (*EinoCompleter)(nil)

// CompleteText 遇到 429 时按指数退避重试，其余错误直接返回空字符串
func (e *EinoCompleter) CompleteText(ctx context.Context, prompt string) string {
	messages := []*schema.Message{
		{Role: schema.User, Content: prompt},
	}

	for i := 0; i <= maxRetries; i++ {
		resp, err := e.chatModel.Generate(ctx, messages)
		if err == nil {
			return strings.TrimSpace(resp.Content)
		}

		if isRateLimited(err) && i < maxRetries {
			delay := baseDelay * time.Duration(1<<i)
			logger.Log.Warnf("LLM 触发限流，%v 后重试 (%d/%d)", delay, i+1, maxRetries)
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				logger.Log.Warnf("LLM 调用超时: %v", ctx.Err())
				return ""
			}
		}

		logger.Log.Errorf("LLM 调用失败: %v", err)
		return ""
	}
	return ""
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
