// Package llm 提供单轮文本补全能力。所有实现在失败或超时时返回空字符串，不向调用方返回错误。
package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
)

// Completer 单轮文本补全
type Completer interface {
	CompleteText(ctx context.Context, prompt string) string
}

// CompleterFunc 函数适配器
type CompleterFunc func(ctx context.Context, prompt string) string

// CompleteText implements Completer
func (f CompleterFunc) CompleteText(ctx context.Context, prompt string) string {
	return f(ctx, prompt)
}

// guarded 为任意 Completer 加上限流与超时
type guarded struct {
	next    Completer
	limiter *rate.Limiter
	timeout time.Duration
}

// WithLimits 包装 Completer：每次调用先等待限流器，再在 timeout 内完成
func WithLimits(next Completer, limiter *rate.Limiter, timeout time.Duration) Completer {
	return &guarded{next: next, limiter: limiter, timeout: timeout}
}

func (g *guarded) CompleteText(ctx context.Context, prompt string) string {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			logger.Log.Warnf("LLM 限流等待失败: %v", err)
			return ""
		}
	}
	return g.next.CompleteText(ctx, prompt)
}

// NewLimiter 按 RPM/QPS 配置创建限流器
func NewLimiter(rpm, qps int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := qps
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}
