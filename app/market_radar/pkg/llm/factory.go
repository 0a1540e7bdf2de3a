package llm

import (
	"context"
	"fmt"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
)

// NewCompleter 根据配置创建带限流与超时的 Completer
func NewCompleter(ctx context.Context, cfg config.LLMConfig, cc config.ConcurrencyConfig) (Completer, error) {
	var c Completer
	switch cfg.Provider {
	case "openai", "":
		ec, err := NewEinoCompleter(ctx, cfg.BaseURL, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		c = ec
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic api key is missing")
		}
		c = NewAnthropicCompleter(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens)
	case "ollama":
		if cfg.Model == "" {
			return nil, fmt.Errorf("ollama model is missing")
		}
		c = NewOllamaCompleter(cfg.OllamaBin, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}

	return WithLimits(c, NewLimiter(cc.RPM, cc.QPS), cfg.Timeout), nil
}
