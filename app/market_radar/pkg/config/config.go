package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Store       StoreConfig       `yaml:"store"`
	Server      ServerConfig      `yaml:"server"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	Provider  string        `yaml:"provider"` // openai | anthropic | ollama
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
	OllamaBin string        `yaml:"ollama_bin"`
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider string        `yaml:"provider"` // tavily | searxng | web
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
	Web      WebConfig     `yaml:"web"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// WebConfig HTML 搜索页与新闻 RSS 的兜底链配置
type WebConfig struct {
	DuckDuckGoURL string `yaml:"duckduckgo_url"`
	BingURL       string `yaml:"bing_url"`
	GoogleNewsURL string `yaml:"google_news_url"`
	MaxResults    int    `yaml:"max_results"`
}

// PipelineConfig 流水线策略配置
type PipelineConfig struct {
	SearchTimeout   time.Duration `yaml:"search_timeout"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	SynthesisBudget int           `yaml:"synthesis_budget"`
	FallbackBaseURL string        `yaml:"fallback_base_url"`
	SourceDenylist  []string      `yaml:"source_denylist"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// StoreConfig 报告存储配置
type StoreConfig struct {
	Driver   string        `yaml:"driver"` // memory | sqlite | postgres
	DSN      string        `yaml:"dsn"`
	TTL      time.Duration `yaml:"ttl"`
	Capacity int           `yaml:"capacity"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	Timeout     time.Duration `yaml:"timeout"`
	CORSOrigins []string      `yaml:"cors_origins"`
}

// LoadConfig 从指定路径加载配置，并叠加 .env 与环境变量
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// .env 不存在时忽略
	_ = godotenv.Load()
	cfg.ApplyEnv()
	cfg.SetDefaults()

	return &cfg, nil
}

// ApplyEnv 用环境变量覆盖密钥类配置
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && c.LLM.Provider == "anthropic" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		c.Search.Tavily.APIKey = v
	}
	if v := os.Getenv("STORE_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("STORE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Store.Capacity = n
		}
	}
}

// SetDefaults 为未配置的字段填充默认值
func (c *Config) SetDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 120 * time.Second
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2048
	}
	if c.LLM.OllamaBin == "" {
		c.LLM.OllamaBin = "ollama"
	}
	if c.Search.Provider == "" {
		if c.Search.Tavily.APIKey != "" {
			c.Search.Provider = "tavily"
		} else {
			c.Search.Provider = "web"
		}
	}
	if c.Search.Web.MaxResults == 0 {
		c.Search.Web.MaxResults = 5
	}
	if c.Pipeline.SearchTimeout == 0 {
		c.Pipeline.SearchTimeout = 20 * time.Second
	}
	if c.Pipeline.FetchTimeout == 0 {
		c.Pipeline.FetchTimeout = 30 * time.Second
	}
	if c.Pipeline.SynthesisBudget == 0 {
		c.Pipeline.SynthesisBudget = 14000
	}
	if c.Pipeline.FallbackBaseURL == "" {
		c.Pipeline.FallbackBaseURL = "https://en.wikipedia.org/wiki"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.QPS == 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM == 0 {
		c.Concurrency.RPM = 60
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Store.TTL == 0 {
		c.Store.TTL = 24 * time.Hour
	}
	if c.Store.Capacity == 0 {
		c.Store.Capacity = 500
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "0.0.0.0:8000"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 10 * time.Minute
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
}
