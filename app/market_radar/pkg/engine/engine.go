package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/fetch"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	dm "github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/search"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/search/factory"
)

var (
	// ErrNoInputData 搜索阶段没有得到任何可用的 URL
	ErrNoInputData = errors.New("no input data")
	// ErrInvalidInput 行业名为空
	ErrInvalidInput = errors.New("invalid input")
)

const (
	maxHits    = 5
	maxScored  = 3
	maxImpacts = 5
	maxSources = 4

	unknownEvent = "Unknown event"
	defaultFocus = "market intelligence"
)

// HitCollector 搜索阶段
type HitCollector interface {
	Collect(ctx context.Context, industry string) []dm.SearchHit
}

// Engine 核心处理引擎：COLLECT → EXTRACT → SCORE → SYNTHESIZE
type Engine struct {
	collector HitCollector
	extractor *Extractor
	scorer    *Scorer
	writer    *Writer
}

// Options 引擎可调参数，零值使用默认值
type Options struct {
	SearchTimeout   time.Duration
	SynthesisBudget int
	FallbackBaseURL string
	SourceFilter    SourceFilter
}

// New 用给定的外部依赖组装引擎
func New(searcher search.Searcher, fetcher fetch.Fetcher, cleaner fetch.Cleaner, completer llm.Completer, opts Options) *Engine {
	return &Engine{
		collector: NewCollector(searcher, opts.SearchTimeout, opts.FallbackBaseURL),
		extractor: NewExtractor(fetcher, cleaner, completer),
		scorer:    NewScorer(completer),
		writer:    NewWriter(completer, opts.SourceFilter, opts.SynthesisBudget),
	}
}

// NewEngine 按配置创建引擎实例
func NewEngine(ctx context.Context, cfg *config.Config) (*Engine, error) {
	completer, err := llm.NewCompleter(ctx, cfg.LLM, cfg.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return NewEngineWithCompleter(cfg, completer)
}

// NewEngineWithCompleter 按配置创建引擎，LLM 由调用方提供，便于与其他组件共用同一个限流器
func NewEngineWithCompleter(cfg *config.Config, completer llm.Completer) (*Engine, error) {
	searcher, err := factory.NewSearcher(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}

	fetcher := fetch.NewClient(cfg.Pipeline.FetchTimeout)

	return New(searcher, fetcher, fetcher, completer, Options{
		SearchTimeout:   cfg.Pipeline.SearchTimeout,
		SynthesisBudget: cfg.Pipeline.SynthesisBudget,
		FallbackBaseURL: cfg.Pipeline.FallbackBaseURL,
		SourceFilter:    NewDenylistFilter(cfg.Pipeline.SourceDenylist),
	}), nil
}

// RunOptions 运行选项
type RunOptions struct {
	Industry         string
	ProgressCallback func(status string, progress int)
}

// Run 为一个行业生成市场情报报告。
// 只有搜索阶段拿不到 URL 时返回 ErrNoInputData，其余阶段的失败都会降级为默认值。
func (e *Engine) Run(ctx context.Context, opts RunOptions) (*dm.Report, error) {
	industry := strings.TrimSpace(opts.Industry)
	if industry == "" {
		return nil, fmt.Errorf("%w: industry is required", ErrInvalidInput)
	}

	progress := func(status string, p int) {
		if opts.ProgressCallback != nil {
			opts.ProgressCallback(status, p)
		}
	}

	logger.Log.Infof("开始为行业 [%s] 生成市场情报报告", industry)
	progress("collecting", 0)

	// 1. 搜索
	hits := dedupeHits(e.collector.Collect(ctx, industry))
	if len(hits) > maxHits {
		hits = hits[:maxHits]
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: collector returned no URLs", ErrNoInputData)
	}
	firstURL := hits[0].URL
	if firstURL == "" {
		return nil, fmt.Errorf("%w: no URL found in collector output", ErrNoInputData)
	}

	// 2. 实体提取，只做一次
	progress("extracting", 20)
	entities := e.extractor.Extract(ctx, firstURL)
	logger.Log.Infof("实体提取完成: %d 个竞争对手, %d 个主题", len(entities.Competitors), len(entities.EmergingThemes))

	// 3. 影响评估
	scored := hits
	if len(scored) > maxScored {
		scored = scored[:maxScored]
	}
	ictx := dm.ImpactContext{Industry: industry, Focus: defaultFocus}
	impacts := make([]dm.ImpactAssessment, 0, len(scored))
	for i, h := range scored {
		progress(fmt.Sprintf("scoring %d/%d", i+1, len(scored)), 40+i*40/len(scored))

		title := h.Title
		if title == "" {
			title = unknownEvent
		}
		event := dm.Event{
			Title: title,
			URL:   h.URL,
			Signals: dm.Signals{
				Industry:    industry,
				Competitors: entities.Competitors,
				Themes:      entities.EmergingThemes,
			},
			KeyPoints: entities.KeyPoints,
		}
		impacts = append(impacts, e.scorer.Score(ctx, event, ictx))
	}
	impacts = dedupeImpacts(impacts, maxImpacts)

	// 4. 报告合成
	progress("synthesizing", 80)
	report := e.writer.Write(ctx, dm.SynthesisInput{
		Context:     industry,
		Competitors: entities.Competitors,
		Impacts:     impacts,
		Sources:     uniqueSources(hits, maxSources),
	})

	progress("completed", 100)
	logger.Log.Infof("行业 [%s] 报告生成完成: %d 条影响, %d 个来源", industry, len(report.ImpactRadar), len(report.Sources))
	return &report, nil
}
