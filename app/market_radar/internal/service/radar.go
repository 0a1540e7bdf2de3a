package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/storage"
)

// ErrBadRequest 请求参数缺失
var ErrBadRequest = errors.New("bad request")

const chatPrompt = `
Answer the question using ONLY the report below.

REPORT:
%s

QUESTION:
%s
`

// Pipeline 报告生成流水线
type Pipeline interface {
	Run(ctx context.Context, opts engine.RunOptions) (*model.Report, error)
}

// AnalyzeResult 一次分析的结果
type AnalyzeResult struct {
	ReportID string        `json:"report_id"`
	Industry string        `json:"industry"`
	Report   *model.Report `json:"report"`
}

// ChatResult 针对报告的问答结果
type ChatResult struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
}

// RadarService 分析与问答业务
type RadarService struct {
	pipeline  Pipeline
	store     storage.ReportStore
	completer llm.Completer
	log       *log.Helper
}

// NewRadarService 创建服务实例
func NewRadarService(p Pipeline, store storage.ReportStore, completer llm.Completer, logger log.Logger) *RadarService {
	return &RadarService{
		pipeline:  p,
		store:     store,
		completer: completer,
		log:       log.NewHelper(logger),
	}
}

// Analyze 生成报告并保存，返回报告 ID
func (s *RadarService) Analyze(ctx context.Context, industry string) (*AnalyzeResult, error) {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		return nil, fmt.Errorf("%w: request must contain 'industry'", ErrBadRequest)
	}

	report, err := s.pipeline.Run(ctx, engine.RunOptions{Industry: industry})
	if err != nil {
		return nil, err
	}

	res := &AnalyzeResult{ReportID: uuid.NewString(), Industry: industry, Report: report}
	rec := &storage.Record{ID: res.ReportID, Industry: industry, Report: report}
	if err := s.store.Save(ctx, rec); err != nil {
		// 报告仍然返回，只是后续无法问答
		s.log.Errorf("保存报告失败 [%s]: %v", res.ReportID, err)
	}
	return res, nil
}

// Chat 仅依据已保存的报告回答问题
func (s *RadarService) Chat(ctx context.Context, reportID, question string) (*ChatResult, error) {
	if strings.TrimSpace(reportID) == "" || strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: report_id and question required", ErrBadRequest)
	}

	rec, err := s.store.Get(ctx, reportID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(rec.Report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	answer := s.completer.CompleteText(ctx, fmt.Sprintf(chatPrompt, body, question))
	if answer == "" {
		s.log.Warnf("问答无输出 [%s]", reportID)
	}

	citations := rec.Report.Sources
	if citations == nil {
		citations = []string{}
	}
	return &ChatResult{Answer: answer, Citations: citations}, nil
}
