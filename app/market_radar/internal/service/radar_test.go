package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/storage"
)

// mockPipeline 模拟流水线
type mockPipeline struct {
	report   *model.Report
	err      error
	industry string
}

func (m *mockPipeline) Run(ctx context.Context, opts engine.RunOptions) (*model.Report, error) {
	m.industry = opts.Industry
	return m.report, m.err
}

func newService(p Pipeline, c llm.Completer) (*RadarService, storage.ReportStore) {
	store := storage.NewMemoryStore(0, 10)
	return NewRadarService(p, store, c, log.DefaultLogger), store
}

func TestRadarService_Analyze(t *testing.T) {
	p := &mockPipeline{report: &model.Report{Summary: "ok", Sources: []string{"https://a.example"}}}
	svc, store := newService(p, llm.CompleterFunc(func(ctx context.Context, prompt string) string { return "" }))

	res, err := svc.Analyze(context.Background(), " fintech ")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if res.ReportID == "" || res.Industry != "fintech" || p.industry != "fintech" {
		t.Errorf("Analyze() = %+v, pipeline got %q", res, p.industry)
	}

	rec, err := store.Get(context.Background(), res.ReportID)
	if err != nil {
		t.Fatalf("report not stored: %v", err)
	}
	if rec.Report.Summary != "ok" {
		t.Errorf("stored report = %+v", rec.Report)
	}
}

func TestRadarService_AnalyzeErrors(t *testing.T) {
	svc, _ := newService(&mockPipeline{}, nil)
	if _, err := svc.Analyze(context.Background(), "  "); !errors.Is(err, ErrBadRequest) {
		t.Errorf("Analyze(empty) error = %v, want ErrBadRequest", err)
	}

	failing := &mockPipeline{err: engine.ErrNoInputData}
	svc, _ = newService(failing, nil)
	if _, err := svc.Analyze(context.Background(), "fintech"); !errors.Is(err, engine.ErrNoInputData) {
		t.Errorf("Analyze() error = %v, want ErrNoInputData", err)
	}
}

func TestRadarService_Chat(t *testing.T) {
	var prompt string
	c := llm.CompleterFunc(func(ctx context.Context, p string) string {
		prompt = p
		return "Stripe leads."
	})
	p := &mockPipeline{report: &model.Report{Summary: "payments", Sources: []string{"https://a.example"}}}
	svc, _ := newService(p, c)

	res, err := svc.Analyze(context.Background(), "fintech")
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.Chat(context.Background(), res.ReportID, "Who leads?")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got.Answer != "Stripe leads." || len(got.Citations) != 1 || got.Citations[0] != "https://a.example" {
		t.Errorf("Chat() = %+v", got)
	}
	if !strings.Contains(prompt, `"summary":"payments"`) || !strings.Contains(prompt, "QUESTION:\nWho leads?") {
		t.Errorf("prompt = %s", prompt)
	}
}

func TestRadarService_ChatErrors(t *testing.T) {
	svc, _ := newService(&mockPipeline{}, llm.CompleterFunc(func(ctx context.Context, p string) string { return "" }))

	if _, err := svc.Chat(context.Background(), "", "q"); !errors.Is(err, ErrBadRequest) {
		t.Errorf("Chat(no id) error = %v, want ErrBadRequest", err)
	}
	if _, err := svc.Chat(context.Background(), "nope", "q"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Chat(unknown) error = %v, want ErrNotFound", err)
	}
}
