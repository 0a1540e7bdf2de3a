package server

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/market_radar/app/market_radar/internal/service"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/storage"
)

type mockPipeline struct {
	report *model.Report
	err    error
	panics bool
}

func (m *mockPipeline) Run(ctx context.Context, opts engine.RunOptions) (*model.Report, error) {
	if m.panics {
		panic("pipeline crashed")
	}
	return m.report, m.err
}

func newTestServer(p service.Pipeline) nethttp.Handler {
	echo := llm.CompleterFunc(func(ctx context.Context, prompt string) string { return "answer" })
	svc := service.NewRadarService(p, storage.NewMemoryStore(time.Hour, 10), echo, log.DefaultLogger)
	return NewHTTPServer(config.ServerConfig{Timeout: 5 * time.Second, CORSOrigins: []string{"*"}}, svc)
}

func do(t *testing.T, h nethttp.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(&mockPipeline{}), nethttp.MethodGet, "/health", "")
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), `"status":"OK"`) {
		t.Errorf("GET /health = %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestAnalyzeAndChat(t *testing.T) {
	p := &mockPipeline{report: &model.Report{Summary: "s", Sources: []string{"https://a.example"}}}
	h := newTestServer(p)

	rec := do(t, h, nethttp.MethodPost, "/analyze", `{"industry":"fintech"}`)
	if rec.Code != 200 {
		t.Fatalf("POST /analyze = %d %s", rec.Code, rec.Body.String())
	}
	var res service.AnalyzeResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.ReportID == "" || res.Industry != "fintech" || res.Report.Summary != "s" {
		t.Errorf("analyze response = %+v", res)
	}

	rec = do(t, h, nethttp.MethodPost, "/chat", fmt.Sprintf(`{"report_id":%q,"question":"why?"}`, res.ReportID))
	if rec.Code != 200 {
		t.Fatalf("POST /chat = %d %s", rec.Code, rec.Body.String())
	}
	var chat service.ChatResult
	if err := json.Unmarshal(rec.Body.Bytes(), &chat); err != nil {
		t.Fatal(err)
	}
	if chat.Answer != "answer" || len(chat.Citations) != 1 {
		t.Errorf("chat response = %+v", chat)
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		pipeline *mockPipeline
		path     string
		body     string
		want     int
	}{
		{name: "missing industry", pipeline: &mockPipeline{}, path: "/analyze", body: `{}`, want: 400},
		{name: "no input data", pipeline: &mockPipeline{err: fmt.Errorf("%w: collector returned no URLs", engine.ErrNoInputData)}, path: "/analyze", body: `{"industry":"x"}`, want: 422},
		{name: "pipeline error", pipeline: &mockPipeline{err: fmt.Errorf("disk full")}, path: "/analyze", body: `{"industry":"x"}`, want: 500},
		{name: "pipeline panic", pipeline: &mockPipeline{panics: true}, path: "/analyze", body: `{"industry":"x"}`, want: 500},
		{name: "chat missing fields", pipeline: &mockPipeline{}, path: "/chat", body: `{"report_id":"abc"}`, want: 400},
		{name: "chat unknown report", pipeline: &mockPipeline{}, path: "/chat", body: `{"report_id":"abc","question":"q"}`, want: 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(tt.pipeline), nethttp.MethodPost, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("POST %s = %d, want %d (%s)", tt.path, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h := corsFilter([]string{"https://app.example"})(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		t.Error("preflight should not reach the router")
	}))

	req := httptest.NewRequest(nethttp.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != nethttp.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	other := httptest.NewRequest(nethttp.MethodOptions, "/analyze", nil)
	other.Header.Set("Origin", "https://evil.example")
	other.Header.Set("Access-Control-Request-Method", "POST")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got %q", got)
	}
}
