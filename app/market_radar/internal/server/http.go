package server

import (
	"context"
	"errors"
	nethttp "net/http"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/market_radar/app/market_radar/internal/service"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/storage"
)

// AnalyzeRequest POST /analyze 请求体
type AnalyzeRequest struct {
	Industry string `json:"industry"`
}

// ChatRequest POST /chat 请求体
type ChatRequest struct {
	ReportID string `json:"report_id"`
	Question string `json:"question"`
}

// NewHTTPServer 创建 HTTP 服务并注册路由
func NewHTTPServer(c config.ServerConfig, s *service.RadarService) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
		http.Filter(corsFilter(c.CORSOrigins)),
	}
	if c.Addr != "" {
		opts = append(opts, http.Address(c.Addr))
	}
	if c.Timeout > 0 {
		opts = append(opts, http.Timeout(c.Timeout))
	}

	srv := http.NewServer(opts...)
	r := srv.Route("/")
	r.POST("/analyze", analyzeHandler(s))
	r.POST("/chat", chatHandler(s))
	r.GET("/health", func(ctx http.Context) error {
		return ctx.Result(200, map[string]string{"status": "OK"})
	})
	return srv
}

func analyzeHandler(s *service.RadarService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in AnalyzeRequest
		if err := ctx.Bind(&in); err != nil {
			return kerrors.BadRequest("BAD_REQUEST", "Request must contain 'industry'")
		}
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return s.Analyze(ctx, req.(*AnalyzeRequest).Industry)
		})
		out, err := h(ctx, &in)
		if err != nil {
			return toHTTPError(err)
		}
		return ctx.Result(200, out)
	}
}

func chatHandler(s *service.RadarService) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in ChatRequest
		if err := ctx.Bind(&in); err != nil {
			return kerrors.BadRequest("BAD_REQUEST", "report_id and question required")
		}
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			r := req.(*ChatRequest)
			return s.Chat(ctx, r.ReportID, r.Question)
		})
		out, err := h(ctx, &in)
		if err != nil {
			return toHTTPError(err)
		}
		return ctx.Result(200, out)
	}
}

// toHTTPError 把业务错误映射为带状态码的 kratos 错误
func toHTTPError(err error) error {
	var se *kerrors.Error
	switch {
	case errors.As(err, &se):
		return se
	case errors.Is(err, service.ErrBadRequest), errors.Is(err, engine.ErrInvalidInput):
		return kerrors.BadRequest("BAD_REQUEST", err.Error())
	case errors.Is(err, engine.ErrNoInputData):
		return kerrors.New(422, "NO_INPUT_DATA", err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return kerrors.NotFound("REPORT_NOT_FOUND", "Report not found")
	default:
		return kerrors.InternalServer("PIPELINE_FAILED", "Pipeline failed: "+err.Error())
	}
}

// corsFilter 允许配置的来源跨域访问，"*" 表示全部
func corsFilter(origins []string) http.FilterFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return func(next nethttp.Handler) nethttp.Handler {
		return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			origin := r.Header.Get("Origin")
			_, ok := allowed[origin]
			if origin != "" && (allowAll || ok) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					h.Set("Access-Control-Allow-Headers", reqHeaders)
				} else {
					h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				}
			}
			if r.Method == nethttp.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(nethttp.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
