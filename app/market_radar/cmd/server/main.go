package main

import (
	"context"
	"log"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/spf13/pflag"

	"github.com/iWorld-y/market_radar/app/market_radar/internal/server"
	"github.com/iWorld-y/market_radar/app/market_radar/internal/service"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/llm"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/storage"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name = "market_radar"
	// Version 是服务的版本号
	Version string

	id, _ = os.Hostname()
)

func main() {
	configPath := pflag.StringP("config", "c", "app/market_radar/configs/config.yaml", "config path, eg: --config config.yaml")
	pflag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}

	ctx := context.Background()

	// 问答与流水线共用同一个 Completer，即同一个限流器
	completer, err := llm.NewCompleter(ctx, cfg.LLM, cfg.Concurrency)
	if err != nil {
		logger.Log.Fatalf("LLM 初始化失败: %v", err)
	}
	eng, err := engine.NewEngineWithCompleter(cfg, completer)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}
	store, err := storage.NewStore(cfg.Store)
	if err != nil {
		logger.Log.Fatalf("无法初始化报告存储: %v", err)
	}
	defer store.Close()

	kl := logger.NewKratosLogger()
	svc := service.NewRadarService(eng, store, completer, kl)
	hs := server.NewHTTPServer(cfg.Server, svc)

	app := kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(kl),
		kratos.Server(hs),
	)

	logger.Log.Infof("HTTP 服务监听于 %s", cfg.Server.Addr)
	if err := app.Run(); err != nil {
		logger.Log.Fatalf("服务退出: %v", err)
	}
}
