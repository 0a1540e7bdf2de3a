package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/pflag"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/storage"
)

func main() {
	var (
		configPath string
		industry   string
		asJSON     bool
		save       bool
	)
	pflag.StringVarP(&configPath, "config", "c", "app/market_radar/configs/config.yaml", "Path to configuration file")
	pflag.StringVarP(&industry, "industry", "i", "", "Industry to analyze, e.g. \"fintech\"")
	pflag.BoolVar(&asJSON, "json", false, "Print the report as JSON")
	pflag.BoolVar(&save, "save", false, "Save the report to the configured store")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: market_radar --industry <name> [options]\n\nOptions:\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if industry == "" && pflag.NArg() > 0 {
		industry = pflag.Arg(0)
	}
	if industry == "" {
		pflag.Usage()
		os.Exit(2)
	}

	// 1. 加载配置
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}

	ctx := context.Background()

	// 3. 初始化引擎
	eng, err := engine.NewEngine(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	opts := engine.RunOptions{Industry: industry}
	var spinner *pterm.SpinnerPrinter
	if !asJSON {
		printHeader(industry)
		spinner, _ = pterm.DefaultSpinner.
			WithStyle(pterm.NewStyle(pterm.FgCyan)).
			Start("Collecting sources...")
		opts.ProgressCallback = func(status string, progress int) {
			spinner.UpdateText(fmt.Sprintf("[%3d%%] %s", progress, status))
		}
	}

	report, err := eng.Run(ctx, opts)
	if err != nil {
		if spinner != nil {
			spinner.Fail(err.Error())
		}
		logger.Log.Fatalf("报告生成失败: %v", err)
	}
	if spinner != nil {
		spinner.Success("Report ready")
	}

	// 4. 可选保存
	if save {
		store, err := storage.NewStore(cfg.Store)
		if err != nil {
			logger.Log.Errorf("无法初始化报告存储: %v", err)
		} else {
			defer store.Close()
			id := uuid.NewString()
			if err := store.Save(ctx, &storage.Record{ID: id, Industry: industry, Report: report}); err != nil {
				logger.Log.Errorf("保存报告失败: %v", err)
			} else {
				logger.Log.Infof("报告已保存, ID: %s", id)
				if !asJSON {
					pterm.Info.Printf("Saved report %s\n", id)
				}
			}
		}
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Log.Fatalf("输出 JSON 失败: %v", err)
		}
		return
	}
	printReport(report)
}
