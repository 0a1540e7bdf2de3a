// Package storage 保存生成的报告，供后续按 ID 查询（问答接口使用）。
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

// ErrNotFound 报告不存在或已过期
var ErrNotFound = errors.New("report not found")

// Record 一条已保存的报告
type Record struct {
	ID        string
	Industry  string
	Report    *model.Report
	CreatedAt time.Time
}

// ReportStore 报告存储。实现需要自行处理 TTL 过期与容量淘汰
type ReportStore interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Close() error
}

// NewStore 根据配置创建报告存储
func NewStore(cfg config.StoreConfig) (ReportStore, error) {
	switch cfg.Driver {
	case "memory", "":
		return NewMemoryStore(cfg.TTL, cfg.Capacity), nil
	case "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file:market_radar.db"
		}
		return NewSQLStore("sqlite", dsn, cfg.TTL, cfg.Capacity)
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres dsn is missing")
		}
		return NewSQLStore("postgres", cfg.DSN, cfg.TTL, cfg.Capacity)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}
