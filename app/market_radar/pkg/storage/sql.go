package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

var _ ReportStore = (*SQLStore)(nil)

const reportSchema = `
CREATE TABLE IF NOT EXISTS market_reports (
	id TEXT PRIMARY KEY,
	industry TEXT NOT NULL,
	report TEXT NOT NULL,
	created_at BIGINT NOT NULL
);
`

// reportRow market_reports 表的一行
type reportRow struct {
	ID        string `db:"id"`
	Industry  string `db:"industry"`
	Report    string `db:"report"`
	CreatedAt int64  `db:"created_at"`
}

// SQLStore 基于 sqlx 的报告存储，支持 sqlite 与 postgres。
// 容量超限时按写入时间淘汰最旧的报告。
type SQLStore struct {
	db       *sqlx.DB
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// NewSQLStore 打开数据库并建表
func NewSQLStore(driver, dsn string, ttl time.Duration, capacity int) (*SQLStore, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if _, err := db.Exec(reportSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLStore{db: db, ttl: ttl, capacity: capacity, now: time.Now}, nil
}

func (s *SQLStore) Save(ctx context.Context, rec *Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	body, err := json.Marshal(rec.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
	INSERT INTO market_reports (id, industry, report, created_at) VALUES (?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET industry = excluded.industry, report = excluded.report, created_at = excluded.created_at
	`), rec.ID, rec.Industry, string(body), rec.CreatedAt.UnixNano())
	if err == nil && s.ttl > 0 {
		_, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM market_reports WHERE created_at < ?`),
			s.now().Add(-s.ttl).UnixNano())
	}
	if err == nil && s.capacity > 0 {
		_, err = tx.ExecContext(ctx, tx.Rebind(`
		DELETE FROM market_reports WHERE id NOT IN (
			SELECT id FROM market_reports ORDER BY created_at DESC LIMIT ?
		)`), s.capacity)
	}
	if err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w: %v", err, rerr)
		}
		return fmt.Errorf("save report %s: %w", rec.ID, err)
	}
	return tx.Commit()
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Record, error) {
	var row reportRow
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind(`SELECT id, industry, report, created_at FROM market_reports WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report %s: %w", id, err)
	}

	rec := &Record{ID: row.ID, Industry: row.Industry, CreatedAt: time.Unix(0, row.CreatedAt)}
	if s.ttl > 0 && s.now().Sub(rec.CreatedAt) > s.ttl {
		return nil, ErrNotFound
	}

	rec.Report = &model.Report{}
	if err := json.Unmarshal([]byte(row.Report), rec.Report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
