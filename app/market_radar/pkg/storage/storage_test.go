package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/model"
)

func sampleRecord(id string, at time.Time) *Record {
	return &Record{
		ID:       id,
		Industry: "fintech",
		Report: &model.Report{
			Summary: "fintech market analysis",
			Drivers: []string{"Regulation"},
			Sources: []string{"https://a.example"},
		},
		CreatedAt: at,
	}
}

// fakeClock 可手动推进的时钟
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestMemoryStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour, 10)

	if err := s.Save(ctx, sampleRecord("r1", time.Time{})); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Report.Summary != "fintech market analysis" || got.CreatedAt.IsZero() {
		t.Errorf("Get() = %+v", got)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(time.Hour, 0)
	s.now = clock.now

	_ = s.Save(ctx, sampleRecord("old", time.Time{}))
	clock.t = clock.t.Add(2 * time.Hour)

	if _, err := s.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(expired) error = %v, want ErrNotFound", err)
	}
	if s.Len() != 0 {
		t.Errorf("expired entry not removed, Len() = %d", s.Len())
	}
}

func TestMemoryStore_LRU(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0, 2)

	_ = s.Save(ctx, sampleRecord("a", time.Time{}))
	_ = s.Save(ctx, sampleRecord("b", time.Time{}))
	// 访问 a 使 b 成为最久未使用
	if _, err := s.Get(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	_ = s.Save(ctx, sampleRecord("c", time.Time{}))

	if _, err := s.Get(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("b should be evicted, err = %v", err)
	}
	for _, id := range []string{"a", "c"} {
		if _, err := s.Get(ctx, id); err != nil {
			t.Errorf("Get(%s) error = %v", id, err)
		}
	}
}

func newSQLiteStore(t *testing.T, ttl time.Duration, capacity int) *SQLStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	s, err := NewSQLStore("sqlite", dsn, ttl, capacity)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteStore(t, time.Hour, 10)

	now := time.Now()
	if err := s.Save(ctx, sampleRecord("r1", now)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Industry != "fintech" || got.Report.Summary != "fintech market analysis" {
		t.Errorf("Get() = %+v", got)
	}
	if len(got.Report.Sources) != 1 || got.Report.Sources[0] != "https://a.example" {
		t.Errorf("Sources = %v", got.Report.Sources)
	}
	if !got.CreatedAt.Equal(time.Unix(0, now.UnixNano())) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}

	// 同 ID 覆盖写
	updated := sampleRecord("r1", now)
	updated.Report.Summary = "updated"
	if err := s.Save(ctx, updated); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}
	got, _ = s.Get(ctx, "r1")
	if got.Report.Summary != "updated" {
		t.Errorf("Summary = %q, want updated", got.Report.Summary)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLStore_Eviction(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newSQLiteStore(t, time.Hour, 2)
	s.now = clock.now

	for i, id := range []string{"a", "b", "c"} {
		if err := s.Save(ctx, sampleRecord(id, clock.t.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("oldest report should be evicted, err = %v", err)
	}

	clock.t = clock.t.Add(3 * time.Hour)
	if _, err := s.Get(ctx, "c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired report returned, err = %v", err)
	}
}

func TestNewStore(t *testing.T) {
	if _, err := NewStore(config.StoreConfig{Driver: "memory"}); err != nil {
		t.Errorf("NewStore(memory) error = %v", err)
	}
	if _, err := NewStore(config.StoreConfig{Driver: "postgres"}); err == nil {
		t.Error("NewStore(postgres) without dsn should fail")
	}
	if _, err := NewStore(config.StoreConfig{Driver: "mongo"}); err == nil {
		t.Error("NewStore(mongo) should fail")
	}
}

func TestSQLStore_Placeholders(t *testing.T) {
	const q = `SELECT id FROM market_reports WHERE id = ? AND created_at < ?`

	pg := &SQLStore{db: sqlx.NewDb(nil, "postgres")}
	if got := pg.db.Rebind(q); got != `SELECT id FROM market_reports WHERE id = $1 AND created_at < $2` {
		t.Errorf("postgres Rebind() = %q", got)
	}

	lite := &SQLStore{db: sqlx.NewDb(nil, "sqlite")}
	if got := lite.db.Rebind(q); got != q {
		t.Errorf("sqlite Rebind() = %q", got)
	}
}
