package storage

import (
	"container/list"
	"context"
	"sync"
	"time"
)

var _ ReportStore = (*MemoryStore)(nil)

// MemoryStore 进程内存储，带 TTL 与 LRU 容量淘汰
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	order    *list.List // 队首为最近使用
	items    map[string]*list.Element
	now      func() time.Time
}

// NewMemoryStore 创建内存存储。ttl 或 capacity 为 0 表示不限
func NewMemoryStore(ttl time.Duration, capacity int) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(ctx context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	if el, ok := m.items[rec.ID]; ok {
		el.Value = rec
		m.order.MoveToFront(el)
		return nil
	}

	m.items[rec.ID] = m.order.PushFront(rec)
	m.purgeLocked()
	for m.capacity > 0 && m.order.Len() > m.capacity {
		m.removeLocked(m.order.Back())
	}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	rec := el.Value.(*Record)
	if m.expired(rec) {
		m.removeLocked(el)
		return nil, ErrNotFound
	}
	m.order.MoveToFront(el)
	return rec, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.order.Init()
	m.items = make(map[string]*list.Element)
	return nil
}

// Len 当前条目数（含尚未清理的过期条目）
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *MemoryStore) expired(rec *Record) bool {
	return m.ttl > 0 && m.now().Sub(rec.CreatedAt) > m.ttl
}

// purgeLocked 从最久未使用的一端清理过期条目
func (m *MemoryStore) purgeLocked() {
	if m.ttl <= 0 {
		return
	}
	for el := m.order.Back(); el != nil; {
		prev := el.Prev()
		if m.expired(el.Value.(*Record)) {
			m.removeLocked(el)
		}
		el = prev
	}
}

func (m *MemoryStore) removeLocked(el *list.Element) {
	rec := m.order.Remove(el).(*Record)
	delete(m.items, rec.ID)
}
