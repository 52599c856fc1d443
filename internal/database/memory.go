package database

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nao1215/shopaudit/internal/model"
)

// MemoryStore keeps audits in process memory. Ids start at 1.
type MemoryStore struct {
	nextID atomic.Int64

	mu     sync.RWMutex
	audits map[int64]*model.StoredAudit
	order  []int64
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		audits: make(map[int64]*model.StoredAudit),
	}
}

// Save stores a copy of result.
func (m *MemoryStore) Save(_ context.Context, result *model.AuditResult) (*model.StoredAudit, error) {
	if result == nil {
		return nil, ErrNilResult
	}

	stored := model.NewStoredAudit(m.nextID.Add(1), time.Now().UTC(), result)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits[stored.ID] = stored
	m.order = append(m.order, stored.ID)

	return cloneStored(stored), nil
}

// GetByID returns the audit with id.
func (m *MemoryStore) GetByID(_ context.Context, id int64) (*model.StoredAudit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.audits[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneStored(stored), nil
}

// GetRecent returns the newest audits first.
func (m *MemoryStore) GetRecent(_ context.Context, limit int) ([]*model.StoredAudit, error) {
	return m.collect(normalizeLimit(limit), func(*model.StoredAudit) bool { return true }), nil
}

// History returns the newest audits of url first.
func (m *MemoryStore) History(_ context.Context, url string, limit int) ([]*model.StoredAudit, error) {
	return m.collect(normalizeLimit(limit), func(s *model.StoredAudit) bool { return s.URL == url }), nil
}

func (m *MemoryStore) collect(limit int, match func(*model.StoredAudit) bool) []*model.StoredAudit {
	m.mu.RLock()
	defer m.mu.RUnlock()

	audits := make([]*model.StoredAudit, 0, min(limit, len(m.order)))
	for i := len(m.order) - 1; i >= 0 && len(audits) < limit; i-- {
		stored := m.audits[m.order[i]]
		if match(stored) {
			audits = append(audits, cloneStored(stored))
		}
	}
	return audits
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
