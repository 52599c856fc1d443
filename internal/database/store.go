package database

import (
	"context"
	"errors"

	"github.com/nao1215/shopaudit/internal/model"
)

// DefaultRecentLimit is used by GetRecent and History when limit <= 0.
const DefaultRecentLimit = 10

var (
	// ErrNotFound is returned when no audit has the requested id.
	ErrNotFound = errors.New("audit not found")

	// ErrNilResult is returned when Save is called without a result.
	ErrNilResult = errors.New("audit result is nil")
)

// Store persists audit results.
// Implementations are safe for concurrent use. Stored audits are copies:
// neither the saved input nor returned values alias the store's state.
type Store interface {
	// Save assigns a fresh id and save time to a copy of result.
	Save(ctx context.Context, result *model.AuditResult) (*model.StoredAudit, error)

	// GetByID returns the audit with id or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*model.StoredAudit, error)

	// GetRecent returns up to limit audits, most recently saved first.
	GetRecent(ctx context.Context, limit int) ([]*model.StoredAudit, error)

	// History returns up to limit audits of one URL, most recent first.
	History(ctx context.Context, url string, limit int) ([]*model.StoredAudit, error)

	// Close releases the store's resources.
	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return limit
}

// cloneStored returns a copy of s that shares no slices with it.
func cloneStored(s *model.StoredAudit) *model.StoredAudit {
	c := *s
	c.AuditResult = *s.AuditResult.Clone()
	return &c
}
