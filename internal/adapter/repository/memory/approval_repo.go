package memory

import (
	"context"
	"sync"

	"github.com/iho/walletcore/internal/domain"
)

// ApprovalRepository stores immutable approval audit records keyed by user.
type ApprovalRepository struct {
	mu     sync.RWMutex
	byUser map[string][]*domain.ApprovalRecord
}

// NewApprovalRepository creates an empty approval store.
func NewApprovalRepository() *ApprovalRepository {
	return &ApprovalRepository{
		byUser: make(map[string][]*domain.ApprovalRecord),
	}
}

// Append appends an approval record.
func (r *ApprovalRepository) Append(ctx context.Context, record *domain.ApprovalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[record.UserID] = append(r.byUser[record.UserID], record)
	return nil
}

// ListByUser returns a user's approval records, most recent first.
func (r *ApprovalRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.ApprovalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.byUser[userID]
	var result []*domain.ApprovalRecord
	for i := len(records) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, records[i])
	}
	return result, nil
}
