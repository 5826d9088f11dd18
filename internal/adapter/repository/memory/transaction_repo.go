package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iho/walletcore/internal/domain"
)

// TransactionRepository is an append-only in-process journal.
type TransactionRepository struct {
	mu     sync.RWMutex
	byUser map[string][]*domain.Transaction
	byID   map[string]*domain.Transaction
}

// NewTransactionRepository creates an empty journal.
func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		byUser: make(map[string][]*domain.Transaction),
		byID:   make(map[string]*domain.Transaction),
	}
}

// Append appends a journal entry. Entries are stored in arrival order and
// never mutated afterwards.
func (r *TransactionRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[tx.UserID] = append(r.byUser[tx.UserID], tx)
	r.byID[tx.ID] = tx
	return nil
}

// ListByUser returns a user's entries, most recent first.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.byUser[userID]
	n := len(entries)

	var result []*domain.Transaction
	for i := n - 1 - offset; i >= 0 && len(result) < limit; i-- {
		cp := *entries[i]
		result = append(result, &cp)
	}
	return result, nil
}

// ListByUserSince returns a user's entries created at or after since, in
// arrival order.
func (r *TransactionRepository) ListByUserSince(ctx context.Context, userID string, since time.Time) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Transaction
	for _, tx := range r.byUser[userID] {
		if !tx.CreatedAt.Before(since) {
			cp := *tx
			result = append(result, &cp)
		}
	}
	return result, nil
}

// GetByID returns a journal entry by transaction ID.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}
