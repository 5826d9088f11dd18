package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iho/walletcore/internal/domain"
)

// TransferRepository stores pending transfers awaiting a decision.
type TransferRepository struct {
	mu        sync.RWMutex
	transfers map[string]*domain.PendingTransfer
	order     []string
}

// NewTransferRepository creates an empty transfer store.
func NewTransferRepository() *TransferRepository {
	return &TransferRepository{
		transfers: make(map[string]*domain.PendingTransfer),
	}
}

// Create stores a new transfer.
func (r *TransferRepository) Create(ctx context.Context, transfer *domain.PendingTransfer) error {
	if err := transfer.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[transfer.ID] = transfer
	r.order = append(r.order, transfer.ID)
	return nil
}

// GetByID returns a copy of a transfer.
func (r *TransferRepository) GetByID(ctx context.Context, id string) (*domain.PendingTransfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transfers[id]
	if !ok {
		return nil, domain.ErrTransferNotFound
	}
	cp := *t
	return &cp, nil
}

// Update runs fn with exclusive access to the transfer. State transitions
// inside fn are applied atomically; if fn errors the transfer is unchanged.
func (r *TransferRepository) Update(ctx context.Context, id string, fn func(t *domain.PendingTransfer) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.transfers[id]
	if !ok {
		return domain.ErrTransferNotFound
	}

	snapshot := *t
	if err := fn(t); err != nil {
		*t = snapshot
		return err
	}
	return nil
}

// ListPending returns pending transfers in request order. Empty userID
// returns pending transfers for all users.
func (r *TransferRepository) ListPending(ctx context.Context, userID string) ([]*domain.PendingTransfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.PendingTransfer
	for _, id := range r.order {
		t := r.transfers[id]
		if !t.IsPending() {
			continue
		}
		if userID != "" && t.UserID != userID {
			continue
		}
		cp := *t
		result = append(result, &cp)
	}
	return result, nil
}

// ListPendingBefore returns pending transfers requested before cutoff.
func (r *TransferRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]*domain.PendingTransfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.PendingTransfer
	for _, id := range r.order {
		t := r.transfers[id]
		if t.IsPending() && t.RequestedAt.Before(cutoff) {
			cp := *t
			result = append(result, &cp)
		}
	}
	return result, nil
}
