package memory

import (
	"context"
	"sync"

	"github.com/iho/walletcore/internal/domain"
)

// ConversionRepository stores append-only conversion records.
type ConversionRepository struct {
	mu     sync.RWMutex
	byUser map[string][]*domain.Conversion
}

// NewConversionRepository creates an empty conversion store.
func NewConversionRepository() *ConversionRepository {
	return &ConversionRepository{
		byUser: make(map[string][]*domain.Conversion),
	}
}

// Append appends a conversion record.
func (r *ConversionRepository) Append(ctx context.Context, conversion *domain.Conversion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[conversion.UserID] = append(r.byUser[conversion.UserID], conversion)
	return nil
}

// ListByUser returns a user's conversions, most recent first.
func (r *ConversionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Conversion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.byUser[userID]
	var result []*domain.Conversion
	for i := len(records) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, records[i])
	}
	return result, nil
}
