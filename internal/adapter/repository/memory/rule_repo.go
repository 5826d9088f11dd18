package memory

import (
	"context"
	"sync"

	"github.com/iho/walletcore/internal/domain"
)

// RuleRepository stores per-user auto-approval rules.
type RuleRepository struct {
	mu    sync.RWMutex
	rules map[string]*domain.AutoApprovalRule
}

// NewRuleRepository creates an empty rule store.
func NewRuleRepository() *RuleRepository {
	return &RuleRepository{
		rules: make(map[string]*domain.AutoApprovalRule),
	}
}

// Set stores or replaces a user's rule.
func (r *RuleRepository) Set(ctx context.Context, rule *domain.AutoApprovalRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.UserID] = rule
	return nil
}

// Get returns a user's rule, or nil when the platform default applies.
func (r *RuleRepository) Get(ctx context.Context, userID string) (*domain.AutoApprovalRule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[userID]
	if !ok {
		return nil, nil
	}
	cp := *rule
	return &cp, nil
}
