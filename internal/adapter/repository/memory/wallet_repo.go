package memory

import (
	"context"
	"sync"

	"github.com/iho/walletcore/internal/domain"
)

// WalletRepository is the authoritative in-process wallet store. Each wallet
// carries its own mutex so mutating operations on one user serialize while
// different users proceed in parallel.
type WalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*walletEntry
}

type walletEntry struct {
	mu     sync.Mutex
	wallet *domain.Wallet
}

// NewWalletRepository creates an empty wallet store.
func NewWalletRepository() *WalletRepository {
	return &WalletRepository{
		wallets: make(map[string]*walletEntry),
	}
}

func (r *WalletRepository) entry(userID string) *walletEntry {
	r.mu.RLock()
	e, ok := r.wallets[userID]
	r.mu.RUnlock()
	if ok {
		return e
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.wallets[userID]; ok {
		return e
	}
	e = &walletEntry{wallet: domain.NewWallet(userID)}
	r.wallets[userID] = e
	return e
}

// Get returns a read-only snapshot of a user's wallet, creating an empty
// wallet if none exists.
func (r *WalletRepository) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	e := r.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wallet.Clone(), nil
}

// Update runs fn with exclusive access to the user's wallet. If fn returns
// an error the wallet is restored to its prior state.
func (r *WalletRepository) Update(ctx context.Context, userID string, fn func(w *domain.Wallet) error) error {
	e := r.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := e.wallet.Clone()
	if err := fn(e.wallet); err != nil {
		e.wallet = snapshot
		return err
	}
	return nil
}

// UpdatePair runs fn with exclusive access to both wallets. Locks are taken
// in lexical order of user ID to prevent deadlocks.
func (r *WalletRepository) UpdatePair(ctx context.Context, userA, userB string, fn func(a, b *domain.Wallet) error) error {
	if userA == userB {
		return domain.ErrSameUser
	}

	first, second := r.entry(userA), r.entry(userB)
	if userB < userA {
		first, second = second, first
	}

	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	entryA, entryB := first, second
	if entryA.wallet.UserID != userA {
		entryA, entryB = entryB, entryA
	}

	snapshotA := entryA.wallet.Clone()
	snapshotB := entryB.wallet.Clone()
	if err := fn(entryA.wallet, entryB.wallet); err != nil {
		entryA.wallet = snapshotA
		entryB.wallet = snapshotB
		return err
	}
	return nil
}
