package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/adapter/repository/memory"
	"github.com/iho/walletcore/internal/domain"
)

func TestWalletRepositoryConcurrentUpdates(t *testing.T) {
	repo := memory.NewWalletRepository()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			err := repo.Update(ctx, "user-1", func(w *domain.Wallet) error {
				w.Balances["USD"] = w.Balances["USD"].Add(decimal.NewFromInt(1))
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	w, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Balance("USD").Equal(decimal.NewFromInt(workers)) {
		t.Fatalf("expected balance %d, got %s", workers, w.Balance("USD"))
	}
}

func TestWalletRepositoryUpdateRollsBackOnError(t *testing.T) {
	repo := memory.NewWalletRepository()
	ctx := context.Background()

	if err := repo.Update(ctx, "user-1", func(w *domain.Wallet) error {
		w.Balances["USD"] = decimal.NewFromInt(100)
		return nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantErr := errors.New("boom")
	err := repo.Update(ctx, "user-1", func(w *domain.Wallet) error {
		w.Balances["USD"] = decimal.NewFromInt(999)
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected propagated error, got %v", err)
	}

	w, _ := repo.Get(ctx, "user-1")
	if !w.Balance("USD").Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected rollback to 100, got %s", w.Balance("USD"))
	}
}

func TestWalletRepositoryUpdatePair(t *testing.T) {
	repo := memory.NewWalletRepository()
	ctx := context.Background()

	err := repo.UpdatePair(ctx, "user-b", "user-a", func(b, a *domain.Wallet) error {
		if b.UserID != "user-b" || a.UserID != "user-a" {
			t.Fatalf("wallets passed in wrong order: %s, %s", b.UserID, a.UserID)
		}
		b.Balances["USD"] = decimal.NewFromInt(10)
		a.Balances["USD"] = decimal.NewFromInt(20)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.UpdatePair(ctx, "user-a", "user-a", func(a, b *domain.Wallet) error { return nil }); err != domain.ErrSameUser {
		t.Fatalf("expected ErrSameUser, got %v", err)
	}
}
