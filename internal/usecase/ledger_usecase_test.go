package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/usecase"
	"github.com/iho/walletcore/internal/usecase/mocks"
)

func TestLedgerUseCase_CreditAndBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 500)

	total, frozen, available, err := f.ledger.Balance(ctx, "alice", "USD")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	assertDecimal(t, decimal.NewFromInt(500), total, "total")
	assertDecimal(t, decimal.Zero, frozen, "frozen")
	assertDecimal(t, decimal.NewFromInt(500), available, "available")

	history, err := f.ledger.History(ctx, "alice", 10, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("want 1 journal entry, got %d", len(history))
	}
	if history[0].Kind != domain.KindCredit {
		t.Fatalf("want credit entry, got %s", history[0].Kind)
	}
	assertDecimal(t, decimal.NewFromInt(500), history[0].ResultingBalance, "resulting balance")
}

func TestLedgerUseCase_DebitInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 100)

	_, err := f.ledger.Debit(ctx, usecase.DebitInput{
		UserID:   "alice",
		Amount:   decimal.NewFromInt(200),
		Currency: "USD",
		Tag:      domain.TagExternal,
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}

	total, _, _, err := f.ledger.Balance(ctx, "alice", "USD")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	assertDecimal(t, decimal.NewFromInt(100), total, "total after failed debit")
}

func TestLedgerUseCase_FreezeLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 1000)

	result, err := f.ledger.Debit(ctx, usecase.DebitInput{
		UserID:           "alice",
		Amount:           decimal.NewFromInt(300),
		Currency:         "USD",
		TxID:             "tr-1",
		Tag:              domain.TagExternal,
		RequiresApproval: true,
	})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if !result.Pending {
		t.Fatal("want pending debit")
	}

	// Frozen funds stay in the total but leave the available balance.
	total, frozen, available, _ := f.ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.NewFromInt(1000), total, "total while frozen")
	assertDecimal(t, decimal.NewFromInt(300), frozen, "frozen")
	assertDecimal(t, decimal.NewFromInt(700), available, "available while frozen")

	if _, err := f.ledger.CompleteFrozenDebit(ctx, "alice", decimal.NewFromInt(300), "USD", "tr-1", "admin"); err != nil {
		t.Fatalf("complete frozen debit: %v", err)
	}

	total, frozen, available, _ = f.ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.NewFromInt(700), total, "total after completion")
	assertDecimal(t, decimal.Zero, frozen, "frozen after completion")
	assertDecimal(t, decimal.NewFromInt(700), available, "available after completion")
}

func TestLedgerUseCase_ReleaseFrozen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 1000)
	if _, err := f.ledger.Debit(ctx, usecase.DebitInput{
		UserID:           "alice",
		Amount:           decimal.NewFromInt(400),
		Currency:         "USD",
		TxID:             "tr-2",
		Tag:              domain.TagExternal,
		RequiresApproval: true,
	}); err != nil {
		t.Fatalf("debit: %v", err)
	}

	if err := f.ledger.ReleaseFrozen(ctx, "alice", decimal.NewFromInt(400), "USD", "tr-2", "rejected"); err != nil {
		t.Fatalf("release: %v", err)
	}

	total, frozen, available, _ := f.ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.NewFromInt(1000), total, "total after release")
	assertDecimal(t, decimal.Zero, frozen, "frozen after release")
	assertDecimal(t, decimal.NewFromInt(1000), available, "available after release")
}

func TestLedgerUseCase_ConvertInLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 100)

	conversion, err := f.ledger.ConvertInLedger(ctx, "alice", "USD", "BTC", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	// 0.5% of 100 is the 0.50 minimum; the remainder converts at the rate.
	assertDecimal(t, decimal.NewFromFloat(0.5), conversion.Fee, "fee")
	wantBTC := decimal.NewFromFloat(99.5).Mul(decimal.NewFromFloat(0.000023))
	assertDecimal(t, wantBTC, conversion.ToAmount, "credited amount")

	usd, _, _, _ := f.ledger.Balance(ctx, "alice", "USD")
	btc, _, _, _ := f.ledger.Balance(ctx, "alice", "BTC")
	assertDecimal(t, decimal.Zero, usd, "source balance")
	assertDecimal(t, wantBTC, btc, "target balance")

	// A conversion appends exactly one debit and one credit entry.
	history, err := f.ledger.History(ctx, "alice", 10, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("want 3 journal entries, got %d", len(history))
	}
	if history[0].Kind != domain.KindCredit || history[0].Currency != "BTC" {
		t.Fatalf("want BTC credit first, got %s %s", history[0].Kind, history[0].Currency)
	}
	if history[1].Kind != domain.KindDebit || history[1].Currency != "USD" {
		t.Fatalf("want USD debit second, got %s %s", history[1].Kind, history[1].Currency)
	}
}

func TestLedgerUseCase_ConvertInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 50)

	_, err := f.ledger.ConvertInLedger(ctx, "alice", "USD", "EUR", decimal.NewFromInt(100))
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}

	usd, _, _, _ := f.ledger.Balance(ctx, "alice", "USD")
	eur, _, _, _ := f.ledger.Balance(ctx, "alice", "EUR")
	assertDecimal(t, decimal.NewFromInt(50), usd, "source unchanged")
	assertDecimal(t, decimal.Zero, eur, "target unchanged")
}

func TestLedgerUseCase_ConvertRollsBackOnConverterError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	converter := mocks.NewMockConverter(ctrl)
	converter.EXPECT().Convert(gomock.Any(), gomock.Any()).Return(nil, domain.ErrRateUnavailable)

	ledger := usecase.NewLedgerUseCase(
		f.wallets, f.journal, f.exchange, converter, nil,
		mocks.NewMockIDGenerator(), zerolog.Nop(), nil,
	)

	f.fund(t, "alice", "USD", 100)

	_, err := ledger.ConvertInLedger(ctx, "alice", "USD", "EUR", decimal.NewFromInt(100))
	if !errors.Is(err, domain.ErrRateUnavailable) {
		t.Fatalf("want ErrRateUnavailable, got %v", err)
	}

	usd, _, _, _ := ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.NewFromInt(100), usd, "balance rolled back")
}

func TestLedgerUseCase_InternalTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 300)

	if err := f.ledger.InternalTransfer(ctx, "alice", "bob", decimal.NewFromInt(120), "USD", ""); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	aliceUSD, _, _, _ := f.ledger.Balance(ctx, "alice", "USD")
	bobUSD, _, _, _ := f.ledger.Balance(ctx, "bob", "USD")
	assertDecimal(t, decimal.NewFromInt(180), aliceUSD, "sender balance")
	assertDecimal(t, decimal.NewFromInt(120), bobUSD, "recipient balance")

	if err := f.ledger.InternalTransfer(ctx, "alice", "alice", decimal.NewFromInt(10), "USD", ""); !errors.Is(err, domain.ErrSameUser) {
		t.Fatalf("want ErrSameUser, got %v", err)
	}
}

func TestLedgerUseCase_CurrencyCodeNormalized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.ledger.Credit(ctx, usecase.CreditInput{
		UserID:   "alice",
		Amount:   decimal.NewFromInt(100),
		Currency: "usd",
		Tag:      domain.TagIncoming,
	}); err != nil {
		t.Fatalf("credit: %v", err)
	}

	// Lowercase and canonical codes address the same balance.
	total, _, _, err := f.ledger.Balance(ctx, "alice", "USD")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	assertDecimal(t, decimal.NewFromInt(100), total, "canonical code")

	total, _, _, err = f.ledger.Balance(ctx, "alice", "usd")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	assertDecimal(t, decimal.NewFromInt(100), total, "lowercase code")

	if _, err := f.ledger.Debit(ctx, usecase.DebitInput{
		UserID:   "alice",
		Amount:   decimal.NewFromInt(40),
		Currency: "Usd",
		Tag:      domain.TagExternal,
	}); err != nil {
		t.Fatalf("debit: %v", err)
	}
	total, _, _, _ = f.ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.NewFromInt(60), total, "after mixed-case debit")
}
