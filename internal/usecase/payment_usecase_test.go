package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/usecase"
)

func incomingInput(userID string, amount int64) usecase.IncomingInput {
	return usecase.IncomingInput{
		UserID:    userID,
		Amount:    decimal.NewFromInt(amount),
		Currency:  "USD",
		Reference: "pay-1",
		Provider:  "stripe",
		UserAgent: "Mozilla/5.0",
		DeviceID:  "device-1",
	}
}

func TestPaymentUseCase_IncomingCompleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.payments.HandleIncoming(ctx, incomingInput("alice", 250))
	if err != nil {
		t.Fatalf("incoming: %v", err)
	}
	if result.Status != usecase.StatusCompleted {
		t.Fatalf("want completed, got %s (%v)", result.Status, result.Reasons)
	}
	if result.Transaction == nil || result.Transaction.Tag != domain.TagIncoming {
		t.Fatalf("want an incoming journal entry, got %+v", result.Transaction)
	}

	total, _, _, _ := f.ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.NewFromInt(250), total, "credited total")

	events := f.notifier.Events()
	if len(events) == 0 || events[len(events)-1] != domain.EventPaymentReceived {
		t.Fatalf("want a payment.received event, got %v", events)
	}
}

func TestPaymentUseCase_IncomingNotConfirmed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.confirmer.ConfirmFunc = func(ctx context.Context, reference, provider string) (bool, error) {
		return false, nil
	}

	result, err := f.payments.HandleIncoming(ctx, incomingInput("alice", 250))
	if err != nil {
		t.Fatalf("incoming: %v", err)
	}
	if result.Status != usecase.StatusFailed {
		t.Fatalf("want failed, got %s", result.Status)
	}

	total, _, _, _ := f.ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.Zero, total, "nothing credited")
}

func TestPaymentUseCase_IncomingAboveInstantCeiling(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.payments.HandleIncoming(ctx, incomingInput("alice", 12000))
	if err != nil {
		t.Fatalf("incoming: %v", err)
	}
	if result.Status != usecase.StatusPendingApproval {
		t.Fatalf("want pending_approval, got %s (%v)", result.Status, result.Reasons)
	}
	if result.TransferID == "" {
		t.Fatal("want a transfer ID for the held payment")
	}

	// Held inbound funds are not credited until approved.
	total, _, _, _ := f.ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.Zero, total, "total while held")

	if _, err := f.approval.Approve(ctx, result.TransferID, "admin", ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	total, _, _, _ = f.ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.NewFromInt(12000), total, "total after approval")
}

func TestPaymentUseCase_InternalTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 300)

	result, err := f.payments.HandleInternalTransfer(ctx, usecase.TransferInput{
		FromUserID: "alice",
		ToUserID:   "bob",
		Amount:     decimal.NewFromInt(100),
		Currency:   "USD",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if result.Status != usecase.StatusCompleted {
		t.Fatalf("want completed, got %s", result.Status)
	}

	bobUSD, _, _, _ := f.ledger.Balance(ctx, "bob", "USD")
	assertDecimal(t, decimal.NewFromInt(100), bobUSD, "recipient total")
}

func TestPaymentUseCase_InternalTransferInsufficient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 50)

	result, err := f.payments.HandleInternalTransfer(ctx, usecase.TransferInput{
		FromUserID: "alice",
		ToUserID:   "bob",
		Amount:     decimal.NewFromInt(100),
		Currency:   "USD",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if result.Status != usecase.StatusFailed {
		t.Fatalf("want failed, got %s", result.Status)
	}

	aliceUSD, _, _, _ := f.ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.NewFromInt(50), aliceUSD, "sender unchanged")
}

func TestPaymentUseCase_Conversion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 1000)

	result, err := f.payments.HandleConversion(ctx, usecase.ConversionInput{
		UserID: "alice",
		From:   "USD",
		To:     "EUR",
		Amount: decimal.NewFromInt(200),
	})
	if err != nil {
		t.Fatalf("conversion: %v", err)
	}
	if result.Status != usecase.StatusCompleted {
		t.Fatalf("want completed, got %s (%v)", result.Status, result.Reasons)
	}
	if result.Conversion == nil {
		t.Fatal("want a conversion record")
	}

	usd, _, _, _ := f.ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.NewFromInt(800), usd, "source total")
}

func TestPaymentUseCase_ConversionUnsupportedCurrency(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "CHF", 1000)

	result, err := f.payments.HandleConversion(ctx, usecase.ConversionInput{
		UserID: "alice",
		From:   "CHF",
		To:     "XYZ",
		Amount: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("conversion: %v", err)
	}
	if result.Status != usecase.StatusFailed {
		t.Fatalf("want failed, got %s", result.Status)
	}
}

func TestPaymentUseCase_WithdrawalInsufficientBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 500)

	result, err := f.payments.HandleExternalTransfer(ctx, usecase.WithdrawalInput{
		UserID:      "alice",
		Amount:      decimal.NewFromInt(600),
		Currency:    "USD",
		Destination: btcAddress,
		Network:     domain.NetworkBitcoin,
		UserAgent:   "Mozilla/5.0",
		DeviceID:    "device-1",
	})
	if err != nil {
		t.Fatalf("withdrawal: %v", err)
	}
	if result.Status != usecase.StatusFailed {
		t.Fatalf("want failed, got %s", result.Status)
	}

	total, frozen, _, _ := f.ledger.Balance(ctx, "alice", "USD")
	assertDecimal(t, decimal.NewFromInt(500), total, "total unchanged")
	assertDecimal(t, decimal.Zero, frozen, "frozen unchanged")
}

func TestPaymentUseCase_WithdrawalAutoApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 2000)

	result, err := f.payments.HandleExternalTransfer(ctx, usecase.WithdrawalInput{
		UserID:      "alice",
		Amount:      decimal.NewFromInt(400),
		Currency:    "USD",
		Destination: btcAddress,
		Network:     domain.NetworkBitcoin,
		UserAgent:   "Mozilla/5.0",
		DeviceID:    "device-1",
	})
	if err != nil {
		t.Fatalf("withdrawal: %v", err)
	}
	if result.Status != usecase.StatusCompleted {
		t.Fatalf("want completed, got %s (%v)", result.Status, result.Reasons)
	}
	if result.ExternalRef == "" {
		t.Fatal("want an external reference")
	}
}

func TestPaymentUseCase_Dashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.fund(t, "alice", "USD", 2000)
	if _, err := f.payments.HandleConversion(ctx, usecase.ConversionInput{
		UserID: "alice",
		From:   "USD",
		To:     "EUR",
		Amount: decimal.NewFromInt(200),
	}); err != nil {
		t.Fatalf("conversion: %v", err)
	}
	if _, err := f.approval.RequestWithdrawal(ctx, withdrawInput("alice", 1500, "USD")); err != nil {
		t.Fatalf("withdrawal: %v", err)
	}

	dashboard, err := f.payments.GetDashboard(ctx, "alice")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	assertDecimal(t, decimal.NewFromInt(1800), dashboard.Balances["USD"], "USD total")
	assertDecimal(t, decimal.NewFromInt(1500), dashboard.Frozen["USD"], "USD frozen")
	assertDecimal(t, decimal.NewFromInt(300), dashboard.Available["USD"], "USD available")
	if dashboard.PendingTransfers != 1 {
		t.Fatalf("want 1 pending transfer, got %d", dashboard.PendingTransfers)
	}
	if len(dashboard.RecentActivity) == 0 {
		t.Fatal("want recent activity")
	}
	if len(dashboard.RecentConversions) != 1 {
		t.Fatalf("want 1 recent conversion, got %d", len(dashboard.RecentConversions))
	}
	if !dashboard.CanWithdraw {
		t.Fatal("funded wallet should be able to withdraw")
	}
	if dashboard.TotalUSD.IsZero() {
		t.Fatal("want a reference valuation")
	}
}
