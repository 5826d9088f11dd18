package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/adapter/repository/memory"
	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/usecase"
	"github.com/iho/walletcore/internal/usecase/mocks"
)

// Well-formed addresses used across the tests.
const (
	btcAddress  = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	ethAddress  = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	scamAddress = "0x000000000000000000000000000000000000dEaD"
)

// fixture wires the full use-case stack over the in-memory repositories.
type fixture struct {
	wallets     *memory.WalletRepository
	journal     *memory.TransactionRepository
	transfers   *memory.TransferRepository
	approvals   *memory.ApprovalRepository
	conversions *memory.ConversionRepository
	rules       *memory.RuleRepository
	scam        *domain.ScamList
	sender      *mocks.MockNetworkSender
	notifier    *mocks.MockNotifier
	confirmer   *mocks.MockPaymentConfirmer
	geo         *mocks.MockGeoResolver

	exchange *usecase.ExchangeUseCase
	ledger   *usecase.LedgerUseCase
	fraud    *usecase.FraudUseCase
	approval *usecase.ApprovalUseCase
	payments *usecase.PaymentUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		wallets:     memory.NewWalletRepository(),
		journal:     memory.NewTransactionRepository(),
		transfers:   memory.NewTransferRepository(),
		approvals:   memory.NewApprovalRepository(),
		conversions: memory.NewConversionRepository(),
		rules:       memory.NewRuleRepository(),
		scam:        domain.NewScamList(scamAddress),
		sender:      mocks.NewMockNetworkSender(),
		notifier:    mocks.NewMockNotifier(),
		confirmer:   mocks.NewMockPaymentConfirmer(),
		geo:         mocks.NewMockGeoResolver("203.0.113.7"),
	}

	idGen := mocks.NewMockIDGenerator()
	logger := zerolog.Nop()

	f.exchange = usecase.NewExchangeUseCase(f.conversions, idGen, time.Minute, logger, nil)
	f.ledger = usecase.NewLedgerUseCase(f.wallets, f.journal, f.exchange, f.exchange, nil, idGen, logger, nil)
	f.fraud = usecase.NewFraudUseCase(f.journal, f.scam, f.geo, f.exchange, logger, nil)
	f.approval = usecase.NewApprovalUseCase(
		f.ledger, f.fraud, f.transfers, f.approvals, f.rules, f.journal,
		f.exchange, f.scam, f.sender, f.notifier, idGen,
		usecase.ApprovalConfig{}, logger, nil,
	)
	f.payments = usecase.NewPaymentUseCase(f.ledger, f.exchange, f.approval, f.confirmer, f.notifier, logger, nil)
	return f
}

// fund credits a wallet directly through the ledger.
func (f *fixture) fund(t *testing.T, userID, currency string, amount int64) {
	t.Helper()
	_, err := f.ledger.Credit(context.Background(), usecase.CreditInput{
		UserID:   userID,
		Amount:   decimal.NewFromInt(amount),
		Currency: currency,
		Tag:      domain.TagIncoming,
	})
	if err != nil {
		t.Fatalf("fund %s with %d %s: %v", userID, amount, currency, err)
	}
}

// withdrawInput builds a clean outbound request that passes the device and
// destination checks.
func withdrawInput(userID string, amount int64, currency string) usecase.WithdrawInput {
	return usecase.WithdrawInput{
		UserID:      userID,
		Amount:      decimal.NewFromInt(amount),
		Currency:    currency,
		Destination: btcAddress,
		Network:     domain.NetworkBitcoin,
		UserAgent:   "Mozilla/5.0",
		DeviceID:    "device-1",
	}
}

func assertDecimal(t *testing.T, want, got decimal.Decimal, label string) {
	t.Helper()
	if !want.Equal(got) {
		t.Fatalf("%s: want %s, got %s", label, want, got)
	}
}
