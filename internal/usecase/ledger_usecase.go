package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/infrastructure/metrics"
)

// LedgerUseCase owns all balance mutations. Every change to a wallet goes
// through here, executes under the wallet's lock, and appends a journal
// entry.
type LedgerUseCase struct {
	wallets   WalletRepository
	journal   TransactionRepository
	rates     RateSource
	converter Converter
	archiver  JournalArchiver
	idGen     IDGenerator
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase. rates keeps the cached
// reference-currency valuation current, converter performs in-ledger
// conversions; archiver and metrics may be nil.
func NewLedgerUseCase(
	wallets WalletRepository,
	journal TransactionRepository,
	rates RateSource,
	converter Converter,
	archiver JournalArchiver,
	idGen IDGenerator,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		wallets:   wallets,
		journal:   journal,
		rates:     rates,
		converter: converter,
		archiver:  archiver,
		idGen:     idGen,
		logger:    logger,
		metrics:   m,
	}
}

// CreditInput is the input for crediting a wallet.
type CreditInput struct {
	UserID   string
	Amount   decimal.Decimal
	Currency string
	TxID     string
	Tag      domain.TransactionTag
	Metadata map[string]any
}

// DebitInput is the input for debiting a wallet.
type DebitInput struct {
	UserID           string
	Amount           decimal.Decimal
	Currency         string
	TxID             string
	Tag              domain.TransactionTag
	RequiresApproval bool
	Metadata         map[string]any
}

// DebitResult reports what a debit did. Pending means the amount was frozen
// for approval instead of being subtracted from the total.
type DebitResult struct {
	Transaction *domain.Transaction
	Pending     bool
}

// Credit increases a user's total balance and appends a credit journal
// entry. It never fails for a well-formed amount.
func (uc *LedgerUseCase) Credit(ctx context.Context, input CreditInput) (*domain.Transaction, error) {
	input.Currency = domain.NormalizeCurrency(input.Currency)
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return nil, err
	}

	txID := input.TxID
	if txID == "" {
		txID = uc.idGen.Generate()
	}

	var entry *domain.Transaction
	err := uc.wallets.Update(ctx, input.UserID, func(w *domain.Wallet) error {
		w.Balances[input.Currency] = w.Balances[input.Currency].Add(input.Amount)
		uc.revalue(w)

		entry = &domain.Transaction{
			ID:               txID,
			UserID:           input.UserID,
			Kind:             domain.KindCredit,
			Amount:           input.Amount,
			Currency:         input.Currency,
			ResultingBalance: w.Balances[input.Currency],
			Tag:              input.Tag,
			Metadata:         input.Metadata,
			CreatedAt:        time.Now().UTC(),
		}
		return uc.journal.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	uc.archive(ctx, entry)
	uc.countEntry(domain.KindCredit)
	return entry, nil
}

// Debit decreases a user's balance. If the destination is external and
// approval is required, the amount is frozen instead and the debit completes
// later via CompleteFrozenDebit.
func (uc *LedgerUseCase) Debit(ctx context.Context, input DebitInput) (*DebitResult, error) {
	input.Currency = domain.NormalizeCurrency(input.Currency)
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}
	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return nil, err
	}

	txID := input.TxID
	if txID == "" {
		txID = uc.idGen.Generate()
	}

	freeze := input.Tag == domain.TagExternal && input.RequiresApproval

	var entry *domain.Transaction
	err := uc.wallets.Update(ctx, input.UserID, func(w *domain.Wallet) error {
		if err := w.ValidateDebit(input.Currency, input.Amount); err != nil {
			return err
		}

		kind := domain.KindDebit
		if freeze {
			if err := w.Freeze(input.Currency, input.Amount); err != nil {
				return err
			}
			kind = domain.KindFreeze
		} else {
			w.Balances[input.Currency] = w.Balances[input.Currency].Sub(input.Amount)
		}
		uc.revalue(w)

		entry = &domain.Transaction{
			ID:               txID,
			UserID:           input.UserID,
			Kind:             kind,
			Amount:           input.Amount,
			Currency:         input.Currency,
			ResultingBalance: w.Balances[input.Currency],
			Tag:              input.Tag,
			Metadata:         input.Metadata,
			CreatedAt:        time.Now().UTC(),
		}
		return uc.journal.Append(ctx, entry)
	})
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	uc.archive(ctx, entry)
	uc.countEntry(entry.Kind)
	return &DebitResult{Transaction: entry, Pending: freeze}, nil
}

// CompleteFrozenDebit finishes the debit deferred by a pending external
// transfer: the frozen amount is released and subtracted from the total in
// one step.
func (uc *LedgerUseCase) CompleteFrozenDebit(ctx context.Context, userID string, amount decimal.Decimal, currency, transferID, approver string) (*domain.Transaction, error) {
	var entry *domain.Transaction
	err := uc.wallets.Update(ctx, userID, func(w *domain.Wallet) error {
		if w.FrozenAmount(currency).LessThan(amount) {
			return domain.ErrFrozenExceedsTotal
		}
		w.Release(currency, amount)
		w.Balances[currency] = w.Balances[currency].Sub(amount)
		uc.revalue(w)

		entry = &domain.Transaction{
			ID:               uc.idGen.Generate(),
			UserID:           userID,
			Kind:             domain.KindDebit,
			Amount:           amount,
			Currency:         currency,
			ResultingBalance: w.Balances[currency],
			Tag:              domain.TagExternal,
			Metadata: map[string]any{
				"transfer_id": transferID,
				"approved_by": approver,
			},
			CreatedAt: time.Now().UTC(),
		}
		return uc.journal.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	uc.archive(ctx, entry)
	uc.countEntry(domain.KindDebit)
	return entry, nil
}

// ReleaseFrozen returns a frozen amount to the available balance, e.g. when
// a pending transfer is rejected or expires.
func (uc *LedgerUseCase) ReleaseFrozen(ctx context.Context, userID string, amount decimal.Decimal, currency, transferID, reason string) error {
	var entry *domain.Transaction
	err := uc.wallets.Update(ctx, userID, func(w *domain.Wallet) error {
		w.Release(currency, amount)
		uc.revalue(w)

		entry = &domain.Transaction{
			ID:               uc.idGen.Generate(),
			UserID:           userID,
			Kind:             domain.KindRelease,
			Amount:           amount,
			Currency:         currency,
			ResultingBalance: w.Balances[currency],
			Tag:              domain.TagExternal,
			Metadata: map[string]any{
				"transfer_id": transferID,
				"reason":      reason,
			},
			CreatedAt: time.Now().UTC(),
		}
		return uc.journal.Append(ctx, entry)
	})
	if err != nil {
		return err
	}

	uc.archive(ctx, entry)
	uc.countEntry(domain.KindRelease)
	if uc.metrics != nil {
		uc.metrics.FrozenReleases.Inc()
	}
	return nil
}

// ConvertInLedger atomically debits the source currency, converts through
// the converter with the standard conversion fee, and credits the target
// currency. The debit and credit happen under one wallet lock.
func (uc *LedgerUseCase) ConvertInLedger(ctx context.Context, userID, from, to string, amount decimal.Decimal) (*domain.Conversion, error) {
	from = domain.NormalizeCurrency(from)
	to = domain.NormalizeCurrency(to)
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(from); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(to); err != nil {
		return nil, err
	}

	var conversion *domain.Conversion
	err := uc.wallets.Update(ctx, userID, func(w *domain.Wallet) error {
		if err := w.ValidateDebit(from, amount); err != nil {
			return err
		}

		var err error
		conversion, err = uc.converter.Convert(ctx, ConvertInput{
			UserID: userID,
			From:   from,
			To:     to,
			Amount: amount,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		w.Balances[from] = w.Balances[from].Sub(amount)
		debit := &domain.Transaction{
			ID:               uc.idGen.Generate(),
			UserID:           userID,
			Kind:             domain.KindDebit,
			Amount:           amount,
			Currency:         from,
			ResultingBalance: w.Balances[from],
			Tag:              domain.TagConversion,
			Metadata:         map[string]any{"conversion_id": conversion.ID},
			CreatedAt:        now,
		}
		if err := uc.journal.Append(ctx, debit); err != nil {
			return err
		}

		w.Balances[to] = w.Balances[to].Add(conversion.ToAmount)
		credit := &domain.Transaction{
			ID:               uc.idGen.Generate(),
			UserID:           userID,
			Kind:             domain.KindCredit,
			Amount:           conversion.ToAmount,
			Currency:         to,
			ResultingBalance: w.Balances[to],
			Tag:              domain.TagConversion,
			Metadata:         map[string]any{"conversion_id": conversion.ID},
			CreatedAt:        now,
		}
		if err := uc.journal.Append(ctx, credit); err != nil {
			// Compensate the committed debit so the wallet is never left
			// half-converted.
			w.Balances[from] = w.Balances[from].Add(amount)
			reversal := &domain.Transaction{
				ID:               uc.idGen.Generate(),
				UserID:           userID,
				Kind:             domain.KindCredit,
				Amount:           amount,
				Currency:         from,
				ResultingBalance: w.Balances[from],
				Tag:              domain.TagConversion,
				Metadata:         map[string]any{"compensates": debit.ID, "conversion_id": conversion.ID},
				CreatedAt:        time.Now().UTC(),
			}
			if aerr := uc.journal.Append(ctx, reversal); aerr != nil {
				uc.logger.Error().Err(aerr).Str("user_id", userID).Msg("failed to journal conversion compensation")
			}
			return fmt.Errorf("conversion credit failed: %w", err)
		}

		uc.revalue(w)
		return nil
	})
	if err != nil {
		uc.countError(err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.JournalEntries.WithLabelValues(string(domain.KindDebit)).Inc()
		uc.metrics.JournalEntries.WithLabelValues(string(domain.KindCredit)).Inc()
	}
	return conversion, nil
}

// InternalTransfer moves funds between two users in the same currency. No
// approval gate applies. If crediting the recipient fails the sender is
// credited back with a compensating entry.
func (uc *LedgerUseCase) InternalTransfer(ctx context.Context, fromUser, toUser string, amount decimal.Decimal, currency, txID string) error {
	if fromUser == toUser {
		return domain.ErrSameUser
	}
	currency = domain.NormalizeCurrency(currency)
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}
	if err := domain.ValidateCurrency(currency); err != nil {
		return err
	}

	if txID == "" {
		txID = uc.idGen.Generate()
	}

	err := uc.wallets.UpdatePair(ctx, fromUser, toUser, func(from, to *domain.Wallet) error {
		if err := from.ValidateDebit(currency, amount); err != nil {
			return err
		}

		now := time.Now().UTC()
		from.Balances[currency] = from.Balances[currency].Sub(amount)
		debit := &domain.Transaction{
			ID:               txID,
			UserID:           fromUser,
			Kind:             domain.KindDebit,
			Amount:           amount,
			Currency:         currency,
			ResultingBalance: from.Balances[currency],
			Tag:              domain.TagInternalTransfer,
			Metadata:         map[string]any{"to_user": toUser},
			CreatedAt:        now,
		}
		if err := uc.journal.Append(ctx, debit); err != nil {
			return err
		}

		to.Balances[currency] = to.Balances[currency].Add(amount)
		credit := &domain.Transaction{
			ID:               uc.idGen.Generate(),
			UserID:           toUser,
			Kind:             domain.KindCredit,
			Amount:           amount,
			Currency:         currency,
			ResultingBalance: to.Balances[currency],
			Tag:              domain.TagInternalTransfer,
			Metadata:         map[string]any{"from_user": fromUser, "transfer_tx": txID},
			CreatedAt:        now,
		}
		if err := uc.journal.Append(ctx, credit); err != nil {
			// Credit the sender back rather than destroying funds.
			from.Balances[currency] = from.Balances[currency].Add(amount)
			compensation := &domain.Transaction{
				ID:               uc.idGen.Generate(),
				UserID:           fromUser,
				Kind:             domain.KindCredit,
				Amount:           amount,
				Currency:         currency,
				ResultingBalance: from.Balances[currency],
				Tag:              domain.TagInternalTransfer,
				Metadata:         map[string]any{"compensates": txID},
				CreatedAt:        time.Now().UTC(),
			}
			if aerr := uc.journal.Append(ctx, compensation); aerr != nil {
				uc.logger.Error().Err(aerr).Str("user_id", fromUser).Msg("failed to journal transfer compensation")
			}
			return fmt.Errorf("transfer credit failed: %w", err)
		}

		uc.revalue(from)
		uc.revalue(to)
		return nil
	})
	if err != nil {
		uc.countError(err)
		return err
	}

	if uc.metrics != nil {
		uc.metrics.JournalEntries.WithLabelValues(string(domain.KindDebit)).Inc()
		uc.metrics.JournalEntries.WithLabelValues(string(domain.KindCredit)).Inc()
	}
	return nil
}

// Wallet returns a read-only snapshot of a user's wallet.
func (uc *LedgerUseCase) Wallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	return uc.wallets.Get(ctx, userID)
}

// Balance returns total, frozen and available for one currency.
func (uc *LedgerUseCase) Balance(ctx context.Context, userID, currency string) (total, frozen, available decimal.Decimal, err error) {
	currency = domain.NormalizeCurrency(currency)
	w, err := uc.wallets.Get(ctx, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}
	return w.Balance(currency), w.FrozenAmount(currency), w.Available(currency), nil
}

// History returns a user's journal entries, most recent first.
func (uc *LedgerUseCase) History(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return uc.journal.ListByUser(ctx, userID, limit, offset)
}

// revalue recomputes the cached reference-currency valuation. A missing rate
// leaves that currency out rather than failing the mutation.
func (uc *LedgerUseCase) revalue(w *domain.Wallet) {
	if uc.rates == nil {
		return
	}

	total := decimal.Zero
	for currency, balance := range w.Balances {
		rate, err := uc.rates.Rate(currency, domain.ReferenceCurrency)
		if err != nil {
			continue
		}
		total = total.Add(balance.Mul(rate))
	}
	w.TotalUSD = total
	w.UpdatedAt = time.Now().UTC()
}

func (uc *LedgerUseCase) archive(ctx context.Context, entry *domain.Transaction) {
	if uc.archiver == nil || entry == nil {
		return
	}
	if err := uc.archiver.Archive(ctx, entry); err != nil {
		uc.logger.Warn().Err(err).Str("tx_id", entry.ID).Msg("journal archive write failed")
		if uc.metrics != nil {
			uc.metrics.ArchiveWrites.WithLabelValues("error").Inc()
		}
		return
	}
	if uc.metrics != nil {
		uc.metrics.ArchiveWrites.WithLabelValues("ok").Inc()
	}
}

func (uc *LedgerUseCase) countEntry(kind domain.TransactionKind) {
	if uc.metrics != nil {
		uc.metrics.JournalEntries.WithLabelValues(string(kind)).Inc()
	}
}

func (uc *LedgerUseCase) countError(err error) {
	if uc.metrics == nil || err == nil {
		return
	}
	uc.metrics.LedgerErrors.WithLabelValues(errorType(err)).Inc()
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, domain.ErrRateUnavailable):
		return "rate_unavailable"
	default:
		return "other"
	}
}
