package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/infrastructure/metrics"
)

// currencyPair is an ordered from/to pair in the rate table.
type currencyPair struct {
	From string
	To   string
}

// feeBounds clamp the percentage fee for a source currency.
type feeBounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// ExchangeUseCase holds the rate table and performs currency conversions.
// The table is replaced wholesale on refresh so readers never observe a
// half-updated pair.
type ExchangeUseCase struct {
	conversions ConversionRepository
	idGen       IDGenerator
	logger      zerolog.Logger
	metrics     *metrics.Metrics

	// rates is replaced wholesale under mu; a published table is never
	// mutated, so readers can use it lock-free after the snapshot.
	mu    sync.RWMutex
	rates map[currencyPair]decimal.Decimal

	refreshInterval time.Duration
	rng             *rand.Rand
	rateStore       RateStore

	feeRate   decimal.Decimal
	feeByCurr map[string]feeBounds
}

var defaultFeeBounds = map[string]feeBounds{
	"USD":  {Min: decimal.NewFromFloat(0.5), Max: decimal.NewFromInt(50)},
	"EUR":  {Min: decimal.NewFromFloat(0.5), Max: decimal.NewFromInt(50)},
	"GBP":  {Min: decimal.NewFromFloat(0.5), Max: decimal.NewFromInt(50)},
	"JPY":  {Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(5000)},
	"BTC":  {Min: decimal.NewFromFloat(0.000005), Max: decimal.NewFromFloat(0.0005)},
	"ETH":  {Min: decimal.NewFromFloat(0.0001), Max: decimal.NewFromFloat(0.01)},
	"USDT": {Min: decimal.NewFromFloat(0.5), Max: decimal.NewFromInt(50)},
	"USDC": {Min: decimal.NewFromFloat(0.5), Max: decimal.NewFromInt(50)},
}

// seedRates are the direct pairs the table starts from. Anything else
// resolves through inversion or triangulation via the reference currency.
func seedRates() map[currencyPair]decimal.Decimal {
	return map[currencyPair]decimal.Decimal{
		{"USD", "EUR"}:  decimal.NewFromFloat(0.92),
		{"USD", "GBP"}:  decimal.NewFromFloat(0.79),
		{"USD", "JPY"}:  decimal.NewFromFloat(155.2),
		{"USD", "CHF"}:  decimal.NewFromFloat(0.88),
		{"USD", "CAD"}:  decimal.NewFromFloat(1.36),
		{"USD", "AUD"}:  decimal.NewFromFloat(1.52),
		{"USD", "BTC"}:  decimal.NewFromFloat(0.000023),
		{"USD", "ETH"}:  decimal.NewFromFloat(0.00041),
		{"USD", "USDT"}: decimal.NewFromInt(1),
		{"USD", "USDC"}: decimal.NewFromInt(1),
		{"USD", "TRX"}:  decimal.NewFromFloat(8.4),
	}
}

// NewExchangeUseCase creates an exchange engine with the seeded rate table.
func NewExchangeUseCase(
	conversions ConversionRepository,
	idGen IDGenerator,
	refreshInterval time.Duration,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *ExchangeUseCase {
	uc := &ExchangeUseCase{
		conversions:     conversions,
		idGen:           idGen,
		logger:          logger,
		metrics:         m,
		rates:           seedRates(),
		refreshInterval: refreshInterval,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		feeRate:         decimal.NewFromFloat(0.005),
		feeByCurr:       defaultFeeBounds,
	}
	return uc
}

// UseRateStore attaches a persistent snapshot store. Each refresh saves the
// published table; RestoreRates loads the last snapshot on startup.
func (uc *ExchangeUseCase) UseRateStore(store RateStore) {
	uc.rateStore = store
}

// RestoreRates publishes the last persisted rate table, if any.
func (uc *ExchangeUseCase) RestoreRates(ctx context.Context) error {
	if uc.rateStore == nil {
		return nil
	}

	stored, err := uc.rateStore.LoadRates(ctx)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return nil
	}

	table := make(map[currencyPair]decimal.Decimal, len(stored))
	for key, rate := range stored {
		from, to, ok := strings.Cut(key, "/")
		if !ok {
			continue
		}
		table[currencyPair{from, to}] = rate
	}
	uc.publish(table)
	uc.logger.Info().Int("pairs", len(table)).Msg("rate table restored")
	return nil
}

// snapshot returns the current rate table.
func (uc *ExchangeUseCase) snapshot() map[currencyPair]decimal.Decimal {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.rates
}

// publish swaps in a new rate table.
func (uc *ExchangeUseCase) publish(table map[currencyPair]decimal.Decimal) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.rates = table
}

// Rate resolves the conversion rate for a currency pair: identical pair,
// direct lookup, inverted reverse pair, then triangulation through the
// reference currency.
func (uc *ExchangeUseCase) Rate(from, to string) (decimal.Decimal, error) {
	from = domain.NormalizeCurrency(from)
	to = domain.NormalizeCurrency(to)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	table := uc.snapshot()

	if rate, ok := table[currencyPair{from, to}]; ok {
		return rate, nil
	}

	if reverse, ok := table[currencyPair{to, from}]; ok && !reverse.IsZero() {
		return decimal.NewFromInt(1).Div(reverse), nil
	}

	ref := domain.ReferenceCurrency
	toRef, err := uc.lookup(table, from, ref)
	if err != nil {
		uc.countLookupError()
		return decimal.Zero, fmt.Errorf("%w: %s/%s", domain.ErrRateUnavailable, from, to)
	}
	fromRef, err := uc.lookup(table, ref, to)
	if err != nil {
		uc.countLookupError()
		return decimal.Zero, fmt.Errorf("%w: %s/%s", domain.ErrRateUnavailable, from, to)
	}
	return toRef.Mul(fromRef), nil
}

// lookup resolves direct or inverted pairs only; used by triangulation.
func (uc *ExchangeUseCase) lookup(table map[currencyPair]decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := table[currencyPair{from, to}]; ok {
		return rate, nil
	}
	if reverse, ok := table[currencyPair{to, from}]; ok && !reverse.IsZero() {
		return decimal.NewFromInt(1).Div(reverse), nil
	}
	return decimal.Zero, domain.ErrRateUnavailable
}

// ConvertInput is the input for a currency conversion. Internal marks a
// ledger-to-ledger move, which pays no fee.
type ConvertInput struct {
	UserID   string
	From     string
	To       string
	Amount   decimal.Decimal
	Internal bool
}

// Convert converts an amount between currencies. The fee is a bounded
// percentage of the source amount, deducted before applying the rate, and
// skipped entirely for internal ledger moves. Every successful conversion
// appends a ConversionRecord.
func (uc *ExchangeUseCase) Convert(ctx context.Context, input ConvertInput) (*domain.Conversion, error) {
	input.From = domain.NormalizeCurrency(input.From)
	input.To = domain.NormalizeCurrency(input.To)
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	rate, err := uc.Rate(input.From, input.To)
	if err != nil {
		return nil, err
	}

	fee := decimal.Zero
	if !input.Internal {
		fee = uc.fee(input.From, input.Amount)
	}

	toAmount := input.Amount.Sub(fee).Mul(rate)
	conversion := &domain.Conversion{
		ID:           uc.idGen.Generate(),
		UserID:       input.UserID,
		FromCurrency: input.From,
		ToCurrency:   input.To,
		FromAmount:   input.Amount,
		ToAmount:     toAmount,
		Rate:         rate,
		Fee:          fee,
		Status:       domain.ConversionCompleted,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.conversions.Append(ctx, conversion); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ConversionsCompleted.Inc()
		feeF, _ := fee.Float64()
		uc.metrics.ConversionFees.Observe(feeF)
	}
	return conversion, nil
}

// fee computes the clamped percentage fee in the source currency.
func (uc *ExchangeUseCase) fee(currency string, amount decimal.Decimal) decimal.Decimal {
	fee := amount.Mul(uc.feeRate)
	bounds, ok := uc.feeByCurr[currency]
	if !ok {
		bounds = feeBounds{Min: decimal.NewFromFloat(0.01), Max: decimal.NewFromInt(100)}
	}
	if fee.LessThan(bounds.Min) {
		fee = bounds.Min
	}
	if fee.GreaterThan(bounds.Max) {
		fee = bounds.Max
	}
	return fee
}

// History returns a user's most recent conversions, most recent first.
func (uc *ExchangeUseCase) History(ctx context.Context, userID string, limit int) ([]*domain.Conversion, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return uc.conversions.ListByUser(ctx, userID, limit)
}

// SupportedCurrencies returns the currencies the platform quotes, sorted.
func (uc *ExchangeUseCase) SupportedCurrencies() []string {
	codes := domain.SupportedCurrencies()
	sort.Strings(codes)
	return codes
}

// Run refreshes the rate table on a fixed interval until ctx is done. Each
// refresh applies small bounded multiplicative drift to every direct pair,
// standing in for a live feed. A real feed integration replaces only this
// loop.
func (uc *ExchangeUseCase) Run(ctx context.Context) {
	ticker := time.NewTicker(uc.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uc.refresh()
		}
	}
}

// refresh builds a drifted copy of the table and publishes it atomically.
func (uc *ExchangeUseCase) refresh() {
	old := uc.snapshot()
	next := make(map[currencyPair]decimal.Decimal, len(old))
	for pair, rate := range old {
		// Drift within ±0.5%.
		drift := decimal.NewFromFloat(1 + (uc.rng.Float64()-0.5)/100)
		next[pair] = rate.Mul(drift)
	}
	uc.publish(next)

	if uc.rateStore != nil {
		stored := make(map[string]decimal.Decimal, len(next))
		for pair, rate := range next {
			stored[pair.From+"/"+pair.To] = rate
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := uc.rateStore.SaveRates(ctx, stored, uc.refreshInterval*10); err != nil {
			uc.logger.Warn().Err(err).Msg("rate snapshot save failed")
		}
		cancel()
	}

	if uc.metrics != nil {
		uc.metrics.RateRefreshes.Inc()
	}
	uc.logger.Debug().Int("pairs", len(next)).Msg("rate table refreshed")
}

func (uc *ExchangeUseCase) countLookupError() {
	if uc.metrics != nil {
		uc.metrics.RateLookupErrors.Inc()
	}
}
