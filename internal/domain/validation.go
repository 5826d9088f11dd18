package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxMetadataSize   = 10240           // 10KB
	MaxPaymentAmount  = "1000000000000" // 1 trillion
	MinPaymentAmount  = "0.00000001"
	ReferenceCurrency = "USD"
)

// Supported currencies: major fiat plus the crypto assets the platform
// settles in.
var supportedCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CHF": true, "CAD": true, "AUD": true,
	"BTC": true, "ETH": true, "USDT": true, "USDC": true, "TRX": true,
}

// ErrUnsupportedCurrency is returned for currencies the platform does not hold.
var ErrUnsupportedCurrency = fmt.Errorf("unsupported currency")

// NormalizeCurrency returns the canonical form of a currency code. Ledger
// maps, rate lookups and fee tables all key on the canonical code, so every
// entry point normalizes before touching state.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency validates a currency code against the supported set.
func ValidateCurrency(currency string) error {
	if !supportedCurrencies[NormalizeCurrency(currency)] {
		return fmt.Errorf("%w: %s", ErrUnsupportedCurrency, currency)
	}
	return nil
}

// SupportedCurrencies returns the currency codes the platform holds.
func SupportedCurrencies() []string {
	codes := make([]string, 0, len(supportedCurrencies))
	for c := range supportedCurrencies {
		codes = append(codes, c)
	}
	return codes
}

// ValidateAmount validates a payment amount against platform bounds.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinPaymentAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrInvalidAmount, MinPaymentAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxPaymentAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxPaymentAmount)
	}

	return nil
}

// ValidateMetadata validates metadata size.
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	size := 0
	for k, v := range metadata {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("metadata size %d bytes exceeds limit of %d bytes", size, MaxMetadataSize)
	}

	return nil
}
