package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet is the authoritative per-user balance state. Balances holds the
// total amount per currency; Frozen holds the portion of each total that is
// earmarked against pending external transfers and is not spendable.
type Wallet struct {
	UserID    string
	Balances  map[string]decimal.Decimal
	Frozen    map[string]decimal.Decimal
	TotalUSD  decimal.Decimal
	UpdatedAt time.Time
}

// NewWallet creates an empty wallet for a user.
func NewWallet(userID string) *Wallet {
	return &Wallet{
		UserID:    userID,
		Balances:  make(map[string]decimal.Decimal),
		Frozen:    make(map[string]decimal.Decimal),
		UpdatedAt: time.Now().UTC(),
	}
}

// Balance returns the total balance for a currency.
func (w *Wallet) Balance(currency string) decimal.Decimal {
	return w.Balances[currency]
}

// FrozenAmount returns the frozen balance for a currency.
func (w *Wallet) FrozenAmount(currency string) decimal.Decimal {
	return w.Frozen[currency]
}

// Available returns the spendable balance for a currency:
// total minus frozen.
func (w *Wallet) Available(currency string) decimal.Decimal {
	return w.Balances[currency].Sub(w.Frozen[currency])
}

// ValidateDebit checks whether the available balance covers amount.
func (w *Wallet) ValidateDebit(currency string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if w.Available(currency).LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// Freeze moves amount into the frozen bucket. The total is untouched.
func (w *Wallet) Freeze(currency string, amount decimal.Decimal) error {
	if err := w.ValidateDebit(currency, amount); err != nil {
		return err
	}
	w.Frozen[currency] = w.Frozen[currency].Add(amount)
	return nil
}

// Release returns a frozen amount to the available balance.
func (w *Wallet) Release(currency string, amount decimal.Decimal) {
	released := w.Frozen[currency].Sub(amount)
	if released.IsNegative() {
		released = decimal.Zero
	}
	w.Frozen[currency] = released
}

// Clone returns a deep copy safe to hand out to readers.
func (w *Wallet) Clone() *Wallet {
	c := &Wallet{
		UserID:    w.UserID,
		Balances:  make(map[string]decimal.Decimal, len(w.Balances)),
		Frozen:    make(map[string]decimal.Decimal, len(w.Frozen)),
		TotalUSD:  w.TotalUSD,
		UpdatedAt: w.UpdatedAt,
	}
	for k, v := range w.Balances {
		c.Balances[k] = v
	}
	for k, v := range w.Frozen {
		c.Frozen[k] = v
	}
	return c
}

// CheckInvariant verifies that frozen never exceeds total for any currency.
func (w *Wallet) CheckInvariant() error {
	for currency, frozen := range w.Frozen {
		if frozen.GreaterThan(w.Balances[currency]) {
			return ErrFrozenExceedsTotal
		}
	}
	return nil
}
