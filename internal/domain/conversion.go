package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionStatus marks the outcome of a currency conversion.
type ConversionStatus string

const (
	ConversionCompleted ConversionStatus = "completed"
	ConversionFailed    ConversionStatus = "failed"
)

// Conversion is an append-only record of one currency conversion. Fee is
// denominated in the source currency and already deducted from the amount
// that was converted.
type Conversion struct {
	ID           string
	UserID       string
	FromCurrency string
	ToCurrency   string
	FromAmount   decimal.Decimal
	ToAmount     decimal.Decimal
	Rate         decimal.Decimal
	Fee          decimal.Decimal
	Status       ConversionStatus
	CreatedAt    time.Time
}
