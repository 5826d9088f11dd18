package gateway

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LocalNetworkSender fakes the payout provider for development setups
// without provider credentials. Every send succeeds with a generated
// reference.
type LocalNetworkSender struct {
	logger zerolog.Logger
	seq    atomic.Int64
}

// NewLocalNetworkSender creates a new LocalNetworkSender.
func NewLocalNetworkSender(logger zerolog.Logger) *LocalNetworkSender {
	return &LocalNetworkSender{logger: logger}
}

// Send logs the payout and returns a synthetic reference.
func (s *LocalNetworkSender) Send(_ context.Context, network, destination string, amount decimal.Decimal, currency string) (string, error) {
	ref := fmt.Sprintf("local-%d", s.seq.Add(1))
	s.logger.Info().
		Str("network", network).
		Str("destination", destination).
		Str("amount", amount.String()).
		Str("currency", currency).
		Str("reference", ref).
		Msg("local payout")
	return ref, nil
}

// LocalPaymentConfirmer confirms every inbound reference. Development only.
type LocalPaymentConfirmer struct{}

// NewLocalPaymentConfirmer creates a new LocalPaymentConfirmer.
func NewLocalPaymentConfirmer() *LocalPaymentConfirmer {
	return &LocalPaymentConfirmer{}
}

// Confirm always reports the payment as settled.
func (c *LocalPaymentConfirmer) Confirm(context.Context, string, string) (bool, error) {
	return true, nil
}
