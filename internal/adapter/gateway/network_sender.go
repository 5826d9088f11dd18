package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// NetworkSender submits approved outbound transfers to the payout provider
// over HTTP. Transient failures are retried with exponential backoff; a
// non-2xx response other than 429 or 5xx is permanent.
type NetworkSender struct {
	baseURL    string
	apiKey     string
	client     *http.Client
	logger     zerolog.Logger
	maxElapsed time.Duration
}

// NewNetworkSender creates a new NetworkSender.
func NewNetworkSender(baseURL, apiKey string, logger zerolog.Logger) *NetworkSender {
	return &NetworkSender{
		baseURL:    baseURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		maxElapsed: 30 * time.Second,
	}
}

type payoutRequest struct {
	Network     string          `json:"network"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

type payoutResponse struct {
	Reference string `json:"reference"`
}

// Send submits the payout and returns the provider's external reference.
func (s *NetworkSender) Send(ctx context.Context, network, destination string, amount decimal.Decimal, currency string) (string, error) {
	body, err := json.Marshal(payoutRequest{
		Network:     network,
		Destination: destination,
		Amount:      amount,
		Currency:    currency,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payout: %w", err)
	}

	var reference string

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/payouts", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.apiKey)

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if retryableStatus(resp.StatusCode) {
			return fmt.Errorf("payout provider returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("payout rejected with %d: %s", resp.StatusCode, raw))
		}

		var out payoutResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode payout response: %w", err))
		}
		reference = out.Reference
		return nil
	}

	if err := backoff.Retry(operation, s.newBackOff(ctx)); err != nil {
		s.logger.Error().
			Err(err).
			Str("network", network).
			Str("currency", currency).
			Msg("payout send failed")
		return "", err
	}

	s.logger.Info().
		Str("network", network).
		Str("reference", reference).
		Msg("payout sent")

	return reference, nil
}

func (s *NetworkSender) newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = s.maxElapsed
	return backoff.WithContext(b, ctx)
}

// retryableStatus reports whether the provider response is worth retrying.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
