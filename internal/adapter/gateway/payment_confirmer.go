package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// PaymentConfirmer verifies an inbound payment reference against the
// provider before the ledger is credited.
type PaymentConfirmer struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

// NewPaymentConfirmer creates a new PaymentConfirmer.
func NewPaymentConfirmer(baseURL, apiKey string, logger zerolog.Logger) *PaymentConfirmer {
	return &PaymentConfirmer{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type confirmResponse struct {
	Status string `json:"status"`
}

// Confirm reports whether the provider has settled the referenced payment.
// An unknown reference is a definitive "not confirmed", not an error.
func (c *PaymentConfirmer) Confirm(ctx context.Context, reference, provider string) (bool, error) {
	endpoint := fmt.Sprintf("%s/v1/payments/%s?provider=%s", c.baseURL, url.PathEscape(reference), url.QueryEscape(provider))

	var confirmed bool

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			confirmed = false
			return nil
		case retryableStatus(resp.StatusCode):
			return fmt.Errorf("confirmation provider returned %d", resp.StatusCode)
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("confirmation failed with %d", resp.StatusCode))
		}

		var out confirmResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode confirmation: %w", err))
		}
		confirmed = out.Status == "settled"
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 15 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		c.logger.Error().Err(err).Str("reference", reference).Msg("payment confirmation failed")
		return false, err
	}

	return confirmed, nil
}
