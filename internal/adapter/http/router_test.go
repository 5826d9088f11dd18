package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iho/walletcore/internal/adapter/http/handler"
	apimiddleware "github.com/iho/walletcore/internal/adapter/http/middleware"
	"github.com/iho/walletcore/internal/adapter/repository/memory"
	"github.com/iho/walletcore/internal/domain"
	"github.com/iho/walletcore/internal/usecase"
	"github.com/iho/walletcore/internal/usecase/mocks"
)

const testBTCAddress = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"

// newTestRouter wires the full stack over the in-memory repositories.
func newTestRouter(t *testing.T, opts ...func(*RouterConfig)) http.Handler {
	t.Helper()

	wallets := memory.NewWalletRepository()
	journal := memory.NewTransactionRepository()
	transfers := memory.NewTransferRepository()
	approvals := memory.NewApprovalRepository()
	conversions := memory.NewConversionRepository()
	rules := memory.NewRuleRepository()
	scam := domain.NewScamList()
	idGen := mocks.NewMockIDGenerator()
	logger := zerolog.Nop()

	exchange := usecase.NewExchangeUseCase(conversions, idGen, time.Minute, logger, nil)
	ledger := usecase.NewLedgerUseCase(wallets, journal, exchange, exchange, nil, idGen, logger, nil)
	fraud := usecase.NewFraudUseCase(journal, scam, mocks.NewMockGeoResolver(), exchange, logger, nil)
	approval := usecase.NewApprovalUseCase(
		ledger, fraud, transfers, approvals, rules, journal,
		exchange, scam, mocks.NewMockNetworkSender(), mocks.NewMockNotifier(), idGen,
		usecase.ApprovalConfig{}, logger, nil,
	)
	payments := usecase.NewPaymentUseCase(ledger, exchange, approval, mocks.NewMockPaymentConfirmer(), mocks.NewMockNotifier(), logger, nil)

	cfg := RouterConfig{
		PaymentHandler:  handler.NewPaymentHandler(payments),
		WalletHandler:   handler.NewWalletHandler(ledger, exchange, approval, payments),
		ApprovalHandler: handler.NewApprovalHandler(approval),
		ExchangeHandler: handler.NewExchangeHandler(exchange),
		HealthHandler:   handler.NewHealthHandler(nil, nil),
		Logger:          logger,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return NewRouter(cfg)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	router := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1)
	})

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "192.0.2.50:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	require.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "192.0.2.50:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	require.Equal(t, http.StatusTooManyRequests, rec2.Code)
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := newTestRouter(t)

	chiRoutes, ok := router.(chi.Router)
	require.True(t, ok, "router does not implement chi.Router")

	seen := map[string]bool{}
	err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	})
	require.NoError(t, err)

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/payments/incoming",
		"POST /api/v1/payments/transfer",
		"POST /api/v1/payments/convert",
		"POST /api/v1/payments/withdraw",
		"GET /api/v1/wallets/{userID}/balance",
		"GET /api/v1/wallets/{userID}/dashboard",
		"PUT /api/v1/wallets/{userID}/auto-approval",
		"GET /api/v1/approvals/",
		"POST /api/v1/approvals/{id}/approve",
		"GET /api/v1/exchange/rate",
	}
	for _, route := range expected {
		require.True(t, seen[route], "expected route %s to be registered", route)
	}
}

func TestRouter_PaymentAndApprovalFlow(t *testing.T) {
	router := newTestRouter(t)

	// Inbound payment below the instant ceiling credits immediately.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/payments/incoming", map[string]any{
		"user_id":   "user-1",
		"amount":    "2000",
		"currency":  "USD",
		"device_id": "device-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Status     string `json:"status"`
		TransferID string `json:"transfer_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "completed", result.Status)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/wallets/user-1/balance?currency=USD", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var balance struct {
		Total     decimal.Decimal `json:"total"`
		Available decimal.Decimal `json:"available"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	require.True(t, balance.Total.Equal(decimal.NewFromInt(2000)), "total %s", balance.Total)

	// A withdrawal above the default auto-approval ceiling queues for review.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/payments/withdraw", map[string]any{
		"user_id":     "user-1",
		"amount":      "1500",
		"currency":    "USD",
		"destination": testBTCAddress,
		"network":     "bitcoin",
		"device_id":   "device-1",
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "pending_approval", result.Status)
	require.NotEmpty(t, result.TransferID)

	// The held amount is frozen until the reviewer decides.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/wallets/user-1/balance?currency=USD", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	require.True(t, balance.Available.Equal(decimal.NewFromInt(500)), "available %s", balance.Available)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/approvals/?user=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var pending []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	require.Equal(t, result.TransferID, pending[0].ID)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/approvals/"+result.TransferID+"/approve", map[string]any{
		"actor": "reviewer-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var transfer struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transfer))
	require.Equal(t, "approved", transfer.Status)

	// Approving twice is a conflict.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/approvals/"+result.TransferID+"/approve", map[string]any{
		"actor": "reviewer-1",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/wallets/user-1/balance?currency=USD", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	require.True(t, balance.Total.Equal(decimal.NewFromInt(500)), "total %s", balance.Total)
}

func TestRouter_IdempotencyReplaysResponse(t *testing.T) {
	router := newTestRouter(t, func(cfg *RouterConfig) {
		cfg.IdempotencyStore = newMemIdempotencyStore()
	})

	body := map[string]any{
		"user_id":  "user-2",
		"amount":   "300",
		"currency": "USD",
	}

	send := func() *httptest.ResponseRecorder {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/incoming", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "Mozilla/5.0")
		req.Header.Set(apimiddleware.IdempotencyKeyHeader, "pay-once")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	require.Empty(t, first.Header().Get("X-Idempotency-Replay"))

	second := send()
	require.Equal(t, "true", second.Header().Get("X-Idempotency-Replay"))
	require.JSONEq(t, first.Body.String(), second.Body.String())

	// The replayed request must not credit the wallet a second time.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/wallets/user-2/balance?currency=USD", nil)
	var balance struct {
		Total decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	require.True(t, balance.Total.Equal(decimal.NewFromInt(300)), "total %s", balance.Total)
}

func TestRouter_UnknownTransferReturnsNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/approvals/no-such-id", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// memIdempotencyStore is a map-backed usecase.IdempotencyStore for tests.
type memIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemIdempotencyStore() *memIdempotencyStore {
	return &memIdempotencyStore{entries: make(map[string][]byte)}
}

func (s *memIdempotencyStore) CheckAndSet(_ context.Context, key string, response []byte, _ time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		return true, existing, nil
	}
	if response == nil {
		response = []byte("processing")
	}
	s.entries[key] = response
	return false, nil, nil
}

func (s *memIdempotencyStore) Update(_ context.Context, key string, response []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = response
	return nil
}
