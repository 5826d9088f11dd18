package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/walletcore/internal/domain"
)

// MockNetworkSender is a mock implementation of NetworkSender. It records
// every send and hands out sequential references.
type MockNetworkSender struct {
	mu    sync.Mutex
	sends []SendCall

	SendFunc func(ctx context.Context, network, destination string, amount decimal.Decimal, currency string) (string, error)
}

// SendCall is one recorded Send invocation.
type SendCall struct {
	Network     string
	Destination string
	Amount      decimal.Decimal
	Currency    string
}

func NewMockNetworkSender() *MockNetworkSender {
	return &MockNetworkSender{}
}

func (m *MockNetworkSender) Send(ctx context.Context, network, destination string, amount decimal.Decimal, currency string) (string, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, network, destination, amount, currency)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, SendCall{Network: network, Destination: destination, Amount: amount, Currency: currency})
	return fmt.Sprintf("ext-%d", len(m.sends)), nil
}

// Sends returns the recorded send calls.
func (m *MockNetworkSender) Sends() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendCall, len(m.sends))
	copy(out, m.sends)
	return out
}

// MockNotifier is a mock implementation of Notifier that records every
// notification.
type MockNotifier struct {
	mu            sync.Mutex
	notifications []domain.Notification

	NotifyFunc func(ctx context.Context, n domain.Notification)
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, n domain.Notification) {
	if m.NotifyFunc != nil {
		m.NotifyFunc(ctx, n)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
}

// Notifications returns the recorded notifications.
func (m *MockNotifier) Notifications() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Notification, len(m.notifications))
	copy(out, m.notifications)
	return out
}

// Events returns the event kinds of the recorded notifications in order.
func (m *MockNotifier) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]string, len(m.notifications))
	for i, n := range m.notifications {
		events[i] = n.Event
	}
	return events
}

// MockPaymentConfirmer is a mock implementation of PaymentConfirmer. The
// default confirms everything.
type MockPaymentConfirmer struct {
	ConfirmFunc func(ctx context.Context, reference, provider string) (bool, error)
}

func NewMockPaymentConfirmer() *MockPaymentConfirmer {
	return &MockPaymentConfirmer{}
}

func (m *MockPaymentConfirmer) Confirm(ctx context.Context, reference, provider string) (bool, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, reference, provider)
	}
	return true, nil
}

// MockGeoResolver is a mock implementation of GeoResolver backed by a set of
// blocked IPs.
type MockGeoResolver struct {
	mu      sync.RWMutex
	blocked map[string]struct{}

	IsBlockedFunc func(ip string) bool
}

func NewMockGeoResolver(blocked ...string) *MockGeoResolver {
	set := make(map[string]struct{}, len(blocked))
	for _, ip := range blocked {
		set[ip] = struct{}{}
	}
	return &MockGeoResolver{blocked: set}
}

func (m *MockGeoResolver) IsBlocked(ip string) bool {
	if m.IsBlockedFunc != nil {
		return m.IsBlockedFunc(ip)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blocked[ip]
	return ok
}

// MockJournalArchiver is a mock implementation of JournalArchiver that keeps
// archived entries in memory.
type MockJournalArchiver struct {
	mu      sync.Mutex
	entries []*domain.Transaction

	ArchiveFunc func(ctx context.Context, tx *domain.Transaction) error
}

func NewMockJournalArchiver() *MockJournalArchiver {
	return &MockJournalArchiver{}
}

func (m *MockJournalArchiver) Archive(ctx context.Context, tx *domain.Transaction) error {
	if m.ArchiveFunc != nil {
		return m.ArchiveFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, tx)
	return nil
}

// Entries returns the archived entries.
func (m *MockJournalArchiver) Entries() []*domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Transaction, len(m.entries))
	copy(out, m.entries)
	return out
}

// MockIDGenerator hands out deterministic sequential IDs.
type MockIDGenerator struct {
	mu   sync.Mutex
	next int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return fmt.Sprintf("id-%04d", m.next)
}

// MockRateSource is a mock implementation of RateSource backed by a fixed
// table keyed by "FROM/TO".
type MockRateSource struct {
	mu    sync.RWMutex
	rates map[string]decimal.Decimal

	RateFunc func(from, to string) (decimal.Decimal, error)
}

func NewMockRateSource(rates map[string]decimal.Decimal) *MockRateSource {
	if rates == nil {
		rates = make(map[string]decimal.Decimal)
	}
	return &MockRateSource{rates: rates}
}

func (m *MockRateSource) Rate(from, to string) (decimal.Decimal, error) {
	if m.RateFunc != nil {
		return m.RateFunc(from, to)
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rate, ok := m.rates[from+"/"+to]; ok {
		return rate, nil
	}
	return decimal.Zero, domain.ErrRateUnavailable
}
