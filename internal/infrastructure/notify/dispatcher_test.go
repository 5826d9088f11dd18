package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/walletcore/internal/domain"
)

type recordingSink struct {
	mu        sync.Mutex
	delivered []domain.Notification
	err       error
}

func (s *recordingSink) Deliver(_ context.Context, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.delivered = append(s.delivered, n)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

func TestDispatcherDeliversQueuedNotifications(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(Config{Sink: sink, Logger: zerolog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Start(ctx)
		close(done)
	}()

	d.Notify(context.Background(), domain.Notification{UserID: "user-1", Event: domain.EventPaymentReceived})
	d.Notify(context.Background(), domain.Notification{UserID: "user-1", Event: domain.EventConversionDone})

	deadline := time.After(2 * time.Second)
	for sink.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected 2 deliveries, got %d", sink.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestDispatcherDrainsOnShutdown(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(Config{Sink: sink, Logger: zerolog.Nop(), BufferSize: 8})

	// Queue before the worker runs, then start with an already-cancelled
	// context so only the drain path delivers.
	d.Notify(context.Background(), domain.Notification{UserID: "user-1", Event: domain.EventTransferApproved})
	d.Notify(context.Background(), domain.Notification{UserID: "user-2", Event: domain.EventTransferRejected})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if got := sink.count(); got != 2 {
		t.Fatalf("expected queued notifications to be drained, got %d", got)
	}
}

func TestDispatcherDropsWhenBufferFull(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(Config{Sink: sink, Logger: zerolog.Nop(), BufferSize: 1})

	d.Notify(context.Background(), domain.Notification{UserID: "user-1", Event: domain.EventPaymentPending})
	// Second enqueue must not block even though nothing is consuming.
	done := make(chan struct{})
	go func() {
		d.Notify(context.Background(), domain.Notification{UserID: "user-1", Event: domain.EventPaymentPending})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full buffer")
	}
}

func TestLogSinkDeliverSucceeds(t *testing.T) {
	sink := NewLogSink(zerolog.Nop())
	err := sink.Deliver(context.Background(), domain.Notification{
		UserID:    "user-1",
		Event:     domain.EventPaymentReceived,
		Message:   "received 100 USD",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
}
