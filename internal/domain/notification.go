package domain

import "time"

// Notification event kinds pushed to the notification sink.
const (
	EventPaymentReceived   = "payment.received"
	EventPaymentPending    = "payment.pending"
	EventTransferRequested = "transfer.requested"
	EventTransferApproved  = "transfer.approved"
	EventTransferRejected  = "transfer.rejected"
	EventTransferExpired   = "transfer.expired"
	EventConversionDone    = "conversion.completed"
)

// Notification is a human-readable event pushed to the notification sink.
type Notification struct {
	UserID    string    `json:"user_id"`
	Event     string    `json:"event"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
