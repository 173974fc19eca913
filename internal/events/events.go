package events

import (
	"time"
)

// TopicBookingEvents is the Kafka topic carrying booking lifecycle events.
const TopicBookingEvents = "booking.events"

// Event types published by this service.
const (
	BookingCreated       = "booking.created"
	BookingConfirmed     = "booking.confirmed"
	BookingCancelled     = "booking.cancelled"
	BookingPaymentFailed = "booking.payment_failed"
)

// BookingCreatedEvent is published after a pending booking is persisted.
type BookingCreatedEvent struct {
	BookingID     string    `json:"booking_id"`
	ServiceID     string    `json:"service_id"`
	Date          string    `json:"date"`
	TimeSlot      string    `json:"time_slot"`
	GuestCount    int       `json:"guest_count"`
	AmountInCents int64     `json:"amount_in_cents"`
	Currency      string    `json:"currency"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingConfirmedEvent is published when a payment succeeds and the
// booking flips to confirmed.
type BookingConfirmedEvent struct {
	BookingID  string    `json:"booking_id"`
	IntentID   string    `json:"payment_intent_id"`
	ReceiptURL string    `json:"receipt_url,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published after a cancellation, refunded or not.
type BookingCancelledEvent struct {
	BookingID  string    `json:"booking_id"`
	Refunded   bool      `json:"refunded"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingPaymentFailedEvent is published when the processor reports a
// failed payment attempt. The booking stays pending.
type BookingPaymentFailedEvent struct {
	BookingID  string    `json:"booking_id"`
	IntentID   string    `json:"payment_intent_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
