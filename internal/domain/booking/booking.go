package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slotbook/service-booking/pkg/domain"
)

// Status is the booking lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// PaymentStatus is the payment sub-state embedded in a booking.
type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentProcessing PaymentStatus = "processing"
	PaymentPaid       PaymentStatus = "paid"
	PaymentRefunded   PaymentStatus = "refunded"
	PaymentFailed     PaymentStatus = "failed"
)

// Guest is a participant in a booking. Guest identity is scoped to the
// booking; returning guests get a fresh id each time.
type Guest struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// PaymentInfo carries the payment state attached to a booking.
type PaymentInfo struct {
	Status                PaymentStatus
	StripePaymentIntentID string
	StripeCustomerID      string
	AmountInCents         int64
	Currency              string
	ReceiptURL            string
}

// Booking is the aggregate root for a reservation of a service at a
// date/time for one or more guests.
type Booking struct {
	id        string
	serviceID string
	date      string
	timeSlot  string
	guests    []Guest
	status    Status
	payment   PaymentInfo
	notes     string
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a pending booking with a fresh id and fresh guest ids.
// The payment amount is fixed at creation time and never recomputed.
func NewBooking(serviceID, date, timeSlot string, guests []Guest, notes string, amountInCents int64, currency string) *Booking {
	now := time.Now().UTC()

	assigned := make([]Guest, len(guests))
	for i, g := range guests {
		g.ID = newGuestID()
		assigned[i] = g
	}

	return &Booking{
		id:        NewBookingID(),
		serviceID: serviceID,
		date:      date,
		timeSlot:  timeSlot,
		guests:    assigned,
		status:    StatusPending,
		payment: PaymentInfo{
			Status:        PaymentProcessing,
			AmountInCents: amountInCents,
			Currency:      currency,
		},
		notes:     notes,
		createdAt: now,
		updatedAt: now,
	}
}

// NewBookingID generates a booking identifier of the form bk_<12 hex chars>.
func NewBookingID() string {
	return "bk_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

func newGuestID() string {
	return "g_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// --- Getters ---

func (b *Booking) ID() string           { return b.id }
func (b *Booking) ServiceID() string    { return b.serviceID }
func (b *Booking) Date() string         { return b.date }
func (b *Booking) TimeSlot() string     { return b.timeSlot }
func (b *Booking) Status() Status       { return b.status }
func (b *Booking) Payment() PaymentInfo { return b.payment }
func (b *Booking) Notes() string        { return b.notes }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// Guests returns a copy of the guest list.
func (b *Booking) Guests() []Guest {
	out := make([]Guest, len(b.guests))
	copy(out, b.guests)
	return out
}

// GuestEmails returns the distinct guest email addresses on this booking.
func (b *Booking) GuestEmails() []string {
	seen := make(map[string]struct{}, len(b.guests))
	var emails []string
	for _, g := range b.guests {
		if _, ok := seen[g.Email]; ok {
			continue
		}
		seen[g.Email] = struct{}{}
		emails = append(emails, g.Email)
	}
	return emails
}

// --- Behavior / State Transitions ---

// AttachPaymentIntent records the gateway payment intent opened for this
// booking. Called once during creation, before the booking is persisted.
func (b *Booking) AttachPaymentIntent(intentID, customerID string) {
	b.payment.StripePaymentIntentID = intentID
	b.payment.StripeCustomerID = customerID
	b.updatedAt = time.Now().UTC()
}

// ConfirmPayment applies a payment-succeeded notification: payment becomes
// paid and the booking confirmed in the same transition. Returns false when
// the notification is stale (already confirmed, cancelled or completed) so
// webhook redelivery is a no-op.
func (b *Booking) ConfirmPayment(receiptURL string) bool {
	if b.status != StatusPending {
		return false
	}
	b.payment.Status = PaymentPaid
	if receiptURL != "" {
		b.payment.ReceiptURL = receiptURL
	}
	b.status = StatusConfirmed
	b.updatedAt = time.Now().UTC()
	return true
}

// FailPayment applies a payment-failed notification. The booking stays
// pending so the customer can retry. Returns false when the booking is no
// longer pending or the payment is no longer processing, so a late failure
// never overwrites paid, refunded or cancelled state.
func (b *Booking) FailPayment() bool {
	if b.status != StatusPending || b.payment.Status != PaymentProcessing {
		return false
	}
	b.payment.Status = PaymentFailed
	b.updatedAt = time.Now().UTC()
	return true
}

// CanCancel reports whether cancellation is currently permitted. Callers
// that must refund before flipping local state check this first.
func (b *Booking) CanCancel() error {
	if b.status == StatusCancelled {
		return domain.NewConflictError("booking already cancelled")
	}
	if b.status == StatusCompleted {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	return nil
}

// Cancel transitions the booking to cancelled. Cancelled is terminal and
// completed bookings cannot be cancelled.
func (b *Booking) Cancel() error {
	if err := b.CanCancel(); err != nil {
		return err
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkRefunded records a completed refund on a paid booking.
func (b *Booking) MarkRefunded() {
	if b.payment.Status != PaymentPaid {
		return
	}
	b.payment.Status = PaymentRefunded
	b.updatedAt = time.Now().UTC()
}

// Complete transitions a confirmed booking to completed.
func (b *Booking) Complete() error {
	if b.status != StatusConfirmed {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// Reconstitute rebuilds a Booking from persisted data.
func Reconstitute(
	id, serviceID, date, timeSlot string,
	guests []Guest,
	status Status,
	payment PaymentInfo,
	notes string,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		serviceID: serviceID,
		date:      date,
		timeSlot:  timeSlot,
		guests:    guests,
		status:    status,
		payment:   payment,
		notes:     notes,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}
