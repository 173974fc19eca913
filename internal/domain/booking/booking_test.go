package booking

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotbook/service-booking/pkg/domain"
)

func newTestBooking() *Booking {
	return NewBooking("consultation", "2026-09-07", "10:00", []Guest{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
	}, "", 30000, "usd")
}

func TestNewBooking(t *testing.T) {
	b := newTestBooking()

	assert.True(t, strings.HasPrefix(b.ID(), "bk_"))
	assert.Len(t, b.ID(), 15)
	assert.Equal(t, StatusPending, b.Status())
	assert.Equal(t, PaymentProcessing, b.Payment().Status)
	assert.Equal(t, int64(30000), b.Payment().AmountInCents)
	assert.Equal(t, "usd", b.Payment().Currency)

	guests := b.Guests()
	require.Len(t, guests, 2)
	for _, g := range guests {
		assert.True(t, strings.HasPrefix(g.ID, "g_"))
		assert.Len(t, g.ID, 10)
	}
	assert.NotEqual(t, guests[0].ID, guests[1].ID)
}

func TestGuestEmailsDeduplicates(t *testing.T) {
	b := NewBooking("consultation", "2026-09-07", "10:00", []Guest{
		{FirstName: "Ada", Email: "ada@example.com"},
		{FirstName: "Ada", Email: "ada@example.com"},
		{FirstName: "Alan", Email: "alan@example.com"},
	}, "", 45000, "usd")

	assert.Equal(t, []string{"ada@example.com", "alan@example.com"}, b.GuestEmails())
}

func TestConfirmPayment(t *testing.T) {
	b := newTestBooking()
	b.AttachPaymentIntent("pi_123", "cus_123")

	require.True(t, b.ConfirmPayment("https://receipts.example/1"))
	assert.Equal(t, StatusConfirmed, b.Status())
	assert.Equal(t, PaymentPaid, b.Payment().Status)
	assert.Equal(t, "https://receipts.example/1", b.Payment().ReceiptURL)

	// Redelivery of the same notification is a no-op.
	assert.False(t, b.ConfirmPayment("https://receipts.example/other"))
	assert.Equal(t, "https://receipts.example/1", b.Payment().ReceiptURL)
}

func TestConfirmPaymentAfterCancelIsStale(t *testing.T) {
	b := newTestBooking()
	require.NoError(t, b.Cancel())

	assert.False(t, b.ConfirmPayment(""))
	assert.Equal(t, StatusCancelled, b.Status())
}

func TestFailPayment(t *testing.T) {
	b := newTestBooking()

	require.True(t, b.FailPayment())
	assert.Equal(t, PaymentFailed, b.Payment().Status)
	// Booking stays pending so the customer can retry payment.
	assert.Equal(t, StatusPending, b.Status())

	assert.False(t, b.FailPayment())
}

func TestFailPaymentAfterCancelIsStale(t *testing.T) {
	b := newTestBooking()
	require.NoError(t, b.Cancel())

	assert.False(t, b.FailPayment())
	assert.Equal(t, StatusCancelled, b.Status())
	assert.Equal(t, PaymentProcessing, b.Payment().Status)
}

func TestFailPaymentAfterConfirmIsStale(t *testing.T) {
	b := newTestBooking()
	require.True(t, b.ConfirmPayment(""))

	assert.False(t, b.FailPayment())
	assert.Equal(t, PaymentPaid, b.Payment().Status)
}

func TestCancel(t *testing.T) {
	b := newTestBooking()

	require.NoError(t, b.Cancel())
	assert.Equal(t, StatusCancelled, b.Status())

	err := b.Cancel()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCancelCompletedBooking(t *testing.T) {
	b := newTestBooking()
	require.True(t, b.ConfirmPayment(""))
	require.NoError(t, b.Complete())

	err := b.Cancel()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
}

func TestMarkRefundedRequiresPaid(t *testing.T) {
	b := newTestBooking()

	b.MarkRefunded()
	assert.Equal(t, PaymentProcessing, b.Payment().Status)

	require.True(t, b.ConfirmPayment(""))
	b.MarkRefunded()
	assert.Equal(t, PaymentRefunded, b.Payment().Status)
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	b := newTestBooking()

	err := b.Complete()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))

	require.True(t, b.ConfirmPayment(""))
	require.NoError(t, b.Complete())
	assert.Equal(t, StatusCompleted, b.Status())
}

func TestReconstituteRoundTrip(t *testing.T) {
	created := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	b := Reconstitute("bk_abc123def456", "premium-package", "2026-09-07", "14:00",
		[]Guest{{ID: "g_12345678", FirstName: "Ada", Email: "ada@example.com"}},
		StatusConfirmed,
		PaymentInfo{Status: PaymentPaid, StripePaymentIntentID: "pi_123", AmountInCents: 45000, Currency: "usd"},
		"window seat please", created, created)

	assert.Equal(t, "bk_abc123def456", b.ID())
	assert.Equal(t, StatusConfirmed, b.Status())
	assert.Equal(t, PaymentPaid, b.Payment().Status)
	assert.Equal(t, "window seat please", b.Notes())
	assert.Equal(t, created, b.CreatedAt())
}
