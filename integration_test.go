//go:build integration

package main_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotbook/service-booking/internal/application"
	"github.com/slotbook/service-booking/internal/domain/booking"
)

// TestRedisRepository_SaveAndIndexes verifies the Redis key layout: the
// booking document plus the email and date id indexes, with idempotent
// index unions on repeated saves.
func TestRedisRepository_SaveAndIndexes(t *testing.T) {
	infra := setupRedis(t)
	defer infra.Cleanup()
	stack := setupBookingStack(t, infra.Client)
	ctx := context.Background()

	b := booking.NewBooking("consultation", "2026-09-07", "10:00", []booking.Guest{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
	}, "", 30000, "usd")

	require.NoError(t, stack.Repo.Save(ctx, b))
	// Saving again must not duplicate index entries.
	require.NoError(t, stack.Repo.Save(ctx, b))

	found, err := stack.Repo.FindByID(ctx, b.ID())
	require.NoError(t, err)
	assert.Equal(t, b.ID(), found.ID())
	assert.Equal(t, booking.StatusPending, found.Status())
	assert.Equal(t, int64(30000), found.Payment().AmountInCents)
	assert.Len(t, found.Guests(), 2)

	byEmail, err := stack.Repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)

	byOther, err := stack.Repo.FindByEmail(ctx, "alan@example.com")
	require.NoError(t, err)
	require.Len(t, byOther, 1)
	assert.Equal(t, b.ID(), byOther[0].ID())

	byDate, err := stack.Repo.FindByDate(ctx, "2026-09-07")
	require.NoError(t, err)
	require.Len(t, byDate, 1)

	missing, err := stack.Repo.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

// TestBookingLifecycle_Redis runs the full lifecycle against a real Redis:
// create, confirm via payment notification, then cancel with refund.
func TestBookingLifecycle_Redis(t *testing.T) {
	infra := setupRedis(t)
	defer infra.Cleanup()
	stack := setupBookingStack(t, infra.Client)
	ctx := context.Background()

	created, err := stack.Service.Create(ctx, application.CreateBookingRequest{
		ServiceID: "standard-session",
		Date:      "2026-09-08",
		TimeSlot:  "14:00",
		Guests: []application.GuestInput{
			{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ClientSecret)
	assert.Equal(t, int64(25000), created.Booking.Payment.AmountInCents)

	intentID := created.Booking.Payment.StripePaymentIntentID
	require.NotEmpty(t, intentID)

	// Payment succeeds.
	require.NoError(t, stack.Service.HandlePaymentSucceeded(ctx, intentID, created.Booking.ID, "https://receipts.example/42"))

	confirmed, err := stack.Service.GetByID(ctx, created.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", confirmed.Status)
	assert.Equal(t, "paid", confirmed.Payment.Status)
	assert.Equal(t, "https://receipts.example/42", confirmed.Payment.ReceiptURL)

	// The booked slot is no longer available.
	slots, err := stack.Service.SlotsFor(ctx, "standard-session", "2026-09-08")
	require.NoError(t, err)
	for _, slot := range slots {
		if slot.Time == "14:00" {
			assert.False(t, slot.Available)
		}
	}

	// Cancel refunds the paid booking.
	cancelled, err := stack.Service.Cancel(ctx, created.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "refunded", cancelled.Payment.Status)

	persisted, err := stack.Service.GetByID(ctx, created.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", persisted.Status)
	assert.Equal(t, "refunded", persisted.Payment.Status)
}

// TestWebhookRedelivery_Redis verifies that a redelivered success
// notification leaves the persisted booking unchanged.
func TestWebhookRedelivery_Redis(t *testing.T) {
	infra := setupRedis(t)
	defer infra.Cleanup()
	stack := setupBookingStack(t, infra.Client)
	ctx := context.Background()

	created, err := stack.Service.Create(ctx, application.CreateBookingRequest{
		ServiceID: "consultation",
		Date:      "2026-09-09",
		TimeSlot:  "09:30",
		Guests: []application.GuestInput{
			{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		},
	})
	require.NoError(t, err)

	intentID := created.Booking.Payment.StripePaymentIntentID
	require.NoError(t, stack.Service.HandlePaymentSucceeded(ctx, intentID, created.Booking.ID, "https://receipts.example/first"))
	require.NoError(t, stack.Service.HandlePaymentSucceeded(ctx, intentID, created.Booking.ID, "https://receipts.example/second"))

	dto, err := stack.Service.GetByID(ctx, created.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", dto.Status)
	assert.Equal(t, "https://receipts.example/first", dto.Payment.ReceiptURL)

	// A late failure after confirmation is also discarded.
	require.NoError(t, stack.Service.HandlePaymentFailed(ctx, intentID, created.Booking.ID))
	dto, err = stack.Service.GetByID(ctx, created.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", dto.Payment.Status)
}
