package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	bookingDomain "github.com/slotbook/service-booking/internal/domain/booking"
	"github.com/slotbook/service-booking/pkg/domain"
)

// Key layout:
//
//	booking:<id>         -> bookingDocument JSON
//	email:<address>      -> JSON array of booking ids
//	date:<YYYY-MM-DD>    -> JSON array of booking ids
//
// The indexes are append-only, deduplicated id sets. There is no
// transaction across the booking write and the index updates; a crash in
// between leaves the booking persisted but not yet indexed.

// guestDocument is the persisted form of a booking guest.
type guestDocument struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// paymentDocument is the persisted form of the embedded payment info.
type paymentDocument struct {
	Status                string `json:"status"`
	StripePaymentIntentID string `json:"stripePaymentIntentId,omitempty"`
	StripeCustomerID      string `json:"stripeCustomerId,omitempty"`
	AmountInCents         int64  `json:"amountInCents"`
	Currency              string `json:"currency"`
	ReceiptURL            string `json:"receiptUrl,omitempty"`
}

// bookingDocument is the persisted form of a Booking aggregate.
type bookingDocument struct {
	ID        string          `json:"id"`
	ServiceID string          `json:"serviceId"`
	Date      string          `json:"date"`
	TimeSlot  string          `json:"timeSlot"`
	Guests    []guestDocument `json:"guests"`
	Status    string          `json:"status"`
	Payment   paymentDocument `json:"payment"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// RedisBookingRepository is the Redis-backed implementation of the booking
// repository.
type RedisBookingRepository struct {
	client *redis.Client
}

// NewRedisBookingRepository creates a booking repository on the given client.
func NewRedisBookingRepository(client *redis.Client) *RedisBookingRepository {
	return &RedisBookingRepository{client: client}
}

func bookingKey(id string) string  { return fmt.Sprintf("booking:%s", id) }
func emailKey(email string) string { return fmt.Sprintf("email:%s", email) }
func dateKey(date string) string   { return fmt.Sprintf("date:%s", date) }

// FindByID retrieves a booking by its unique ID.
func (r *RedisBookingRepository) FindByID(ctx context.Context, id string) (*bookingDomain.Booking, error) {
	data, err := r.client.Get(ctx, bookingKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NewNotFoundError("booking", id)
		}
		return nil, err
	}

	var doc bookingDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, err
	}
	return toDomain(&doc), nil
}

// FindByEmail resolves the email index and fetches each referenced booking.
func (r *RedisBookingRepository) FindByEmail(ctx context.Context, email string) ([]*bookingDomain.Booking, error) {
	ids, err := r.readIndex(ctx, emailKey(email))
	if err != nil {
		return nil, err
	}
	return r.fetchAll(ctx, ids)
}

// FindByDate resolves the date index and fetches each referenced booking.
func (r *RedisBookingRepository) FindByDate(ctx context.Context, date string) ([]*bookingDomain.Booking, error) {
	ids, err := r.readIndex(ctx, dateKey(date))
	if err != nil {
		return nil, err
	}
	return r.fetchAll(ctx, ids)
}

// Save upserts the booking document and unions its id into the email and
// date indexes. Index updates are idempotent.
func (r *RedisBookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	doc := toDocument(b)
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, bookingKey(b.ID()), data, 0).Err(); err != nil {
		return err
	}

	for _, email := range b.GuestEmails() {
		if err := r.appendIndex(ctx, emailKey(email), b.ID()); err != nil {
			return err
		}
	}
	return r.appendIndex(ctx, dateKey(b.Date()), b.ID())
}

// readIndex returns the id list stored at key, or nil when absent.
func (r *RedisBookingRepository) readIndex(ctx context.Context, key string) ([]string, error) {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var ids []string
	if err := json.Unmarshal([]byte(data), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// appendIndex unions id into the id list at key.
func (r *RedisBookingRepository) appendIndex(ctx context.Context, key, id string) error {
	ids, err := r.readIndex(ctx, key)
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	ids = append(ids, id)

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, 0).Err()
}

// fetchAll resolves booking ids to bookings, silently dropping ids that no
// longer resolve.
func (r *RedisBookingRepository) fetchAll(ctx context.Context, ids []string) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, 0, len(ids))
	for _, id := range ids {
		b, err := r.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// toDomain maps a persisted document to the Booking aggregate.
func toDomain(doc *bookingDocument) *bookingDomain.Booking {
	guests := make([]bookingDomain.Guest, len(doc.Guests))
	for i, g := range doc.Guests {
		guests[i] = bookingDomain.Guest{
			ID:        g.ID,
			FirstName: g.FirstName,
			LastName:  g.LastName,
			Email:     g.Email,
			Phone:     g.Phone,
		}
	}

	return bookingDomain.Reconstitute(
		doc.ID,
		doc.ServiceID,
		doc.Date,
		doc.TimeSlot,
		guests,
		bookingDomain.Status(doc.Status),
		bookingDomain.PaymentInfo{
			Status:                bookingDomain.PaymentStatus(doc.Payment.Status),
			StripePaymentIntentID: doc.Payment.StripePaymentIntentID,
			StripeCustomerID:      doc.Payment.StripeCustomerID,
			AmountInCents:         doc.Payment.AmountInCents,
			Currency:              doc.Payment.Currency,
			ReceiptURL:            doc.Payment.ReceiptURL,
		},
		doc.Notes,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
}

// toDocument maps a Booking aggregate to its persisted document.
func toDocument(b *bookingDomain.Booking) *bookingDocument {
	domainGuests := b.Guests()
	guests := make([]guestDocument, len(domainGuests))
	for i, g := range domainGuests {
		guests[i] = guestDocument{
			ID:        g.ID,
			FirstName: g.FirstName,
			LastName:  g.LastName,
			Email:     g.Email,
			Phone:     g.Phone,
		}
	}

	p := b.Payment()
	return &bookingDocument{
		ID:        b.ID(),
		ServiceID: b.ServiceID(),
		Date:      b.Date(),
		TimeSlot:  b.TimeSlot(),
		Guests:    guests,
		Status:    string(b.Status()),
		Payment: paymentDocument{
			Status:                string(p.Status),
			StripePaymentIntentID: p.StripePaymentIntentID,
			StripeCustomerID:      p.StripeCustomerID,
			AmountInCents:         p.AmountInCents,
			Currency:              p.Currency,
			ReceiptURL:            p.ReceiptURL,
		},
		Notes:     b.Notes(),
		CreatedAt: b.CreatedAt(),
		UpdatedAt: b.UpdatedAt(),
	}
}
