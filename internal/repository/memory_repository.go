package repository

import (
	"context"
	"encoding/json"
	"sync"

	bookingDomain "github.com/slotbook/service-booking/internal/domain/booking"
	"github.com/slotbook/service-booking/pkg/domain"
)

// MemoryBookingRepository is an in-memory implementation of the booking
// repository, used in development when no Redis is configured and in tests.
// It mirrors the Redis key layout: documents plus email and date id indexes.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string][]byte
	byEmail  map[string][]string
	byDate   map[string][]string
}

// NewMemoryBookingRepository creates an empty in-memory repository.
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		bookings: make(map[string][]byte),
		byEmail:  make(map[string][]string),
		byDate:   make(map[string][]string),
	}
}

// FindByID retrieves a booking by its unique ID.
func (r *MemoryBookingRepository) FindByID(ctx context.Context, id string) (*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(id)
}

// FindByEmail resolves the email index and fetches each referenced booking.
func (r *MemoryBookingRepository) FindByEmail(ctx context.Context, email string) ([]*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fetchLocked(r.byEmail[email]), nil
}

// FindByDate returns every booking on the given calendar date.
func (r *MemoryBookingRepository) FindByDate(ctx context.Context, date string) ([]*bookingDomain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fetchLocked(r.byDate[date]), nil
}

// Save upserts the booking and unions its id into both indexes.
func (r *MemoryBookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	data, err := json.Marshal(toDocument(b))
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings[b.ID()] = data
	for _, email := range b.GuestEmails() {
		r.byEmail[email] = union(r.byEmail[email], b.ID())
	}
	r.byDate[b.Date()] = union(r.byDate[b.Date()], b.ID())
	return nil
}

func (r *MemoryBookingRepository) findLocked(id string) (*bookingDomain.Booking, error) {
	data, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id)
	}
	var doc bookingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return toDomain(&doc), nil
}

func (r *MemoryBookingRepository) fetchLocked(ids []string) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, 0, len(ids))
	for _, id := range ids {
		b, err := r.findLocked(id)
		if err != nil {
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings
}

func union(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
