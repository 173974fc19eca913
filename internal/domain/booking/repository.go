package booking

import (
	"context"
)

// Repository defines the persistence contract for Booking aggregates.
// Bookings are never physically deleted.
type Repository interface {
	// FindByID retrieves a booking by its unique ID.
	FindByID(ctx context.Context, id string) (*Booking, error)

	// FindByEmail resolves the email index and fetches each referenced
	// booking. Referenced bookings that fail to resolve are dropped from
	// the result rather than failing the query.
	FindByEmail(ctx context.Context, email string) ([]*Booking, error)

	// FindByDate returns every booking on the given calendar date,
	// regardless of status. Used for slot availability checks.
	FindByDate(ctx context.Context, date string) ([]*Booking, error)

	// Save upserts the booking and unions its id into the email index for
	// every guest email, and into the date index. Saving the same booking
	// twice produces the same visible state.
	Save(ctx context.Context, b *Booking) error
}
