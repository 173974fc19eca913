package catalog

import (
	"github.com/slotbook/service-booking/pkg/domain"
)

// Service is a bookable offering with a fixed price and duration.
// Prices are in the smallest currency unit; currency is a lowercase
// ISO 4217 code.
type Service struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes"`
	PriceInCents    int64  `json:"priceInCents"`
	Currency        string `json:"currency"`
}

// CurrencySymbols maps supported currency codes to display symbols.
var CurrencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
}

// Catalog is the read-only set of services offered by the business.
// It is loaded once at process start and never mutated.
type Catalog struct {
	services []Service
	byID     map[string]Service
}

// NewCatalog builds a catalog from the given services.
func NewCatalog(services []Service) *Catalog {
	byID := make(map[string]Service, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}
	return &Catalog{services: services, byID: byID}
}

// Default returns the catalog of offered services.
func Default() *Catalog {
	return NewCatalog([]Service{
		{
			ID:              "consultation",
			Name:            "Consultation",
			Description:     "One-on-one consultation session to discuss your needs and create a personalized plan.",
			DurationMinutes: 60,
			PriceInCents:    15000,
			Currency:        "usd",
		},
		{
			ID:              "standard-session",
			Name:            "Standard Session",
			Description:     "A full standard session tailored to your requirements with follow-up notes.",
			DurationMinutes: 90,
			PriceInCents:    25000,
			Currency:        "usd",
		},
		{
			ID:              "premium-package",
			Name:            "Premium Package",
			Description:     "Premium experience including extended session time, priority scheduling, and dedicated support.",
			DurationMinutes: 120,
			PriceInCents:    45000,
			Currency:        "usd",
		},
		{
			ID:              "group-session",
			Name:            "Group Session",
			Description:     "Group session for up to 5 people. Perfect for teams or friend groups.",
			DurationMinutes: 120,
			PriceInCents:    60000,
			Currency:        "usd",
		},
	})
}

// List returns all services in catalog order.
func (c *Catalog) List() []Service {
	out := make([]Service, len(c.services))
	copy(out, c.services)
	return out
}

// Get returns the service with the given id.
func (c *Catalog) Get(id string) (Service, error) {
	s, ok := c.byID[id]
	if !ok {
		return Service{}, domain.NewNotFoundError("service", id)
	}
	return s, nil
}
