package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotbook/service-booking/pkg/domain"
)

func TestDefaultCatalog(t *testing.T) {
	cat := Default()

	services := cat.List()
	require.Len(t, services, 4)

	ids := make([]string, len(services))
	for i, s := range services {
		ids[i] = s.ID
		assert.Equal(t, "usd", s.Currency)
		assert.Positive(t, s.PriceInCents)
		assert.Positive(t, s.DurationMinutes)
	}
	assert.Equal(t, []string{"consultation", "standard-session", "premium-package", "group-session"}, ids)
}

func TestGet(t *testing.T) {
	cat := Default()

	svc, err := cat.Get("consultation")
	require.NoError(t, err)
	assert.Equal(t, "Consultation", svc.Name)
	assert.Equal(t, int64(15000), svc.PriceInCents)
	assert.Equal(t, 60, svc.DurationMinutes)
}

func TestGetUnknownService(t *testing.T) {
	cat := Default()

	_, err := cat.Get("no-such-service")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListReturnsCopy(t *testing.T) {
	cat := Default()

	first := cat.List()
	first[0].Name = "mutated"

	fresh := cat.List()
	assert.Equal(t, "Consultation", fresh[0].Name)
}
