//go:build integration

package main_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/slotbook/service-booking/internal/adapter"
	"github.com/slotbook/service-booking/internal/application"
	"github.com/slotbook/service-booking/internal/domain/catalog"
	"github.com/slotbook/service-booking/internal/domain/schedule"
	"github.com/slotbook/service-booking/internal/events"
	"github.com/slotbook/service-booking/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	Client  *redis.Client
	Cleanup func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service *application.BookingService
	Repo    *repository.RedisBookingRepository
	Stripe  *adapter.MockStripeAdapter
}

// setupRedis starts a Redis testcontainer and returns a connected client.
func setupRedis(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Redis container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})

	// Poll until the client can actually ping.
	require.Eventually(t, func() bool {
		return client.Ping(ctx).Err() == nil
	}, 30*time.Second, 500*time.Millisecond, "Redis not ready for connections")

	cleanup := func() {
		_ = client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	}

	return &testInfra{Client: client, Cleanup: cleanup}
}

// setupBookingStack wires the booking service over the Redis store and the
// mock payment gateway.
func setupBookingStack(t *testing.T, client *redis.Client) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	repo := repository.NewRedisBookingRepository(client)
	stripe := adapter.NewMockStripeAdapter(logger)
	publisher := events.NewPublisher(nil, logger)

	svc := application.NewBookingService(
		repo,
		catalog.Default(),
		stripe,
		schedule.DefaultBusinessHours(),
		publisher,
		nil,
		logger,
	)

	return &bookingStack{Service: svc, Repo: repo, Stripe: stripe}
}
