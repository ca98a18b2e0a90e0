// Package pgtest starts a disposable Postgres for integration tests
package pgtest

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Image is the server version the relay targets
const Image = "postgres:15-alpine"

// Start runs a container and returns its DSN; the container is terminated on test cleanup
func Start(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := postgrescontainer.Run(ctx, Image,
		postgrescontainer.WithDatabase("relay"),
		postgrescontainer.WithUsername("relay"),
		postgrescontainer.WithPassword("relay"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres: %v", err)
		}
	})

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres dsn: %v", err)
	}
	return dsn
}
