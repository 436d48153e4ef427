// Package testutil starts throwaway containers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/database"
	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "pgvector/pgvector:0.8.1-pg18"
	rustfsImage   = "rustfs/rustfs:latest"

	postgresCredential = "shopdesk"

	// RustFSAccessKey is both the access key and the secret of the RustFS container.
	RustFSAccessKey = "rustfsadmin"
)

// recordTables is every table the record and feedback repositories write to
var recordTables = []string{
	"new_orders",
	"return_requests",
	"issues",
	"callback_requests",
	"track_requests",
	"feedback",
	"knowledge_chunks",
}

// startContainer runs req and returns the mapped address of port. The
// container is removed when the test finishes.
func startContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest, port string) (string, string) {
	t.Helper()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate %s: %v", req.Image, err)
		}
	})
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("%s host: %v", req.Image, err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("%s port %s: %v", req.Image, port, err)
	}
	return host, mapped.Port()
}

// StartPostgres runs a pgvector-enabled Postgres and returns its connection URL
func StartPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	host, port := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresCredential,
			"POSTGRES_PASSWORD": postgresCredential,
			"POSTGRES_DB":       postgresCredential,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(60 * time.Second),
	}, "5432")

	return fmt.Sprintf("postgres://%[1]s:%[1]s@%s:%s/%[1]s?sslmode=disable", postgresCredential, host, port)
}

// StartRustFS runs an S3-compatible RustFS server and returns its endpoint
func StartRustFS(ctx context.Context, t *testing.T) string {
	t.Helper()

	host, port := startContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        rustfsImage,
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"RUSTFS_ACCESS_KEY": RustFSAccessKey,
			"RUSTFS_SECRET_KEY": RustFSAccessKey,
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(30 * time.Second),
	}, "9000")

	return fmt.Sprintf("http://%s:%s", host, port)
}

// NewTestPool starts Postgres, applies the migrations in migrationsDir and
// returns a pool that is closed when the test finishes. The URL is returned
// for tests that need their own connection.
func NewTestPool(ctx context.Context, t *testing.T, migrationsDir string) (*pgxpool.Pool, string) {
	t.Helper()
	url := StartPostgres(ctx, t)

	// The server restarts once after init, so the first attempts can be refused
	var err error
	for attempt := 1; attempt <= 5; attempt++ {
		if err = database.Migrate(url, migrationsDir, zerolog.Nop()); err == nil {
			break
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := database.NewPool(ctx, database.Config{URL: url})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool, url
}

// TruncateAll empties every table for test isolation
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range recordTables {
		if _, err := pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}
