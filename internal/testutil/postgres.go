// Package testutil provides test helpers for PostgreSQL-backed packages.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/navzen/navigation/internal/config"
	"github.com/navzen/navigation/internal/storage/postgres"
)

// RoomsSchema mirrors migrations/000001_create_rooms.up.sql.
const RoomsSchema = `
	CREATE TABLE IF NOT EXISTS rooms (
		id          BIGINT       PRIMARY KEY CHECK (id > 0),
		name        TEXT         NOT NULL,
		floor       INTEGER      NOT NULL DEFAULT 0,
		description TEXT         NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_rooms_floor ON rooms (floor);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and returns
// a connected Pool.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	pc := &PostgresContainer{
		container: container,
		Pool:      pool,
		RawPool:   pool.DB(),
		Config:    dbCfg,
	}

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return pc
}

// ApplyMigrations creates the rooms schema directly, without the migrate tool.
//
// Precondition: Pool must be connected.
// Postcondition: The rooms table exists in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	applySchema(t, pc.RawPool)
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return pc.Config.DSN()
}

// NewPool returns a pool with the rooms schema applied and emptied.
//
// TEST_DSN selects an existing database. Without it, a container is started
// when NAVZEN_TESTCONTAINERS=1; otherwise the test is skipped.
//
// Postcondition: Returns a connected pool closed at test cleanup, or skips/fails the test.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DSN")
	if dsn == "" {
		if os.Getenv("NAVZEN_TESTCONTAINERS") != "1" {
			t.Skip("TEST_DSN not set; skipping integration test")
		}
		pc := NewPostgresContainer(t)
		pc.ApplyMigrations(t)
		return pc.RawPool
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connecting to %s: %v", redact(dsn), err)
	}
	t.Cleanup(pool.Close)

	applySchema(t, pool)
	if _, err := pool.Exec(ctx, `TRUNCATE rooms`); err != nil {
		t.Fatalf("truncating rooms: %v", err)
	}
	return pool
}

func applySchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	start := time.Now()
	if _, err := pool.Exec(context.Background(), RoomsSchema); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

func redact(dsn string) string {
	if len(dsn) > 24 {
		return fmt.Sprintf("%s...", dsn[:24])
	}
	return dsn
}
