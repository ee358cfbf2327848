//go:build integration

package integration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"shuttlecourt/internal/infra/postgres"
	"shuttlecourt/internal/pkg/config"
	"shuttlecourt/migrations"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	postgresContainerOnce sync.Once
	postgresTestContainer testcontainers.Container

	testUser     = "test"
	testPassword = "testpass"
)

// setupPool starts the shared PostgreSQL container, creates a database
// private to this test, applies the migrations and returns a pool bound to
// that database. Everything is cleaned up through t.Cleanup.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	startPostgresContainerOnce(t)

	ctx := context.Background()
	mappedPort, err := postgresTestContainer.MappedPort(ctx, nat.Port("5432/tcp"))
	require.NoError(t, err, "failed to read mapped container port")
	host, err := postgresTestContainer.Host(ctx)
	require.NoError(t, err, "failed to read container host")

	dbName := createTestDatabase(t, host, mappedPort)

	dbConfig := config.DBConfig{
		Host:     host,
		Port:     mappedPort.Port(),
		User:     testUser,
		Password: testPassword,
		DBName:   dbName,
		SSLMode:  "disable",
		TimeZone: "UTC",
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	pool, cleanup, err := postgres.Connect(connectCtx, dbConfig)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(cleanup)

	require.NoError(t, migrations.Run(connectCtx, pool), "failed to apply migrations")
	return pool
}

// createTestDatabase provisions one database per test so tests never share
// rows. Creation retries with backoff because concurrent CREATE DATABASE
// statements on a fresh container occasionally trip over each other.
func createTestDatabase(t *testing.T, host string, port nat.Port) string {
	t.Helper()

	dbName := "testdb_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		testUser, testPassword, host, port.Port())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adminPool, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err, "failed to open admin connection")
	defer adminPool.Close()

	var createErr error
	for attempt := range 5 {
		if attempt > 0 {
			wait := min(time.Duration(500+attempt*500)*time.Millisecond, 3*time.Second)
			time.Sleep(wait)
		}
		_, createErr = adminPool.Exec(ctx, "CREATE DATABASE "+dbName)
		if createErr == nil {
			break
		}
		slog.Warn("retrying test database creation", "attempt", attempt+1, "error", createErr.Error())
	}
	require.NoError(t, createErr, "failed to create test database")

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()

		cleanupPool, err := pgxpool.New(cleanupCtx, adminDSN)
		if err != nil {
			slog.Warn("failed to open cleanup connection", "database", dbName, "error", err.Error())
			return
		}
		defer cleanupPool.Close()

		if _, err := cleanupPool.Exec(cleanupCtx, "DROP DATABASE IF EXISTS "+dbName); err != nil {
			slog.Warn("failed to drop test database", "database", dbName, "error", err.Error())
		}
	})

	return dbName
}

func startPostgresContainerOnce(t *testing.T) {
	t.Helper()

	postgresContainerOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{
				"/var/lib/postgresql/data": "rw,size=512m",
			},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "full_page_writes=off",
				"-c", "synchronous_commit=off",
				"-c", "max_wal_size=512MB",
				"-c", "shared_buffers=256MB",
				"-c", "max_connections=200",
				"-c", "log_statement=none",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
					testUser, testPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
			Name:   "postgres-shuttlecourt-integration",
			Labels: map[string]string{"purpose": "integration-tests"},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
		defer cancel()

		var err error
		postgresTestContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		require.NoError(t, err, "failed to start PostgreSQL container")

		t.Cleanup(func() {
			if postgresTestContainer != nil {
				termCtx, termCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer termCancel()
				if err := postgresTestContainer.Terminate(termCtx); err != nil {
					slog.Warn("failed to terminate PostgreSQL container", "error", err.Error())
				}
			}
		})
	})
}

// ---- row seeding ----

func seedUser(t *testing.T, pool *pgxpool.Pool, role string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, email, password_hash, name, role, active)
		VALUES ($1, $2, 'x', 'Integration User', $3, TRUE)`,
		id, fmt.Sprintf("user-%s@example.com", id), role)
	require.NoError(t, err, "failed to seed user")
	return id
}

func seedCourt(t *testing.T, pool *pgxpool.Pool, lateFeePercent float64) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO courts (id, name, status, late_fee_percent)
		VALUES ($1, $2, 'active', $3)`,
		id, fmt.Sprintf("Court %s", id.String()[:8]), lateFeePercent)
	require.NoError(t, err, "failed to seed court")
	return id
}

func seedBooking(t *testing.T, pool *pgxpool.Pool, courtID, customerID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO bookings (id, court_id, customer_id, status)
		VALUES ($1, $2, $3, 'booked')`,
		id, courtID, customerID)
	require.NoError(t, err, "failed to seed booking")
	return id
}

func seedOrder(t *testing.T, pool *pgxpool.Pool, bookingID, customerID uuid.UUID) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO orders (id, booking_id, customer_id, status, court_base, total_amount)
		VALUES ($1, $2, $3, 'awaiting_payment', 100000, 100000)`,
		id, bookingID, customerID)
	require.NoError(t, err, "failed to seed order")
	return id
}

func seedVoucher(t *testing.T, pool *pgxpool.Pool, code string, usageLimitTotal int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO vouchers (
			id, code, discount_type, discount_value, start_at, end_at,
			used_count, usage_limit_total, usage_limit_per_user, active
		) VALUES ($1, $2, 'fixed', 10000, now() - interval '1 day', now() + interval '30 days', 0, $3, 0, TRUE)`,
		id, code, usageLimitTotal)
	require.NoError(t, err, "failed to seed voucher")
	return id
}
