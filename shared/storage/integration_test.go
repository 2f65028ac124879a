package storage

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/a2z-dev/a2z/shared/config"
	"github.com/a2z-dev/a2z/shared/storage/pg"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var storage *Storage

func TestMain(m *testing.M) {
	ctx := context.Background()
	var container *postgres.PostgresContainer
	storage, container = mustSetup(ctx)

	exitCode := m.Run()
	teardown(ctx, storage, container)
	os.Exit(exitCode)
}

func mustSetup(ctx context.Context) (*Storage, *postgres.PostgresContainer) {
	dbName := "a2z"
	dbUser := "user"
	dbPassword := "password"
	container, err := postgres.Run(ctx,
		"postgres:15.3-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			// The container restarts itself after the first startup.
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}
	containerPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("failed to obtain container port: %s", err)
	}
	port, err := strconv.Atoi(containerPort.Port())
	if err != nil {
		log.Fatalf("failed to obtain int container port: %s", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("failed to obtain container host: %s", err)
	}

	pgCfg := config.Pg{Host: host, Port: port, User: dbUser, Password: dbPassword, Dbname: dbName}
	if err := pg.RunMigrations(pg.URL(pgCfg)); err != nil {
		log.Fatalf("failed to migrate: %s", err)
	}
	db, err := sql.Open("postgres", pg.DSN(pgCfg))
	if err != nil {
		log.Fatalf("failed to connect to postgres container: %s", err)
	}
	return NewFromDB(db), container
}

func teardown(ctx context.Context, storage *Storage, container *postgres.PostgresContainer) {
	if err := storage.Cleanup(); err != nil {
		log.Printf("failed to close storage connection: %s", err)
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
}

func newId() string {
	return uuid.NewString()
}

func uniqueEmail(t *testing.T) string {
	return uuid.NewString()[:8] + "@" + "example.com"
}
