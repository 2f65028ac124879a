package pg

import (
	"fmt"
	"testing"

	"github.com/a2z-dev/a2z/shared/config"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestDSNAndURL(t *testing.T) {
	cfg := config.Pg{Host: "db", Port: 5432, User: "a2z", Password: "p@ss", Dbname: "store"}

	assert.Equal(t, "host=db port=5432 user=a2z password=p@ss dbname=store sslmode=disable", DSN(cfg))
	assert.Equal(t, "postgres://a2z:p%40ss@db:5432/store?sslmode=disable", URL(cfg))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "businesses_slug_key"})

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "businesses_slug_key"))
	assert.False(t, IsUniqueViolation(err, "identities_email_key"))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(fmt.Errorf("other"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}
