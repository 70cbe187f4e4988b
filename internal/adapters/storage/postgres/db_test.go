package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-feeding/internal/adapters/storage/docstore"
	"smart-feeding/internal/adapters/storage/docstore/docstoretest"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

// Requiere TEST_POSTGRES_DSN; cada subtest limpia la tabla.
func TestStore_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, db, err := OpenStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	docstoretest.Run(t, func(t *testing.T) docstore.Backend {
		_, err := db.ExecContext(ctx, `TRUNCATE documents RESTART IDENTITY`)
		require.NoError(t, err)
		return store
	})
}
