//go:build integration

package database_test

import (
	"context"
	"testing"

	"github.com/cloo-solutions/shopdesk/internal/database"
	"github.com/cloo-solutions/shopdesk/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	pool, url := testutil.NewTestPool(ctx, t, "../../migrations")

	require.NoError(t, database.Migrate(url, "../../migrations", zerolog.Nop()))

	for _, table := range []string{"new_orders", "return_requests", "issues", "callback_requests", "track_requests", "feedback", "knowledge_chunks"} {
		var exists bool
		err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}
}

func TestNewPool_BadURL(t *testing.T) {
	_, err := database.NewPool(context.Background(), database.Config{URL: "not a url://"})
	assert.Error(t, err)
}
