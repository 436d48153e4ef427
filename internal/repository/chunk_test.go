//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/knowledge"
	"github.com/cloo-solutions/shopdesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embeddedChunks(texts ...string) []knowledge.EmbeddedChunk {
	chunks := make([]knowledge.EmbeddedChunk, len(texts))
	for i, text := range texts {
		chunks[i] = knowledge.EmbeddedChunk{
			Chunk:     domain.DocumentChunk{Text: text, SourceID: "chunk_" + string(rune('0'+i))},
			Embedding: []float32{float32(i), 0.5, -1},
		}
	}
	return chunks
}

func TestChunkRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	pool, _ := testutil.NewTestPool(ctx, t, "../../migrations")

	repo := NewChunkRepository(pool)
	chunks := embeddedChunks("first", "second", "third")

	require.NoError(t, repo.SaveChunks(ctx, domain.TenantTrace, "fp-1", chunks))

	loaded, err := repo.LoadChunks(ctx, domain.TenantTrace, "fp-1")
	require.NoError(t, err)
	assert.Equal(t, chunks, loaded)

	missing, err := repo.LoadChunks(ctx, domain.TenantTrace, "fp-2")
	require.NoError(t, err)
	assert.Empty(t, missing)

	otherTenant, err := repo.LoadChunks(ctx, domain.TenantKatsu, "fp-1")
	require.NoError(t, err)
	assert.Empty(t, otherTenant)
}

func TestChunkRepository_SaveReplacesPreviousFingerprint(t *testing.T) {
	ctx := context.Background()
	pool, _ := testutil.NewTestPool(ctx, t, "../../migrations")

	repo := NewChunkRepository(pool)
	require.NoError(t, repo.SaveChunks(ctx, domain.TenantSabi, "old", embeddedChunks("a", "b")))
	require.NoError(t, repo.SaveChunks(ctx, domain.TenantKatsu, "kept", embeddedChunks("k")))
	require.NoError(t, repo.SaveChunks(ctx, domain.TenantSabi, "new", embeddedChunks("c")))

	old, err := repo.LoadChunks(ctx, domain.TenantSabi, "old")
	require.NoError(t, err)
	assert.Empty(t, old)

	current, err := repo.LoadChunks(ctx, domain.TenantSabi, "new")
	require.NoError(t, err)
	assert.Len(t, current, 1)

	kept, err := repo.LoadChunks(ctx, domain.TenantKatsu, "kept")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestChunkRepository_FailedSaveKeepsPreviousChunks(t *testing.T) {
	ctx := context.Background()
	pool, _ := testutil.NewTestPool(ctx, t, "../../migrations")

	repo := NewChunkRepository(pool)
	require.NoError(t, repo.SaveChunks(ctx, domain.TenantTrace, "fp-1", embeddedChunks("a")))

	bad := embeddedChunks("b")
	bad[0].Embedding = nil
	assert.Error(t, repo.SaveChunks(ctx, domain.TenantTrace, "fp-2", bad))

	loaded, err := repo.LoadChunks(ctx, domain.TenantTrace, "fp-1")
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}
