package repository

import (
	"context"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/knowledge"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ChunkRepository persists embedded knowledge base chunks so an unchanged
// document set is not embedded again after a restart.
type ChunkRepository struct {
	db dbtx
	tx txRunner
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool, tx: txRunner{pool: pool}}
}

// LoadChunks returns the chunks stored for the tenant's document fingerprint in
// chunk order. No rows means nothing is stored for that fingerprint.
func (r *ChunkRepository) LoadChunks(ctx context.Context, tenant domain.Tenant, fingerprint string) ([]knowledge.EmbeddedChunk, error) {
	rows, err := r.db.Query(ctx,
		`SELECT source_id, content, embedding
		 FROM knowledge_chunks
		 WHERE tenant = $1 AND fingerprint = $2
		 ORDER BY chunk_index ASC`,
		tenant, fingerprint,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []knowledge.EmbeddedChunk
	for rows.Next() {
		var c knowledge.EmbeddedChunk
		var embedding pgvector.Vector
		if err := rows.Scan(&c.Chunk.SourceID, &c.Chunk.Text, &embedding); err != nil {
			return nil, err
		}
		c.Embedding = embedding.Slice()
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// SaveChunks replaces every stored chunk of the tenant with chunks
func (r *ChunkRepository) SaveChunks(ctx context.Context, tenant domain.Tenant, fingerprint string, chunks []knowledge.EmbeddedChunk) error {
	return r.tx.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM knowledge_chunks WHERE tenant = $1`, tenant); err != nil {
			return err
		}

		if len(chunks) == 0 {
			return nil
		}

		createdAt := time.Now().UTC()
		batch := &pgx.Batch{}
		for i, c := range chunks {
			batch.Queue(
				`INSERT INTO knowledge_chunks (tenant, fingerprint, chunk_index, source_id, content, embedding, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				tenant, fingerprint, i, c.Chunk.SourceID, c.Chunk.Text, pgvector.NewVector(c.Embedding), createdAt,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}
