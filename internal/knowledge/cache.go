package knowledge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/logging"
	"github.com/cloo-solutions/shopdesk/internal/telemetry"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DocumentLister lists a tenant's knowledge base documents
type DocumentLister interface {
	ListDocuments(ctx context.Context, tenant domain.Tenant) ([]domain.Document, error)
}

// Embedder turns text into an embedding vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GenerationStore reports the invalidation generation of a tenant's documents
type GenerationStore interface {
	Current(ctx context.Context, tenant domain.Tenant) (int64, error)
}

// ChunkStore persists embedded chunks keyed by tenant and document fingerprint
// so an unchanged corpus is not embedded again after a restart.
type ChunkStore interface {
	LoadChunks(ctx context.Context, tenant domain.Tenant, fingerprint string) ([]EmbeddedChunk, error)
	SaveChunks(ctx context.Context, tenant domain.Tenant, fingerprint string, chunks []EmbeddedChunk) error
}

// CacheConfig tunes index builds
type CacheConfig struct {
	Chunking     ChunkConfig
	Concurrency  int
	BuildTimeout time.Duration
	// EmbedTimeout bounds each chunk's embedding call
	EmbedTimeout time.Duration
	// RetryInterval is how long a failed build of a generation is remembered
	// before a query may start another one
	RetryInterval time.Duration
}

// DefaultCacheConfig embeds four chunks at a time, 30 seconds each, gives a
// build two minutes and retries a failed build after a minute.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Chunking:      DefaultChunkConfig(),
		Concurrency:   4,
		BuildTimeout:  2 * time.Minute,
		EmbedTimeout:  30 * time.Second,
		RetryInterval: time.Minute,
	}
}

type cacheEntry struct {
	index      *Index
	generation int64
}

// buildFailure is the last failed build of a tenant
type buildFailure struct {
	generation int64
	at         time.Time
	err        error
}

// IndexCache holds one Index per tenant.
//
// An entry is reused while the tenant's generation is unchanged. When the
// generation moves the documents are listed again and the index is rebuilt
// only if their fingerprint changed. The first build for a tenant blocks the
// caller; later rebuilds run in the background while callers keep getting the
// previous index. Concurrent rebuilds of one tenant are collapsed into one.
// A failed build of a generation is not attempted again by Get until
// RetryInterval has passed; meanwhile callers get the previous index, or the
// build error when there is none.
type IndexCache struct {
	documents   DocumentLister
	embedder    Embedder
	generations GenerationStore
	chunks      ChunkStore
	cfg         CacheConfig
	logger      zerolog.Logger

	mu       sync.RWMutex
	entries  map[domain.Tenant]*cacheEntry
	failures map[domain.Tenant]buildFailure
	builds   singleflight.Group
	now      func() time.Time
}

// NewIndexCache creates an IndexCache. chunks may be nil to disable the
// persisted embedding cache.
func NewIndexCache(
	documents DocumentLister,
	embedder Embedder,
	generations GenerationStore,
	chunks ChunkStore,
	cfg CacheConfig,
	logger zerolog.Logger,
) *IndexCache {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultCacheConfig().Concurrency
	}
	if cfg.BuildTimeout <= 0 {
		cfg.BuildTimeout = DefaultCacheConfig().BuildTimeout
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = DefaultCacheConfig().EmbedTimeout
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultCacheConfig().RetryInterval
	}
	return &IndexCache{
		documents:   documents,
		embedder:    embedder,
		generations: generations,
		chunks:      chunks,
		cfg:         cfg,
		logger:      logger,
		entries:     make(map[domain.Tenant]*cacheEntry),
		failures:    make(map[domain.Tenant]buildFailure),
		now:         time.Now,
	}
}

// Get returns the tenant's index, building it if needed.
func (c *IndexCache) Get(ctx context.Context, tenant domain.Tenant) (*Index, error) {
	logger := logging.FromContext(ctx, c.logger)
	entry := c.lookup(tenant)

	gen, err := c.generations.Current(ctx, tenant)
	if err != nil {
		logger.Warn().Err(err).Str("tenant", string(tenant)).Msg("knowledge: generation lookup failed")
		if entry != nil {
			return entry.index, nil
		}
	} else if entry != nil && entry.generation == gen {
		return entry.index, nil
	}

	// A build of this generation failed recently; answer from what we have
	if failure, ok := c.recentFailure(tenant, gen); ok {
		if entry != nil {
			return entry.index, nil
		}
		return nil, failure.err
	}

	result := c.builds.DoChan(string(tenant), func() (any, error) {
		// Detached so one caller giving up does not cancel a shared build
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.BuildTimeout)
		defer cancel()
		return c.refresh(buildCtx, tenant, gen)
	})

	if entry != nil {
		return entry.index, nil
	}

	select {
	case res := <-result:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Index), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Warm builds or refreshes the index of every given tenant, blocking until
// each is current.
func (c *IndexCache) Warm(ctx context.Context, tenants []domain.Tenant) error {
	for _, tenant := range tenants {
		gen, err := c.generations.Current(ctx, tenant)
		if err != nil {
			return fmt.Errorf("generation for %s: %w", tenant, err)
		}
		if entry := c.lookup(tenant); entry != nil && entry.generation == gen {
			continue
		}
		_, err, _ = c.builds.Do(string(tenant), func() (any, error) {
			buildCtx, cancel := context.WithTimeout(ctx, c.cfg.BuildTimeout)
			defer cancel()
			return c.refresh(buildCtx, tenant, gen)
		})
		if err != nil {
			return fmt.Errorf("warm %s: %w", tenant, err)
		}
	}
	return nil
}

func (c *IndexCache) lookup(tenant domain.Tenant) *cacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[tenant]
}

func (c *IndexCache) store(tenant domain.Tenant, index *Index, generation int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tenant] = &cacheEntry{index: index, generation: generation}
	delete(c.failures, tenant)
}

func (c *IndexCache) fail(tenant domain.Tenant, generation int64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[tenant] = buildFailure{generation: generation, at: c.now(), err: err}
}

func (c *IndexCache) recentFailure(tenant domain.Tenant, generation int64) (buildFailure, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	failure, ok := c.failures[tenant]
	if !ok || failure.generation != generation || c.now().Sub(failure.at) >= c.cfg.RetryInterval {
		return buildFailure{}, false
	}
	return failure, true
}

func (c *IndexCache) refresh(ctx context.Context, tenant domain.Tenant, gen int64) (*Index, error) {
	ctx, span := telemetry.StartSpan(ctx, "IndexCache.refresh", telemetry.SpanAttributes{
		Tenant:    string(tenant),
		Operation: "index_build",
	})
	defer span.End()

	logger := logging.FromContext(ctx, c.logger).With().Str("tenant", string(tenant)).Logger()

	docs, err := c.documents.ListDocuments(ctx, tenant)
	if err != nil {
		err = fmt.Errorf("list documents: %w", err)
		span.SetError(err)
		c.fail(tenant, gen, err)
		return nil, err
	}
	fingerprint := Fingerprint(docs)

	if entry := c.lookup(tenant); entry != nil && entry.index.Fingerprint() == fingerprint {
		c.store(tenant, entry.index, gen)
		logger.Debug().Int64("generation", gen).Msg("knowledge: documents unchanged")
		return entry.index, nil
	}

	start := time.Now()
	index, err := c.build(ctx, logger, tenant, fingerprint, docs)
	if err != nil {
		span.SetError(err)
		c.fail(tenant, gen, err)
		logger.Warn().Err(err).Dur("retry_after", c.cfg.RetryInterval).Msg("knowledge: index build failed")
		return nil, err
	}
	c.store(tenant, index, gen)

	logger.Info().
		Int("documents", len(docs)).
		Int("chunks", index.Len()).
		Int64("generation", gen).
		Dur("duration", time.Since(start)).
		Msg("knowledge: index built")
	return index, nil
}

func (c *IndexCache) build(
	ctx context.Context,
	logger zerolog.Logger,
	tenant domain.Tenant,
	fingerprint string,
	docs []domain.Document,
) (*Index, error) {
	if len(docs) == 0 {
		return NewIndex(tenant, fingerprint, nil)
	}

	if c.chunks != nil {
		stored, err := c.chunks.LoadChunks(ctx, tenant, fingerprint)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("knowledge: loading stored chunks failed")
		case len(stored) > 0:
			index, err := NewIndex(tenant, fingerprint, stored)
			if err == nil {
				return index, nil
			}
			logger.Warn().Err(err).Msg("knowledge: stored chunks unusable, embedding again")
		}
	}

	chunks := Chunk(JoinDocuments(docs), c.cfg.Chunking)
	embedded, err := c.embedAll(ctx, chunks)
	if err != nil {
		return nil, err
	}

	index, err := NewIndex(tenant, fingerprint, embedded)
	if err != nil {
		return nil, err
	}

	if c.chunks != nil && len(embedded) > 0 {
		if err := c.chunks.SaveChunks(ctx, tenant, fingerprint, embedded); err != nil {
			logger.Warn().Err(err).Msg("knowledge: saving chunks failed")
		}
	}
	return index, nil
}

func (c *IndexCache) embedAll(ctx context.Context, chunks []domain.DocumentChunk) ([]EmbeddedChunk, error) {
	out := make([]EmbeddedChunk, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			embedCtx, cancel := context.WithTimeout(gctx, c.cfg.EmbedTimeout)
			defer cancel()
			vec, err := c.embedder.Embed(embedCtx, chunk.Text)
			if err != nil {
				return fmt.Errorf("embed %s: %w", chunk.SourceID, err)
			}
			out[i] = EmbeddedChunk{Chunk: chunk, Embedding: vec}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
