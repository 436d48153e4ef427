// Package knowledge builds and searches the per-tenant knowledge base index
// used to answer questions no structured intent covers.
package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// ErrDimensionMismatch is returned when vectors of different lengths are compared
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// EmbeddedChunk is a chunk together with its embedding vector
type EmbeddedChunk struct {
	Chunk     domain.DocumentChunk
	Embedding []float32
}

// Index is an immutable in-memory vector index over one tenant's documents.
// It is safe for concurrent searches.
type Index struct {
	tenant      domain.Tenant
	fingerprint string
	chunks      []EmbeddedChunk
	norms       []float64
	dimensions  int
}

// NewIndex builds an index from embedded chunks. All embeddings must share
// one dimension.
func NewIndex(tenant domain.Tenant, fingerprint string, chunks []EmbeddedChunk) (*Index, error) {
	idx := &Index{
		tenant:      tenant,
		fingerprint: fingerprint,
		chunks:      chunks,
		norms:       make([]float64, len(chunks)),
	}
	for i, c := range chunks {
		if len(c.Embedding) == 0 {
			return nil, fmt.Errorf("chunk %s has no embedding", c.Chunk.SourceID)
		}
		if idx.dimensions == 0 {
			idx.dimensions = len(c.Embedding)
		} else if len(c.Embedding) != idx.dimensions {
			return nil, fmt.Errorf("%w: chunk %s has %d, expected %d",
				ErrDimensionMismatch, c.Chunk.SourceID, len(c.Embedding), idx.dimensions)
		}
		idx.norms[i] = norm(c.Embedding)
	}
	return idx, nil
}

// Tenant returns the tenant the index was built for
func (x *Index) Tenant() domain.Tenant { return x.tenant }

// Fingerprint identifies the document set the index was built from
func (x *Index) Fingerprint() string { return x.fingerprint }

// Len returns the number of chunks in the index
func (x *Index) Len() int { return len(x.chunks) }

// Chunks returns the indexed chunks in order
func (x *Index) Chunks() []EmbeddedChunk { return x.chunks }

// Search returns the k chunks most similar to query by cosine similarity,
// best first. Equal scores keep chunk order.
func (x *Index) Search(query []float32, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 || len(x.chunks) == 0 {
		return nil, nil
	}
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), x.dimensions)
	}

	qNorm := norm(query)
	results := make([]domain.RetrievalResult, len(x.chunks))
	for i, c := range x.chunks {
		results[i] = domain.RetrievalResult{
			Chunk: c.Chunk,
			Score: cosine(query, qNorm, c.Embedding, x.norms[i]),
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// cosine is zero when either vector has zero length
func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float32 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot / (aNorm * bNorm))
}

// Fingerprint identifies a document set by name and content, independent of
// the order documents are listed in.
func Fingerprint(docs []domain.Document) string {
	sorted := make([]domain.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	h := sha256.New()
	for _, d := range sorted {
		// Length prefixes keep ("ab","c") and ("a","bc") apart
		fmt.Fprintf(h, "%d:%s%d:%s", len(d.Name), d.Name, len(d.Content), d.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}
