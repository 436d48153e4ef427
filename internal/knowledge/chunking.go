package knowledge

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// documentSeparator joins a tenant's documents before chunking
const documentSeparator = "\n\n"

// ChunkConfig controls how the knowledge base text is split. Sizes are in runes.
type ChunkConfig struct {
	Size    int
	Overlap int
	MinSize int
}

// DefaultChunkConfig returns 1000-rune windows overlapping by 200.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:    1000,
		Overlap: 200,
		MinSize: 400,
	}
}

// JoinDocuments concatenates document contents ordered by name
func JoinDocuments(docs []domain.Document) string {
	sorted := make([]domain.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	parts := make([]string, 0, len(sorted))
	for _, d := range sorted {
		parts = append(parts, d.Content)
	}
	return strings.Join(parts, documentSeparator)
}

// Chunk splits text into overlapping windows labelled chunk_0, chunk_1, ...
func Chunk(text string, cfg ChunkConfig) []domain.DocumentChunk {
	texts := chunkText(text, cfg)
	chunks := make([]domain.DocumentChunk, 0, len(texts))
	for i, t := range texts {
		chunks = append(chunks, domain.DocumentChunk{
			Text:     t,
			SourceID: fmt.Sprintf("chunk_%d", i),
		})
	}
	return chunks
}

func chunkText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	runes := []rune(clean)
	if len(runes) <= cfg.Size {
		return []string{clean}
	}

	chunks := make([]string, 0, len(runes)/cfg.Size+1)
	start := 0
	for start < len(runes) {
		end := min(start+cfg.Size, len(runes))

		// Prefer to cut at whitespace, but never below MinSize
		if end < len(runes) {
			cut := end
			minCut := start + cfg.MinSize
			if minCut > end {
				minCut = start
			}
			for i := end; i > minCut; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
			end = cut
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		if end >= len(runes) {
			break
		}

		next := end
		if cfg.Overlap > 0 && end-start > cfg.Overlap {
			next = end - cfg.Overlap
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}
