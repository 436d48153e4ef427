package knowledge

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_ShortTextIsOneChunk(t *testing.T) {
	chunks := Chunk("  Opening hours are 9am to 5pm.  ", DefaultChunkConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, "Opening hours are 9am to 5pm.", chunks[0].Text)
	assert.Equal(t, "chunk_0", chunks[0].SourceID)
}

func TestChunk_Empty(t *testing.T) {
	assert.Empty(t, Chunk("", DefaultChunkConfig()))
	assert.Empty(t, Chunk(" \n\t ", DefaultChunkConfig()))
}

func TestChunk_MultiByteWithoutWhitespace(t *testing.T) {
	text := strings.Repeat("é", 2500)

	chunks := Chunk(text, DefaultChunkConfig())

	require.Len(t, chunks, 3)
	assert.Equal(t, 1000, utf8.RuneCountInString(chunks[0].Text))
	assert.Equal(t, 1000, utf8.RuneCountInString(chunks[1].Text))
	assert.Equal(t, 900, utf8.RuneCountInString(chunks[2].Text))
	for i, c := range chunks {
		assert.True(t, utf8.ValidString(c.Text))
		assert.Equal(t, "chunk_"+string(rune('0'+i)), c.SourceID)
	}
}

func TestChunk_CutsAtWhitespaceAndOverlaps(t *testing.T) {
	vocabulary := map[string]bool{}
	words := make([]string, 0, 600)
	for i := range 600 {
		w := "word" + strings.Repeat("x", i%5)
		vocabulary[w] = true
		words = append(words, w)
	}
	text := strings.Join(words, " ")

	chunks := Chunk(text, DefaultChunkConfig())
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Text), 1000)
		if i == len(chunks)-1 {
			continue
		}
		assert.GreaterOrEqual(t, utf8.RuneCountInString(c.Text), 390, "chunk %d too small", i)

		fields := strings.Fields(c.Text)
		assert.True(t, vocabulary[fields[len(fields)-1]], "chunk %d ends inside a word", i)

		tail := c.Text[len(c.Text)-50:]
		assert.Contains(t, chunks[i+1].Text, tail, "chunk %d does not overlap the next", i)
	}
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1].Text))
}

func TestJoinDocuments_OrdersByName(t *testing.T) {
	docs := []domain.Document{
		{Name: "returns.txt", Content: "Returns within 7 days."},
		{Name: "hours.txt", Content: "Open 9 to 5."},
	}

	assert.Equal(t, "Open 9 to 5.\n\nReturns within 7 days.", JoinDocuments(docs))
	assert.Equal(t, "returns.txt", docs[0].Name, "input must not be reordered")
	assert.Equal(t, "", JoinDocuments(nil))
}
