//go:build integration

package openai

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_Embed_RealAPI(t *testing.T) {
	apiKey := os.Getenv("SHOPDESK_OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("SHOPDESK_OPENAI_API_KEY not set, skipping integration test")
	}

	client := NewClientWithConfig(Config{APIKey: apiKey})
	ctx := context.Background()

	embedding, err := client.Embed(ctx, "Returns are accepted within seven days of delivery.")

	require.NoError(t, err)
	assert.Len(t, embedding, DefaultEmbeddingDimensions)
}

func TestIntegration_Generate_RealAPI(t *testing.T) {
	apiKey := os.Getenv("SHOPDESK_OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("SHOPDESK_OPENAI_API_KEY not set, skipping integration test")
	}

	client := NewClientWithConfig(Config{APIKey: apiKey})
	ctx := context.Background()

	answer, err := client.Generate(ctx, "Reply with the single word: ready")

	require.NoError(t, err)
	assert.NotEmpty(t, answer)
}
