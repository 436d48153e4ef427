package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/shopdesk/internal/domain"
	"github.com/cloo-solutions/shopdesk/internal/knowledge"
	"github.com/cloo-solutions/shopdesk/internal/logging"
	"github.com/cloo-solutions/shopdesk/internal/telemetry"
	"github.com/rs/zerolog"
)

// Knowledge base replies
const (
	MsgInsufficientInformation = "I'm sorry, but I don't have enough information to answer that question."
	MsgFallbackError           = "I apologize, but I encountered an error processing your query."
	MsgNoRelevantAnswer        = "Sorry, I could not find a relevant answer."
)

const answerPromptTemplate = "Use the following pieces of context to answer the question at the end. " +
	"If you don't know the answer, just say that you don't know, don't try to make up an answer.\n\n" +
	"%s\n\nQuestion: %s\nHelpful Answer:"

// IndexProvider returns the current knowledge base index of a tenant
type IndexProvider interface {
	Get(ctx context.Context, tenant domain.Tenant) (*knowledge.Index, error)
}

// Embedder embeds the customer's question
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces an answer from a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// FallbackConfig tunes knowledge base answers
type FallbackConfig struct {
	TopK              int
	GenerationTimeout time.Duration
	EmbeddingTimeout  time.Duration
}

// DefaultFallbackConfig uses the three best chunks and a 20 second generation budget
func DefaultFallbackConfig() FallbackConfig {
	return FallbackConfig{
		TopK:              3,
		GenerationTimeout: 20 * time.Second,
		EmbeddingTimeout:  30 * time.Second,
	}
}

// FallbackService answers questions from a tenant's knowledge base
type FallbackService struct {
	indexes   IndexProvider
	embedder  Embedder
	generator Generator
	cfg       FallbackConfig
	logger    zerolog.Logger
}

// NewFallbackService creates a new FallbackService instance
func NewFallbackService(indexes IndexProvider, embedder Embedder, generator Generator, cfg FallbackConfig, logger zerolog.Logger) *FallbackService {
	defaults := DefaultFallbackConfig()
	if cfg.TopK <= 0 {
		cfg.TopK = defaults.TopK
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = defaults.GenerationTimeout
	}
	if cfg.EmbeddingTimeout <= 0 {
		cfg.EmbeddingTimeout = defaults.EmbeddingTimeout
	}
	return &FallbackService{
		indexes:   indexes,
		embedder:  embedder,
		generator: generator,
		cfg:       cfg,
		logger:    logger,
	}
}

// Answer always returns a reply. Failures are logged and reported, and the
// customer gets MsgFallbackError.
func (s *FallbackService) Answer(ctx context.Context, tenant domain.Tenant, question string) string {
	ctx, span := telemetry.StartSpan(ctx, "FallbackService.Answer", telemetry.SpanAttributes{
		Tenant:    string(tenant),
		Operation: "fallback",
	})
	defer span.End()

	logger := logging.FromContext(ctx, s.logger).With().Str("tenant", string(tenant)).Logger()

	answer, err := s.answer(ctx, tenant, question)
	if err != nil {
		span.SetError(err)
		logger.Error().Err(err).Msg("fallback: answering from knowledge base failed")
		return MsgFallbackError
	}
	return answer
}

func (s *FallbackService) answer(ctx context.Context, tenant domain.Tenant, question string) (string, error) {
	index, err := s.indexes.Get(ctx, tenant)
	if err != nil {
		return "", fmt.Errorf("load index: %w", err)
	}
	if index.Len() == 0 {
		return MsgInsufficientInformation, nil
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.cfg.EmbeddingTimeout)
	defer cancel()
	vector, err := s.embedder.Embed(embedCtx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	results, err := index.Search(vector, s.cfg.TopK)
	if err != nil {
		return "", fmt.Errorf("search index: %w", err)
	}

	genCtx, cancelGen := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancelGen()
	answer, err := s.generator.Generate(genCtx, BuildAnswerPrompt(results, question))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return MsgNoRelevantAnswer, nil
	}
	return answer, nil
}

// BuildAnswerPrompt stuffs the retrieved chunks, best first, into the answer prompt
func BuildAnswerPrompt(results []domain.RetrievalResult, question string) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Chunk.Text)
	}
	return fmt.Sprintf(answerPromptTemplate, strings.Join(parts, "\n\n"), question)
}
